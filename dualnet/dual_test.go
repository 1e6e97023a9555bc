package dual

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRound(t *testing.T) {
	testCases := []struct{ in, out int }{
		{1, 1}, {5, 4}, {6, 8}, {7, 8}, {18, 16}, {128 + 4096, 4096},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.out, round(tc.in), "round(%d)", tc.in)
	}
}

func TestConfig(t *testing.T) {
	conf := DefaultConf(9, 9)
	require.Equal(t, Config{Features: 9, Hidden: 16, ActionSpace: 9}, conf)
	require.True(t, conf.IsValid())
	require.False(t, Config{Features: 9, ActionSpace: 9}.IsValid())
	require.False(t, DefaultConf(0, 9).IsValid())
}

func zeroWeights(conf Config) Weights {
	var w Weights
	for i, s := range w.slices() {
		*s = make([]float32, conf.shapes()[i].TotalSize())
	}
	return w
}

func TestDual(t *testing.T) {
	conf := DefaultConf(9, 9)

	t.Run("no weights", func(t *testing.T) {
		d := New(conf)
		_, _, err := d.Infer(make([]float32, 9))
		require.Error(t, err)
		require.NoError(t, d.Close())
	})

	t.Run("invalid config", func(t *testing.T) {
		d := New(Config{})
		require.Error(t, d.Init(1))
	})

	t.Run("random weights", func(t *testing.T) {
		d := New(conf)
		require.NoError(t, d.Init(1))
		defer d.Close()

		inputs := [][]float32{
			make([]float32, 9),
			{1, 0, 0, 0, -1, 0, 0, 0, 0},
			{1, -1, 1, -1, 1, -1, 1, -1, 1},
		}
		for _, input := range inputs {
			policy, value, err := d.Infer(input)
			require.NoError(t, err)
			require.Len(t, policy, 9)
			var sum float32
			for _, p := range policy {
				require.GreaterOrEqual(t, p, float32(0))
				sum += p
			}
			require.InDelta(t, 1, sum, 1e-5, "Policy should be a distribution")
			require.Greater(t, value, float32(-1))
			require.Less(t, value, float32(1))
		}
	})

	t.Run("same seed, same outputs", func(t *testing.T) {
		a, b := New(conf), New(conf)
		require.NoError(t, a.Init(7))
		require.NoError(t, b.Init(7))
		defer a.Close()
		defer b.Close()

		input := []float32{0, 1, 0, 0, -1, 0, 0, 0, 1}
		pa, va, err := a.Infer(input)
		require.NoError(t, err)
		pb, vb, err := b.Infer(input)
		require.NoError(t, err)
		require.Equal(t, pa, pb)
		require.Equal(t, va, vb)

		again, _, err := a.Infer(input)
		require.NoError(t, err)
		require.Equal(t, pa, again, "Repeated inference should not carry state")
	})

	t.Run("zero weights", func(t *testing.T) {
		d := New(conf)
		require.NoError(t, d.SetWeights(zeroWeights(conf)))
		defer d.Close()

		policy, value, err := d.Infer([]float32{1, 1, 1, 1, 1, 1, 1, 1, 1})
		require.NoError(t, err)
		for _, p := range policy {
			require.InDelta(t, 1.0/9, p, 1e-6)
		}
		require.Zero(t, value)
	})

	t.Run("biases drive the outputs", func(t *testing.T) {
		d := New(conf)
		w := zeroWeights(conf)
		w.BP[3] = 10
		w.BV[0] = 100
		require.NoError(t, d.SetWeights(w))
		defer d.Close()

		policy, value, err := d.Infer(make([]float32, 9))
		require.NoError(t, err)
		require.Greater(t, policy[3], float32(0.99))
		require.InDelta(t, 1, value, 1e-6)
	})

	t.Run("wrong weight sizes", func(t *testing.T) {
		d := New(conf)
		w := zeroWeights(conf)
		w.WP = w.WP[:10]
		require.Error(t, d.SetWeights(w))
	})

	t.Run("wrong input length", func(t *testing.T) {
		d := New(conf)
		require.NoError(t, d.Init(1))
		defer d.Close()
		_, _, err := d.Infer(make([]float32, 8))
		require.Error(t, err)
	})
}

func TestSoftmax(t *testing.T) {
	p := softmax([]float32{1000, 1000})
	require.Equal(t, []float32{0.5, 0.5}, p, "Large logits should not overflow")

	p = softmax([]float32{0, 1, 2})
	require.Less(t, p[0], p[1])
	require.Less(t, p[1], p[2])
}
