// Package dual is a small dual headed network used as the predictor of a guided search:
// a shared ReLU layer feeding a softmax policy head and a tanh value head.
// It only runs forward. Training it is somebody else's job.
package dual

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Weights of a Dual, row major. W1 is Features x Hidden, WP is Hidden x ActionSpace,
// WV is Hidden x 1.
type Weights struct {
	W1, B1 []float32
	WP, BP []float32
	WV, BV []float32
}

func (conf Config) shapes() [6]tensor.Shape {
	return [6]tensor.Shape{
		{conf.Features, conf.Hidden}, {1, conf.Hidden},
		{conf.Hidden, conf.ActionSpace}, {1, conf.ActionSpace},
		{conf.Hidden, 1}, {1, 1},
	}
}

func (w *Weights) slices() [6]*[]float32 {
	return [6]*[]float32{&w.W1, &w.B1, &w.WP, &w.BP, &w.WV, &w.BV}
}

// Dual is the network. It is not safe for concurrent use.
type Dual struct {
	Config

	g                 *G.ExprGraph
	x                 *G.Node
	logits, value     *G.Node
	logitsVal, valVal G.Value
	vm                G.VM
}

// New creates an uninitialized network. Call Init or SetWeights before Infer.
func New(conf Config) *Dual {
	return &Dual{Config: conf}
}

// Init draws Glorot normal weights and zero biases from a source seeded with seed.
func (d *Dual) Init(seed uint64) error {
	if !d.IsValid() {
		return errors.Errorf("invalid config %+v", d.Config)
	}
	src := rand.NewSource(seed)
	var w Weights
	shapes := d.shapes()
	for i, s := range w.slices() {
		shape := shapes[i]
		*s = make([]float32, shape.TotalSize())
		if i%2 == 1 { // biases
			continue
		}
		dist := distuv.Normal{
			Mu:    0,
			Sigma: math.Sqrt(2 / float64(shape[0]+shape[1])),
			Src:   src,
		}
		for j := range *s {
			(*s)[j] = float32(dist.Rand())
		}
	}
	return d.SetWeights(w)
}

// SetWeights replaces the weights and rebuilds the forward graph.
func (d *Dual) SetWeights(w Weights) error {
	if !d.IsValid() {
		return errors.Errorf("invalid config %+v", d.Config)
	}
	shapes := d.shapes()
	names := [6]string{"w1", "b1", "wp", "bp", "wv", "bv"}
	backings := w.slices()
	for i, s := range backings {
		if len(*s) != shapes[i].TotalSize() {
			return errors.Errorf("%s has %d values, want %d for shape %v", names[i], len(*s), shapes[i].TotalSize(), shapes[i])
		}
	}
	if err := d.Close(); err != nil {
		return err
	}

	g := G.NewGraph()
	var params [6]*G.Node
	for i, s := range backings {
		backing := make([]float32, len(*s))
		copy(backing, *s)
		t := tensor.New(tensor.WithShape(shapes[i]...), tensor.WithBacking(backing))
		params[i] = G.NewMatrix(g, tensor.Float32, G.WithShape(shapes[i]...), G.WithName(names[i]), G.WithValue(t))
	}

	x := G.NewMatrix(g, tensor.Float32, G.WithShape(1, d.Features), G.WithName("x"), G.WithInit(G.Zeroes()))
	hidden, err := G.Mul(x, params[0])
	if err != nil {
		return errors.Wrap(err, "hidden")
	}
	if hidden, err = G.Add(hidden, params[1]); err != nil {
		return errors.Wrap(err, "hidden bias")
	}
	if hidden, err = G.Rectify(hidden); err != nil {
		return errors.Wrap(err, "relu")
	}

	logits, err := G.Mul(hidden, params[2])
	if err != nil {
		return errors.Wrap(err, "policy head")
	}
	if logits, err = G.Add(logits, params[3]); err != nil {
		return errors.Wrap(err, "policy bias")
	}

	value, err := G.Mul(hidden, params[4])
	if err != nil {
		return errors.Wrap(err, "value head")
	}
	if value, err = G.Add(value, params[5]); err != nil {
		return errors.Wrap(err, "value bias")
	}
	if value, err = G.Tanh(value); err != nil {
		return errors.Wrap(err, "tanh")
	}

	d.g, d.x, d.logits, d.value = g, x, logits, value
	G.Read(logits, &d.logitsVal)
	G.Read(value, &d.valVal)
	d.vm = G.NewTapeMachine(g)
	return nil
}

// Infer runs the network on one encoded state.
func (d *Dual) Infer(input []float32) (policy []float32, value float32, err error) {
	if d.vm == nil {
		return nil, 0, errors.New("network has no weights")
	}
	if len(input) != d.Features {
		return nil, 0, errors.Errorf("input has %d features, network expects %d", len(input), d.Features)
	}

	backing := make([]float32, len(input))
	copy(backing, input)
	if err = G.Let(d.x, tensor.New(tensor.WithShape(1, d.Features), tensor.WithBacking(backing))); err != nil {
		return nil, 0, errors.WithStack(err)
	}
	defer d.vm.Reset()
	if err = d.vm.RunAll(); err != nil {
		return nil, 0, errors.Wrap(err, "forward")
	}

	logits, ok := d.logitsVal.Data().([]float32)
	if !ok || len(logits) != d.ActionSpace {
		return nil, 0, errors.Errorf("unexpected policy output %v", d.logitsVal)
	}
	values, ok := d.valVal.Data().([]float32)
	if !ok || len(values) != 1 {
		return nil, 0, errors.Errorf("unexpected value output %v", d.valVal)
	}
	return softmax(logits), values[0], nil
}

// Close releases the tape machine.
func (d *Dual) Close() error {
	if d.vm == nil {
		return nil
	}
	err := d.vm.Close()
	d.vm = nil
	return errors.WithStack(err)
}

func softmax(logits []float32) []float32 {
	top := math32.Inf(-1)
	for _, l := range logits {
		if l > top {
			top = l
		}
	}
	retVal := make([]float32, len(logits))
	var sum float32
	for i, l := range logits {
		retVal[i] = math32.Exp(l - top)
		sum += retVal[i]
	}
	for i := range retVal {
		retVal[i] /= sum
	}
	return retVal
}
