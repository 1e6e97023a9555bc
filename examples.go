package puctree

import (
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

const examplesSchema = "puctree_example_v1"

// WriteExamples writes examples to a parquet file at path, replacing it atomically.
func WriteExamples(path string, examples []Example) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create output dir")
	}

	tmpPath := path + ".tmp"
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, examples,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", examplesSchema),
	); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrap(err, "write parquet")
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrap(err, "rename parquet")
	}
	return nil
}

// ReadExamples reads the examples written by WriteExamples.
func ReadExamples(path string) ([]Example, error) {
	examples, err := parquet.ReadFile[Example](path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return examples, nil
}

// PrepareExamples packs examples into full batches of batchSize. Examples that do not fill a
// batch are dropped. Xs is (n, features), Policies is (n, actionSpace) and Values is (n).
func PrepareExamples(examples []Example, batchSize, features, actionSpace int) (Xs, Policies, Values *tensor.Dense, batches int, err error) {
	if batchSize <= 0 {
		return nil, nil, nil, 0, errors.Errorf("batch size %d", batchSize)
	}
	batches = len(examples) / batchSize
	if batches == 0 {
		return nil, nil, nil, 0, errors.Errorf("%d examples do not fill a batch of %d", len(examples), batchSize)
	}
	total := batches * batchSize

	XsBacking := make([]float32, 0, total*features)
	PoliciesBacking := make([]float32, 0, total*actionSpace)
	ValuesBacking := make([]float32, 0, total)
	for i, ex := range examples[:total] {
		if len(ex.Board) != features || len(ex.Policy) != actionSpace {
			return nil, nil, nil, 0, errors.Errorf("example %d has %d features and %d policy entries", i, len(ex.Board), len(ex.Policy))
		}
		XsBacking = append(XsBacking, ex.Board...)
		PoliciesBacking = append(PoliciesBacking, ex.Policy...)
		ValuesBacking = append(ValuesBacking, ex.Value)
	}

	Xs = tensor.New(tensor.WithBacking(XsBacking), tensor.WithShape(total, features))
	Policies = tensor.New(tensor.WithBacking(PoliciesBacking), tensor.WithShape(total, actionSpace))
	Values = tensor.New(tensor.WithBacking(ValuesBacking), tensor.WithShape(total))
	return Xs, Policies, Values, batches, nil
}
