package matrix

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// FromDense copies a 2-D float32 gorgonia tensor into a row-major Matrix.
// Vectors are treated as a single column.
func FromDense(d *tensor.Dense) (Matrix, error) {
	if d.Dtype() != tensor.Float32 {
		return Matrix{}, errors.Errorf("matrix: want a float32 tensor, got %v", d.Dtype())
	}

	shape := d.Shape()
	var rows, cols int
	switch len(shape) {
	case 1:
		rows, cols = shape[0], 1
	case 2:
		rows, cols = shape[0], shape[1]
	default:
		return Matrix{}, errors.Wrapf(ErrShapeMismatch, "want a 1-D or 2-D tensor, got shape %v", shape)
	}

	// Views and transposed tensors need an iterator to read in logical
	// order; materialise them first.
	if d.RequiresIterator() {
		c := d.Materialize()
		cd, ok := c.(*tensor.Dense)
		if !ok {
			return Matrix{}, errors.Errorf("matrix: cannot materialize %T", c)
		}
		d = cd
	}

	data, ok := d.Data().([]float32)
	if !ok {
		return Matrix{}, errors.Errorf("matrix: unexpected tensor backing %T", d.Data())
	}
	if len(data) < rows*cols {
		return Matrix{}, errors.Wrapf(ErrShapeMismatch, "tensor backing has %d values, want %d", len(data), rows*cols)
	}

	out := Zeros(rows, cols)
	copy(out.Data, data[:rows*cols])
	return out, nil
}

// Dense copies m into a rows x cols float32 gorgonia tensor. Data is taken
// as row-major; call RowMajor first on a matrix-matrix product.
func (m Matrix) Dense() (*tensor.Dense, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return tensor.New(
		tensor.WithShape(m.Rows, m.Cols),
		tensor.WithBacking(m.Clone().Data),
	), nil
}
