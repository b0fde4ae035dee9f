package matrix

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
)

// MulScalar multiplies every element of m by s on the CPU. It is the
// reference for compute.(*Context).MulMatrixScalar.
func MulScalar(m Matrix, s float32) (Matrix, error) {
	if err := m.Validate(); err != nil {
		return Matrix{}, err
	}
	out := m.Clone()
	blas32.Scal(s, blas32.Vector{N: len(out.Data), Inc: 1, Data: out.Data})
	return out, nil
}

// Mul computes a*b on the CPU and returns it in the same column-major
// layout the device kernel writes. It is the reference for
// compute.(*Context).MulMatrixMatrix.
func Mul(a, b Matrix) (Matrix, error) {
	if err := a.Validate(); err != nil {
		return Matrix{}, err
	}
	if err := b.Validate(); err != nil {
		return Matrix{}, err
	}
	if a.Cols != b.Rows {
		return Matrix{}, errors.Wrapf(ErrShapeMismatch, "%dx%d times %dx%d", a.Rows, a.Cols, b.Rows, b.Cols)
	}

	c := blas32.General{Rows: a.Rows, Cols: b.Cols, Stride: b.Cols, Data: make([]float32, a.Rows*b.Cols)}
	blas32.Gemm(blas.NoTrans, blas.NoTrans, 1,
		blas32.General{Rows: a.Rows, Cols: a.Cols, Stride: a.Cols, Data: a.Data},
		blas32.General{Rows: b.Rows, Cols: b.Cols, Stride: b.Cols, Data: b.Data},
		0, c)

	out := Zeros(a.Rows, b.Cols)
	for r := 0; r < a.Rows; r++ {
		for col := 0; col < b.Cols; col++ {
			out.Data[col*a.Rows+r] = c.Data[r*c.Stride+col]
		}
	}
	return out, nil
}

// MaxAbsDiff returns the largest absolute element-wise difference between
// the Data of a and b.
func MaxAbsDiff(a, b Matrix) (float32, error) {
	if a.Rows != b.Rows || a.Cols != b.Cols || len(a.Data) != len(b.Data) {
		return 0, errors.Wrapf(ErrShapeMismatch, "%dx%d vs %dx%d", a.Rows, a.Cols, b.Rows, b.Cols)
	}
	var worst float32
	for i := range a.Data {
		d := a.Data[i] - b.Data[i]
		if d < 0 {
			d = -d
		}
		if d > worst {
			worst = d
		}
	}
	return worst, nil
}
