// Package matrix defines the dense float32 matrix value exchanged with the
// compute package.
//
// Inputs are read row-major: element (r, c) is Data[r*Cols+c]. Products
// returned by compute.(*Context).MulMatrixMatrix are written column-major
// by the device: element (r, c) is Data[c*Rows+r]. The two layouts coincide
// when Cols == 1. Use RowMajor to convert a product before indexing it
// with At.
package matrix

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// ErrShapeMismatch reports a matrix whose extents disagree with its data,
// or operands whose shapes cannot be combined.
var ErrShapeMismatch = errors.New("matrix: shape mismatch")

// Matrix is a dense rows x cols matrix of float32 values. It is a plain
// value: construct it directly; nothing is validated until it is used.
type Matrix struct {
	Rows int
	Cols int
	Data []float32
}

// New returns a rows x cols matrix backed by data, without copying.
func New(rows, cols int, data []float32) Matrix {
	return Matrix{Rows: rows, Cols: cols, Data: data}
}

// Zeros returns a rows x cols matrix of zeros.
func Zeros(rows, cols int) Matrix {
	return Matrix{Rows: rows, Cols: cols, Data: make([]float32, rows*cols)}
}

// Fill returns a rows x cols matrix with every element set to v.
func Fill(rows, cols int, v float32) Matrix {
	m := Zeros(rows, cols)
	for i := range m.Data {
		m.Data[i] = v
	}
	return m
}

// Len returns the number of elements implied by the extents.
func (m Matrix) Len() int {
	return m.Rows * m.Cols
}

// Validate checks that both extents are positive and that Data holds
// exactly Rows*Cols values.
func (m Matrix) Validate() error {
	if m.Rows < 1 || m.Cols < 1 {
		return errors.Wrapf(ErrShapeMismatch, "extents %dx%d must be positive", m.Rows, m.Cols)
	}
	if m.Rows > math.MaxInt/m.Cols {
		return errors.Wrapf(ErrShapeMismatch, "extents %dx%d overflow int", m.Rows, m.Cols)
	}
	if len(m.Data) != m.Rows*m.Cols {
		return errors.Wrapf(ErrShapeMismatch, "%dx%d matrix has %d values, want %d", m.Rows, m.Cols, len(m.Data), m.Rows*m.Cols)
	}
	return nil
}

// At returns element (r, c) reading Data row-major.
func (m Matrix) At(r, c int) float32 {
	return m.Data[r*m.Cols+c]
}

// ColMajorAt returns element (r, c) reading Data column-major, the layout
// of matrix-matrix products.
func (m Matrix) ColMajorAt(r, c int) float32 {
	return m.Data[c*m.Rows+r]
}

// RowMajor treats Data as column-major and returns a row-major copy with
// the same extents.
func (m Matrix) RowMajor() Matrix {
	out := Zeros(m.Rows, m.Cols)
	for r := 0; r < m.Rows; r++ {
		for c := 0; c < m.Cols; c++ {
			out.Data[r*m.Cols+c] = m.Data[c*m.Rows+r]
		}
	}
	return out
}

// Clone returns a deep copy of m.
func (m Matrix) Clone() Matrix {
	data := make([]float32, len(m.Data))
	copy(data, m.Data)
	return Matrix{Rows: m.Rows, Cols: m.Cols, Data: data}
}

func (m Matrix) String() string {
	if err := m.Validate(); err != nil {
		return fmt.Sprintf("Matrix{%dx%d, %d values}", m.Rows, m.Cols, len(m.Data))
	}
	return Format(m)
}
