package matrix

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Parse reads a matrix written as rows separated by ';' and values
// separated by ',', for example "1,2;3,4". Whitespace around values is
// ignored. The result is row-major.
func Parse(s string) (Matrix, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Matrix{}, errors.Wrapf(ErrShapeMismatch, "empty matrix")
	}

	var m Matrix
	for r, row := range strings.Split(s, ";") {
		cells := strings.Split(row, ",")
		if r == 0 {
			m.Cols = len(cells)
		} else if len(cells) != m.Cols {
			return Matrix{}, errors.Wrapf(ErrShapeMismatch, "row %d has %d values, want %d", r, len(cells), m.Cols)
		}
		for c, cell := range cells {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 32)
			if err != nil {
				return Matrix{}, errors.Wrapf(err, "matrix: row %d column %d", r, c)
			}
			m.Data = append(m.Data, float32(v))
		}
		m.Rows++
	}
	return m, nil
}

// Format renders m row-major in the form accepted by Parse, one row per
// line.
func Format(m Matrix) string {
	var b strings.Builder
	for r := 0; r < m.Rows; r++ {
		if r > 0 {
			b.WriteString(";\n")
		}
		for c := 0; c < m.Cols; c++ {
			if c > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.FormatFloat(float64(m.At(r, c)), 'g', -1, 32))
		}
	}
	return b.String()
}
