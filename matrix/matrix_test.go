package matrix

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix
		ok   bool
	}{
		{"2x2", New(2, 2, []float32{1, 2, 3, 4}), true},
		{"column", New(3, 1, []float32{1, 2, 3}), true},
		{"short data", New(2, 2, []float32{1, 2, 3}), false},
		{"long data", New(1, 2, []float32{1, 2, 3}), false},
		{"zero rows", New(0, 2, nil), false},
		{"negative cols", New(2, -1, nil), false},
		{"zero value", Matrix{}, false},
		{"overflowing extents", Matrix{Rows: 4, Cols: math.MaxInt/2 + 2, Data: make([]float32, 4)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.m.Validate()
			if tt.ok && err != nil {
				t.Fatalf("Validate() = %v, want nil", err)
			}
			if !tt.ok && !errors.Is(err, ErrShapeMismatch) {
				t.Fatalf("Validate() = %v, want ErrShapeMismatch", err)
			}
		})
	}
}

func TestLayoutAccessors(t *testing.T) {
	// 2x3 matrix [1 2 3; 4 5 6] stored column-major.
	cm := New(2, 3, []float32{1, 4, 2, 5, 3, 6})

	if got := cm.ColMajorAt(1, 2); got != 6 {
		t.Errorf("ColMajorAt(1, 2) = %v, want 6", got)
	}

	rm := cm.RowMajor()
	want := []float32{1, 2, 3, 4, 5, 6}
	if diff := cmp.Diff(want, rm.Data); diff != "" {
		t.Errorf("RowMajor() mismatch (-want +got):\n%s", diff)
	}
	if got := rm.At(1, 0); got != 4 {
		t.Errorf("At(1, 0) = %v, want 4", got)
	}

	// The receiver is untouched.
	if cm.Data[1] != 4 {
		t.Errorf("RowMajor mutated its receiver: %v", cm.Data)
	}
}

func TestRowMajorColumnVectorIsIdentity(t *testing.T) {
	v := New(3, 1, []float32{7, 8, 9})
	if diff := cmp.Diff(v.Data, v.RowMajor().Data); diff != "" {
		t.Errorf("column vector layout changed (-want +got):\n%s", diff)
	}
}

func TestCloneIsDeep(t *testing.T) {
	m := Fill(2, 2, 3)
	c := m.Clone()
	c.Data[0] = 42
	if m.Data[0] != 3 {
		t.Fatalf("Clone shares backing data")
	}
}

func TestParseFormat(t *testing.T) {
	m, err := Parse(" 1, 2 ; 3,4.5 ")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Rows != 2 || m.Cols != 2 {
		t.Fatalf("shape = %dx%d, want 2x2", m.Rows, m.Cols)
	}
	if diff := cmp.Diff([]float32{1, 2, 3, 4.5}, m.Data); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}

	if got, want := Format(m), "1, 2;\n3, 4.5"; got != want {
		t.Errorf("Format = %q, want %q", got, want)
	}

	back, err := Parse(Format(m))
	if err != nil {
		t.Fatalf("Parse(Format): %v", err)
	}
	if diff := cmp.Diff(m, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{"", "  ", "1,2;3", "1,x", "1;;2"} {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", in)
		}
	}
	if _, err := Parse("1,2;3"); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("ragged rows: got %v, want ErrShapeMismatch", err)
	}
}

func TestReferenceMulScalar(t *testing.T) {
	m := New(2, 2, []float32{1, 2, 3, 4})
	got, err := MulScalar(m, 1.5)
	if err != nil {
		t.Fatalf("MulScalar: %v", err)
	}
	if diff := cmp.Diff([]float32{1.5, 3, 4.5, 6}, got.Data, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if m.Data[0] != 1 {
		t.Errorf("MulScalar mutated its input")
	}
}

func TestReferenceMulColumnMajor(t *testing.T) {
	a := New(3, 2, []float32{1, 2, 3, 4, 5, 6})
	b := New(2, 2, []float32{7, 8, 9, 10})

	got, err := Mul(a, b)
	if err != nil {
		t.Fatalf("Mul: %v", err)
	}
	if got.Rows != 3 || got.Cols != 2 {
		t.Fatalf("shape = %dx%d, want 3x2", got.Rows, got.Cols)
	}

	for r := 0; r < 3; r++ {
		for c := 0; c < 2; c++ {
			var want float32
			for k := 0; k < 2; k++ {
				want += a.At(r, k) * b.At(k, c)
			}
			if v := got.Data[c*got.Rows+r]; v != want {
				t.Errorf("C[%d,%d] = %v, want %v", r, c, v, want)
			}
		}
	}

	if _, err := Mul(a, a); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("Mul(3x2, 3x2) = %v, want ErrShapeMismatch", err)
	}
}

func TestMaxAbsDiff(t *testing.T) {
	d, err := MaxAbsDiff(New(1, 3, []float32{1, 2, 3}), New(1, 3, []float32{1, 2.5, 1}))
	if err != nil {
		t.Fatalf("MaxAbsDiff: %v", err)
	}
	if d != 2 {
		t.Errorf("MaxAbsDiff = %v, want 2", d)
	}
	if _, err := MaxAbsDiff(Zeros(1, 2), Zeros(2, 1)); err == nil {
		t.Errorf("MaxAbsDiff with different shapes succeeded")
	}
}

func TestDenseRoundTrip(t *testing.T) {
	m := New(2, 3, []float32{1, 2, 3, 4, 5, 6})
	d, err := m.Dense()
	if err != nil {
		t.Fatalf("Dense: %v", err)
	}
	if got := d.Shape(); len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Fatalf("shape = %v, want (2, 3)", got)
	}

	back, err := FromDense(d)
	if err != nil {
		t.Fatalf("FromDense: %v", err)
	}
	if diff := cmp.Diff(m, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	// The tensor owns a copy.
	m.Data[0] = 99
	if d.Data().([]float32)[0] != 1 {
		t.Errorf("Dense shares backing data with the matrix")
	}
}

func TestFromDenseVectorAndErrors(t *testing.T) {
	v := tensor.New(tensor.WithShape(3), tensor.WithBacking([]float32{1, 2, 3}))
	m, err := FromDense(v)
	if err != nil {
		t.Fatalf("FromDense(vector): %v", err)
	}
	if m.Rows != 3 || m.Cols != 1 {
		t.Errorf("shape = %dx%d, want 3x1", m.Rows, m.Cols)
	}

	f64 := tensor.New(tensor.WithShape(2, 2), tensor.WithBacking([]float64{1, 2, 3, 4}))
	if _, err := FromDense(f64); err == nil {
		t.Errorf("FromDense(float64) succeeded, want error")
	}

	cube := tensor.New(tensor.WithShape(2, 2, 2), tensor.WithBacking(make([]float32, 8)))
	if _, err := FromDense(cube); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("FromDense(3-D) = %v, want ErrShapeMismatch", err)
	}
}
