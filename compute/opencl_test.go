package compute

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/timo-42/ocl-algebra/matrix"
)

func TestOpenCLDevice(t *testing.T) {
	ctx, err := NewContext()
	if errors.Is(err, ErrNoDevice) {
		t.Skipf("OpenCL device not available: %v", err)
	}
	require.NoError(t, err)
	defer ctx.Close()
	t.Logf("OpenCL device: %s", ctx.Device())

	scaled, err := ctx.MulMatrixScalar(matrix.New(2, 2, []float32{1, 2, 3, 4}), 1.5)
	require.NoError(t, err)
	if diff := cmp.Diff([]float32{1.5, 3, 4.5, 6}, scaled.Data, approx); diff != "" {
		t.Errorf("scalar mismatch (-want +got):\n%s", diff)
	}

	prod, err := ctx.MulMatrixMatrix(matrix.New(3, 2, []float32{1, 2, 3, 4, 5, 6}), matrix.New(2, 2, []float32{7, 8, 9, 10}))
	require.NoError(t, err)
	if diff := cmp.Diff([]float32{25, 57, 89, 28, 64, 100}, prod.Data, approx); diff != "" {
		t.Errorf("product mismatch (-want +got):\n%s", diff)
	}
}
