package compute

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timo-42/ocl-algebra/internal/gpu"
	"github.com/timo-42/ocl-algebra/matrix"
)

func newHostContext(t *testing.T) *Context {
	t.Helper()
	ctx, err := NewContext(WithDriver("host"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctx.Close() })
	return ctx
}

func TestNewContextHost(t *testing.T) {
	ctx := newHostContext(t)

	info := ctx.Device()
	assert.Equal(t, gpu.DeviceTypeCPU, info.Type)
	assert.Positive(t, ctx.ComputeUnits())
	assert.Equal(t, info.ComputeUnits, ctx.ComputeUnits())
}

func TestNewContextUnknownDriver(t *testing.T) {
	_, err := NewContext(WithDriver("vulkan"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestNewContextNoDevice(t *testing.T) {
	tests := []struct {
		name   string
		driver gpu.Driver
	}{
		{"no devices", &staticDriver{}},
		{"zero compute units", &staticDriver{devices: []gpu.Device{newFaultDevice(faults{noUnits: true})}}},
		{"platform layer failure", &staticDriver{err: errors.New("CL_PLATFORM_NOT_FOUND_KHR")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, err := NewContext(withGPUDriver(tt.driver))
			assert.Nil(t, ctx)
			assert.ErrorIs(t, err, ErrNoDevice)
		})
	}
}

func TestNewContextPicksMostComputeUnits(t *testing.T) {
	small := newFaultDevice(faults{units: 2, infoName: "small"})
	big := newFaultDevice(faults{units: 16, infoName: "big"})
	twin := newFaultDevice(faults{units: 16, infoName: "twin"})

	ctx, err := NewContext(withGPUDriver(&staticDriver{devices: []gpu.Device{small, big, twin}}))
	require.NoError(t, err)
	defer ctx.Close()

	assert.Equal(t, "big", ctx.Device().Name)
	assert.Equal(t, 16, ctx.ComputeUnits())
}

func TestBuildFailure(t *testing.T) {
	cause := errors.New("error: use of undeclared identifier 'flaot'")
	dev := newFaultDevice(faults{infoName: "broken"})
	dev.openErr = cause

	ctx, err := Build(dev)
	assert.Nil(t, ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBuild)
	assert.ErrorIs(t, err, cause)

	var opErr *OpError
	require.ErrorAs(t, err, &opErr)
	assert.Contains(t, opErr.Op, "broken")
	assert.Contains(t, err.Error(), "flaot")
}

func TestCloseIsIdempotent(t *testing.T) {
	ctx, err := NewContext(WithDriver("host"))
	require.NoError(t, err)

	require.NoError(t, ctx.Close())
	require.NoError(t, ctx.Close())

	_, err = ctx.MulMatrixScalar(matrix.Fill(2, 2, 1), 2)
	assert.ErrorIs(t, err, ErrClosed)

	_, err = ctx.MulMatrixMatrix(matrix.Fill(2, 2, 1), matrix.Fill(2, 2, 1))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestCloseReportsReleaseFailure(t *testing.T) {
	cause := errors.New("CL_INVALID_COMMAND_QUEUE")
	ctx, err := Build(newFaultDevice(faults{release: cause}))
	require.NoError(t, err)

	err = ctx.Close()
	assert.ErrorIs(t, err, cause)

	// The context is unusable even after a failed close.
	_, err = ctx.MulMatrixScalar(matrix.Fill(1, 1, 1), 1)
	assert.ErrorIs(t, err, ErrClosed)
}
