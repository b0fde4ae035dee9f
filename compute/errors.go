package compute

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/timo-42/ocl-algebra/internal/gpu"
	"github.com/timo-42/ocl-algebra/matrix"
)

var (
	// ErrNoDevice means no device with a positive compute-unit count was
	// found. Hosts without an accelerator report it; it is not a crash.
	ErrNoDevice = gpu.ErrNoDevice

	// ErrUnknownDriver is returned by WithDriver for unsupported names.
	ErrUnknownDriver = gpu.ErrUnknownDriver

	// ErrBuild means the command queue could not be opened or the kernels
	// failed to compile on the selected device.
	ErrBuild = errors.New("compute: kernel build failed")

	// ErrTransfer covers device buffer allocation and host to device copies.
	ErrTransfer = errors.New("compute: host to device transfer failed")

	// ErrDispatch means a kernel could not be enqueued.
	ErrDispatch = errors.New("compute: kernel dispatch failed")

	// ErrReadback means the result could not be copied back to the host.
	ErrReadback = errors.New("compute: device to host readback failed")

	// ErrShapeMismatch reports invalid matrices or incompatible operands.
	ErrShapeMismatch = matrix.ErrShapeMismatch

	// ErrClosed is returned by operations on a closed Context.
	ErrClosed = errors.New("compute: context closed")
)

// OpError records the operation and pipeline stage that failed. It matches
// both its Kind sentinel and the underlying driver error with errors.Is.
type OpError struct {
	Op   string
	Kind error
	Err  error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *OpError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func opError(op string, kind, err error) error {
	return &OpError{Op: op, Kind: kind, Err: err}
}
