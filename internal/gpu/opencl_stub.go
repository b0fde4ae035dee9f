//go:build !cgo || noopencl

package gpu

import "github.com/pkg/errors"

// OpenCL returns a driver that reports no platforms on builds without cgo
// or with the noopencl tag.
func OpenCL() Driver {
	return openclStub{}
}

type openclStub struct{}

func (openclStub) Name() string { return "opencl" }

func (openclStub) Platforms() ([]Platform, error) {
	return nil, errors.New("OpenCL support requires cgo (build without the noopencl tag)")
}
