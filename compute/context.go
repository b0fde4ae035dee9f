// Package compute runs dense float32 matrix arithmetic on the most capable
// compute device of the host.
//
// A Context binds one device, one in-order command queue and the built
// kernel program. Every operation copies its inputs to fresh device
// buffers, dispatches one kernel, blocks until the result is read back and
// releases the buffers before returning.
package compute

import (
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/timo-42/ocl-algebra/internal/gpu"
	"github.com/timo-42/ocl-algebra/internal/logging"
)

// DeviceInfo describes the device a Context is bound to.
type DeviceInfo = gpu.DeviceInfo

// Context is a bound accelerator session. Operations on one Context run
// one at a time in call order.
type Context struct {
	mu     sync.Mutex
	device DeviceInfo
	queue  gpu.Queue
}

type options struct {
	driver gpu.Driver
}

// Option configures NewContext.
type Option func(*options) error

// WithDriver selects the compute driver by name: "opencl" (the default)
// or "host", which emulates a device on the CPU.
func WithDriver(name string) Option {
	return func(o *options) error {
		d, err := gpu.LookupDriver(name)
		if err != nil {
			return err
		}
		o.driver = d
		return nil
	}
}

func withGPUDriver(d gpu.Driver) Option {
	return func(o *options) error {
		o.driver = d
		return nil
	}
}

// NewContext selects the device with the most compute units and builds
// the kernels on it. It returns an error matching ErrNoDevice when the
// host has no usable device.
func NewContext(opts ...Option) (*Context, error) {
	o := options{driver: gpu.OpenCL()}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, err
		}
	}

	dev, err := gpu.SelectBestDevice(o.driver)
	if err != nil {
		return nil, err
	}
	return Build(dev)
}

// Build opens a command queue on dev and compiles the kernel program
// against it. Failures match ErrBuild and are not retried.
func Build(dev gpu.Device) (*Context, error) {
	info := dev.Info()
	q, err := dev.Open(gpu.Source, gpu.Kernels)
	if err != nil {
		return nil, opError("build "+info.Name, ErrBuild, err)
	}

	logging.WithDevice(info.Platform, info.Name).Infof("context ready on %s device with %d compute units", info.Type, info.ComputeUnits)
	return &Context{device: info, queue: q}, nil
}

// Device returns the device the context is bound to.
func (c *Context) Device() DeviceInfo {
	return c.device
}

// ComputeUnits returns the compute-unit count of the bound device.
func (c *Context) ComputeUnits() int {
	return c.device.ComputeUnits
}

// Close releases the queue and program. Operations after Close fail with
// ErrClosed. Close is idempotent.
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.queue == nil {
		return nil
	}
	err := multierr.Append(c.queue.Finish(), c.queue.Release())
	c.queue = nil
	return errors.Wrap(err, "compute: close")
}
