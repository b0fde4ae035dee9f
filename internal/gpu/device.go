package gpu

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// DeviceType represents the class of a compute device
type DeviceType int

const (
	DeviceTypeUnknown DeviceType = iota
	DeviceTypeCPU
	DeviceTypeGPU
	DeviceTypeAccelerator
)

func (dt DeviceType) String() string {
	switch dt {
	case DeviceTypeCPU:
		return "CPU"
	case DeviceTypeGPU:
		return "GPU"
	case DeviceTypeAccelerator:
		return "Accelerator"
	default:
		return "Unknown"
	}
}

// DeviceInfo is the capability record reported for one device.
type DeviceInfo struct {
	Platform     string
	Name         string
	Vendor       string
	Version      string
	Type         DeviceType
	ComputeUnits int
	GlobalMemory int64 // bytes
}

func (d DeviceInfo) String() string {
	return fmt.Sprintf("%s / %s (%s, %d compute units)", d.Platform, d.Name, d.Type, d.ComputeUnits)
}

// Driver is a native compute API that exposes platforms.
type Driver interface {
	// Name returns the driver name used in configuration ("opencl", "host")
	Name() string

	// Platforms lists every platform the driver can see
	Platforms() ([]Platform, error)
}

// Platform groups the devices of one vendor implementation.
type Platform interface {
	Name() string
	Devices() ([]Device, error)
}

// Device is a compute device that work can be submitted to.
type Device interface {
	// Info returns the capability record of the device
	Info() DeviceInfo

	// Open creates a command queue bound to the device and builds source
	// into a program, creating one kernel per name in kernels.
	Open(source string, kernels []string) (Queue, error)
}

// Access describes how a kernel uses a device buffer.
type Access int

const (
	AccessReadWrite Access = iota
	AccessReadOnly
	AccessWriteOnly
)

func (a Access) String() string {
	switch a {
	case AccessReadOnly:
		return "read-only"
	case AccessWriteOnly:
		return "write-only"
	default:
		return "read-write"
	}
}

// Queue is an in-order command queue with a built program attached.
// Work runs in submission order. A Queue is not safe for concurrent use.
type Queue interface {
	// Device returns the device the queue is bound to
	Device() DeviceInfo

	// Allocate creates a device buffer holding n float32 values
	Allocate(n int, access Access) (Buffer, error)

	// Launch enqueues kernel over a global work grid of len(global)
	// dimensions. Args are bound positionally and may be Buffer, float32
	// or int32 values.
	Launch(kernel string, global []int, args ...interface{}) error

	// Finish blocks until every enqueued command has completed
	Finish() error

	// Release frees the kernels, program and queue
	Release() error
}

// Buffer is a float32 buffer in device memory.
type Buffer interface {
	// Len returns the number of float32 elements
	Len() int

	// CopyFromHost writes src into the buffer, blocking until done
	CopyFromHost(src []float32) error

	// CopyToHost reads the buffer into dst, blocking until done
	CopyToHost(dst []float32) error

	// Free releases the device memory
	Free() error
}

// ErrUnknownDriver is returned by LookupDriver for unregistered names.
var ErrUnknownDriver = errors.New("gpu: unknown driver")

// LookupDriver returns the driver registered under name.
func LookupDriver(name string) (Driver, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "opencl":
		return OpenCL(), nil
	case "host":
		return Host(), nil
	default:
		return nil, errors.Wrapf(ErrUnknownDriver, "%q (want opencl or host)", name)
	}
}

// DriverNames lists the names accepted by LookupDriver.
func DriverNames() []string {
	return []string{"opencl", "host"}
}
