package compute

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/timo-42/ocl-algebra/internal/gpu"
)

// staticDriver exposes a fixed device list on one platform.
type staticDriver struct {
	devices []gpu.Device
	err     error
}

func (d *staticDriver) Name() string { return "static" }

func (d *staticDriver) Platforms() ([]gpu.Platform, error) {
	if d.err != nil {
		return nil, d.err
	}
	return []gpu.Platform{&staticPlatform{devices: d.devices}}, nil
}

type staticPlatform struct {
	devices []gpu.Device
}

func (p *staticPlatform) Name() string { return "static" }

func (p *staticPlatform) Devices() ([]gpu.Device, error) { return p.devices, nil }

// faultDevice wraps the host device and injects failures into the queue
// and buffers it hands out.
type faultDevice struct {
	gpu.Device
	openErr error
	faults  faults
	queue   *faultQueue
}

type faults struct {
	allocAt  int // fail the n-th allocation (1-based), 0 = never
	write    error
	launch   error
	read     error
	free     error
	release  error
	units    int
	noUnits  bool
	infoName string
}

func newFaultDevice(f faults) *faultDevice {
	units := f.units
	if units == 0 {
		units = 2
	}
	return &faultDevice{Device: gpu.NewHostDevice(units), faults: f}
}

func (d *faultDevice) Info() gpu.DeviceInfo {
	info := d.Device.Info()
	if d.faults.infoName != "" {
		info.Name = d.faults.infoName
	}
	if d.faults.noUnits {
		info.ComputeUnits = 0
	}
	return info
}

func (d *faultDevice) Open(source string, kernels []string) (gpu.Queue, error) {
	if d.openErr != nil {
		return nil, d.openErr
	}
	q, err := d.Device.Open(source, kernels)
	if err != nil {
		return nil, err
	}
	d.queue = &faultQueue{Queue: q, f: d.faults}
	return d.queue, nil
}

type faultQueue struct {
	gpu.Queue
	f      faults
	allocs int
	frees  int
}

func (q *faultQueue) Allocate(n int, access gpu.Access) (gpu.Buffer, error) {
	if q.f.allocAt > 0 && q.allocs+1 == q.f.allocAt {
		return nil, errors.New("CL_MEM_OBJECT_ALLOCATION_FAILURE")
	}
	buf, err := q.Queue.Allocate(n, access)
	if err != nil {
		return nil, err
	}
	q.allocs++
	return &faultBuffer{Buffer: buf, q: q}, nil
}

func (q *faultQueue) Launch(kernel string, global []int, args ...interface{}) error {
	if q.f.launch != nil {
		return q.f.launch
	}
	// Unwrap buffers so the host kernels see their own type.
	for i, a := range args {
		if fb, ok := a.(*faultBuffer); ok {
			args[i] = fb.Buffer
		}
	}
	return q.Queue.Launch(kernel, global, args...)
}

func (q *faultQueue) Release() error {
	return multierr.Append(q.Queue.Release(), q.f.release)
}

type faultBuffer struct {
	gpu.Buffer
	q *faultQueue
}

func (b *faultBuffer) CopyFromHost(src []float32) error {
	if b.q.f.write != nil {
		return b.q.f.write
	}
	return b.Buffer.CopyFromHost(src)
}

func (b *faultBuffer) CopyToHost(dst []float32) error {
	if b.q.f.read != nil {
		return b.q.f.read
	}
	return b.Buffer.CopyToHost(dst)
}

func (b *faultBuffer) Free() error {
	b.q.frees++
	return multierr.Append(b.Buffer.Free(), b.q.f.free)
}
