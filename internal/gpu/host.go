package gpu

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Host returns a driver that emulates one compute device on the Go host.
// It runs the kernels of Source with identical indexing, so results match
// what an OpenCL device produces. Useful where no OpenCL runtime is
// installed.
func Host() Driver {
	return &hostDriver{units: runtime.NumCPU()}
}

type hostDriver struct {
	units int
}

func (d *hostDriver) Name() string { return "host" }

func (d *hostDriver) Platforms() ([]Platform, error) {
	return []Platform{&hostPlatform{units: d.units}}, nil
}

type hostPlatform struct {
	units int
}

func (p *hostPlatform) Name() string { return "Go host emulation" }

func (p *hostPlatform) Devices() ([]Device, error) {
	return []Device{NewHostDevice(p.units)}, nil
}

// HostDevice is the emulated device exposed by the host driver.
type HostDevice struct {
	info DeviceInfo
}

// NewHostDevice creates a host device that runs work items on up to units
// goroutines at a time.
func NewHostDevice(units int) *HostDevice {
	if units < 1 {
		units = 1
	}
	return &HostDevice{
		info: DeviceInfo{
			Platform:     "Go host emulation",
			Name:         fmt.Sprintf("Go host (%s/%s)", runtime.GOOS, runtime.GOARCH),
			Vendor:       "Go",
			Version:      runtime.Version(),
			Type:         DeviceTypeCPU,
			ComputeUnits: units,
		},
	}
}

func (d *HostDevice) Info() DeviceInfo { return d.info }

// Open "builds" source: every requested kernel must be declared in the
// source and have a host implementation.
func (d *HostDevice) Open(source string, kernels []string) (Queue, error) {
	declared := make(map[string]bool)
	for _, name := range DeclaredKernels(source) {
		declared[name] = true
	}

	q := &hostQueue{
		info:    d.info,
		kernels: make(map[string]hostKernel, len(kernels)),
	}
	for _, name := range kernels {
		if !declared[name] {
			return nil, errors.Errorf("kernel %q is not declared in the program source", name)
		}
		fn, ok := hostKernels[name]
		if !ok {
			return nil, errors.Errorf("kernel %q has no host implementation", name)
		}
		q.kernels[name] = fn
	}
	return q, nil
}

type hostKernel func(q *hostQueue, global []int, args []interface{}) error

var hostKernels = map[string]hostKernel{
	KernelMulMatrixScalar: hostMulMatrixScalar,
	KernelMulMatrixMatrix: hostMulMatrixMatrix,
}

type hostQueue struct {
	info     DeviceInfo
	kernels  map[string]hostKernel
	released bool
}

func (q *hostQueue) Device() DeviceInfo { return q.info }

func (q *hostQueue) Allocate(n int, access Access) (Buffer, error) {
	if q.released {
		return nil, errors.New("queue released")
	}
	if n <= 0 {
		return nil, errors.Errorf("invalid buffer length: %d", n)
	}
	return &hostBuffer{data: make([]float32, n), access: access}, nil
}

// Launch runs the kernel to completion before returning.
func (q *hostQueue) Launch(kernel string, global []int, args ...interface{}) error {
	if q.released {
		return errors.New("queue released")
	}
	fn, ok := q.kernels[kernel]
	if !ok {
		return errors.Errorf("kernel %q not built", kernel)
	}
	for i, g := range global {
		if g <= 0 {
			return errors.Errorf("%s: global size %d in dimension %d", kernel, g, i)
		}
	}
	return errors.Wrap(fn(q, global, args), kernel)
}

func (q *hostQueue) Finish() error { return nil }

func (q *hostQueue) Release() error {
	q.released = true
	q.kernels = nil
	return nil
}

// parallel splits [0, n) into contiguous chunks and runs them on at most
// ComputeUnits goroutines.
func (q *hostQueue) parallel(n int, fn func(lo, hi int)) error {
	units := q.info.ComputeUnits
	chunk := (n + units - 1) / units

	var g errgroup.Group
	g.SetLimit(units)
	for lo := 0; lo < n; lo += chunk {
		lo, hi := lo, min(lo+chunk, n)
		g.Go(func() error {
			fn(lo, hi)
			return nil
		})
	}
	return g.Wait()
}

func hostMulMatrixScalar(q *hostQueue, global []int, args []interface{}) error {
	if len(global) != 1 {
		return errors.Errorf("want a 1-D grid, got %d dimensions", len(global))
	}
	if len(args) != 3 {
		return errors.Errorf("want 3 arguments, got %d", len(args))
	}
	coeff, err := floatArg(args, 0)
	if err != nil {
		return err
	}
	src, err := bufferArg(args, 1)
	if err != nil {
		return err
	}
	res, err := bufferArg(args, 2)
	if err != nil {
		return err
	}

	n := global[0]
	if n > len(src) || n > len(res) {
		return errors.Errorf("grid of %d work items exceeds buffers (src %d, res %d)", n, len(src), len(res))
	}

	return q.parallel(n, func(lo, hi int) {
		for idx := lo; idx < hi; idx++ {
			res[idx] = src[idx] * coeff
		}
	})
}

func hostMulMatrixMatrix(q *hostQueue, global []int, args []interface{}) error {
	if len(global) != 2 {
		return errors.Errorf("want a 2-D grid, got %d dimensions", len(global))
	}
	if len(args) != 6 {
		return errors.Errorf("want 6 arguments, got %d", len(args))
	}
	a, err := bufferArg(args, 0)
	if err != nil {
		return err
	}
	b, err := bufferArg(args, 1)
	if err != nil {
		return err
	}
	c, err := bufferArg(args, 2)
	if err != nil {
		return err
	}
	aRows, err := intArg(args, 3)
	if err != nil {
		return err
	}
	aCols, err := intArg(args, 4)
	if err != nil {
		return err
	}
	bCols, err := intArg(args, 5)
	if err != nil {
		return err
	}

	rows, cols := global[0], global[1]
	if rows > aRows {
		return errors.Errorf("grid rows %d exceed A_rows %d", rows, aRows)
	}
	if aCols > 0 {
		if last := (rows-1)*aCols + aCols - 1; last >= len(a) {
			return errors.Errorf("A index %d out of bounds (len %d)", last, len(a))
		}
		if last := (aCols-1)*bCols + cols - 1; last >= len(b) {
			return errors.Errorf("B index %d out of bounds (len %d)", last, len(b))
		}
	}
	if last := (cols-1)*aRows + rows - 1; last >= len(c) {
		return errors.Errorf("C index %d out of bounds (len %d)", last, len(c))
	}

	return q.parallel(rows, func(lo, hi int) {
		for row := lo; row < hi; row++ {
			for col := 0; col < cols; col++ {
				var value float32
				for k := 0; k < aCols; k++ {
					value += a[row*aCols+k] * b[k*bCols+col]
				}
				c[col*aRows+row] = value
			}
		}
	})
}

func bufferArg(args []interface{}, i int) ([]float32, error) {
	buf, ok := args[i].(*hostBuffer)
	if !ok {
		return nil, errors.Errorf("argument %d: want a host buffer, got %T", i, args[i])
	}
	buf.mu.RLock()
	defer buf.mu.RUnlock()
	if buf.data == nil {
		return nil, errors.Errorf("argument %d: buffer already freed", i)
	}
	return buf.data, nil
}

func floatArg(args []interface{}, i int) (float32, error) {
	v, ok := args[i].(float32)
	if !ok {
		return 0, errors.Errorf("argument %d: want float32, got %T", i, args[i])
	}
	return v, nil
}

func intArg(args []interface{}, i int) (int, error) {
	v, ok := args[i].(int32)
	if !ok {
		return 0, errors.Errorf("argument %d: want int32, got %T", i, args[i])
	}
	return int(v), nil
}

// hostBuffer implements Buffer in Go memory
type hostBuffer struct {
	data   []float32
	access Access
	mu     sync.RWMutex
}

func (b *hostBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.data)
}

func (b *hostBuffer) CopyFromHost(src []float32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.data == nil {
		return errors.New("buffer already freed")
	}
	if len(src) > len(b.data) {
		return errors.Errorf("buffer too small: %d < %d", len(b.data), len(src))
	}
	copy(b.data, src)
	return nil
}

func (b *hostBuffer) CopyToHost(dst []float32) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.data == nil {
		return errors.New("buffer already freed")
	}
	if len(dst) < len(b.data) {
		return errors.Errorf("destination buffer too small: %d < %d", len(dst), len(b.data))
	}
	copy(dst, b.data)
	return nil
}

func (b *hostBuffer) Free() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = nil
	return nil
}
