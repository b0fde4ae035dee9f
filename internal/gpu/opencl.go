//go:build cgo && !noopencl

package gpu

/*
#cgo CFLAGS: -DCL_TARGET_OPENCL_VERSION=120 -DCL_USE_DEPRECATED_OPENCL_1_2_APIS
#cgo linux LDFLAGS: -lOpenCL
#cgo windows LDFLAGS: -lOpenCL
#cgo darwin LDFLAGS: -framework OpenCL

#ifdef __APPLE__
#include <OpenCL/opencl.h>
#else
#include <CL/cl.h>
#endif
#include <stdlib.h>

static cl_context createContext(cl_device_id dev, cl_int* err) {
    return clCreateContext(NULL, 1, &dev, NULL, NULL, err);
}

static cl_program createProgram(cl_context ctx, const char* src, cl_int* err) {
    return clCreateProgramWithSource(ctx, 1, &src, NULL, err);
}

static cl_int buildProgram(cl_program prog, cl_device_id dev) {
    return clBuildProgram(prog, 1, &dev, "", NULL, NULL);
}

static cl_int setMemArg(cl_kernel k, cl_uint idx, cl_mem m) {
    return clSetKernelArg(k, idx, sizeof(cl_mem), &m);
}

static cl_int setFloatArg(cl_kernel k, cl_uint idx, cl_float v) {
    return clSetKernelArg(k, idx, sizeof(cl_float), &v);
}

static cl_int setIntArg(cl_kernel k, cl_uint idx, cl_int v) {
    return clSetKernelArg(k, idx, sizeof(cl_int), &v);
}
*/
import "C"
import (
	"strings"
	"unsafe"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

var floatSize = C.size_t(unsafe.Sizeof(C.cl_float(0)))

func status(call string, st C.cl_int) error {
	return &StatusError{Call: call, Code: int(st)}
}

// OpenCL returns the driver backed by the system OpenCL ICD loader.
func OpenCL() Driver {
	return openclDriver{}
}

type openclDriver struct{}

func (openclDriver) Name() string { return "opencl" }

func (openclDriver) Platforms() ([]Platform, error) {
	var n C.cl_uint
	st := C.clGetPlatformIDs(0, nil, &n)
	if st == platformNotFound {
		return nil, nil
	}
	if st != C.CL_SUCCESS {
		return nil, status("clGetPlatformIDs", st)
	}
	if n == 0 {
		return nil, nil
	}

	ids := make([]C.cl_platform_id, n)
	if st := C.clGetPlatformIDs(n, &ids[0], nil); st != C.CL_SUCCESS {
		return nil, status("clGetPlatformIDs", st)
	}

	platforms := make([]Platform, 0, len(ids))
	for _, id := range ids {
		platforms = append(platforms, &clPlatform{
			id:   id,
			name: platformString(id, C.CL_PLATFORM_NAME),
		})
	}
	return platforms, nil
}

type clPlatform struct {
	id   C.cl_platform_id
	name string
}

func (p *clPlatform) Name() string { return p.name }

func (p *clPlatform) Devices() ([]Device, error) {
	var n C.cl_uint
	st := C.clGetDeviceIDs(p.id, C.CL_DEVICE_TYPE_ALL, 0, nil, &n)
	if st == C.CL_DEVICE_NOT_FOUND || (st == C.CL_SUCCESS && n == 0) {
		return nil, nil
	}
	if st != C.CL_SUCCESS {
		return nil, status("clGetDeviceIDs", st)
	}

	ids := make([]C.cl_device_id, n)
	if st := C.clGetDeviceIDs(p.id, C.CL_DEVICE_TYPE_ALL, n, &ids[0], nil); st != C.CL_SUCCESS {
		return nil, status("clGetDeviceIDs", st)
	}

	devices := make([]Device, 0, len(ids))
	for _, id := range ids {
		devices = append(devices, &clDevice{
			id: id,
			info: DeviceInfo{
				Platform:     p.name,
				Name:         deviceString(id, C.CL_DEVICE_NAME),
				Vendor:       deviceString(id, C.CL_DEVICE_VENDOR),
				Version:      deviceString(id, C.CL_DEVICE_VERSION),
				Type:         deviceType(id),
				ComputeUnits: int(deviceUint(id, C.CL_DEVICE_MAX_COMPUTE_UNITS)),
				GlobalMemory: int64(deviceUlong(id, C.CL_DEVICE_GLOBAL_MEM_SIZE)),
			},
		})
	}
	return devices, nil
}

func platformString(id C.cl_platform_id, param C.cl_platform_info) string {
	var size C.size_t
	if C.clGetPlatformInfo(id, param, 0, nil, &size) != C.CL_SUCCESS || size == 0 {
		return ""
	}
	buf := make([]byte, size)
	if C.clGetPlatformInfo(id, param, size, unsafe.Pointer(&buf[0]), nil) != C.CL_SUCCESS {
		return ""
	}
	return strings.TrimRight(string(buf), "\x00")
}

func deviceString(id C.cl_device_id, param C.cl_device_info) string {
	var size C.size_t
	if C.clGetDeviceInfo(id, param, 0, nil, &size) != C.CL_SUCCESS || size == 0 {
		return ""
	}
	buf := make([]byte, size)
	if C.clGetDeviceInfo(id, param, size, unsafe.Pointer(&buf[0]), nil) != C.CL_SUCCESS {
		return ""
	}
	return strings.TrimSpace(strings.TrimRight(string(buf), "\x00"))
}

// deviceUint returns 0 when the query fails, which keeps the device out of
// selection.
func deviceUint(id C.cl_device_id, param C.cl_device_info) C.cl_uint {
	var v C.cl_uint
	if C.clGetDeviceInfo(id, param, C.size_t(unsafe.Sizeof(v)), unsafe.Pointer(&v), nil) != C.CL_SUCCESS {
		return 0
	}
	return v
}

func deviceUlong(id C.cl_device_id, param C.cl_device_info) C.cl_ulong {
	var v C.cl_ulong
	if C.clGetDeviceInfo(id, param, C.size_t(unsafe.Sizeof(v)), unsafe.Pointer(&v), nil) != C.CL_SUCCESS {
		return 0
	}
	return v
}

func deviceType(id C.cl_device_id) DeviceType {
	var t C.cl_device_type
	if C.clGetDeviceInfo(id, C.CL_DEVICE_TYPE, C.size_t(unsafe.Sizeof(t)), unsafe.Pointer(&t), nil) != C.CL_SUCCESS {
		return DeviceTypeUnknown
	}
	switch {
	case t&C.CL_DEVICE_TYPE_GPU != 0:
		return DeviceTypeGPU
	case t&C.CL_DEVICE_TYPE_ACCELERATOR != 0:
		return DeviceTypeAccelerator
	case t&C.CL_DEVICE_TYPE_CPU != 0:
		return DeviceTypeCPU
	default:
		return DeviceTypeUnknown
	}
}

type clDevice struct {
	id   C.cl_device_id
	info DeviceInfo
}

func (d *clDevice) Info() DeviceInfo { return d.info }

func (d *clDevice) Open(source string, kernels []string) (Queue, error) {
	var st C.cl_int
	q := &clQueue{
		info:    d.info,
		device:  d.id,
		kernels: make(map[string]C.cl_kernel, len(kernels)),
	}

	q.ctx = C.createContext(d.id, &st)
	if st != C.CL_SUCCESS {
		return nil, status("clCreateContext", st)
	}

	q.queue = C.clCreateCommandQueue(q.ctx, d.id, 0, &st)
	if st != C.CL_SUCCESS {
		err := status("clCreateCommandQueue", st)
		return nil, multierr.Append(err, q.Release())
	}

	src := C.CString(source)
	defer C.free(unsafe.Pointer(src))
	q.program = C.createProgram(q.ctx, src, &st)
	if st != C.CL_SUCCESS {
		err := status("clCreateProgramWithSource", st)
		return nil, multierr.Append(err, q.Release())
	}

	if st := C.buildProgram(q.program, d.id); st != C.CL_SUCCESS {
		err := errors.Wrapf(status("clBuildProgram", st), "build log:\n%s", q.buildLog())
		return nil, multierr.Append(err, q.Release())
	}

	for _, name := range kernels {
		cname := C.CString(name)
		k := C.clCreateKernel(q.program, cname, &st)
		C.free(unsafe.Pointer(cname))
		if st != C.CL_SUCCESS {
			err := errors.Wrapf(status("clCreateKernel", st), "kernel %q", name)
			return nil, multierr.Append(err, q.Release())
		}
		q.kernels[name] = k
	}

	return q, nil
}

type clQueue struct {
	info    DeviceInfo
	device  C.cl_device_id
	ctx     C.cl_context
	queue   C.cl_command_queue
	program C.cl_program
	kernels map[string]C.cl_kernel
}

func (q *clQueue) Device() DeviceInfo { return q.info }

func (q *clQueue) buildLog() string {
	var size C.size_t
	if C.clGetProgramBuildInfo(q.program, q.device, C.CL_PROGRAM_BUILD_LOG, 0, nil, &size) != C.CL_SUCCESS || size == 0 {
		return ""
	}
	buf := make([]byte, size)
	if C.clGetProgramBuildInfo(q.program, q.device, C.CL_PROGRAM_BUILD_LOG, size, unsafe.Pointer(&buf[0]), nil) != C.CL_SUCCESS {
		return ""
	}
	return strings.TrimRight(string(buf), "\x00")
}

func (q *clQueue) Allocate(n int, access Access) (Buffer, error) {
	if q.queue == nil {
		return nil, errors.New("queue released")
	}
	if n <= 0 {
		return nil, errors.Errorf("invalid buffer length: %d", n)
	}

	var flags C.cl_mem_flags
	switch access {
	case AccessReadOnly:
		flags = C.CL_MEM_READ_ONLY
	case AccessWriteOnly:
		flags = C.CL_MEM_WRITE_ONLY
	default:
		flags = C.CL_MEM_READ_WRITE
	}

	var st C.cl_int
	mem := C.clCreateBuffer(q.ctx, flags, C.size_t(n)*floatSize, nil, &st)
	if st != C.CL_SUCCESS {
		return nil, errors.Wrapf(status("clCreateBuffer", st), "%d floats (%s)", n, access)
	}
	return &clBuffer{mem: mem, n: n, queue: q.queue}, nil
}

func (q *clQueue) Launch(kernel string, global []int, args ...interface{}) error {
	k, ok := q.kernels[kernel]
	if !ok {
		return errors.Errorf("kernel %q not built", kernel)
	}
	if len(global) == 0 || len(global) > 3 {
		return errors.Errorf("%s: %d work dimensions", kernel, len(global))
	}

	for i, arg := range args {
		var st C.cl_int
		switch v := arg.(type) {
		case *clBuffer:
			if v.mem == nil {
				return errors.Errorf("%s argument %d: buffer already freed", kernel, i)
			}
			st = C.setMemArg(k, C.cl_uint(i), v.mem)
		case float32:
			st = C.setFloatArg(k, C.cl_uint(i), C.cl_float(v))
		case int32:
			st = C.setIntArg(k, C.cl_uint(i), C.cl_int(v))
		default:
			return errors.Errorf("%s argument %d: unsupported type %T", kernel, i, arg)
		}
		if st != C.CL_SUCCESS {
			return errors.Wrapf(status("clSetKernelArg", st), "%s argument %d", kernel, i)
		}
	}

	gws := make([]C.size_t, len(global))
	for i, g := range global {
		if g <= 0 {
			return errors.Errorf("%s: global size %d in dimension %d", kernel, g, i)
		}
		gws[i] = C.size_t(g)
	}

	st := C.clEnqueueNDRangeKernel(q.queue, k, C.cl_uint(len(gws)), nil, &gws[0], nil, 0, nil, nil)
	if st != C.CL_SUCCESS {
		return errors.Wrapf(status("clEnqueueNDRangeKernel", st), "%s over %v", kernel, global)
	}
	return nil
}

func (q *clQueue) Finish() error {
	if q.queue == nil {
		return errors.New("queue released")
	}
	if st := C.clFinish(q.queue); st != C.CL_SUCCESS {
		return status("clFinish", st)
	}
	return nil
}

func (q *clQueue) Release() error {
	var err error
	for name, k := range q.kernels {
		if st := C.clReleaseKernel(k); st != C.CL_SUCCESS {
			err = multierr.Append(err, errors.Wrapf(status("clReleaseKernel", st), "kernel %q", name))
		}
	}
	q.kernels = nil
	if q.program != nil {
		if st := C.clReleaseProgram(q.program); st != C.CL_SUCCESS {
			err = multierr.Append(err, status("clReleaseProgram", st))
		}
		q.program = nil
	}
	if q.queue != nil {
		if st := C.clReleaseCommandQueue(q.queue); st != C.CL_SUCCESS {
			err = multierr.Append(err, status("clReleaseCommandQueue", st))
		}
		q.queue = nil
	}
	if q.ctx != nil {
		if st := C.clReleaseContext(q.ctx); st != C.CL_SUCCESS {
			err = multierr.Append(err, status("clReleaseContext", st))
		}
		q.ctx = nil
	}
	return err
}

// clBuffer implements Buffer for OpenCL device memory
type clBuffer struct {
	mem   C.cl_mem
	n     int
	queue C.cl_command_queue
}

func (b *clBuffer) Len() int { return b.n }

func (b *clBuffer) CopyFromHost(src []float32) error {
	if b.mem == nil {
		return errors.New("buffer already freed")
	}
	if len(src) > b.n {
		return errors.Errorf("buffer too small: %d < %d", b.n, len(src))
	}
	if len(src) == 0 {
		return nil
	}
	st := C.clEnqueueWriteBuffer(b.queue, b.mem, C.CL_TRUE, 0,
		C.size_t(len(src))*floatSize, unsafe.Pointer(&src[0]), 0, nil, nil)
	if st != C.CL_SUCCESS {
		return status("clEnqueueWriteBuffer", st)
	}
	return nil
}

func (b *clBuffer) CopyToHost(dst []float32) error {
	if b.mem == nil {
		return errors.New("buffer already freed")
	}
	if len(dst) < b.n {
		return errors.Errorf("destination buffer too small: %d < %d", len(dst), b.n)
	}
	st := C.clEnqueueReadBuffer(b.queue, b.mem, C.CL_TRUE, 0,
		C.size_t(b.n)*floatSize, unsafe.Pointer(&dst[0]), 0, nil, nil)
	if st != C.CL_SUCCESS {
		return status("clEnqueueReadBuffer", st)
	}
	return nil
}

func (b *clBuffer) Free() error {
	if b.mem == nil {
		return nil
	}
	st := C.clReleaseMemObject(b.mem)
	b.mem = nil
	if st != C.CL_SUCCESS {
		return status("clReleaseMemObject", st)
	}
	return nil
}
