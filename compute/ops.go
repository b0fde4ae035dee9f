package compute

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/timo-42/ocl-algebra/internal/gpu"
	"github.com/timo-42/ocl-algebra/internal/logging"
	"github.com/timo-42/ocl-algebra/matrix"
)

const (
	opMulMatrixScalar = "mul matrix scalar"
	opMulMatrixMatrix = "mul matrix matrix"
)

// buffers tracks the device buffers of one call so that every exit path
// releases them.
type buffers struct {
	q    gpu.Queue
	op   string
	live []gpu.Buffer
}

func (b *buffers) upload(data []float32) (gpu.Buffer, error) {
	buf, err := b.q.Allocate(len(data), gpu.AccessReadOnly)
	if err != nil {
		return nil, opError(b.op, ErrTransfer, err)
	}
	b.live = append(b.live, buf)
	if err := buf.CopyFromHost(data); err != nil {
		return nil, opError(b.op, ErrTransfer, err)
	}
	return buf, nil
}

func (b *buffers) output(n int) (gpu.Buffer, error) {
	buf, err := b.q.Allocate(n, gpu.AccessWriteOnly)
	if err != nil {
		return nil, opError(b.op, ErrTransfer, err)
	}
	b.live = append(b.live, buf)
	return buf, nil
}

func (b *buffers) release() error {
	var err error
	for _, buf := range b.live {
		err = multierr.Append(err, buf.Free())
	}
	b.live = nil
	if err != nil {
		return errors.Wrapf(err, "%s: release device buffers", b.op)
	}
	return nil
}

// call runs fn with the context locked and a fresh buffer set. The result
// is discarded if any stage or the buffer release fails.
func (c *Context) call(op string, fn func(b *buffers) (matrix.Matrix, error)) (res matrix.Matrix, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.queue == nil {
		return matrix.Matrix{}, errors.Wrap(ErrClosed, op)
	}

	b := &buffers{q: c.queue, op: op}
	defer func() {
		err = multierr.Append(err, b.release())
		if err != nil {
			res = matrix.Matrix{}
		}
	}()
	return fn(b)
}

// MulMatrixScalar returns a new matrix with every element of m multiplied
// by scalar. m is not modified. m may hold at most math.MaxInt32 elements;
// larger inputs fail with ErrShapeMismatch.
func (c *Context) MulMatrixScalar(m matrix.Matrix, scalar float32) (matrix.Matrix, error) {
	if err := m.Validate(); err != nil {
		return matrix.Matrix{}, errors.Wrap(err, opMulMatrixScalar)
	}
	if err := checkKernelExtents(m.Len()); err != nil {
		return matrix.Matrix{}, errors.Wrap(err, opMulMatrixScalar)
	}

	return c.call(opMulMatrixScalar, func(b *buffers) (matrix.Matrix, error) {
		n := m.Len()
		src, err := b.upload(m.Data)
		if err != nil {
			return matrix.Matrix{}, err
		}
		dst, err := b.output(n)
		if err != nil {
			return matrix.Matrix{}, err
		}

		if err := c.queue.Launch(gpu.KernelMulMatrixScalar, []int{n}, scalar, src, dst); err != nil {
			return matrix.Matrix{}, opError(opMulMatrixScalar, ErrDispatch, err)
		}

		out := make([]float32, n)
		if err := dst.CopyToHost(out); err != nil {
			return matrix.Matrix{}, opError(opMulMatrixScalar, ErrReadback, err)
		}
		return matrix.Matrix{Rows: m.Rows, Cols: m.Cols, Data: out}, nil
	})
}

// MulMatrixMatrix returns the product a*b, an a.Rows x b.Cols matrix.
//
// Inputs are read row-major. The result Data is column-major: element
// (r, c) is Data[c*Rows+r]. Use (matrix.Matrix).RowMajor to convert it.
// a.Cols must equal b.Rows; otherwise the error matches ErrShapeMismatch.
// The kernel indexes with 32-bit ints, so every extent and each of the
// products a.Rows*a.Cols, b.Rows*b.Cols and a.Rows*b.Cols must fit in
// math.MaxInt32; larger operands also fail with ErrShapeMismatch.
func (c *Context) MulMatrixMatrix(a, b matrix.Matrix) (matrix.Matrix, error) {
	if err := checkOperands(a, b); err != nil {
		return matrix.Matrix{}, errors.Wrap(err, opMulMatrixMatrix)
	}

	return c.call(opMulMatrixMatrix, func(bufs *buffers) (matrix.Matrix, error) {
		bufA, err := bufs.upload(a.Data)
		if err != nil {
			return matrix.Matrix{}, err
		}
		bufB, err := bufs.upload(b.Data)
		if err != nil {
			return matrix.Matrix{}, err
		}
		n := a.Rows * b.Cols
		bufC, err := bufs.output(n)
		if err != nil {
			return matrix.Matrix{}, err
		}

		logging.Debugf("%s: %dx%d * %dx%d on a %dx%d grid", opMulMatrixMatrix, a.Rows, a.Cols, b.Rows, b.Cols, a.Rows, b.Cols)
		err = c.queue.Launch(gpu.KernelMulMatrixMatrix, []int{a.Rows, b.Cols},
			bufA, bufB, bufC, int32(a.Rows), int32(a.Cols), int32(b.Cols))
		if err != nil {
			return matrix.Matrix{}, opError(opMulMatrixMatrix, ErrDispatch, err)
		}

		out := make([]float32, n)
		if err := bufC.CopyToHost(out); err != nil {
			return matrix.Matrix{}, opError(opMulMatrixMatrix, ErrReadback, err)
		}
		return matrix.Matrix{Rows: a.Rows, Cols: b.Cols, Data: out}, nil
	})
}

func checkOperands(a, b matrix.Matrix) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if err := b.Validate(); err != nil {
		return err
	}
	if a.Cols != b.Rows {
		return errors.Wrapf(ErrShapeMismatch, "%dx%d times %dx%d", a.Rows, a.Cols, b.Rows, b.Cols)
	}
	return checkKernelExtents(a.Rows, a.Cols, b.Cols, a.Len(), b.Len(), a.Rows*b.Cols)
}

// checkKernelExtents rejects extents and element counts the kernels cannot
// index with 32-bit ints. Extents go before their products: a product can
// only wrap int once one of its factors is already out of range.
func checkKernelExtents(sizes ...int) error {
	for _, d := range sizes {
		if d > math.MaxInt32 {
			return errors.Wrapf(ErrShapeMismatch, "size %d exceeds the kernel's int range", d)
		}
	}
	return nil
}
