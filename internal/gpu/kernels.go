package gpu

import (
	_ "embed"
	"regexp"
)

// Source is the OpenCL C program built for every context.
//
//go:embed kernels.cl
var Source string

const (
	// KernelMulMatrixScalar computes res[i] = src[i] * coeff over a 1-D grid.
	// Args: float32 coeff, Buffer src, Buffer res.
	KernelMulMatrixScalar = "mul_matrix_scalar"

	// KernelMulMatrixMatrix computes C = A*B over a 2-D (A_rows, B_cols)
	// grid and writes C column-major.
	// Args: Buffer A, Buffer B, Buffer C, int32 A_rows, int32 A_cols, int32 B_cols.
	KernelMulMatrixMatrix = "mul_matrix_matrix"
)

// Kernels lists the kernels built for every context, in build order.
var Kernels = []string{KernelMulMatrixScalar, KernelMulMatrixMatrix}

var kernelDecl = regexp.MustCompile(`__kernel\s+void\s+(\w+)\s*\(`)

// DeclaredKernels returns the kernel names declared in an OpenCL C source.
func DeclaredKernels(source string) []string {
	var names []string
	for _, m := range kernelDecl.FindAllStringSubmatch(source, -1) {
		names = append(names, m[1])
	}
	return names
}
