package gpu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceDeclaresKernels(t *testing.T) {
	assert.Equal(t, Kernels, DeclaredKernels(Source))
}

// The result layout of mul_matrix_matrix is part of the public contract.
func TestSourceIndexing(t *testing.T) {
	for _, expr := range []string{
		"res[idx] = src[idx] * coeff;",
		"A[C_row * A_cols + k]",
		"B[k * B_cols + C_col]",
		"C[C_col * A_rows + C_row] = value;",
		"int C_row = get_global_id(0);",
		"int C_col = get_global_id(1);",
	} {
		assert.True(t, strings.Contains(Source, expr), "kernel source lost %q", expr)
	}
}

func TestDeclaredKernels(t *testing.T) {
	src := `
__kernel void first(__global float* a) {}
__kernel  void
second (int n) {}
void helper(void) {}`
	assert.Equal(t, []string{"first", "second"}, DeclaredKernels(src))
	assert.Empty(t, DeclaredKernels("void f(void) {}"))
}

func TestStatusError(t *testing.T) {
	err := &StatusError{Call: "clBuildProgram", Code: -11}
	assert.Equal(t, "clBuildProgram: CL_BUILD_PROGRAM_FAILURE (-11)", err.Error())
	assert.Equal(t, "CL_PLATFORM_NOT_FOUND_KHR", StatusName(-1001))
	assert.Equal(t, "CL_UNKNOWN_ERROR", StatusName(-9999))
}
