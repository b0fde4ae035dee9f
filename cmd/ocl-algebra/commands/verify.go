package commands

import (
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/timo-42/ocl-algebra/matrix"
)

type verifyOptions struct {
	rows, inner, cols int
	seed              int64
	tolerance         float64
}

func newVerifyCmd(a *app) *cobra.Command {
	var opts verifyOptions

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check device results against the CPU reference",
		Long: `Run random matrices through both device kernels and through the gonum
BLAS reference, and report the largest absolute difference. Fails when
the difference exceeds the tolerance.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.rows < 1 || opts.inner < 1 || opts.cols < 1 {
				return fmt.Errorf("--rows, --inner and --cols must be positive, got %d, %d and %d", opts.rows, opts.inner, opts.cols)
			}
			if !cmd.Flags().Changed("seed") {
				opts.seed = a.cfg.Verify.Seed
			}
			if !cmd.Flags().Changed("tolerance") {
				opts.tolerance = a.cfg.Verify.Tolerance
			}
			return a.runVerify(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.rows, "rows", 64, "rows of A")
	f.IntVar(&opts.inner, "inner", 48, "columns of A and rows of B")
	f.IntVar(&opts.cols, "cols", 32, "columns of B")
	f.Int64Var(&opts.seed, "seed", 1, "random seed")
	f.Float64Var(&opts.tolerance, "tolerance", 1e-4, "maximum allowed absolute difference")
	return cmd
}

func randomMatrix(rng *rand.Rand, rows, cols int) matrix.Matrix {
	data := make([]float32, rows*cols)
	for i := range data {
		data[i] = rng.Float32()*2 - 1
	}
	return matrix.New(rows, cols, data)
}

func (a *app) runVerify(cmd *cobra.Command, opts verifyOptions) (err error) {
	rng := rand.New(rand.NewSource(opts.seed))
	lhs := randomMatrix(rng, opts.rows, opts.inner)
	rhs := randomMatrix(rng, opts.inner, opts.cols)
	s := rng.Float32()*4 - 2

	ctx, err := a.openContext()
	if err != nil {
		return err
	}
	defer closeContext(ctx, &err)

	w := cmd.OutOrStdout()
	printDevice(w, ctx)

	type check struct {
		name      string
		device    func() (matrix.Matrix, error)
		reference func() (matrix.Matrix, error)
	}
	checks := []check{
		{
			name:      fmt.Sprintf("scalar %dx%d * %g", opts.rows, opts.inner, s),
			device:    func() (matrix.Matrix, error) { return ctx.MulMatrixScalar(lhs, s) },
			reference: func() (matrix.Matrix, error) { return matrix.MulScalar(lhs, s) },
		},
		{
			name:      fmt.Sprintf("matmul %dx%d * %dx%d", opts.rows, opts.inner, opts.inner, opts.cols),
			device:    func() (matrix.Matrix, error) { return ctx.MulMatrixMatrix(lhs, rhs) },
			reference: func() (matrix.Matrix, error) { return matrix.Mul(lhs, rhs) },
		},
	}

	failed := 0
	for _, c := range checks {
		got, err := c.device()
		if err != nil {
			return fmt.Errorf("%s: %w", c.name, err)
		}
		want, err := c.reference()
		if err != nil {
			return fmt.Errorf("%s: reference: %w", c.name, err)
		}
		diff, err := matrix.MaxAbsDiff(want, got)
		if err != nil {
			return fmt.Errorf("%s: %w", c.name, err)
		}

		status := selectedStyle.Render("ok")
		if float64(diff) > opts.tolerance {
			status = errorStyle.Render("FAIL")
			failed++
		}
		fmt.Fprintf(w, "%-28s max abs diff %.3g  %s\n", c.name, diff, status)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d checks exceeded tolerance %g", failed, len(checks), opts.tolerance)
	}
	return nil
}
