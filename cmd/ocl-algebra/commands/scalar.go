package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newScalarCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "scalar <matrix> <scalar>",
		Short:   "Multiply a matrix by a scalar",
		Example: `  ocl-algebra scalar "1,2;3,4" 1.5`,
		Args:    cobra.ExactArgs(2),
		RunE:    a.runScalar,
	}
}

func (a *app) runScalar(cmd *cobra.Command, args []string) (err error) {
	m, err := parseMatrixArg("matrix", args[0])
	if err != nil {
		return err
	}
	s, err := strconv.ParseFloat(args[1], 32)
	if err != nil {
		return fmt.Errorf("scalar: %w", err)
	}

	ctx, err := a.openContext()
	if err != nil {
		return err
	}
	defer closeContext(ctx, &err)

	res, err := ctx.MulMatrixScalar(m, float32(s))
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	printDevice(w, ctx)
	printMatrix(w, "result", res)
	return nil
}
