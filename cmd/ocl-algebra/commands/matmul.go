package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMatmulCmd(a *app) *cobra.Command {
	var rowMajor bool

	cmd := &cobra.Command{
		Use:   "matmul <a> <b>",
		Short: "Multiply two matrices",
		Long: `Multiply two row-major matrices on the device.

The device writes the product column-major: element (r, c) is stored at
index c*rows+r. By default that storage is printed as is; --row-major
converts it first and prints the matrix row by row.`,
		Example: `  ocl-algebra matmul "1,2;3,4" "4;5"
  ocl-algebra matmul --row-major "1,2;3,4;5,6" "7,8;9,10"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			lhs, err := parseMatrixArg("a", args[0])
			if err != nil {
				return err
			}
			rhs, err := parseMatrixArg("b", args[1])
			if err != nil {
				return err
			}

			ctx, err := a.openContext()
			if err != nil {
				return err
			}
			defer closeContext(ctx, &err)

			res, err := ctx.MulMatrixMatrix(lhs, rhs)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			printDevice(w, ctx)
			if rowMajor {
				printMatrix(w, "result", res.RowMajor())
				return nil
			}
			fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("result (%dx%d, column-major)", res.Rows, res.Cols)))
			fmt.Fprintln(w, res.Data)
			return nil
		},
	}

	cmd.Flags().BoolVar(&rowMajor, "row-major", false, "print the product row by row")
	return cmd
}
