package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/timo-42/ocl-algebra/matrix"
)

func newDemoCmd(a *app) *cobra.Command {
	var size, show int

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Multiply an NxN matrix of 3s by an Nx1 vector of 4s",
		Long: `Multiply an NxN matrix filled with 3.0 by an Nx1 vector filled with 4.0.
Every element of the product is 12*N.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if size < 1 {
				return fmt.Errorf("--size must be positive, got %d", size)
			}

			ctx, err := a.openContext()
			if err != nil {
				return err
			}
			defer closeContext(ctx, &err)

			lhs := matrix.Fill(size, size, 3)
			rhs := matrix.Fill(size, 1, 4)

			start := time.Now()
			res, err := ctx.MulMatrixMatrix(lhs, rhs)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			w := cmd.OutOrStdout()
			printDevice(w, ctx)

			want := float32(12 * size)
			wrong := 0
			for _, v := range res.Data {
				if v != want {
					wrong++
				}
			}

			head := res.Data[:min(max(show, 0), len(res.Data))]
			fmt.Fprintf(w, "%s %v\n", labelStyle.Render("result:"), head)
			fmt.Fprintf(w, "%d values in %s, %d differ from %g\n", len(res.Data), elapsed.Round(time.Microsecond), wrong, want)
			return nil
		},
	}

	cmd.Flags().IntVar(&size, "size", 1024, "matrix dimension N")
	cmd.Flags().IntVar(&show, "show", 8, "number of result values to print")
	return cmd
}
