package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/timo-42/ocl-algebra/compute"
	"github.com/timo-42/ocl-algebra/matrix"
)

// openContext binds a compute context on the configured driver.
func (a *app) openContext() (*compute.Context, error) {
	ctx, err := compute.NewContext(compute.WithDriver(a.cfg.Device.Driver))
	if errors.Is(err, compute.ErrNoDevice) {
		return nil, fmt.Errorf("%w\nNo OpenCL device is available. Install an OpenCL runtime or use --driver host", err)
	}
	if err != nil {
		return nil, err
	}
	return ctx, nil
}

// closeContext closes ctx and reports a release failure unless the command
// already failed.
func closeContext(ctx *compute.Context, err *error) {
	if cerr := ctx.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}

func printDevice(w io.Writer, ctx *compute.Context) {
	fmt.Fprintln(w, dimStyle.Render("device: "+ctx.Device().String()))
}

func printMatrix(w io.Writer, title string, m matrix.Matrix) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s (%dx%d)", title, m.Rows, m.Cols)))
	fmt.Fprintln(w, matrix.Format(m))
}

func parseMatrixArg(name, s string) (matrix.Matrix, error) {
	m, err := matrix.Parse(s)
	if err != nil {
		return matrix.Matrix{}, fmt.Errorf("%s: %w", name, err)
	}
	return m, nil
}
