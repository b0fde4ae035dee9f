package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X .../commands.version=..."
var version = "0.1.0"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "ocl-algebra v%s\n", version)
			fmt.Fprintln(w, "Matrix arithmetic on OpenCL devices")
			fmt.Fprintln(w)
			fmt.Fprintf(w, "Go version: %s\n", runtime.Version())
		},
	}
}
