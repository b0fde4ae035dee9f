package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/timo-42/ocl-algebra/internal/config"
	"github.com/timo-42/ocl-algebra/internal/logging"
)

// app carries the state shared by every subcommand of one invocation.
type app struct {
	cfgFile string
	verbose bool
	v       *viper.Viper
	cfg     *config.Config
}

// NewRootCommand builds the full command tree.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "ocl-algebra",
		Short: "Matrix arithmetic on OpenCL devices",
		Long: `ocl-algebra multiplies float32 matrices on the OpenCL device with the
most compute units.

Matrices are written as rows separated by ';' and columns by ',', for
example "1,2;3,4". Use --driver host to run the same kernels on the CPU
when no OpenCL runtime is installed.`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: a.load,
	}

	// Global flags
	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.ocl-algebra/config.yaml)")
	pf.String("driver", "", "compute driver: opencl or host (default opencl)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	// Bind flags to viper
	_ = a.v.BindPFlag("device.driver", pf.Lookup("driver"))

	root.AddCommand(
		newDeviceCmd(a),
		newScalarCmd(a),
		newMatmulCmd(a),
		newVerifyCmd(a),
		newDemoCmd(a),
		newVersionCmd(),
		newCompletionCmd(),
	)
	return root
}

// Execute runs the root command
func Execute() error {
	return NewRootCommand().Execute()
}

// load reads the configuration and sets up logging before any subcommand
// runs.
func (a *app) load(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadWith(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Init(cfg.Logging.Level, cfg.Logging.File, cfg.Logging.Console); err != nil {
		return err
	}
	if used := a.v.ConfigFileUsed(); used != "" {
		logging.Debugf("using config file %s", used)
	}

	a.cfg = cfg
	return nil
}
