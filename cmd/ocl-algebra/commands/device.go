package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/timo-42/ocl-algebra/internal/gpu"
	"github.com/timo-42/ocl-algebra/internal/system"
)

func newDeviceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "device",
		Short: "List compute devices",
		Long: `List every platform and device the configured driver can see.

The device that would be selected (the one with the most compute units,
earliest on ties) is marked. Host CPU information is shown as well.`,
		Args: cobra.NoArgs,
		RunE: a.runDevice,
	}
}

func (a *app) runDevice(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()

	driver, err := gpu.LookupDriver(a.cfg.Device.Driver)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Compute devices (driver: %s)", driver.Name())))

	candidates, err := gpu.ListDevices(driver)
	if err != nil {
		fmt.Fprintf(w, "%s %v\n", errorStyle.Render("no platforms:"), err)
	}

	infos := make([]gpu.DeviceInfo, len(candidates))
	for i, c := range candidates {
		infos[i] = c.Info
	}
	best, ok := gpu.BestDevice(infos)

	if len(infos) == 0 {
		fmt.Fprintln(w, dimStyle.Render("  none"))
	}
	for i, info := range infos {
		line := fmt.Sprintf("  [%d] %s / %s  %s  %d compute units", i, info.Platform, info.Name, info.Type, info.ComputeUnits)
		if info.GlobalMemory > 0 {
			line += "  " + system.FormatBytes(info.GlobalMemory)
		}
		if i == best {
			fmt.Fprintln(w, selectedStyle.Render(line+"  (selected)"))
			continue
		}
		fmt.Fprintln(w, line)
	}
	if !ok {
		fmt.Fprintln(w, errorStyle.Render(gpu.ErrNoDevice.Error()))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Host:"), system.GetHostInfo())
	return nil
}
