package gpu

import (
	"github.com/pkg/errors"

	"github.com/timo-42/ocl-algebra/internal/logging"
)

// ErrNoDevice is returned when no device reports a positive compute-unit
// count. It is an expected outcome on hosts without an accelerator.
var ErrNoDevice = errors.New("gpu: no compute device found")

// Candidate is one enumerated device together with its capability record.
type Candidate struct {
	Device Device
	Info   DeviceInfo
}

// BestDevice returns the index of the device with the strictly largest
// compute-unit count. Ties keep the earliest entry. ok is false when no
// entry has more than zero compute units.
func BestDevice(infos []DeviceInfo) (idx int, ok bool) {
	idx = -1
	best := 0
	for i, info := range infos {
		if info.ComputeUnits > best {
			best = info.ComputeUnits
			idx = i
		}
	}
	return idx, idx >= 0
}

// ListDevices enumerates every device of every platform of the driver, in
// enumeration order. Platforms whose device listing fails are skipped.
func ListDevices(driver Driver) ([]Candidate, error) {
	platforms, err := driver.Platforms()
	if err != nil {
		return nil, errors.Wrapf(err, "%s: list platforms", driver.Name())
	}

	var out []Candidate
	for _, p := range platforms {
		devices, err := p.Devices()
		if err != nil {
			logging.Warnf("%s: skipping platform %q: %v", driver.Name(), p.Name(), err)
			continue
		}
		for _, d := range devices {
			out = append(out, Candidate{Device: d, Info: d.Info()})
		}
	}
	return out, nil
}

// SelectBestDevice picks the device with the most compute units across
// every platform of the driver. Only capability metadata is queried.
func SelectBestDevice(driver Driver) (Device, error) {
	candidates, err := ListDevices(driver)
	if err != nil {
		// A missing ICD loader or "platform not found" means no accelerator.
		return nil, errors.Wrap(ErrNoDevice, err.Error())
	}

	infos := make([]DeviceInfo, len(candidates))
	for i, c := range candidates {
		infos[i] = c.Info
		logging.WithDevice(c.Info.Platform, c.Info.Name).Debugf("found %s device with %d compute units", c.Info.Type, c.Info.ComputeUnits)
	}

	idx, ok := BestDevice(infos)
	if !ok {
		return nil, errors.Wrapf(ErrNoDevice, "%s: %d devices enumerated", driver.Name(), len(candidates))
	}

	logging.WithDevice(infos[idx].Platform, infos[idx].Name).Debugf("selected device with %d compute units", infos[idx].ComputeUnits)
	return candidates[idx].Device, nil
}
