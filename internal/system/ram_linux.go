package system

import (
	"fmt"

	"golang.org/x/sys/unix"
)

func getRAMInfo() (*RAMInfo, error) {
	var si unix.Sysinfo_t
	if err := unix.Sysinfo(&si); err != nil {
		return nil, fmt.Errorf("sysinfo: %w", err)
	}

	unit := uint64(si.Unit)
	if unit == 0 {
		unit = 1
	}
	total := uint64(si.Totalram) * unit
	if total == 0 {
		return nil, fmt.Errorf("could not determine total RAM")
	}

	return &RAMInfo{
		TotalBytes:     int64(total),
		AvailableBytes: int64((uint64(si.Freeram) + uint64(si.Bufferram)) * unit),
	}, nil
}
