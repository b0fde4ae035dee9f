package system

import (
	"fmt"

	"golang.org/x/sys/unix"
)

func getRAMInfo() (*RAMInfo, error) {
	total, err := unix.SysctlUint64("hw.memsize")
	if err != nil {
		return nil, fmt.Errorf("failed to get total memory: %w", err)
	}

	free, err := unix.SysctlUint32("vm.page_free_count")
	if err != nil {
		return nil, fmt.Errorf("failed to get free page count: %w", err)
	}

	return &RAMInfo{
		TotalBytes:     int64(total),
		AvailableBytes: int64(free) * int64(unix.Getpagesize()),
	}, nil
}
