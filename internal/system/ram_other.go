//go:build !linux && !darwin && !windows

package system

import (
	"errors"
	"runtime"
)

func getRAMInfo() (*RAMInfo, error) {
	return nil, errors.New("RAM probe not supported on " + runtime.GOOS)
}
