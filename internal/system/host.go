// Package system reports facts about the machine the host driver runs on.
package system

import (
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sys/cpu"
)

// HostInfo describes the CPU side of the machine
type HostInfo struct {
	OS       string
	Arch     string
	CPUs     int
	Features []string
	RAM      *RAMInfo
}

// RAMInfo contains information about system memory
type RAMInfo struct {
	TotalBytes     int64
	AvailableBytes int64
}

// GetRAMInfo returns information about system RAM
func GetRAMInfo() (*RAMInfo, error) {
	return getRAMInfo()
}

// GetHostInfo collects the host description. A RAM probe failure leaves
// RAM nil rather than failing the whole report.
func GetHostInfo() HostInfo {
	info := HostInfo{
		OS:       runtime.GOOS,
		Arch:     runtime.GOARCH,
		CPUs:     runtime.NumCPU(),
		Features: CPUFeatures(),
	}
	if ram, err := getRAMInfo(); err == nil {
		info.RAM = ram
	}
	return info
}

// CPUFeatures lists the SIMD extensions relevant to float32 kernels that
// the running CPU supports.
func CPUFeatures() []string {
	var feats []string
	add := func(ok bool, name string) {
		if ok {
			feats = append(feats, name)
		}
	}

	switch runtime.GOARCH {
	case "amd64", "386":
		add(cpu.X86.HasSSE41, "sse4.1")
		add(cpu.X86.HasAVX, "avx")
		add(cpu.X86.HasAVX2, "avx2")
		add(cpu.X86.HasFMA, "fma")
		add(cpu.X86.HasAVX512F, "avx512f")
	case "arm64":
		add(cpu.ARM64.HasASIMD, "asimd")
		add(cpu.ARM64.HasFPHP, "fphp")
		add(cpu.ARM64.HasSVE, "sve")
	}
	return feats
}

func (h HostInfo) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s/%s, %d CPUs", h.OS, h.Arch, h.CPUs)
	if len(h.Features) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(h.Features, " "))
	}
	if h.RAM != nil {
		fmt.Fprintf(&b, ", %s RAM (%s available)", FormatBytes(h.RAM.TotalBytes), FormatBytes(h.RAM.AvailableBytes))
	}
	return b.String()
}

// FormatBytes formats bytes as human-readable string
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
