package system

import (
	"os"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Memory is a snapshot of this process and the host.
type Memory struct {
	RSS       uint64
	Total     uint64
	Available uint64
}

// ProcessRSS returns the resident set size of the current process.
func ProcessRSS() (uint64, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, err
	}
	info, err := p.MemoryInfo()
	if err != nil {
		return 0, err
	}
	return info.RSS, nil
}

// MemoryStats combines ProcessRSS with host totals.
func MemoryStats() (Memory, error) {
	rss, err := ProcessRSS()
	if err != nil {
		return Memory{}, err
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		return Memory{RSS: rss}, err
	}
	return Memory{RSS: rss, Total: vm.Total, Available: vm.Available}, nil
}

// MiB converts bytes for log lines.
func MiB(b uint64) float64 { return float64(b) / (1 << 20) }
