// Package sysmon samples host resource usage
package sysmon

import (
	"context"
	"fmt"
	"sync"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
)

const bytesPerMB = 1024 * 1024

// Snapshot is one host reading. Percentages are in [0, 100]; NetworkIO is the
// megabytes sent and received since the previous snapshot.
type Snapshot struct {
	CPUUsage    float64
	MemoryUsage float64
	DiskUsage   float64
	NetworkIO   float64
}

// Sampler reads host usage through gopsutil
type Sampler struct {
	diskPath string

	mu      sync.Mutex
	lastNet uint64
	primed  bool
}

// NewSampler creates a sampler reporting disk usage for diskPath
func NewSampler(diskPath string) *Sampler {
	if diskPath == "" {
		diskPath = "/"
	}
	return &Sampler{diskPath: diskPath}
}

// Sample takes a snapshot. The first call reports zero network traffic.
func (s *Sampler) Sample(ctx context.Context) (*Snapshot, error) {
	cpuPercents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return nil, fmt.Errorf("failed to read cpu usage: %w", err)
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read memory usage: %w", err)
	}

	du, err := disk.UsageWithContext(ctx, s.diskPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read disk usage for %s: %w", s.diskPath, err)
	}

	snap := &Snapshot{
		MemoryUsage: vm.UsedPercent,
		DiskUsage:   du.UsedPercent,
	}
	if len(cpuPercents) > 0 {
		snap.CPUUsage = cpuPercents[0]
	}

	counters, err := net.IOCountersWithContext(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to read network counters: %w", err)
	}
	if len(counters) > 0 {
		snap.NetworkIO = s.networkDelta(counters[0].BytesSent + counters[0].BytesRecv)
	}

	return snap, nil
}

func (s *Sampler) networkDelta(total uint64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var delta uint64
	if s.primed && total >= s.lastNet {
		delta = total - s.lastNet
	}
	s.lastNet = total
	s.primed = true
	return float64(delta) / bytesPerMB
}
