// Package tool_sysinfo reports host and resource information.
package tool_sysinfo

import (
	"context"
	"runtime"

	"github.com/cadenzr/turnpike/src/toolkit"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

const Name = "system_info"

const description = `Reports information about the host system: operating system,
architecture, CPU count, memory usage, and uptime. Takes no parameters.`

// SysInfoInput is empty; the tool takes no parameters.
type SysInfoInput struct{}

// SysInfoOutput is the response from system_info.
type SysInfoOutput struct {
	Hostname      string  `json:"hostname,omitempty" description:"Host name"`
	OS            string  `json:"os" description:"Operating system"`
	Platform      string  `json:"platform,omitempty" description:"OS distribution"`
	Arch          string  `json:"arch" description:"CPU architecture"`
	CPUCount      int     `json:"cpu_count" description:"Logical CPU count"`
	UptimeSeconds uint64  `json:"uptime_seconds,omitempty" description:"Host uptime in seconds"`
	MemoryTotalMB uint64  `json:"memory_total_mb,omitempty" description:"Total memory in MB"`
	MemoryUsedPct float64 `json:"memory_used_pct,omitempty" description:"Memory usage percentage"`
}

// Tool builds the system_info tool.
func Tool() (toolkit.Tool, error) {
	return toolkit.NewFuncTool(Name, description, handler)
}

func handler(ctx context.Context, _ SysInfoInput) (SysInfoOutput, error) {
	out := SysInfoOutput{
		OS:   runtime.GOOS,
		Arch: runtime.GOARCH,
	}

	// Each lookup is best effort; a source that fails just leaves its
	// fields zero.
	if count, err := cpu.CountsWithContext(ctx, true); err == nil {
		out.CPUCount = count
	} else {
		out.CPUCount = runtime.NumCPU()
	}

	if info, err := host.InfoWithContext(ctx); err == nil {
		out.Hostname = info.Hostname
		out.Platform = info.Platform
		out.UptimeSeconds = info.Uptime
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		out.MemoryTotalMB = vm.Total / (1 << 20)
		out.MemoryUsedPct = vm.UsedPercent
	}

	return out, nil
}
