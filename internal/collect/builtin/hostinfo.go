package builtin

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/host"
)

// HostInfo reports platform identity: hostname, OS, kernel, boot time.
type HostInfo struct{}

// NewHostInfo returns the host_info collector.
func NewHostInfo() *HostInfo { return &HostInfo{} }

// Name implements collect.Collector.
func (c *HostInfo) Name() string { return "host_info" }

// Collect implements collect.Collector.
func (c *HostInfo) Collect(ctx context.Context) (any, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"hostname":         info.Hostname,
		"os":               info.OS,
		"platform":         info.Platform,
		"platform_version": info.PlatformVersion,
		"kernel_version":   info.KernelVersion,
		"kernel_arch":      info.KernelArch,
		"boot_time":        time.Unix(int64(info.BootTime), 0).UTC().Format(time.RFC3339),
	}, nil
}
