package builtin

import (
	"context"
	"os"
	"strings"
)

// KernelModules lists loaded kernel modules. A new module appearing
// between snapshots can be a rootkit loading; classified high by default.
type KernelModules struct {
	Path string
}

// NewKernelModules returns the kernel_modules collector reading
// /proc/modules.
func NewKernelModules() *KernelModules {
	return &KernelModules{Path: "/proc/modules"}
}

// Name implements collect.Collector.
func (c *KernelModules) Name() string { return "kernel_modules" }

// Collect implements collect.Collector.
func (c *KernelModules) Collect(ctx context.Context) (any, error) {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, err
	}
	return parseModules(string(data)), nil
}

func parseModules(content string) map[string]any {
	modules := map[string]any{}
	for _, line := range strings.Split(content, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		modules[fields[0]] = map[string]any{
			"size":     fields[1],
			"refcount": fields[2],
		}
	}
	return map[string]any{"modules": modules}
}
