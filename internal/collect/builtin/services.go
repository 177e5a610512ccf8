package builtin

import (
	"context"
	"strings"

	"github.com/ppiankov/hostprint/internal/collect"
)

// SystemServices lists enabled systemd unit files — the canonical Linux
// persistence surface.
type SystemServices struct {
	Run collect.Runner
}

// NewSystemServices returns the system_services collector.
func NewSystemServices() *SystemServices {
	return &SystemServices{Run: collect.RunCommand}
}

// Name implements collect.Collector.
func (c *SystemServices) Name() string { return "system_services" }

// Collect implements collect.Collector. The query is a bounded single
// shot: plain output, no pager, enabled units only.
func (c *SystemServices) Collect(ctx context.Context) (any, error) {
	out, err := c.Run(ctx, "systemctl",
		"list-unit-files", "--state=enabled", "--no-legend", "--no-pager", "--plain")
	if err != nil {
		return nil, err
	}
	return parseUnitFiles(string(out)), nil
}

func parseUnitFiles(content string) map[string]any {
	enabled := []any{}
	for _, line := range strings.Split(content, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		enabled = append(enabled, fields[0])
	}
	return map[string]any{"enabled": enabled}
}
