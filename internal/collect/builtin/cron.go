package builtin

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScheduledTasks reads the system crontab and /etc/cron.d drop-ins.
// Cron entries are a persistence mechanism; classified high by default.
type ScheduledTasks struct {
	CrontabPath string
	CronDDir    string
}

// NewScheduledTasks returns the scheduled_tasks collector.
func NewScheduledTasks() *ScheduledTasks {
	return &ScheduledTasks{
		CrontabPath: "/etc/crontab",
		CronDDir:    "/etc/cron.d",
	}
}

// Name implements collect.Collector.
func (c *ScheduledTasks) Name() string { return "scheduled_tasks" }

// Collect implements collect.Collector. Either source may be absent; an
// empty result is a valid reading, not a failure.
func (c *ScheduledTasks) Collect(ctx context.Context) (any, error) {
	out := map[string]any{
		"crontab": []any{},
		"cron_d":  map[string]any{},
	}

	if data, err := os.ReadFile(c.CrontabPath); err == nil {
		out["crontab"] = cronLines(string(data))
	}

	dropins := map[string]any{}
	if entries, err := os.ReadDir(c.CronDDir); err == nil {
		var names []string
		for _, e := range entries {
			if !e.IsDir() {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)
		for _, name := range names {
			data, err := os.ReadFile(filepath.Join(c.CronDDir, name))
			if err != nil {
				continue
			}
			dropins[name] = cronLines(string(data))
		}
	}
	out["cron_d"] = dropins
	return out, nil
}

// cronLines strips comments and blanks, keeping entry order: cron entries
// at different positions are different state.
func cronLines(content string) []any {
	lines := []any{}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
