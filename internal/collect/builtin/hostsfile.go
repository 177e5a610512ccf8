package builtin

import (
	"context"
	"os"
	"strings"
)

// HostsFile reads static name mappings. Entries are hashed by the default
// sensitivity rules — internal hostnames are topology information — but
// hashing is deterministic, so added or removed entries still surface in
// diffs.
type HostsFile struct {
	Path string
}

// NewHostsFile returns the hosts_file collector reading /etc/hosts.
func NewHostsFile() *HostsFile {
	return &HostsFile{Path: "/etc/hosts"}
}

// Name implements collect.Collector.
func (c *HostsFile) Name() string { return "hosts_file" }

// Collect implements collect.Collector.
func (c *HostsFile) Collect(ctx context.Context) (any, error) {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, err
	}

	entries := []any{}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, strings.Join(strings.Fields(line), " "))
	}
	return map[string]any{"entries": entries}, nil
}
