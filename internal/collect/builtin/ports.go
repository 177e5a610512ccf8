package builtin

import (
	"context"
	"fmt"
	"sort"

	gopsnet "github.com/shirou/gopsutil/v3/net"
)

// ListeningPorts reports sockets accepting connections. A port opening
// between snapshots is a newly exposed service.
type ListeningPorts struct{}

// NewListeningPorts returns the listening_ports collector.
func NewListeningPorts() *ListeningPorts { return &ListeningPorts{} }

// Name implements collect.Collector.
func (c *ListeningPorts) Name() string { return "listening_ports" }

// Collect implements collect.Collector.
func (c *ListeningPorts) Collect(ctx context.Context) (any, error) {
	conns, err := gopsnet.ConnectionsWithContext(ctx, "inet")
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var ports []string
	for _, conn := range conns {
		if conn.Status != "LISTEN" {
			continue
		}
		entry := fmt.Sprintf("%s:%d", conn.Laddr.IP, conn.Laddr.Port)
		if !seen[entry] {
			seen[entry] = true
			ports = append(ports, entry)
		}
	}
	sort.Strings(ports)

	return map[string]any{"listening": toAny(ports)}, nil
}
