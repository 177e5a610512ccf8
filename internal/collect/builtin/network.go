package builtin

import (
	"context"
	"os"
	"sort"
	"strings"

	gopsnet "github.com/shirou/gopsutil/v3/net"

	"github.com/ppiankov/hostprint/internal/collect"
)

// NetworkConfig reports interfaces with their addresses, the ARP cache,
// and the routing table. IP addresses, ARP entries, and routes are hashed
// by the default sensitivity rules.
type NetworkConfig struct {
	ARPPath string
	Run     collect.Runner
}

// NewNetworkConfig returns the network_config collector.
func NewNetworkConfig() *NetworkConfig {
	return &NetworkConfig{
		ARPPath: "/proc/net/arp",
		Run:     collect.RunCommand,
	}
}

// Name implements collect.Collector.
func (c *NetworkConfig) Name() string { return "network_config" }

// Collect implements collect.Collector. Interface enumeration failing is
// fatal for the reading; ARP cache and routes are best-effort extras on
// platforms that lack them.
func (c *NetworkConfig) Collect(ctx context.Context) (any, error) {
	ifaces, err := gopsnet.InterfacesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	interfaces := []any{}
	ipAddresses := []any{}
	for _, iface := range ifaces {
		addrs := []any{}
		for _, a := range iface.Addrs {
			addrs = append(addrs, a.Addr)
			ipAddresses = append(ipAddresses, a.Addr)
		}
		interfaces = append(interfaces, map[string]any{
			"name":  iface.Name,
			"mtu":   iface.MTU,
			"flags": toAny(iface.Flags),
			"addrs": addrs,
		})
	}

	out := map[string]any{
		"interfaces":   interfaces,
		"ip_addresses": ipAddresses,
	}

	if arp, err := os.ReadFile(c.ARPPath); err == nil {
		out["arp_cache"] = parseARP(string(arp))
	}
	if routes, err := c.Run(ctx, "ip", "route", "show"); err == nil {
		out["routes"] = splitLines(string(routes))
	}
	return out, nil
}

// parseARP extracts ip/mac pairs from /proc/net/arp, sorted for stability.
func parseARP(content string) []any {
	lines := strings.Split(content, "\n")
	var entries []string
	for i, line := range lines {
		if i == 0 { // header
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		entries = append(entries, fields[0]+" "+fields[3])
	}
	sort.Strings(entries)
	return toAny(entries)
}

func splitLines(s string) []any {
	var out []any
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	if out == nil {
		out = []any{}
	}
	return out
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
