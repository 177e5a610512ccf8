package builtin

import (
	"context"
	"os"
	"strings"
)

// DNSConfig reads resolver configuration. A changed nameserver can mean
// DNS hijacking, so the default rules classify this collector's removals
// and modifications above baseline.
type DNSConfig struct {
	Path string
}

// NewDNSConfig returns the dns_config collector reading /etc/resolv.conf.
func NewDNSConfig() *DNSConfig {
	return &DNSConfig{Path: "/etc/resolv.conf"}
}

// Name implements collect.Collector.
func (c *DNSConfig) Name() string { return "dns_config" }

// Collect implements collect.Collector.
func (c *DNSConfig) Collect(ctx context.Context) (any, error) {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, err
	}
	return parseResolvConf(string(data)), nil
}

func parseResolvConf(content string) map[string]any {
	nameservers := []any{}
	search := []any{}
	options := []any{}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		switch fields[0] {
		case "nameserver":
			nameservers = append(nameservers, fields[1])
		case "search", "domain":
			for _, d := range fields[1:] {
				search = append(search, d)
			}
		case "options":
			for _, o := range fields[1:] {
				options = append(options, o)
			}
		}
	}

	return map[string]any{
		"nameservers": nameservers,
		"search":      search,
		"options":     options,
	}
}
