package builtin

import (
	"context"
	"os"
	"strings"
)

// SSHConfig reads sshd configuration directives and known host keys.
// Remote-access configuration is critical by default: a flipped
// PermitRootLogin or PasswordAuthentication is exactly the kind of change
// this tool exists to catch.
type SSHConfig struct {
	ConfigPath     string
	KnownHostsPath string
}

// NewSSHConfig returns the ssh_config collector reading the system sshd
// configuration.
func NewSSHConfig() *SSHConfig {
	return &SSHConfig{
		ConfigPath:     "/etc/ssh/sshd_config",
		KnownHostsPath: "/etc/ssh/ssh_known_hosts",
	}
}

// Name implements collect.Collector.
func (c *SSHConfig) Name() string { return "ssh_config" }

// Collect implements collect.Collector. A missing known_hosts file is
// normal; a missing sshd_config means no sshd and fails the reading.
func (c *SSHConfig) Collect(ctx context.Context) (any, error) {
	data, err := os.ReadFile(c.ConfigPath)
	if err != nil {
		return nil, err
	}

	out := map[string]any{
		"directives": parseSSHDirectives(string(data)),
	}

	knownHosts := []any{}
	if kh, err := os.ReadFile(c.KnownHostsPath); err == nil {
		for _, line := range strings.Split(string(kh), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			knownHosts = append(knownHosts, line)
		}
	}
	out["known_hosts"] = knownHosts
	return out, nil
}

// parseSSHDirectives maps directive name to value. sshd uses the first
// occurrence of a directive, so later duplicates are ignored.
func parseSSHDirectives(content string) map[string]any {
	directives := map[string]any{}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.SplitN(line, " ", 2)
		if len(fields) != 2 {
			continue
		}
		key := fields[0]
		if _, seen := directives[key]; !seen {
			directives[key] = strings.TrimSpace(fields[1])
		}
	}
	return directives
}
