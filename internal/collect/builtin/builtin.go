// Package builtin provides the standard collector suite: bounded,
// single-shot readers of host configuration. File-backed collectors take
// their source paths as fields and command-backed ones take a Runner, so
// tests can point them at fixtures.
//
// Every collector returns JSON-shaped data (maps, slices, scalars) so
// snapshots serialize canonically and diff structurally.
package builtin

import (
	"github.com/ppiankov/hostprint/internal/collect"
)

// Descriptions maps collector names to one-line summaries, for the CLI
// collector listing and the MCP collector_list tool.
var Descriptions = map[string]string{
	"host_info":          "hostname, platform, kernel version, boot time",
	"user_accounts":      "local accounts from /etc/passwd",
	"network_config":     "interfaces, ARP cache, routing table",
	"dns_config":         "resolvers and search domains from /etc/resolv.conf",
	"hosts_file":         "static name mappings from /etc/hosts",
	"ssh_config":         "sshd directives and known host keys",
	"kernel_modules":     "loaded kernel modules from /proc/modules",
	"system_services":    "enabled systemd unit files",
	"listening_ports":    "TCP/UDP sockets in LISTEN state",
	"installed_packages": "installed packages via dpkg or rpm",
	"security_settings":  "kernel hardening knobs and SELinux state",
	"scheduled_tasks":    "system crontab and /etc/cron.d entries",
}

// Register populates a caller-owned registry with every built-in collector
// not named in disabled.
func Register(reg *collect.Registry, disabled []string) {
	skip := make(map[string]bool, len(disabled))
	for _, name := range disabled {
		skip[name] = true
	}

	all := []collect.Collector{
		NewHostInfo(),
		NewUserAccounts(),
		NewNetworkConfig(),
		NewDNSConfig(),
		NewHostsFile(),
		NewSSHConfig(),
		NewKernelModules(),
		NewSystemServices(),
		NewListeningPorts(),
		NewInstalledPackages(),
		NewSecuritySettings(),
		NewScheduledTasks(),
	}
	for _, c := range all {
		if !skip[c.Name()] {
			reg.Register(c)
		}
	}
}
