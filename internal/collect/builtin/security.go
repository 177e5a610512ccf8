package builtin

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// securityKnobs are the /proc/sys hardening settings worth watching. Keys
// are reading field names, values are paths relative to the sysctl root.
var securityKnobs = map[string]string{
	"aslr":                "kernel/randomize_va_space",
	"ptrace_scope":        "kernel/yama/ptrace_scope",
	"kptr_restrict":       "kernel/kptr_restrict",
	"unprivileged_bpf":    "kernel/unprivileged_bpf_disabled",
	"ip_forward":          "net/ipv4/ip_forward",
	"accept_source_route": "net/ipv4/conf/all/accept_source_route",
	"unprivileged_userns": "kernel/unprivileged_userns_clone",
}

// SecuritySettings reads kernel hardening knobs and the SELinux enforce
// state. Any change here is critical by default.
type SecuritySettings struct {
	// SysctlRoot is /proc/sys; tests point it at a fixture tree.
	SysctlRoot string
	// SELinuxEnforcePath is /sys/fs/selinux/enforce.
	SELinuxEnforcePath string
}

// NewSecuritySettings returns the security_settings collector.
func NewSecuritySettings() *SecuritySettings {
	return &SecuritySettings{
		SysctlRoot:         "/proc/sys",
		SELinuxEnforcePath: "/sys/fs/selinux/enforce",
	}
}

// Name implements collect.Collector.
func (c *SecuritySettings) Name() string { return "security_settings" }

// Collect implements collect.Collector. Knobs absent on this kernel are
// reported as "absent" rather than omitted, so their appearance or
// disappearance across kernels is itself a visible change.
func (c *SecuritySettings) Collect(ctx context.Context) (any, error) {
	out := map[string]any{}
	for field, rel := range securityKnobs {
		data, err := os.ReadFile(filepath.Join(c.SysctlRoot, rel))
		if err != nil {
			out[field] = "absent"
			continue
		}
		out[field] = strings.TrimSpace(string(data))
	}

	if data, err := os.ReadFile(c.SELinuxEnforcePath); err == nil {
		if strings.TrimSpace(string(data)) == "1" {
			out["selinux"] = "enforcing"
		} else {
			out["selinux"] = "permissive"
		}
	} else {
		out["selinux"] = "absent"
	}
	return out, nil
}
