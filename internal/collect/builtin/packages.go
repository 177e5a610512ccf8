package builtin

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/ppiankov/hostprint/internal/collect"
)

// InstalledPackages lists installed packages via the first package manager
// present on the host: dpkg, then rpm.
type InstalledPackages struct {
	Run collect.Runner
	// LookPath resolves a binary; tests stub it.
	LookPath func(string) (string, error)
}

// NewInstalledPackages returns the installed_packages collector.
func NewInstalledPackages() *InstalledPackages {
	return &InstalledPackages{
		Run:      collect.RunCommand,
		LookPath: exec.LookPath,
	}
}

// Name implements collect.Collector.
func (c *InstalledPackages) Name() string { return "installed_packages" }

// Collect implements collect.Collector.
func (c *InstalledPackages) Collect(ctx context.Context) (any, error) {
	if _, err := c.LookPath("dpkg-query"); err == nil {
		out, err := c.Run(ctx, "dpkg-query", "-W", "-f", "${Package} ${Version}\n")
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"manager":  "dpkg",
			"packages": splitLines(string(out)),
		}, nil
	}
	if _, err := c.LookPath("rpm"); err == nil {
		out, err := c.Run(ctx, "rpm", "-qa")
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"manager":  "rpm",
			"packages": splitLines(string(out)),
		}, nil
	}
	return nil, fmt.Errorf("no supported package manager found (tried dpkg-query, rpm)")
}
