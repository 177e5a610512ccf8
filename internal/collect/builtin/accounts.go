package builtin

import (
	"context"
	"os"
	"strings"
)

// UserAccounts reads local accounts from the passwd database. Account
// additions are a classic persistence mechanism, so this collector is
// classified high severity by default.
type UserAccounts struct {
	// Path is the passwd file; tests point it at a fixture.
	Path string
}

// NewUserAccounts returns the user_accounts collector reading /etc/passwd.
func NewUserAccounts() *UserAccounts {
	return &UserAccounts{Path: "/etc/passwd"}
}

// Name implements collect.Collector.
func (c *UserAccounts) Name() string { return "user_accounts" }

// Collect implements collect.Collector.
func (c *UserAccounts) Collect(ctx context.Context) (any, error) {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, err
	}
	return parsePasswd(string(data)), nil
}

func parsePasswd(content string) map[string]any {
	accounts := []any{}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ":")
		if len(fields) < 7 {
			continue
		}
		accounts = append(accounts, map[string]any{
			"username": fields[0],
			"uid":      fields[2],
			"gid":      fields[3],
			"home":     fields[5],
			"shell":    fields[6],
		})
	}
	return map[string]any{"accounts": accounts}
}
