package builtin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ppiankov/hostprint/internal/collect"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRegisterHonorsDisabledList(t *testing.T) {
	reg := collect.NewRegistry()
	Register(reg, []string{"installed_packages", "listening_ports"})

	if _, ok := reg.Get("installed_packages"); ok {
		t.Error("disabled collector registered")
	}
	if _, ok := reg.Get("host_info"); !ok {
		t.Error("expected host_info registered")
	}
	if reg.Len() != len(Descriptions)-2 {
		t.Errorf("expected %d collectors, got %d", len(Descriptions)-2, reg.Len())
	}
}

func TestEveryCollectorHasDescription(t *testing.T) {
	reg := collect.NewRegistry()
	Register(reg, nil)
	for _, name := range reg.Names() {
		if Descriptions[name] == "" {
			t.Errorf("collector %s missing description", name)
		}
	}
}

func TestUserAccountsParsesPasswd(t *testing.T) {
	c := &UserAccounts{Path: writeFixture(t, "passwd",
		"root:x:0:0:root:/root:/bin/bash\n"+
			"# comment\n"+
			"daemon:x:1:1:daemon:/usr/sbin:/usr/sbin/nologin\n"+
			"malformed-line\n")}

	data, err := c.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	accounts := data.(map[string]any)["accounts"].([]any)
	if len(accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(accounts))
	}
	root := accounts[0].(map[string]any)
	if root["username"] != "root" || root["uid"] != "0" || root["shell"] != "/bin/bash" {
		t.Errorf("unexpected root entry: %v", root)
	}
}

func TestDNSConfigParsesResolvConf(t *testing.T) {
	c := &DNSConfig{Path: writeFixture(t, "resolv.conf",
		"# generated\n"+
			"nameserver 1.1.1.1\n"+
			"nameserver 8.8.8.8\n"+
			"search corp.example internal\n"+
			"options ndots:2 timeout:1\n")}

	data, err := c.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	got := data.(map[string]any)
	if len(got["nameservers"].([]any)) != 2 {
		t.Errorf("expected 2 nameservers: %v", got["nameservers"])
	}
	if len(got["search"].([]any)) != 2 {
		t.Errorf("expected 2 search domains: %v", got["search"])
	}
	if len(got["options"].([]any)) != 2 {
		t.Errorf("expected 2 options: %v", got["options"])
	}
}

func TestHostsFileKeepsDuplicateEntries(t *testing.T) {
	c := &HostsFile{Path: writeFixture(t, "hosts",
		"127.0.0.1 localhost\n"+
			"# comment\n"+
			"10.0.0.5   db\n"+
			"10.0.0.5   db\n")}

	data, err := c.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	entries := data.(map[string]any)["entries"].([]any)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries (duplicates preserved), got %d", len(entries))
	}
	if entries[1] != "10.0.0.5 db" {
		t.Errorf("whitespace not normalized: %q", entries[1])
	}
}

func TestSSHConfigFirstDirectiveWins(t *testing.T) {
	cfg := writeFixture(t, "sshd_config",
		"PermitRootLogin no\n"+
			"#PermitRootLogin yes\n"+
			"PermitRootLogin yes\n"+
			"PasswordAuthentication no\n")
	kh := writeFixture(t, "known_hosts", "db ssh-ed25519 AAAA\n")

	c := &SSHConfig{ConfigPath: cfg, KnownHostsPath: kh}
	data, err := c.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	got := data.(map[string]any)
	directives := got["directives"].(map[string]any)
	if directives["PermitRootLogin"] != "no" {
		t.Errorf("first directive must win, got %v", directives["PermitRootLogin"])
	}
	if len(got["known_hosts"].([]any)) != 1 {
		t.Errorf("known_hosts not read: %v", got["known_hosts"])
	}
}

func TestKernelModulesParsed(t *testing.T) {
	c := &KernelModules{Path: writeFixture(t, "modules",
		"nf_tables 372736 100 nft_compat, Live 0x0000000000000000\n"+
			"overlay 190464 3 -, Live 0x0000000000000000\n")}

	data, err := c.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	modules := data.(map[string]any)["modules"].(map[string]any)
	if len(modules) != 2 {
		t.Fatalf("expected 2 modules, got %d", len(modules))
	}
	nft := modules["nf_tables"].(map[string]any)
	if nft["size"] != "372736" || nft["refcount"] != "100" {
		t.Errorf("unexpected module entry: %v", nft)
	}
}

func TestSecuritySettingsReportsAbsentKnobs(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "kernel"), 0700); err != nil {
		t.Fatal(err)
	}
	os.WriteFile(filepath.Join(root, "kernel", "randomize_va_space"), []byte("2\n"), 0600)

	c := &SecuritySettings{
		SysctlRoot:         root,
		SELinuxEnforcePath: filepath.Join(root, "no-selinux"),
	}
	data, err := c.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	got := data.(map[string]any)
	if got["aslr"] != "2" {
		t.Errorf("expected aslr 2, got %v", got["aslr"])
	}
	if got["ptrace_scope"] != "absent" {
		t.Errorf("missing knob must read absent, got %v", got["ptrace_scope"])
	}
	if got["selinux"] != "absent" {
		t.Errorf("missing selinux must read absent, got %v", got["selinux"])
	}
}

func TestScheduledTasksReadsCrontabAndDropins(t *testing.T) {
	dir := t.TempDir()
	crontab := filepath.Join(dir, "crontab")
	os.WriteFile(crontab, []byte("# m h dom mon dow user command\n0 2 * * * root /usr/local/bin/backup\n"), 0600)

	cronD := filepath.Join(dir, "cron.d")
	os.MkdirAll(cronD, 0700)
	os.WriteFile(filepath.Join(cronD, "certbot"), []byte("0 */12 * * * root certbot renew\n"), 0600)

	c := &ScheduledTasks{CrontabPath: crontab, CronDDir: cronD}
	data, err := c.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	got := data.(map[string]any)
	if len(got["crontab"].([]any)) != 1 {
		t.Errorf("crontab entry missing: %v", got["crontab"])
	}
	dropins := got["cron_d"].(map[string]any)
	if len(dropins["certbot"].([]any)) != 1 {
		t.Errorf("cron.d entry missing: %v", dropins)
	}
}

func TestSystemServicesParsesUnitList(t *testing.T) {
	c := &SystemServices{Run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte("sshd.service enabled enabled\ncron.service enabled enabled\n"), nil
	}}

	data, err := c.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	enabled := data.(map[string]any)["enabled"].([]any)
	if len(enabled) != 2 || enabled[0] != "sshd.service" {
		t.Errorf("unexpected unit list: %v", enabled)
	}
}

func TestInstalledPackagesFallsBackToRPM(t *testing.T) {
	c := &InstalledPackages{
		LookPath: func(bin string) (string, error) {
			if bin == "rpm" {
				return "/usr/bin/rpm", nil
			}
			return "", fmt.Errorf("not found")
		},
		Run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			if name != "rpm" {
				t.Errorf("expected rpm invocation, got %s", name)
			}
			return []byte("openssh-server-9.6p1\nkernel-6.8.0\n"), nil
		},
	}

	data, err := c.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	got := data.(map[string]any)
	if got["manager"] != "rpm" {
		t.Errorf("expected rpm manager, got %v", got["manager"])
	}
	if len(got["packages"].([]any)) != 2 {
		t.Errorf("unexpected package list: %v", got["packages"])
	}
}

func TestInstalledPackagesNoManagerFails(t *testing.T) {
	c := &InstalledPackages{
		LookPath: func(string) (string, error) { return "", fmt.Errorf("not found") },
		Run:      func(ctx context.Context, name string, args ...string) ([]byte, error) { return nil, nil },
	}
	if _, err := c.Collect(context.Background()); err == nil {
		t.Error("expected error when no package manager is present")
	}
}
