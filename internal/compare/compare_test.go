package compare

import (
	"errors"
	"testing"
	"time"

	"github.com/ppiankov/hostprint/internal/model"
)

func snap(readings map[string]any) *model.Snapshot {
	s := &model.Snapshot{
		Version:   model.SchemaVersion,
		CreatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Hostname:  "testhost",
		Readings:  make(map[string]model.Reading, len(readings)),
	}
	for name, data := range readings {
		s.Readings[name] = model.Reading{Name: name, Success: true, Data: data}
	}
	return s
}

func mustCompare(t *testing.T, baseline, current *model.Snapshot) *model.Diff {
	t.Helper()
	d, err := Compare(baseline, current, DefaultClassifier())
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestCompareIdenticalIsEmpty(t *testing.T) {
	s := snap(map[string]any{
		"apps": map[string]any{"installed": []any{"Chrome", "Chrome", "Slack"}},
		"network_config": map[string]any{
			"interfaces": []any{map[string]any{"name": "eth0", "mtu": float64(1500)}},
		},
	})

	d := mustCompare(t, s, s)
	if d.HasChanges() {
		t.Errorf("compare(S, S) produced %d entries: %+v", len(d.Entries), d.Entries)
	}
	if len(d.Summary) != 0 {
		t.Errorf("empty diff has nonzero summary: %v", d.Summary)
	}
}

func TestAddedSequenceElementLowSeverity(t *testing.T) {
	baseline := snap(map[string]any{"apps": map[string]any{"apps": []any{"Chrome"}}})
	current := snap(map[string]any{"apps": map[string]any{"apps": []any{"Chrome", "Slack"}}})

	d := mustCompare(t, baseline, current)
	if len(d.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d: %+v", len(d.Entries), d.Entries)
	}
	e := d.Entries[0]
	if e.Kind != model.Added || e.Collector != "apps" || e.New != "Slack" {
		t.Errorf("unexpected entry: %+v", e)
	}
	if e.Severity != model.SeverityLow {
		t.Errorf("non-security collector addition must be low, got %s", e.Severity)
	}
	if d.Summary[model.SeverityLow] != 1 {
		t.Errorf("expected summary {low:1}, got %v", d.Summary)
	}
}

func TestModifiedSecuritySettingIsCritical(t *testing.T) {
	baseline := snap(map[string]any{"security_settings": map[string]any{"firewall_enabled": true}})
	current := snap(map[string]any{"security_settings": map[string]any{"firewall_enabled": false}})

	d := mustCompare(t, baseline, current)
	if len(d.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(d.Entries))
	}
	e := d.Entries[0]
	if e.Kind != model.Modified || e.Severity != model.SeverityCritical {
		t.Errorf("expected critical modification, got %+v", e)
	}
	if e.Old != true || e.New != false {
		t.Errorf("old/new values lost: %+v", e)
	}
}

func TestDuplicatesAreSignificant(t *testing.T) {
	baseline := snap(map[string]any{"apps": map[string]any{"list": []any{"a", "a", "b"}}})
	current := snap(map[string]any{"apps": map[string]any{"list": []any{"a", "b"}}})

	d := mustCompare(t, baseline, current)
	if len(d.Entries) != 1 {
		t.Fatalf("dropped duplicate not detected: %+v", d.Entries)
	}
	e := d.Entries[0]
	if e.Kind != model.Removed || e.Old != "a" {
		t.Errorf("expected removal of surplus duplicate, got %+v", e)
	}
}

func TestReorderingSurfacesAsOneModification(t *testing.T) {
	baseline := snap(map[string]any{"apps": map[string]any{"list": []any{"a", "b", "c"}}})
	current := snap(map[string]any{"apps": map[string]any{"list": []any{"c", "b", "a"}}})

	d := mustCompare(t, baseline, current)
	if len(d.Entries) != 1 {
		t.Fatalf("expected exactly one reorder entry, got %d: %+v", len(d.Entries), d.Entries)
	}
	e := d.Entries[0]
	if e.Kind != model.Modified || e.Path != "list" {
		t.Errorf("unexpected reorder entry: %+v", e)
	}
}

func TestEqualLengthContainerSequencesAlignPositionally(t *testing.T) {
	baseline := snap(map[string]any{"network_config": map[string]any{
		"interfaces": []any{
			map[string]any{"name": "eth0", "mtu": float64(1500)},
			map[string]any{"name": "eth1", "mtu": float64(1500)},
		},
	}})
	current := snap(map[string]any{"network_config": map[string]any{
		"interfaces": []any{
			map[string]any{"name": "eth0", "mtu": float64(9000)},
			map[string]any{"name": "eth1", "mtu": float64(1500)},
		},
	}})

	d := mustCompare(t, baseline, current)
	if len(d.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d: %+v", len(d.Entries), d.Entries)
	}
	e := d.Entries[0]
	if e.Path != "interfaces[0].mtu" || e.Kind != model.Modified {
		t.Errorf("positional recursion failed: %+v", e)
	}
}

func TestMapKeyPresence(t *testing.T) {
	baseline := snap(map[string]any{"dns_config": map[string]any{
		"nameservers": map[string]any{"primary": "1.1.1.1", "old": "9.9.9.9"},
	}})
	current := snap(map[string]any{"dns_config": map[string]any{
		"nameservers": map[string]any{"primary": "1.1.1.1", "new": "8.8.8.8"},
	}})

	d := mustCompare(t, baseline, current)
	if len(d.Entries) != 2 {
		t.Fatalf("expected added+removed, got %+v", d.Entries)
	}
	var kinds []model.ChangeKind
	for _, e := range d.Entries {
		kinds = append(kinds, e.Kind)
	}
	// dns_config is unclassified: removal ranks medium, addition low.
	if d.Entries[0].Kind != model.Removed || d.Entries[0].Severity != model.SeverityMedium {
		t.Errorf("removal should rank medium and sort first: %+v (kinds %v)", d.Entries[0], kinds)
	}
	if d.Entries[1].Kind != model.Added || d.Entries[1].Severity != model.SeverityLow {
		t.Errorf("addition should rank low: %+v", d.Entries[1])
	}
}

func TestCollectorAddedAndRemoved(t *testing.T) {
	baseline := snap(map[string]any{
		"kernel_modules": map[string]any{"modules": map[string]any{}},
		"apps":           map[string]any{"list": []any{}},
	})
	current := snap(map[string]any{
		"apps":            map[string]any{"list": []any{}},
		"scheduled_tasks": map[string]any{"crontab": []any{}},
	})

	d := mustCompare(t, baseline, current)
	if len(d.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %+v", d.Entries)
	}
	// Both collectors are classed high; sort falls back to collector name.
	if d.Entries[0].Collector != "kernel_modules" || d.Entries[0].Kind != model.Removed {
		t.Errorf("expected kernel_modules removal first: %+v", d.Entries[0])
	}
	if d.Entries[1].Collector != "scheduled_tasks" || d.Entries[1].Kind != model.Added {
		t.Errorf("expected scheduled_tasks addition: %+v", d.Entries[1])
	}
}

func TestHashedVsUnhashedRefused(t *testing.T) {
	baseline := snap(map[string]any{"apps": map[string]any{}})
	current := snap(map[string]any{"apps": map[string]any{}})
	current.Hashed = true

	_, err := Compare(baseline, current, nil)
	var schemaErr *model.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Errorf("expected SchemaError, got %v", err)
	}
}

func TestVersionMismatchRefused(t *testing.T) {
	baseline := snap(map[string]any{"apps": map[string]any{}})
	current := snap(map[string]any{"apps": map[string]any{}})
	current.Version = model.SchemaVersion + 1

	_, err := Compare(baseline, current, nil)
	var schemaErr *model.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Errorf("expected SchemaError, got %v", err)
	}
}

func TestDiffIsDeterministic(t *testing.T) {
	baseline := snap(map[string]any{
		"security_settings": map[string]any{"aslr": "2", "selinux": "enforcing"},
		"user_accounts":     map[string]any{"accounts": []any{"root", "daemon"}},
		"apps":              map[string]any{"list": []any{"x", "y"}},
	})
	current := snap(map[string]any{
		"security_settings": map[string]any{"aslr": "0", "selinux": "permissive"},
		"user_accounts":     map[string]any{"accounts": []any{"root", "daemon", "eve"}},
		"apps":              map[string]any{"list": []any{"y", "z"}},
	})

	first := mustCompare(t, baseline, current)
	for i := 0; i < 10; i++ {
		again := mustCompare(t, baseline, current)
		if len(again.Entries) != len(first.Entries) {
			t.Fatalf("entry count varies: %d vs %d", len(again.Entries), len(first.Entries))
		}
		for j := range first.Entries {
			if first.Entries[j] != again.Entries[j] {
				t.Fatalf("entry %d varies across runs: %+v vs %+v", j, first.Entries[j], again.Entries[j])
			}
		}
	}

	// Severity ordering: the critical entries come first.
	if first.Entries[0].Collector != "security_settings" {
		t.Errorf("critical entries must sort first: %+v", first.Entries[0])
	}
}

func TestSortWithinSeverityByCollectorAndPath(t *testing.T) {
	baseline := snap(map[string]any{
		"bravo": map[string]any{"b": "1", "a": "1"},
		"alpha": map[string]any{"z": "1"},
	})
	current := snap(map[string]any{
		"bravo": map[string]any{"b": "2", "a": "2"},
		"alpha": map[string]any{"z": "2"},
	})

	d := mustCompare(t, baseline, current)
	order := make([]string, len(d.Entries))
	for i, e := range d.Entries {
		order[i] = e.Collector + "/" + e.Path
	}
	want := []string{"alpha/z", "bravo/a", "bravo/b"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, order)
		}
	}
}

func TestFailedReadingDiffsAgainstData(t *testing.T) {
	baseline := snap(map[string]any{"apps": map[string]any{"list": []any{"x"}}})
	current := snap(nil)
	current.Readings["apps"] = model.Reading{Name: "apps", Success: false, Error: "timed out"}

	d := mustCompare(t, baseline, current)
	if len(d.Entries) == 0 {
		t.Fatal("data disappearing behind a failure must still surface")
	}
}
