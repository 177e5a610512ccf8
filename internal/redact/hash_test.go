package redact

import (
	"reflect"
	"testing"

	"github.com/ppiankov/hostprint/internal/config"
	"github.com/ppiankov/hostprint/internal/model"
)

func reading(name string, data any) model.Reading {
	return model.Reading{Name: name, Success: true, Data: data}
}

func TestDuplicatesKeepMultiplicity(t *testing.T) {
	r := reading("hosts_file", map[string]any{
		"entries": []any{"a", "a", "b"},
	})
	rules := []config.HashRule{{Collector: "hosts_file", Fields: []string{"entries"}}}

	got := HashReading(r, rules)
	entries := got.Data.(map[string]any)["entries"].([]any)

	if len(entries) != 3 {
		t.Fatalf("expected length 3 preserved, got %d", len(entries))
	}
	if entries[0] != entries[1] {
		t.Error("equal inputs must produce equal digests")
	}
	if entries[0] == entries[2] {
		t.Error("different inputs must produce different digests")
	}
	if entries[0] != Digest("a") {
		t.Errorf("expected H(a), got %v", entries[0])
	}
}

func TestHashingIsDeterministicAcrossCalls(t *testing.T) {
	r := reading("ssh_config", map[string]any{"known_hosts": []any{"10.0.0.1 ssh-ed25519 AAAA"}})
	rules := []config.HashRule{{Collector: "ssh_config", Fields: []string{"known_hosts"}}}

	a := HashReading(r, rules)
	b := HashReading(r, rules)
	if !reflect.DeepEqual(a.Data, b.Data) {
		t.Error("hashing the same reading twice produced different results")
	}
}

func TestUnmatchedLeavesPassThrough(t *testing.T) {
	r := reading("network_config", map[string]any{
		"ip_addresses": []any{"192.168.1.5"},
		"mtu":          float64(1500),
	})
	rules := []config.HashRule{{Collector: "network_config", Fields: []string{"ip_addresses"}}}

	got := HashReading(r, rules).Data.(map[string]any)
	if got["mtu"] != float64(1500) {
		t.Errorf("unmatched leaf changed: %v", got["mtu"])
	}
	if !IsDigest(got["ip_addresses"].([]any)[0]) {
		t.Error("matched leaf not hashed")
	}
}

func TestNestedStructurePreserved(t *testing.T) {
	r := reading("network_config", map[string]any{
		"routes": []any{
			map[string]any{"dest": "default", "via": "192.168.1.1"},
			map[string]any{"dest": "10.0.0.0/8", "via": "10.0.0.1"},
		},
	})
	rules := []config.HashRule{{Collector: "network_config", Fields: []string{"routes"}}}

	routes := HashReading(r, rules).Data.(map[string]any)["routes"].([]any)
	if len(routes) != 2 {
		t.Fatalf("expected 2 routes, got %d", len(routes))
	}
	first := routes[0].(map[string]any)
	if len(first) != 2 {
		t.Fatalf("map cardinality changed: %v", first)
	}
	if !IsDigest(first["dest"]) || !IsDigest(first["via"]) {
		t.Error("nested leaves not hashed")
	}
}

func TestCollectorWithoutRuleUntouched(t *testing.T) {
	data := map[string]any{"apps": []any{"Chrome"}}
	r := reading("apps", data)
	rules := []config.HashRule{{Collector: "hosts_file", Fields: []string{"entries"}}}

	got := HashReading(r, rules)
	if !reflect.DeepEqual(got.Data, data) {
		t.Error("reading without a rule was modified")
	}
}

func TestEmptyFieldListHashesWholeReading(t *testing.T) {
	r := reading("secrets", map[string]any{"token": "abc", "nested": map[string]any{"key": "xyz"}})
	rules := []config.HashRule{{Collector: "secrets"}}

	got := HashReading(r, rules).Data.(map[string]any)
	if !IsDigest(got["token"]) {
		t.Error("top-level leaf not hashed")
	}
	if !IsDigest(got["nested"].(map[string]any)["key"]) {
		t.Error("nested leaf not hashed")
	}
}

func TestHashSnapshotSetsFlagAndKeepsInput(t *testing.T) {
	s := &model.Snapshot{
		Version: model.SchemaVersion,
		Readings: map[string]model.Reading{
			"hosts_file": reading("hosts_file", map[string]any{"entries": []any{"10.0.0.1 db"}}),
		},
	}
	rules := []config.HashRule{{Collector: "hosts_file", Fields: []string{"entries"}}}

	out := HashSnapshot(s, rules)
	if !out.Hashed {
		t.Error("hashed flag not set")
	}
	if s.Hashed {
		t.Error("input snapshot mutated")
	}
	orig := s.Readings["hosts_file"].Data.(map[string]any)["entries"].([]any)[0]
	if orig != "10.0.0.1 db" {
		t.Error("input reading mutated")
	}
}

func TestDigestFormat(t *testing.T) {
	d := Digest("a")
	if !IsDigest(d) {
		t.Errorf("digest %q missing prefix", d)
	}
	// sha3: + 64 hex chars
	if len(d) != len(DigestPrefix)+64 {
		t.Errorf("unexpected digest length %d", len(d))
	}
	// A string hashes its raw bytes, not its quoted JSON form.
	if Digest("a") == Digest(`"a"`) {
		t.Error("raw and quoted forms must hash differently")
	}
}
