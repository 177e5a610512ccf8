package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTemp(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "state", "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestRecordAndList(t *testing.T) {
	c := openTemp(t)
	ctx := context.Background()

	first := Entry{
		Path:       "/tmp/a.json",
		CreatedAt:  time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		Hostname:   "web-01",
		Hashed:     true,
		Digest:     "sha3:aaaa",
		SizeBytes:  2048,
		Collectors: []string{"apps", "host_info"},
	}
	second := Entry{
		Path:      "/tmp/b.json",
		CreatedAt: time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC),
		Hostname:  "web-01",
		Encrypted: true,
		Digest:    "sha3:bbbb",
		SizeBytes: 4096,
		Failures:  []string{"ssh_config"},
	}

	id1, err := c.Record(ctx, first)
	if err != nil {
		t.Fatal(err)
	}
	if id1 == "" {
		t.Fatal("expected an assigned id")
	}
	if _, err := c.Record(ctx, second); err != nil {
		t.Fatal(err)
	}

	entries, err := c.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	// Newest first.
	if entries[0].Path != "/tmp/b.json" || entries[1].Path != "/tmp/a.json" {
		t.Errorf("wrong order: %s, %s", entries[0].Path, entries[1].Path)
	}
	got := entries[1]
	if got.ID != id1 || !got.Hashed || got.Encrypted || got.SizeBytes != 2048 {
		t.Errorf("round trip lost fields: %+v", got)
	}
	if len(got.Collectors) != 2 || got.Collectors[0] != "apps" {
		t.Errorf("collectors lost: %v", got.Collectors)
	}
	if !got.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("timestamp drift: %v vs %v", got.CreatedAt, first.CreatedAt)
	}
	if len(entries[0].Failures) != 1 || entries[0].Failures[0] != "ssh_config" {
		t.Errorf("failures lost: %v", entries[0].Failures)
	}
}

func TestListEmptyCatalog(t *testing.T) {
	c := openTemp(t)
	entries, err := c.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("fresh catalog should be empty, got %d entries", len(entries))
	}
}

func TestReopenKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	c, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Record(context.Background(), Entry{
		Path: "/tmp/x.json", CreatedAt: time.Now().UTC(), Hostname: "h", Digest: "sha3:cc",
	}); err != nil {
		t.Fatal(err)
	}
	c.Close()

	again, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer again.Close()
	entries, err := again.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("rows lost across reopen: %d", len(entries))
	}
}
