package model

import (
	"fmt"
	"time"
)

// Severity ranks how security-relevant a detected change is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// severityRank maps severity to a comparable integer. Higher is worse.
var severityRank = map[Severity]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

// Rank returns the severity as a comparable integer (critical highest).
// Unknown severities rank below low.
func (s Severity) Rank() int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return -1
}

// ParseSeverity validates a severity name from configuration or flags.
func ParseSeverity(name string) (Severity, error) {
	s := Severity(name)
	if _, ok := severityRank[s]; !ok {
		return "", fmt.Errorf("unknown severity %q (expected critical, high, medium, or low)", name)
	}
	return s, nil
}

// ChangeKind classifies a single diff entry.
type ChangeKind string

const (
	Added    ChangeKind = "added"
	Removed  ChangeKind = "removed"
	Modified ChangeKind = "modified"
)

// DiffEntry is one field-level change between two snapshots.
type DiffEntry struct {
	Collector string     `json:"collector"`
	Path      string     `json:"path"`
	Kind      ChangeKind `json:"kind"`
	Old       any        `json:"old,omitempty"`
	New       any        `json:"new,omitempty"`
	Severity  Severity   `json:"severity"`
}

// Diff is the ordered result of comparing two snapshots: entries sorted by
// (severity descending, collector, path) plus per-severity counts. A Diff is
// never persisted by the core; it lives only until the caller renders it.
type Diff struct {
	BaselineCreated time.Time        `json:"baseline_created"`
	CurrentCreated  time.Time        `json:"current_created"`
	Hostname        string           `json:"hostname"`
	Hashed          bool             `json:"hashed"`
	Entries         []DiffEntry      `json:"entries"`
	Summary         map[Severity]int `json:"summary"`
}

// HasChanges reports whether the diff contains any entries.
func (d *Diff) HasChanges() bool {
	return len(d.Entries) > 0
}

// MaxSeverity returns the highest severity present in the diff, or
// ("", false) for an empty diff.
func (d *Diff) MaxSeverity() (Severity, bool) {
	if len(d.Entries) == 0 {
		return "", false
	}
	// Entries are sorted severity-descending.
	return d.Entries[0].Severity, true
}
