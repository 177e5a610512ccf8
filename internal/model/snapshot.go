// Package model defines the core data types shared across the pipeline:
// Readings, Snapshots, Diffs, severities, and the error taxonomy.
package model

import (
	"encoding/json"
	"sort"
	"time"
)

// SchemaVersion is the snapshot schema version written into every artifact.
// Loading or comparing a snapshot with a different version is refused.
const SchemaVersion = 1

// Reading is the output of one collector. Once returned to the assembler
// it is immutable.
type Reading struct {
	Name    string `json:"name"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Snapshot is a canonical, ordered collection of named Readings representing
// host state at one point in time. Readings are keyed by collector name;
// names are unique and stable across runs — they are the join key for
// comparison. The Hashed flag marks snapshots whose sensitive fields were
// replaced by digests; hashed and unhashed snapshots must never be compared.
type Snapshot struct {
	Version   int                `json:"version"`
	CreatedAt time.Time          `json:"created_at"`
	Hostname  string             `json:"hostname"`
	Hashed    bool               `json:"hashed"`
	Readings  map[string]Reading `json:"readings"`
}

// CollectorNames returns the snapshot's collector names in canonical
// (sorted) order.
func (s *Snapshot) CollectorNames() []string {
	names := make([]string, 0, len(s.Readings))
	for name := range s.Readings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Failures returns the number of readings recorded with success=false.
func (s *Snapshot) Failures() int {
	return len(s.FailedNames())
}

// FailedNames returns the names of failed readings in sorted order.
func (s *Snapshot) FailedNames() []string {
	var names []string
	for name, r := range s.Readings {
		if !r.Success {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Marshal serializes the snapshot to canonical JSON. Map keys are emitted
// in sorted order by encoding/json, so two snapshots with equal content
// produce byte-identical output regardless of assembly order.
func (s *Snapshot) Marshal() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, &SerializationError{Op: "marshal snapshot", Err: err}
	}
	return data, nil
}

// UnmarshalSnapshot parses canonical snapshot JSON.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, &SerializationError{Op: "unmarshal snapshot", Err: err}
	}
	return &s, nil
}
