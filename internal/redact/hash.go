// Package redact replaces privacy-sensitive leaf values with one-way
// digests before a snapshot is stored or compared. Hashing is deterministic
// and unkeyed so the same real-world value always produces the same digest
// across runs — that is what keeps change detection working on hashed data.
package redact

import (
	"encoding/hex"
	"encoding/json"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/ppiankov/hostprint/internal/config"
	"github.com/ppiankov/hostprint/internal/model"
)

// DigestPrefix marks hashed leaves so they are recognizable in reports.
const DigestPrefix = "sha3:"

// HashReading returns a copy of r with every leaf value matched by a rule
// replaced by its digest. Structure, order, and cardinality are preserved
// exactly: a sequence [a, a, b] becomes [H(a), H(a), H(b)], never length 2.
// Readings without a matching rule pass through unchanged.
func HashReading(r model.Reading, rules []config.HashRule) model.Reading {
	targets := targetsFor(r.Name, rules)
	if targets == nil {
		return r
	}
	out := r
	out.Data = apply(r.Data, "", targets)
	return out
}

// HashSnapshot applies the rule set to every reading and returns a new
// snapshot marked hashed. The input is not modified.
func HashSnapshot(s *model.Snapshot, rules []config.HashRule) *model.Snapshot {
	out := *s
	out.Hashed = true
	out.Readings = make(map[string]model.Reading, len(s.Readings))
	for name, r := range s.Readings {
		out.Readings[name] = HashReading(r, rules)
	}
	return &out
}

// targetsFor collects the rule paths for one collector, or nil when no
// rule names it.
func targetsFor(collector string, rules []config.HashRule) map[string]bool {
	var targets map[string]bool
	for _, rule := range rules {
		if rule.Collector != collector {
			continue
		}
		if targets == nil {
			targets = make(map[string]bool)
		}
		if len(rule.Fields) == 0 {
			// A rule without fields hashes the whole reading.
			targets[""] = true
		}
		for _, f := range rule.Fields {
			targets[f] = true
		}
	}
	return targets
}

// apply walks the value tree. Paths are dot-separated map keys; sequence
// elements inherit their parent's path. Once a path matches, every leaf
// below it is hashed.
func apply(v any, path string, targets map[string]bool) any {
	if targets[path] {
		return hashLeaves(v)
	}
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[k] = apply(child, joinPath(path, k), targets)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = apply(child, path, targets)
		}
		return out
	default:
		return v
	}
}

// hashLeaves replaces every scalar leaf under v with its digest, keeping
// maps and sequences structurally intact.
func hashLeaves(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[k] = hashLeaves(child)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = hashLeaves(child)
		}
		return out
	case nil:
		return nil
	default:
		return Digest(t)
	}
}

// Digest returns the hex SHA3-256 digest of a scalar, prefixed so hashed
// values are recognizable. Strings hash their raw bytes; other scalars
// hash their canonical JSON encoding.
func Digest(v any) string {
	var b []byte
	if s, ok := v.(string); ok {
		b = []byte(s)
	} else {
		b, _ = json.Marshal(v)
	}
	sum := sha3.Sum256(b)
	return DigestPrefix + hex.EncodeToString(sum[:])
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

// IsDigest reports whether a value looks like a hashed leaf.
func IsDigest(v any) bool {
	s, ok := v.(string)
	return ok && strings.HasPrefix(s, DigestPrefix)
}
