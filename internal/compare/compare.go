// Package compare computes the structural diff between two snapshots and
// classifies every change by security severity.
//
// The diff is sequence-aware: order and multiplicity are significant.
// Duplicates are never collapsed and reorderings are never silently
// absorbed — both surface as explicit entries. The alignment rules are
// fixed, so identical inputs always produce identical diffs.
package compare

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ppiankov/hostprint/internal/model"
)

// Compare diffs current against baseline and returns severity-classified
// entries sorted by (severity descending, collector, path). Comparing a
// hashed snapshot against an unhashed one, or snapshots of different
// schema versions, is a SchemaError — never a best-effort diff.
func Compare(baseline, current *model.Snapshot, cls *Classifier) (*model.Diff, error) {
	if baseline.Version != current.Version {
		return nil, &model.SchemaError{
			Reason: fmt.Sprintf("schema version %d vs %d", baseline.Version, current.Version),
		}
	}
	if baseline.Hashed != current.Hashed {
		return nil, &model.SchemaError{
			Reason: "cannot compare a hashed snapshot against an unhashed one",
		}
	}
	if cls == nil {
		cls = DefaultClassifier()
	}

	var entries []model.DiffEntry
	add := func(collector, path string, kind model.ChangeKind, oldV, newV any) {
		entries = append(entries, model.DiffEntry{
			Collector: collector,
			Path:      path,
			Kind:      kind,
			Old:       oldV,
			New:       newV,
			Severity:  cls.Classify(collector, path, kind),
		})
	}

	for _, name := range unionNames(baseline, current) {
		base, inBase := baseline.Readings[name]
		cur, inCur := current.Readings[name]
		switch {
		case !inBase:
			add(name, "", model.Added, nil, cur.Data)
		case !inCur:
			add(name, "", model.Removed, base.Data, nil)
		default:
			diffValue(name, "", base.Data, cur.Data, add)
		}
	}

	sortEntries(entries)

	diff := &model.Diff{
		BaselineCreated: baseline.CreatedAt,
		CurrentCreated:  current.CreatedAt,
		Hostname:        current.Hostname,
		Hashed:          current.Hashed,
		Entries:         entries,
		Summary:         make(map[model.Severity]int),
	}
	for _, e := range entries {
		diff.Summary[e.Severity]++
	}
	return diff, nil
}

type addFunc func(collector, path string, kind model.ChangeKind, oldV, newV any)

// diffValue recursively diffs two values at the same path.
func diffValue(collector, path string, oldV, newV any, add addFunc) {
	oldMap, oldIsMap := oldV.(map[string]any)
	newMap, newIsMap := newV.(map[string]any)
	if oldIsMap && newIsMap {
		diffMap(collector, path, oldMap, newMap, add)
		return
	}

	oldSeq, oldIsSeq := oldV.([]any)
	newSeq, newIsSeq := newV.([]any)
	if oldIsSeq && newIsSeq {
		diffSeq(collector, path, oldSeq, newSeq, add)
		return
	}

	// Scalars, nils, or mismatched shapes: compare canonical encodings.
	if canon(oldV) != canon(newV) {
		add(collector, path, model.Modified, oldV, newV)
	}
}

// diffMap walks the union of keys in sorted order.
func diffMap(collector, path string, oldM, newM map[string]any, add addFunc) {
	keys := make([]string, 0, len(oldM)+len(newM))
	seen := make(map[string]bool, len(oldM)+len(newM))
	for k := range oldM {
		keys = append(keys, k)
		seen[k] = true
	}
	for k := range newM {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		childPath := joinPath(path, k)
		oldV, inOld := oldM[k]
		newV, inNew := newM[k]
		switch {
		case !inOld:
			add(collector, childPath, model.Added, nil, newV)
		case !inNew:
			add(collector, childPath, model.Removed, oldV, nil)
		default:
			diffValue(collector, childPath, oldV, newV, add)
		}
	}
}

// diffSeq compares sequences with order and multiplicity significant.
// Alignment rules, applied in order:
//
//  1. Canonically equal sequences produce nothing.
//  2. Equal-length sequences of containers align positionally and recurse
//     per index.
//  3. If the element multisets are equal but the order differs, the
//     reordering is one Modified entry carrying both full sequences.
//  4. Otherwise surplus accounting: occurrences are matched by canonical
//     value, each surplus element in current is an Added entry (walked in
//     current order, indexed by current position), each surplus in
//     baseline is a Removed entry (baseline order, baseline position).
func diffSeq(collector, path string, oldS, newS []any, add addFunc) {
	if canon(oldS) == canon(newS) {
		return
	}

	if len(oldS) == len(newS) && allContainers(oldS) && allContainers(newS) {
		for i := range oldS {
			diffValue(collector, indexPath(path, i), oldS[i], newS[i], add)
		}
		return
	}

	oldCounts := countValues(oldS)
	newCounts := countValues(newS)
	if multisetsEqual(oldCounts, newCounts) {
		add(collector, path, model.Modified, oldS, newS)
		return
	}

	remaining := make(map[string]int, len(oldCounts))
	for k, v := range oldCounts {
		remaining[k] = v
	}
	for i, v := range newS {
		c := canon(v)
		if remaining[c] > 0 {
			remaining[c]--
			continue
		}
		add(collector, indexPath(path, i), model.Added, nil, v)
	}

	remaining = make(map[string]int, len(newCounts))
	for k, v := range newCounts {
		remaining[k] = v
	}
	for i, v := range oldS {
		c := canon(v)
		if remaining[c] > 0 {
			remaining[c]--
			continue
		}
		add(collector, indexPath(path, i), model.Removed, v, nil)
	}
}

// canon returns the canonical JSON encoding of a value. Map keys are
// sorted by encoding/json, so equal content always encodes identically.
func canon(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		// Snapshot data is JSON-shaped by construction; anything else is
		// compared by its formatted representation.
		return fmt.Sprintf("%#v", v)
	}
	return string(data)
}

func countValues(s []any) map[string]int {
	counts := make(map[string]int, len(s))
	for _, v := range s {
		counts[canon(v)]++
	}
	return counts
}

func multisetsEqual(a, b map[string]int) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

func allContainers(s []any) bool {
	for _, v := range s {
		switch v.(type) {
		case map[string]any, []any:
		default:
			return false
		}
	}
	return len(s) > 0
}

func unionNames(a, b *model.Snapshot) []string {
	seen := make(map[string]bool, len(a.Readings)+len(b.Readings))
	names := make([]string, 0, len(a.Readings)+len(b.Readings))
	for name := range a.Readings {
		names = append(names, name)
		seen[name] = true
	}
	for name := range b.Readings {
		if !seen[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// sortEntries orders by severity descending, then collector, path, and
// kind so that equal inputs always render identically.
func sortEntries(entries []model.DiffEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() > b.Severity.Rank()
		}
		if a.Collector != b.Collector {
			return a.Collector < b.Collector
		}
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.Kind < b.Kind
	})
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func indexPath(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}
