// Package collect runs collectors under bounded timeouts on a worker pool
// and assembles their readings into a canonical snapshot.
package collect

import (
	"context"
	"fmt"
	"sort"
)

// Collector is one named source of host state. Collect must honor the
// context deadline and return all failure modes as errors — it must never
// panic. The assembler converts errors into failed Readings.
type Collector interface {
	Name() string
	Collect(ctx context.Context) (any, error)
}

// Registry is a caller-owned set of collectors keyed by name. Registering
// a duplicate name replaces the previous entry, so a collector can never
// run twice in one assembly. There is no package-global registry.
type Registry struct {
	collectors map[string]Collector
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{collectors: make(map[string]Collector)}
}

// Register adds a collector, replacing any previous one with the same name.
func (r *Registry) Register(c Collector) {
	r.collectors[c.Name()] = c
}

// Remove drops a collector by name.
func (r *Registry) Remove(name string) {
	delete(r.collectors, name)
}

// Get returns the collector registered under name.
func (r *Registry) Get(name string) (Collector, bool) {
	c, ok := r.collectors[name]
	return c, ok
}

// Names returns registered collector names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.collectors))
	for name := range r.collectors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered collectors.
func (r *Registry) Len() int {
	return len(r.collectors)
}

// Subset returns a new registry narrowed to only (all when empty) minus
// exclude. Unknown names in either list are an error so typos do not
// silently thin a snapshot. The receiver is not modified.
func (r *Registry) Subset(only, exclude []string) (*Registry, error) {
	for _, name := range append(append([]string{}, only...), exclude...) {
		if _, ok := r.collectors[name]; !ok {
			return nil, fmt.Errorf("unknown collector %q", name)
		}
	}

	sub := NewRegistry()
	if len(only) > 0 {
		for _, name := range only {
			sub.collectors[name] = r.collectors[name]
		}
	} else {
		for name, c := range r.collectors {
			sub.collectors[name] = c
		}
	}
	for _, name := range exclude {
		delete(sub.collectors, name)
	}
	return sub, nil
}

// Func adapts a plain function into a Collector.
type Func struct {
	name string
	fn   func(ctx context.Context) (any, error)
}

// NewFunc wraps fn as a named collector.
func NewFunc(name string, fn func(ctx context.Context) (any, error)) Func {
	return Func{name: name, fn: fn}
}

// Name implements Collector.
func (f Func) Name() string { return f.name }

// Collect implements Collector.
func (f Func) Collect(ctx context.Context) (any, error) { return f.fn(ctx) }
