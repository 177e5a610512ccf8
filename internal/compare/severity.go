package compare

import (
	"sort"
	"strings"

	"github.com/ppiankov/hostprint/internal/config"
	"github.com/ppiankov/hostprint/internal/model"
)

// Classifier assigns a severity to each diff entry. The table is policy
// loaded from configuration, not hardcoded mechanism. Precedence per
// entry: explicit path override (longest matching prefix wins), collector
// classed critical, collector classed high, kind Removed, default.
type Classifier struct {
	critical  map[string]bool
	high      map[string]bool
	overrides []pathOverride
	removed   model.Severity
	fallback  model.Severity
}

type pathOverride struct {
	collector string
	path      string
	severity  model.Severity
}

// NewClassifier builds a classifier from a severity table. Invalid
// severity names are rejected.
func NewClassifier(cfg config.SeverityConfig) (*Classifier, error) {
	removed, err := model.ParseSeverity(cfg.Removed)
	if err != nil {
		return nil, err
	}
	fallback, err := model.ParseSeverity(cfg.Default)
	if err != nil {
		return nil, err
	}

	c := &Classifier{
		critical: make(map[string]bool, len(cfg.Critical)),
		high:     make(map[string]bool, len(cfg.High)),
		removed:  removed,
		fallback: fallback,
	}
	for _, name := range cfg.Critical {
		c.critical[name] = true
	}
	for _, name := range cfg.High {
		c.high[name] = true
	}

	for _, o := range cfg.Overrides {
		sev, err := model.ParseSeverity(o.Severity)
		if err != nil {
			return nil, err
		}
		c.overrides = append(c.overrides, pathOverride{
			collector: o.Collector,
			path:      o.Path,
			severity:  sev,
		})
	}
	// Longest path first so the first match is the most specific.
	sort.SliceStable(c.overrides, func(i, j int) bool {
		return len(c.overrides[i].path) > len(c.overrides[j].path)
	})
	return c, nil
}

// DefaultClassifier builds the classifier from the built-in table.
func DefaultClassifier() *Classifier {
	c, err := NewClassifier(config.DefaultConfig().Severity)
	if err != nil {
		// The built-in table is validated by tests; this cannot happen at
		// runtime.
		panic(err)
	}
	return c
}

// Classify returns the severity for one change.
func (c *Classifier) Classify(collector, path string, kind model.ChangeKind) model.Severity {
	for _, o := range c.overrides {
		if o.collector != collector {
			continue
		}
		// An empty override path covers the whole collector.
		if o.path == "" || o.path == path ||
			strings.HasPrefix(path, o.path+".") || strings.HasPrefix(path, o.path+"[") {
			return o.severity
		}
	}
	if c.critical[collector] {
		return model.SeverityCritical
	}
	if c.high[collector] {
		return model.SeverityHigh
	}
	if kind == model.Removed {
		return c.removed
	}
	return c.fallback
}
