package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/ppiankov/hostprint/internal/model"
)

// severityOrder fixes the rendering order of the grouped report.
var severityOrder = []model.Severity{
	model.SeverityCritical,
	model.SeverityHigh,
	model.SeverityMedium,
	model.SeverityLow,
}

var severityColor = map[model.Severity]*color.Color{
	model.SeverityCritical: color.New(color.FgRed, color.Bold),
	model.SeverityHigh:     color.New(color.FgYellow),
	model.SeverityMedium:   color.New(color.FgCyan),
	model.SeverityLow:      color.New(color.Reset),
}

// Text writes a severity-grouped human-readable report. Colors are
// applied when w is a terminal; fatih/color disables them otherwise.
func Text(w io.Writer, d *model.Diff) error {
	if !d.HasChanges() {
		_, err := fmt.Fprintln(w, "No changes detected.")
		return err
	}

	fmt.Fprintf(w, "Host %s — %d change(s) between %s and %s\n",
		d.Hostname, len(d.Entries),
		d.BaselineCreated.Format("2006-01-02 15:04:05"),
		d.CurrentCreated.Format("2006-01-02 15:04:05"))
	if d.Hashed {
		fmt.Fprintln(w, "Sensitive fields are hashed; values shown as digests.")
	}
	fmt.Fprintln(w)

	for _, sev := range severityOrder {
		var entries []model.DiffEntry
		for _, e := range d.Entries {
			if e.Severity == sev {
				entries = append(entries, e)
			}
		}
		if len(entries) == 0 {
			continue
		}

		c := severityColor[sev]
		c.Fprintf(w, "%s (%d)\n", labelFor(sev), len(entries))
		for _, e := range entries {
			fmt.Fprintf(w, "  %-9s %s\n", e.Kind, entryLocation(e))
			switch e.Kind {
			case model.Added:
				fmt.Fprintf(w, "            + %s\n", renderValue(e.New))
			case model.Removed:
				fmt.Fprintf(w, "            - %s\n", renderValue(e.Old))
			case model.Modified:
				fmt.Fprintf(w, "            - %s\n", renderValue(e.Old))
				fmt.Fprintf(w, "            + %s\n", renderValue(e.New))
			}
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Summary: %d critical, %d high, %d medium, %d low\n",
		d.Summary[model.SeverityCritical], d.Summary[model.SeverityHigh],
		d.Summary[model.SeverityMedium], d.Summary[model.SeverityLow])
	return nil
}

func labelFor(s model.Severity) string {
	switch s {
	case model.SeverityCritical:
		return "CRITICAL"
	case model.SeverityHigh:
		return "HIGH"
	case model.SeverityMedium:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

func entryLocation(e model.DiffEntry) string {
	if e.Path == "" {
		return e.Collector
	}
	return e.Collector + ": " + e.Path
}

// renderValue keeps scalar values readable and compacts containers.
func renderValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "(none)"
	case string:
		return t
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		const maxLen = 120
		if len(data) > maxLen {
			return string(data[:maxLen]) + "…"
		}
		return string(data)
	}
}
