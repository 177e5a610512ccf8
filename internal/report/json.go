// Package report renders a Diff for humans and machines. Rendering is
// pure formatting: nothing here mutates or persists the diff.
package report

import (
	"encoding/json"

	"github.com/ppiankov/hostprint/internal/model"
)

// JSON renders the diff as stable machine-readable JSON: entries in diff
// order, summary block, input metadata.
func JSON(d *model.Diff) ([]byte, error) {
	out, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, &model.SerializationError{Op: "render diff json", Err: err}
	}
	return append(out, '\n'), nil
}
