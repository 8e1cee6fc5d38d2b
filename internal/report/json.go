package report

import (
	"encoding/json"
	"fmt"
	"io"
)

// RenderJSON writes the full Summary as indented JSON. This is the
// machine-readable format: nothing is truncated or rounded.
func RenderJSON(w io.Writer, s *Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
