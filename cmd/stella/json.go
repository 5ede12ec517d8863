package main

import (
	"encoding/json"
	"os"
)

// writeJSON prints a report value as indented JSON on stdout. Callers
// normalize empty collections themselves (an empty catalog listing renders
// as [], not null).
func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
