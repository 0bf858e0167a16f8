package merge

import (
	"path/filepath"
	"strings"
)

// Annotation describes the source-identifying column injected into every
// output row: whether it is enabled, what the column is called, and what it
// holds. Immutable for the run.
type Annotation struct {
	Enabled bool
	Column  string
	Mode    string // "name", "stem", or "path"
}

// Value computes the literal written into the source column for every row of
// the file at path: base name with extension ("name", the default), base name
// without extension ("stem"), or the full path ("path").
func (a Annotation) Value(path string) string {
	switch a.Mode {
	case "stem":
		base := filepath.Base(path)
		return strings.TrimSuffix(base, filepath.Ext(base))
	case "path":
		return path
	default:
		return filepath.Base(path)
	}
}
