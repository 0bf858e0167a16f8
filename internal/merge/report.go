package merge

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"concat/internal/config"
	"concat/internal/schema"
	"concat/internal/sniff"
)

// printDryRun reports the resolved schema and per-file decisions without
// performing any write. The layout mirrors what a real run would do so a dry
// run surfaces what would fail or be skipped.
func printDryRun(w io.Writer, cfg config.Run, ext string, plan *schema.Plan, ann Annotation) {
	fmt.Fprintln(w, "dry-run summary:")
	fmt.Fprintf(w, "  files: %d\n", len(plan.Files))
	fmt.Fprintf(w, "  extension: .%s\n", ext)

	if len(plan.Files) > 0 {
		fmt.Fprintf(w, "  unified delimiter: %s\n", sniff.Name(plan.Files[0].File.Delimiter))
	}

	if len(cfg.Columns) > 0 {
		fmt.Fprintf(w, "  columns mode: [%s]\n", strings.Join(plan.Output, ", "))
		fmt.Fprintf(w, "  missing-policy: %s\n", cfg.MissingPolicy)
		fmt.Fprintf(w, "  case-insensitive: %v\n", cfg.CaseInsensitive)
	} else {
		fmt.Fprintf(w, "  schema policy: %s\n", cfg.SchemaPolicy)
		fmt.Fprintf(w, "  columns: [%s]\n", strings.Join(plan.Output, ", "))
	}

	for _, fp := range plan.Files {
		switch {
		case fp.Skip:
			fmt.Fprintf(w, "  file %s: SKIP (missing [%s])\n",
				filepath.Base(fp.File.Path), strings.Join(fp.Missing, ", "))
		case len(fp.Missing) > 0:
			fmt.Fprintf(w, "  file %s: fill [%s]\n",
				filepath.Base(fp.File.Path), strings.Join(fp.Missing, ", "))
		default:
			fmt.Fprintf(w, "  file %s: ok\n", filepath.Base(fp.File.Path))
		}
	}

	state := "ON"
	if !ann.Enabled {
		state = "OFF"
	}
	fmt.Fprintf(w, "  source column: %s | name=%q | mode=%s\n", state, ann.Column, ann.Mode)
	fmt.Fprintf(w, "  output: %s (delim=%s, header=%v)\n", cfg.OutPath, cfg.OutDelim, !cfg.NoHeader)
}
