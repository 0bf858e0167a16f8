// This file adds a lightweight linter/validator for Run values. It performs
// static checks and returns a list of issues (errors and warnings) that the
// CLI surfaces before any file is touched.
package config

import (
	"fmt"
	"strings"

	"concat/internal/sniff"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a finding surfaced to users without blocking.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding. Path is a dotted path into the
// configuration (e.g. "schema.policy"); Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error where convenient.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Validate performs static validation of a Run without touching the
// filesystem. Callers decide whether warnings are fatal.
func Validate(r Run) []Issue {
	var issues []Issue

	issues = append(issues, validateInputs(r)...)
	issues = append(issues, validateSchema(r)...)
	issues = append(issues, validateSource(r)...)
	issues = append(issues, validateOutput(r)...)
	issues = append(issues, validateRuntime(r)...)

	return issues
}

func validateInputs(r Run) []Issue {
	var issues []Issue

	modes := 0
	if r.Inputs.Directory != "" {
		modes++
	}
	if len(r.Inputs.Globs) > 0 {
		modes++
	}
	if len(r.Inputs.Files) > 0 {
		modes++
	}
	if r.Inputs.ListPath != "" {
		modes++
	}
	if modes != 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "inputs",
			Message:  "exactly one of directory, glob patterns, input files, or an input list is required",
		})
	}

	return issues
}

func validateSchema(r Run) []Issue {
	var issues []Issue

	switch r.SchemaPolicy {
	case "strict", "union", "intersection":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "schema.policy",
			Message:  fmt.Sprintf("unknown schema policy %q (want strict, union, or intersection)", r.SchemaPolicy),
		})
	}

	switch r.MissingPolicy {
	case "error", "skip", "fillna":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "schema.missing_policy",
			Message:  fmt.Sprintf("unknown missing-column policy %q (want error, skip, or fillna)", r.MissingPolicy),
		})
	}

	if len(r.Columns) > 0 && r.SchemaPolicy != DefaultSchemaPolicy {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "schema.policy",
			Message:  "schema policy is ignored when an explicit column list is given",
		})
	}
	for _, c := range r.Columns {
		if strings.TrimSpace(c) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "schema.columns",
				Message:  "requested column names must not be empty",
			})
			break
		}
	}

	return issues
}

func validateSource(r Run) []Issue {
	var issues []Issue

	switch r.SourceMode {
	case "name", "stem", "path":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.mode",
			Message:  fmt.Sprintf("unknown source-column mode %q (want name, stem, or path)", r.SourceMode),
		})
	}
	if !r.NoSourceColumn && strings.TrimSpace(r.SourceColumn) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.column",
			Message:  "source column name must not be empty while the source column is enabled",
		})
	}

	return issues
}

func validateOutput(r Run) []Issue {
	var issues []Issue

	if strings.TrimSpace(r.OutPath) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "output.path",
			Message:  "output path is required",
		})
	}
	if _, ok := sniff.Supported[r.OutDelim]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "output.delimiter",
			Message:  fmt.Sprintf("unknown output delimiter %q (want comma, tab, semicolon, or pipe)", r.OutDelim),
		})
	}
	if r.Normalize != "" {
		if _, ok := sniff.Supported[r.Normalize]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "normalize",
				Message:  fmt.Sprintf("unknown normalization delimiter %q (want comma, tab, semicolon, or pipe)", r.Normalize),
			})
		}
	}

	return issues
}

func validateRuntime(r Run) []Issue {
	var issues []Issue

	if r.SampleRows <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.sample_rows",
			Message:  fmt.Sprintf("sample rows must be > 0, got %d", r.SampleRows),
		})
	}
	if r.ChunkSize <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.chunk_size",
			Message:  fmt.Sprintf("chunk size must be > 0, got %d", r.ChunkSize),
		})
	}
	if r.Threads <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.threads",
			Message:  fmt.Sprintf("normalization threads must be > 0, got %d", r.Threads),
		})
	}
	if r.ChunkSize > 0 && r.ChunkSize < 1000 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "runtime.chunk_size",
			Message:  "very small chunk sizes increase write overhead; the default is 200000",
		})
	}

	return issues
}
