// Package config defines the run configuration for the merge tool and a
// lint-style validator over it.
//
// The configuration is a plain typed struct built by the CLI layer from
// flags; keeping it explicit and dependency-free lets the merge driver and
// tests construct runs directly.
package config

import "concat/internal/datasource/file"

// Schema policies and missing-column policies accepted by Run. The schema
// package owns their semantics; these mirror the CLI surface.
const (
	DefaultSchemaPolicy  = "strict"
	DefaultMissingPolicy = "error"
	DefaultSourceColumn  = "source_file"
	DefaultSourceMode    = "name"
	DefaultOutDelim      = "comma"
	DefaultSampleRows    = 50
	DefaultChunkSize     = 200_000
	DefaultThreads       = 4
)

// Run describes one merge run end to end.
type Run struct {
	// Inputs selects how input files are discovered.
	Inputs file.Inputs

	// Extension forces the expected file extension (e.g. "csv"). When empty,
	// all inputs must share one extension.
	Extension string

	// SampleRows is the number of non-empty lines sampled per file for
	// delimiter sniffing.
	SampleRows int

	// Normalize, when non-empty, names the delimiter every input is rewritten
	// to (in a temp workspace) before schema work: comma, tab, semicolon, pipe.
	Normalize string

	// SchemaPolicy is strict, union, or intersection. Ignored when Columns is
	// set.
	SchemaPolicy string

	// Columns, when non-empty, restricts output to exactly these columns in
	// this order, overriding SchemaPolicy.
	Columns []string

	// MissingPolicy applies when Columns is set and a file lacks a requested
	// column: error, skip, or fillna.
	MissingPolicy string

	// CaseInsensitive matches column names ignoring case.
	CaseInsensitive bool

	// NormalizeHeaders rewrites every header cell to lowercase ASCII
	// snake_case before schema resolution.
	NormalizeHeaders bool

	// NoSourceColumn disables the injected source-identifying column.
	NoSourceColumn bool
	// SourceColumn names the injected column (default "source_file").
	SourceColumn string
	// SourceMode is what the column holds: name, stem, or path.
	SourceMode string

	// OutPath is the output file. Required.
	OutPath string
	// OutDelim names the output delimiter: comma, tab, semicolon, pipe.
	OutDelim string
	// NoHeader suppresses the output header row.
	NoHeader bool

	// ChunkSize is the maximum number of rows held in memory per file.
	ChunkSize int
	// Threads bounds the delimiter-normalization worker pool.
	Threads int

	// Dedupe drops output rows whose reconciled content (source column
	// excluded) was already emitted.
	Dedupe bool

	// DryRun resolves and reports without writing output.
	DryRun bool

	// Verbose enables per-file progress logging.
	Verbose bool
}

// Default returns a Run populated with the documented defaults. Input and
// output locations must still be filled in.
func Default() Run {
	return Run{
		SampleRows:    DefaultSampleRows,
		SchemaPolicy:  DefaultSchemaPolicy,
		MissingPolicy: DefaultMissingPolicy,
		SourceColumn:  DefaultSourceColumn,
		SourceMode:    DefaultSourceMode,
		OutDelim:      DefaultOutDelim,
		ChunkSize:     DefaultChunkSize,
		Threads:       DefaultThreads,
	}
}
