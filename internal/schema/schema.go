// Package schema reconciles the column sets of many input files into one
// output schema and a per-file projection plan.
//
// Resolution happens exactly once per run. Every downstream row transform is
// a flat lookup into the precomputed plan; no per-row matching or policy
// evaluation occurs after Resolve returns.
package schema

import (
	"fmt"
	"sort"
	"strings"
)

// Policy selects how columns are reconciled when no explicit column list is
// given.
const (
	PolicyStrict       = "strict"
	PolicyUnion        = "union"
	PolicyIntersection = "intersection"
)

// Missing-column policies for explicit-column mode.
const (
	MissingError  = "error"
	MissingSkip   = "skip"
	MissingFillNA = "fillna"
)

// FileDescriptor captures what the driver learned about one input file before
// resolution: its path, sniffed delimiter, and header. Immutable once built.
type FileDescriptor struct {
	Path      string
	Delimiter rune
	Header    []string
}

// MapKind classifies one output column of one file's projection.
type MapKind int

const (
	// Matched maps the output column to a source column index.
	Matched MapKind = iota
	// AbsentFill marks the output column absent in this file; the reconciler
	// fills the missing-value marker.
	AbsentFill
)

// ColumnMap is one resolved (output column → source) entry.
type ColumnMap struct {
	Kind   MapKind
	Source int // index into the file's header when Kind == Matched
}

// FilePlan is the complete projection decision for one file.
type FilePlan struct {
	File FileDescriptor

	// Skip excludes the file from the run entirely (missing-policy "skip").
	// Columns is nil for skipped files.
	Skip bool

	// Missing lists requested/output columns absent from this file, for
	// warning reports under the skip and fillna policies.
	Missing []string

	Columns []ColumnMap
}

// Plan is the resolved output schema plus a projection per file.
// Output columns are unique; every non-skipped file's Columns slice covers
// every output column exactly once.
type Plan struct {
	Output []string
	Files  []FilePlan
}

// Options control resolution.
type Options struct {
	// Policy is one of strict/union/intersection. Ignored when Columns is set.
	Policy string
	// Columns, when non-empty, is the explicit requested output column list.
	Columns []string
	// MissingPolicy applies in explicit-column mode: error, skip, or fillna.
	MissingPolicy string
	// CaseInsensitive folds case when matching column names.
	CaseInsensitive bool
}

// Error is a structural schema failure: a strict-mode header mismatch, an
// empty intersection, or an unresolved explicit-column conflict under the
// "error" missing policy. It is fatal to the whole run.
type Error struct {
	Path    string
	Columns []string
	Reason  string
}

func (e *Error) Error() string {
	msg := "schema: " + e.Reason
	if e.Path != "" {
		msg += fmt.Sprintf(" (file %s)", e.Path)
	}
	if len(e.Columns) > 0 {
		msg += fmt.Sprintf(": columns [%s]", strings.Join(e.Columns, ", "))
	}
	return msg
}

// fold is the single key-normalization function for column matching. It is
// applied at resolution time only; the resulting plan carries indexes, so
// reconciliation never re-derives keys.
func (o Options) fold(s string) string {
	s = strings.TrimSpace(s)
	if o.CaseInsensitive {
		s = strings.ToLower(s)
	}
	return s
}

// headerIndex maps folded column names to their first position in header.
func (o Options) headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		k := o.fold(h)
		if _, ok := idx[k]; !ok {
			idx[k] = i
		}
	}
	return idx
}

// Resolve computes the output schema and per-file projections for the given
// descriptors under opt. files must be non-empty and ordered as the driver
// will stream them.
func Resolve(files []FileDescriptor, opt Options) (*Plan, error) {
	if len(files) == 0 {
		return nil, &Error{Reason: "no input files to resolve"}
	}
	if len(opt.Columns) > 0 {
		return resolveExplicit(files, opt)
	}

	switch opt.Policy {
	case PolicyStrict, "":
		return resolveStrict(files, opt)
	case PolicyUnion:
		return resolveUnion(files, opt)
	case PolicyIntersection:
		return resolveIntersection(files, opt)
	default:
		return nil, &Error{Reason: fmt.Sprintf("unknown schema policy %q", opt.Policy)}
	}
}

// resolveExplicit handles the requested-column mode: the output is exactly
// opt.Columns in the given order, and each file either matches, fills, or is
// skipped per opt.MissingPolicy.
func resolveExplicit(files []FileDescriptor, opt Options) (*Plan, error) {
	plan := &Plan{Output: append([]string(nil), opt.Columns...)}

	usable := 0
	for _, fd := range files {
		idx := opt.headerIndex(fd.Header)

		fp := FilePlan{File: fd}
		cols := make([]ColumnMap, len(opt.Columns))
		var missing []string

		for i, want := range opt.Columns {
			if si, ok := idx[opt.fold(want)]; ok {
				cols[i] = ColumnMap{Kind: Matched, Source: si}
				continue
			}
			missing = append(missing, want)
			cols[i] = ColumnMap{Kind: AbsentFill}
		}

		if len(missing) > 0 {
			switch opt.MissingPolicy {
			case MissingError, "":
				return nil, &Error{
					Path:    fd.Path,
					Columns: missing,
					Reason:  "requested columns missing under missing-policy error",
				}
			case MissingSkip:
				fp.Skip = true
				fp.Missing = missing
				fp.Columns = nil
				plan.Files = append(plan.Files, fp)
				continue
			case MissingFillNA:
				fp.Missing = missing
			default:
				return nil, &Error{Reason: fmt.Sprintf("unknown missing-column policy %q", opt.MissingPolicy)}
			}
		}

		fp.Columns = cols
		plan.Files = append(plan.Files, fp)
		usable++
	}

	if usable == 0 {
		return nil, &Error{Reason: "no files left after applying requested columns with missing-policy skip"}
	}
	return plan, nil
}

// resolveStrict requires every file's header to cover the same column set as
// the first file (order-insensitive). The output keeps the first file's
// column order.
func resolveStrict(files []FileDescriptor, opt Options) (*Plan, error) {
	base := files[0]
	baseSet := make(map[string]struct{}, len(base.Header))
	for _, h := range base.Header {
		baseSet[opt.fold(h)] = struct{}{}
	}

	for _, fd := range files[1:] {
		seen := make(map[string]struct{}, len(fd.Header))
		var diff []string
		for _, h := range fd.Header {
			k := opt.fold(h)
			seen[k] = struct{}{}
			if _, ok := baseSet[k]; !ok {
				diff = append(diff, h)
			}
		}
		for _, h := range base.Header {
			if _, ok := seen[opt.fold(h)]; !ok {
				diff = append(diff, h)
			}
		}
		if len(diff) > 0 {
			sort.Strings(diff)
			return nil, &Error{
				Path:    fd.Path,
				Columns: diff,
				Reason:  fmt.Sprintf("header mismatch under schema policy strict against %s", base.Path),
			}
		}
	}

	return projectOnto(files, append([]string(nil), base.Header...), opt)
}

// resolveUnion builds the output as all distinct columns in first-seen order
// and marks absent columns for fill. Union implies fillna semantics; skip and
// error do not apply to columns a file simply lacks.
func resolveUnion(files []FileDescriptor, opt Options) (*Plan, error) {
	var out []string
	seen := map[string]struct{}{}
	for _, fd := range files {
		for _, h := range fd.Header {
			k := opt.fold(h)
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, h)
		}
	}
	return projectOnto(files, out, opt)
}

// resolveIntersection keeps only columns present in every file, ordered as in
// the first file. An empty intersection is a structural error.
func resolveIntersection(files []FileDescriptor, opt Options) (*Plan, error) {
	shared := make(map[string]struct{}, len(files[0].Header))
	for _, h := range files[0].Header {
		shared[opt.fold(h)] = struct{}{}
	}
	for _, fd := range files[1:] {
		have := make(map[string]struct{}, len(fd.Header))
		for _, h := range fd.Header {
			have[opt.fold(h)] = struct{}{}
		}
		for k := range shared {
			if _, ok := have[k]; !ok {
				delete(shared, k)
			}
		}
	}

	var out []string
	for _, h := range files[0].Header {
		if _, ok := shared[opt.fold(h)]; ok {
			out = append(out, h)
		}
	}
	if len(out) == 0 {
		return nil, &Error{Reason: "no shared columns under schema policy intersection"}
	}
	return projectOnto(files, out, opt)
}

// projectOnto builds per-file projections for a fixed output column list.
// Columns a file lacks are marked AbsentFill and reported in Missing.
func projectOnto(files []FileDescriptor, output []string, opt Options) (*Plan, error) {
	plan := &Plan{Output: output}
	for _, fd := range files {
		idx := opt.headerIndex(fd.Header)

		fp := FilePlan{File: fd, Columns: make([]ColumnMap, len(output))}
		for i, want := range output {
			if si, ok := idx[opt.fold(want)]; ok {
				fp.Columns[i] = ColumnMap{Kind: Matched, Source: si}
			} else {
				fp.Columns[i] = ColumnMap{Kind: AbsentFill}
				fp.Missing = append(fp.Missing, want)
			}
		}
		plan.Files = append(plan.Files, fp)
	}
	return plan, nil
}
