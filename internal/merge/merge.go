// Package merge implements the streaming merge driver: it sniffs every input
// file's delimiter, optionally normalizes delimiters through a bounded worker
// pool, resolves the output schema, and streams every row into the output in
// bounded-size chunks with source annotation.
//
// The run is all-or-nothing at the schema level: any sniffing or resolution
// failure aborts before output exists. Once writing begins, only files
// excluded by the skip policy are dropped; any other failure aborts the run
// and the partial output is reported as incomplete.
package merge

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"concat/internal/config"
	"concat/internal/datasource/file"
	"concat/internal/metrics"
	csvparser "concat/internal/parser/csv"
	"concat/internal/schema"
	"concat/internal/sniff"
)

// logEveryN is the write-phase progress heartbeat interval, in rows.
const logEveryN = 50_000

// Stats summarizes a completed run.
type Stats struct {
	Files      int   // files that contributed rows
	Skipped    int   // files excluded by missing-policy skip
	Normalized int   // files rewritten to the normalization delimiter
	Rows       int64 // rows written to the output
	Deduped    int64 // rows dropped as duplicates
	Filled     int64 // cells filled with the missing-value marker
}

// Run executes one merge described by cfg. On dry runs it resolves and
// reports without creating output. The returned Stats are valid whenever the
// error is nil.
func Run(ctx context.Context, cfg config.Run) (Stats, error) {
	var stats Stats
	job := jobName(cfg.OutPath)

	// Discovery.
	paths, err := file.Collect(cfg.Inputs)
	if err != nil {
		return stats, err
	}
	if len(paths) == 0 {
		return stats, fmt.Errorf("no input files found")
	}
	ext, err := file.EnsureSingleExtension(paths, cfg.Extension)
	if err != nil {
		return stats, err
	}
	paths = file.FilterExtension(paths, ext)
	if len(paths) == 0 {
		return stats, fmt.Errorf("no *.%s files after filtering; check inputs or -e", ext)
	}
	if cfg.Verbose {
		log.Printf("input: %d files (.%s)", len(paths), ext)
		for _, p := range paths {
			log.Printf("input: - %s", p)
		}
	}

	// Sniffing. Any failure here is fatal before output exists.
	tSniff := time.Now()
	delims := make(map[string]rune, len(paths))
	for _, p := range paths {
		d, err := sniff.File(p, cfg.SampleRows)
		if err != nil {
			metrics.RecordPhase(job, "sniff", err, time.Since(tSniff))
			return stats, err
		}
		delims[p] = d
		if cfg.Verbose {
			log.Printf("sniff: %s delim=%s", filepath.Base(p), sniff.Name(d))
		}
	}
	metrics.RecordPhase(job, "sniff", nil, time.Since(tSniff))

	// Delimiter normalization. With a target configured, every file that does
	// not already use it is rewritten into a temp workspace; without one,
	// mixed delimiters are fatal.
	readPath := make(map[string]string, len(paths))
	for _, p := range paths {
		readPath[p] = p
	}

	var tmpDir string
	defer func() {
		if tmpDir != "" {
			os.RemoveAll(tmpDir)
		}
	}()

	if cfg.Normalize != "" {
		target := sniff.Supported[cfg.Normalize]
		tNorm := time.Now()

		tmpDir, err = os.MkdirTemp("", "concat_norm_")
		if err != nil {
			return stats, fmt.Errorf("create normalization workspace: %w", err)
		}
		rewritten, err := normalizeFiles(ctx, paths, delims, target, tmpDir, cfg.Threads, cfg.ChunkSize, cfg.Verbose)
		metrics.RecordPhase(job, "normalize", err, time.Since(tNorm))
		if err != nil {
			return stats, err
		}
		for p, dst := range rewritten {
			readPath[p] = dst
			delims[p] = target
		}
		stats.Normalized = len(rewritten)
		metrics.RecordFiles(job, "normalized", int64(len(rewritten)))
	} else if names := distinctDelims(delims); len(names) > 1 {
		return stats, fmt.Errorf(
			"inconsistent delimiters detected: [%s]; use -normalize to convert",
			strings.Join(names, ", "),
		)
	}

	// Headers and descriptors. All schema work happens on (possibly
	// normalized) data.
	descs := make([]schema.FileDescriptor, 0, len(paths))
	var headerless []string
	for _, p := range paths {
		hdr, err := peekHeader(ctx, readPath[p], delims[p])
		if err != nil {
			return stats, err
		}
		if len(hdr) == 0 {
			headerless = append(headerless, filepath.Base(p))
			continue
		}
		if cfg.NormalizeHeaders {
			hdr = schema.NormalizeHeader(hdr)
		}
		descs = append(descs, schema.FileDescriptor{Path: p, Delimiter: delims[p], Header: hdr})
	}
	if len(headerless) > 0 {
		return stats, fmt.Errorf(
			"could not read a header row from: %s; empty or malformed inputs",
			strings.Join(headerless, ", "),
		)
	}

	// Resolution. Structural errors abort the whole run.
	tResolve := time.Now()
	plan, err := schema.Resolve(descs, schema.Options{
		Policy:          cfg.SchemaPolicy,
		Columns:         cfg.Columns,
		MissingPolicy:   cfg.MissingPolicy,
		CaseInsensitive: cfg.CaseInsensitive,
	})
	metrics.RecordPhase(job, "resolve", err, time.Since(tResolve))
	if err != nil {
		return stats, err
	}

	// Non-fatal missing-column findings.
	for _, fp := range plan.Files {
		switch {
		case fp.Skip:
			log.Printf("schema: skipping %s: missing columns [%s]",
				filepath.Base(fp.File.Path), strings.Join(fp.Missing, ", "))
		case len(fp.Missing) > 0:
			log.Printf("schema: %s lacks [%s]; rows will carry the missing marker",
				filepath.Base(fp.File.Path), strings.Join(fp.Missing, ", "))
		}
	}

	ann := Annotation{
		Enabled: !cfg.NoSourceColumn,
		Column:  cfg.SourceColumn,
		Mode:    cfg.SourceMode,
	}

	if cfg.DryRun {
		printDryRun(os.Stdout, cfg, ext, plan, ann)
		return stats, nil
	}

	// Writing.
	tWrite := time.Now()
	err = writeMerged(ctx, cfg, plan, ann, readPath, &stats)
	metrics.RecordPhase(job, "write", err, time.Since(tWrite))
	if err != nil {
		return stats, err
	}

	metrics.RecordFiles(job, "merged", int64(stats.Files))
	metrics.RecordFiles(job, "skipped", int64(stats.Skipped))
	metrics.RecordRows(job, "written", stats.Rows)
	metrics.RecordRows(job, "deduped", stats.Deduped)
	metrics.RecordRows(job, "filled", stats.Filled)

	log.Printf("done: wrote %d rows from %d files to %s", stats.Rows, stats.Files, cfg.OutPath)
	return stats, nil
}

// writeMerged streams every planned file into the output in input order, one
// chunk in memory at a time. Any error past this point leaves a partial
// output which is explicitly flagged as incomplete.
func writeMerged(
	ctx context.Context,
	cfg config.Run,
	plan *schema.Plan,
	ann Annotation,
	readPath map[string]string,
	stats *Stats,
) error {
	if dir := filepath.Dir(cfg.OutPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	w, err := csvparser.NewWriter(cfg.OutPath, sniff.Supported[cfg.OutDelim])
	if err != nil {
		return err
	}

	incomplete := func(err error) error {
		_ = w.Close()
		return fmt.Errorf("write aborted, output %s is incomplete: %w", cfg.OutPath, err)
	}

	offset := 0
	if ann.Enabled {
		offset = 1
	}
	outRow := make([]string, offset+len(plan.Output))

	if !cfg.NoHeader {
		if ann.Enabled {
			outRow[0] = ann.Column
		}
		copy(outRow[offset:], plan.Output)
		if err := w.Write(outRow); err != nil {
			return incomplete(err)
		}
	}

	var dd *deduper
	if cfg.Dedupe {
		dd = newDeduper()
	}

	for _, fp := range plan.Files {
		if fp.Skip {
			stats.Skipped++
			continue
		}

		srcValue := ann.Value(fp.File.Path)
		if ann.Enabled {
			outRow[0] = srcValue
		}

		rc, err := file.NewLocal(readPath[fp.File.Path]).Open(ctx)
		if err != nil {
			return incomplete(err)
		}

		err = csvparser.StreamChunks(
			ctx, rc, fp.File.Delimiter, true, len(fp.File.Header), cfg.ChunkSize,
			func(rows [][]string) error {
				for _, raw := range rows {
					fills := int64(0)
					for i, cm := range fp.Columns {
						if cm.Kind == schema.Matched {
							outRow[offset+i] = raw[cm.Source]
						} else {
							outRow[offset+i] = ""
							fills++
						}
					}
					if dd != nil && dd.isDup(outRow[offset:]) {
						stats.Deduped++
						continue
					}
					stats.Filled += fills
					if err := w.Write(outRow); err != nil {
						return err
					}
					stats.Rows++
					if stats.Rows%logEveryN == 0 {
						log.Printf("writer: file=%s rows=%d", filepath.Base(fp.File.Path), stats.Rows)
					}
				}
				return nil
			},
		)
		rc.Close()
		if err != nil {
			return incomplete(err)
		}
		stats.Files++
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("write aborted, output %s is incomplete: %w", cfg.OutPath, err)
	}
	return nil
}

// peekHeader opens path and returns its (trimmed, BOM-stripped) header row.
func peekHeader(ctx context.Context, path string, delim rune) ([]string, error) {
	rc, err := file.NewLocal(path).Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	hdr, err := csvparser.PeekHeader(rc, delim)
	if err != nil {
		return nil, fmt.Errorf("peek header %s: %w", path, err)
	}
	return hdr, nil
}

// distinctDelims returns the sorted user-facing names of the delimiters in m.
func distinctDelims(m map[string]rune) []string {
	set := map[string]struct{}{}
	for _, d := range m {
		set[sniff.Name(d)] = struct{}{}
	}
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// jobName derives the metrics job label from the output path.
func jobName(outPath string) string {
	base := filepath.Base(outPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	name := schema.NormalizeName(base)
	if name == "col" {
		return "concat"
	}
	return name
}
