// Package csv provides the delimited-file primitives used by the merge
// pipeline: header peeking, chunked row streaming, and buffered row writing.
//
// All readers are tolerant by default (LazyQuotes, variable field counts,
// leading-space trimming) because real exports are rarely clean; rows are
// padded or truncated to the header width so downstream consumers can rely
// on stable column indexes.
package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// firstUsable reads records from cr until one carries a non-blank cell,
// skipping blank and malformed leading records. It returns the record plus
// the number of records consumed; the record is nil at EOF. Header peeking
// and streaming both go through this so they agree on where data starts.
func firstUsable(cr *csv.Reader) ([]string, int) {
	read := 0
	for {
		rec, err := cr.Read()
		read++
		if err == io.EOF {
			return nil, read
		}
		if err != nil {
			// Bad line before any usable record: best-effort skip.
			continue
		}
		for _, cell := range rec {
			if strings.TrimSpace(cell) != "" {
				return rec, read
			}
		}
	}
}

// PeekHeader returns the first non-empty record of r parsed with delim,
// BOM-stripped and with each cell trimmed of edge whitespace. It returns an
// empty slice when the input holds no usable record.
func PeekHeader(r io.Reader, delim rune) ([]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	rec, _ := firstUsable(cr)
	if rec == nil {
		return []string{}, nil
	}
	out := StripHeaderBOM(append([]string(nil), rec...))
	for i, cell := range out {
		out[i] = strings.TrimSpace(cell)
	}
	return out, nil
}

// fitRowToWidth truncates or pads a record to exactly n fields.
func fitRowToWidth(row []string, n int) []string {
	if len(row) == n {
		return row
	}
	if len(row) > n {
		return row[:n]
	}
	out := make([]string, n)
	copy(out, row)
	return out
}

// StreamChunks reads delimited data rows from src and hands them to fn in
// bounded chunks of at most size rows. When hasHeader is true the first
// usable record (skipping blank and malformed leading lines, exactly as
// PeekHeader does) is consumed and discarded before any data row is read.
//
// Every row passed to fn has exactly width fields (padded or truncated).
// The chunk slice and its rows are reused between fn invocations; fn must
// not retain references past its return. fn errors abort the stream.
func StreamChunks(
	ctx context.Context,
	src io.Reader,
	delim rune,
	hasHeader bool,
	width int,
	size int,
	fn func(rows [][]string) error,
) error {
	if size <= 0 {
		return fmt.Errorf("stream: chunk size must be > 0, got %d", size)
	}
	if width <= 0 {
		return fmt.Errorf("stream: row width must be > 0, got %d", width)
	}

	cr := csv.NewReader(src)
	cr.Comma = delim
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	line := 0
	if hasHeader {
		hdr, read := firstUsable(cr)
		if hdr == nil {
			return nil
		}
		line = read
	}

	// Row storage is allocated once and reused across chunks; cells are copied
	// out of the csv.Reader's shared record.
	rows := make([][]string, size)
	for i := range rows {
		rows[i] = make([]string, width)
	}

	n := 0

	flush := func() error {
		if n == 0 {
			return nil
		}
		if err := fn(rows[:n]); err != nil {
			return err
		}
		n = 0
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rec, err := cr.Read()
		line++
		if err == io.EOF {
			return flush()
		}
		if err != nil {
			return fmt.Errorf("csv read line %d: %w", line, err)
		}

		copy(rows[n], fitRowToWidth(rec, width))
		n++
		if n == size {
			if err := flush(); err != nil {
				return err
			}
		}
	}
}
