package csv

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
)

// Writer appends delimited rows to a destination file through a buffered
// encoding/csv writer. It is not safe for concurrent use; the merge driver
// writes from a single goroutine.
type Writer struct {
	path string
	f    *os.File
	bw   *bufio.Writer
	w    *csv.Writer
}

// NewWriter creates (or truncates) path and returns a Writer emitting rows
// with the given delimiter.
func NewWriter(path string, delim rune) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	bw := bufio.NewWriterSize(f, 1<<20)
	w := csv.NewWriter(bw)
	w.Comma = delim
	return &Writer{path: path, f: f, bw: bw, w: w}, nil
}

// Write appends one row.
func (w *Writer) Write(row []string) error {
	if err := w.w.Write(row); err != nil {
		return fmt.Errorf("write %s: %w", w.path, err)
	}
	return nil
}

// WriteAll appends every row in order.
func (w *Writer) WriteAll(rows [][]string) error {
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes buffers and closes the underlying file. It reports the first
// error encountered so short writes are never silent.
func (w *Writer) Close() error {
	w.w.Flush()
	if err := w.w.Error(); err != nil {
		_ = w.f.Close()
		return fmt.Errorf("flush %s: %w", w.path, err)
	}
	if err := w.bw.Flush(); err != nil {
		_ = w.f.Close()
		return fmt.Errorf("flush %s: %w", w.path, err)
	}
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", w.path, err)
	}
	return nil
}
