package csv

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

/*
makeCSV builds a delimited document in-memory with the given header and rows.
It uses encoding/csv to ensure proper quoting and escaping.
*/
func makeCSV(delim rune, header []string, rows [][]string) []byte {
	var b bytes.Buffer
	w := csv.NewWriter(&b)
	w.Comma = delim
	if header != nil {
		_ = w.Write(header)
	}
	for _, r := range rows {
		_ = w.Write(r)
	}
	w.Flush()
	return b.Bytes()
}

/*
Test_PeekHeader verifies trimming, BOM stripping, and empty-line skipping.
*/
func Test_PeekHeader(t *testing.T) {
	data := []byte("\uFEFF id ;name\n1;2\n")
	hdr, err := PeekHeader(bytes.NewReader(data), ';')
	if err != nil {
		t.Fatalf("peek: %v", err)
	}
	if len(hdr) != 2 || hdr[0] != "id" || hdr[1] != "name" {
		t.Fatalf("unexpected header: %v", hdr)
	}
}

/*
Test_PeekHeader_Empty verifies that a file with no usable record yields an
empty header and no error.
*/
func Test_PeekHeader_Empty(t *testing.T) {
	hdr, err := PeekHeader(strings.NewReader("\n\n"), ',')
	if err != nil {
		t.Fatalf("peek: %v", err)
	}
	if len(hdr) != 0 {
		t.Fatalf("expected empty header, got %v", hdr)
	}
}

/*
Test_StreamChunks_Boundaries verifies chunk sizing: 5 rows with size 2
arrive as chunks of 2, 2, and 1, in order, with the header consumed.
*/
func Test_StreamChunks_Boundaries(t *testing.T) {
	data := makeCSV(',', []string{"a", "b"}, [][]string{
		{"1", "x"}, {"2", "y"}, {"3", "z"}, {"4", "w"}, {"5", "v"},
	})

	var sizes []int
	var flat []string
	err := StreamChunks(context.Background(), bytes.NewReader(data), ',', true, 2, 2,
		func(rows [][]string) error {
			sizes = append(sizes, len(rows))
			for _, r := range rows {
				// Rows are reused between callbacks; copy what we keep.
				flat = append(flat, strings.Join(r, "|"))
			}
			return nil
		})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}

	if len(sizes) != 3 || sizes[0] != 2 || sizes[1] != 2 || sizes[2] != 1 {
		t.Fatalf("chunk sizes: %v", sizes)
	}
	want := []string{"1|x", "2|y", "3|z", "4|w", "5|v"}
	if strings.Join(flat, " ") != strings.Join(want, " ") {
		t.Fatalf("rows: %v", flat)
	}
}

/*
Test_StreamChunks_WidthFitting verifies short rows are padded and long rows
truncated to the declared width.
*/
func Test_StreamChunks_WidthFitting(t *testing.T) {
	data := []byte("a,b,c\n1\n1,2,3,4\n")

	var flat []string
	err := StreamChunks(context.Background(), bytes.NewReader(data), ',', true, 3, 10,
		func(rows [][]string) error {
			for _, r := range rows {
				flat = append(flat, strings.Join(r, "|"))
			}
			return nil
		})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if len(flat) != 2 || flat[0] != "1||" || flat[1] != "1|2|3" {
		t.Fatalf("rows: %v", flat)
	}
}

/*
Test_StreamChunks_LeadingBlankLine verifies a whitespace-only line ahead of
the header does not shift the header into the data rows: streaming skips the
same unusable leading records header peeking skips.
*/
func Test_StreamChunks_LeadingBlankLine(t *testing.T) {
	data := []byte("   \nid,name\n1,alice\n")

	hdr, err := PeekHeader(bytes.NewReader(data), ',')
	if err != nil {
		t.Fatalf("peek: %v", err)
	}
	if len(hdr) != 2 || hdr[0] != "id" {
		t.Fatalf("unexpected header: %v", hdr)
	}

	var flat []string
	err = StreamChunks(context.Background(), bytes.NewReader(data), ',', true, 2, 10,
		func(rows [][]string) error {
			for _, r := range rows {
				flat = append(flat, strings.Join(r, "|"))
			}
			return nil
		})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if len(flat) != 1 || flat[0] != "1|alice" {
		t.Fatalf("header leaked into data rows: %v", flat)
	}
}

/*
Test_StreamChunks_Cancel verifies that a canceled context stops the stream.
*/
func Test_StreamChunks_Cancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	data := makeCSV(',', []string{"a"}, [][]string{{"1"}})
	err := StreamChunks(ctx, bytes.NewReader(data), ',', true, 1, 1,
		func(rows [][]string) error { return nil })
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

/*
Test_Writer_RoundTrip verifies the writer produces rows the reader parses
back unchanged, including delimiter-bearing cells.
*/
func Test_Writer_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	w, err := NewWriter(path, ';')
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	rows := [][]string{
		{"id", "note"},
		{"1", "has;delim"},
		{"2", `has"quote`},
	}
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = ';'
	back, err := r.ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(back) != len(rows) {
		t.Fatalf("row count: %d", len(back))
	}
	for i := range rows {
		if strings.Join(back[i], "\x00") != strings.Join(rows[i], "\x00") {
			t.Fatalf("row %d mismatch: %v vs %v", i, back[i], rows[i])
		}
	}
}
