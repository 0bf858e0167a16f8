package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("a,b\n1,2\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

/*
Test_Collect_Directory verifies directory discovery returns sorted absolute
paths of regular files only.
*/
func Test_Collect_Directory(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "b.csv", "a.csv")
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	paths, err := Collect(Inputs{Directory: dir})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 files, got %v", paths)
	}
	if filepath.Base(paths[0]) != "a.csv" || filepath.Base(paths[1]) != "b.csv" {
		t.Fatalf("not sorted: %v", paths)
	}
	if !filepath.IsAbs(paths[0]) {
		t.Fatalf("expected absolute paths: %v", paths)
	}
}

/*
Test_Collect_Dedup verifies explicit file lists are de-duplicated after
resolution.
*/
func Test_Collect_Dedup(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.csv")
	p := filepath.Join(dir, "a.csv")

	paths, err := Collect(Inputs{Files: []string{p, p}})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(paths) != 1 {
		t.Fatalf("expected 1 path, got %v", paths)
	}
}

/*
Test_Collect_Missing verifies missing inputs fail and the error names them.
*/
func Test_Collect_Missing(t *testing.T) {
	_, err := Collect(Inputs{Files: []string{"/nonexistent/x.csv"}})
	if err == nil || !strings.Contains(err.Error(), "/nonexistent/x.csv") {
		t.Fatalf("expected error naming missing file, got %v", err)
	}
}

/*
Test_Collect_ModeExclusivity verifies exactly one input mode is enforced.
*/
func Test_Collect_ModeExclusivity(t *testing.T) {
	if _, err := Collect(Inputs{}); err == nil {
		t.Fatalf("expected error for no input mode")
	}
	if _, err := Collect(Inputs{Directory: "x", Files: []string{"y"}}); err == nil {
		t.Fatalf("expected error for two input modes")
	}
}

/*
Test_Collect_List verifies list-file discovery skips blanks and comments.
*/
func Test_Collect_List(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.csv", "b.csv")

	list := filepath.Join(dir, "inputs.txt")
	content := "# inputs\n" + filepath.Join(dir, "a.csv") + "\n\n" + filepath.Join(dir, "b.csv") + "\n"
	if err := os.WriteFile(list, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	paths, err := Collect(Inputs{ListPath: list})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 paths, got %v", paths)
	}
}

/*
Test_EnsureSingleExtension covers shared, forced, and mixed extensions.
*/
func Test_EnsureSingleExtension(t *testing.T) {
	ext, err := EnsureSingleExtension([]string{"/a/x.csv", "/b/y.CSV"}, "")
	if err != nil || ext != "csv" {
		t.Fatalf("shared: ext=%q err=%v", ext, err)
	}

	ext, err = EnsureSingleExtension([]string{"/a/x.csv", "/b/y.tsv"}, ".TSV")
	if err != nil || ext != "tsv" {
		t.Fatalf("forced: ext=%q err=%v", ext, err)
	}

	_, err = EnsureSingleExtension([]string{"/a/x.csv", "/b/y.tsv"}, "")
	if err == nil {
		t.Fatalf("expected mixed-extension error")
	}
}

/*
Test_FilterExtension verifies non-matching files are dropped.
*/
func Test_FilterExtension(t *testing.T) {
	out := FilterExtension([]string{"/a/x.csv", "/b/y.tsv", "/c/z.csv"}, "csv")
	if len(out) != 2 || out[0] != "/a/x.csv" || out[1] != "/c/z.csv" {
		t.Fatalf("filter: %v", out)
	}
}

/*
Test_Local_Open verifies context awareness and error wrapping.
*/
func Test_Local_Open(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.csv")

	rc, err := NewLocal(filepath.Join(dir, "a.csv")).Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	rc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewLocal(filepath.Join(dir, "a.csv")).Open(ctx); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	if _, err := NewLocal(filepath.Join(dir, "missing.csv")).Open(context.Background()); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
