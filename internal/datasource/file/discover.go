package file

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Inputs selects how input files are discovered. Exactly one of the fields
// should be populated; Collect checks this.
type Inputs struct {
	// Directory lists every regular file directly inside a directory.
	Directory string
	// Globs expands filesystem glob patterns; entries that already exist are
	// treated as literal paths (shell may have expanded them).
	Globs []string
	// Files is an explicit list of paths.
	Files []string
	// ListPath names a text file holding one input path per line. Blank lines
	// and lines starting with '#' are skipped.
	ListPath string
}

// Collect discovers input files per in, resolves them to absolute paths,
// de-duplicates, and returns them sorted. Missing paths are an error that
// names every offender.
func Collect(in Inputs) ([]string, error) {
	modes := 0
	if in.Directory != "" {
		modes++
	}
	if len(in.Globs) > 0 {
		modes++
	}
	if len(in.Files) > 0 {
		modes++
	}
	if in.ListPath != "" {
		modes++
	}
	if modes != 1 {
		return nil, fmt.Errorf("discover: exactly one input mode required (directory, glob, files, or list), got %d", modes)
	}

	var paths []string
	switch {
	case in.Directory != "":
		entries, err := os.ReadDir(in.Directory)
		if err != nil {
			return nil, fmt.Errorf("read directory %s: %w", in.Directory, err)
		}
		for _, e := range entries {
			if e.Type().IsRegular() {
				paths = append(paths, filepath.Join(in.Directory, e.Name()))
			}
		}

	case len(in.Globs) > 0:
		for _, pattern := range in.Globs {
			if _, err := os.Stat(pattern); err == nil {
				paths = append(paths, pattern)
				continue
			}
			hits, err := filepath.Glob(pattern)
			if err != nil {
				return nil, fmt.Errorf("glob %q: %w", pattern, err)
			}
			paths = append(paths, hits...)
		}

	case in.ListPath != "":
		listed, err := readList(in.ListPath)
		if err != nil {
			return nil, err
		}
		paths = listed

	default:
		paths = append(paths, in.Files...)
	}

	var missing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("discover: missing files: %s", strings.Join(missing, ", "))
	}

	// Resolve, de-duplicate, sort.
	set := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		if _, ok := set[abs]; ok {
			continue
		}
		set[abs] = struct{}{}
		out = append(out, abs)
	}
	sort.Strings(out)
	return out, nil
}

// readList reads a text file line by line and returns the non-empty,
// non-comment lines in order. Lines are trimmed; '#' starts a comment line.
func readList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open list %s: %w", path, err)
	}
	defer f.Close()

	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read list %s: %w", path, err)
	}
	return out, nil
}

// Ext returns the lowercased extension of path without the leading dot.
func Ext(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

// EnsureSingleExtension returns the one extension shared by all paths, or the
// forced extension (normalized) when non-empty. Mixed extensions without a
// forced value are an error so silently merging unrelated formats is
// impossible.
func EnsureSingleExtension(paths []string, forced string) (string, error) {
	if forced != "" {
		return strings.TrimPrefix(strings.ToLower(forced), "."), nil
	}
	set := map[string]struct{}{}
	for _, p := range paths {
		set[Ext(p)] = struct{}{}
	}
	if len(set) != 1 {
		exts := make([]string, 0, len(set))
		for e := range set {
			exts = append(exts, e)
		}
		sort.Strings(exts)
		return "", fmt.Errorf(
			"inconsistent extensions detected: [%s]; force one with -e or clean inputs",
			strings.Join(exts, ", "),
		)
	}
	for e := range set {
		return e, nil
	}
	return "", nil
}

// FilterExtension keeps only paths with the given (normalized) extension.
func FilterExtension(paths []string, ext string) []string {
	out := paths[:0:0]
	for _, p := range paths {
		if Ext(p) == ext {
			out = append(out, p)
		}
	}
	return out
}
