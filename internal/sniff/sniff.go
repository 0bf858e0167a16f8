// Package sniff infers the field delimiter of a tabular text file by
// statistical analysis of a small sample of lines.
//
// The candidate set is fixed: comma, tab, semicolon, pipe. For each candidate
// the sniffer counts occurrences per sampled line and keeps the modal count.
// A candidate is usable only when its modal count is positive and stable
// across (almost) all sampled lines; among usable candidates the one with the
// highest modal count wins. When nothing is usable, or two candidates tie,
// the sniffer refuses to guess and returns an AmbiguousDelimiterError.
package sniff

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Supported maps user-facing delimiter names to their runes. The CLI accepts
// the names; everything downstream works with the runes.
var Supported = map[string]rune{
	"comma":     ',',
	"tab":       '\t',
	"semicolon": ';',
	"pipe":      '|',
}

// Candidates is the fixed, ordered candidate set used for detection.
var Candidates = []rune{',', '\t', ';', '|'}

// consistencyRatio is the minimum share of sampled lines that must carry a
// candidate's modal occurrence count for that candidate to be considered.
const consistencyRatio = 0.9

// DefaultSampleRows is the number of non-empty lines sampled per file.
const DefaultSampleRows = 50

// Name returns the user-facing name for a supported delimiter rune, or a
// quoted representation for anything else.
func Name(r rune) string {
	for name, cand := range Supported {
		if cand == r {
			return name
		}
	}
	return fmt.Sprintf("%q", r)
}

// AmbiguousDelimiterError reports that sniffing could not determine a unique
// delimiter for a file: either no candidate had a consistent positive count,
// or two candidates tied.
type AmbiguousDelimiterError struct {
	// Path of the offending file; may be empty when detection ran over raw lines.
	Path string
	// Finalists holds the tied candidates, if the failure was a tie.
	Finalists []rune
}

func (e *AmbiguousDelimiterError) Error() string {
	where := e.Path
	if where == "" {
		where = "sample"
	}
	if len(e.Finalists) > 0 {
		names := make([]string, len(e.Finalists))
		for i, r := range e.Finalists {
			names[i] = Name(r)
		}
		return fmt.Sprintf("sniff %s: ambiguous delimiter, candidates %s tie", where, strings.Join(names, " and "))
	}
	return fmt.Sprintf("sniff %s: no candidate delimiter occurs consistently", where)
}

// HeadLines reads up to n non-empty lines from path. Blank lines are skipped
// and do not count toward n. The final line is returned even without a
// trailing newline.
func HeadLines(path string, n int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	lines := make([]string, 0, n)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for len(lines) < n && sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}

// Detect picks the delimiter for the given sampled lines.
//
// Scoring: per candidate, the occurrence count on every line; the modal count
// must be >= 1 and must cover at least consistencyRatio of the lines. Among
// candidates passing that bar, the highest modal count wins. A tie on modal
// count between distinct candidates is an AmbiguousDelimiterError rather than
// a guess.
func Detect(lines []string) (rune, error) {
	type score struct {
		delim rune
		mode  int
	}
	var usable []score

	total := 0
	for _, ln := range lines {
		if strings.TrimSpace(ln) != "" {
			total++
		}
	}
	if total == 0 {
		return 0, &AmbiguousDelimiterError{}
	}

	for _, delim := range Candidates {
		freq := map[int]int{}
		for _, ln := range lines {
			if strings.TrimSpace(ln) == "" {
				continue
			}
			freq[strings.Count(ln, string(delim))]++
		}

		mode, modeLines := 0, 0
		for count, n := range freq {
			if n > modeLines || (n == modeLines && count > mode) {
				mode, modeLines = count, n
			}
		}
		if mode < 1 {
			continue
		}
		if float64(modeLines) < consistencyRatio*float64(total) {
			continue
		}
		usable = append(usable, score{delim: delim, mode: mode})
	}

	if len(usable) == 0 {
		return 0, &AmbiguousDelimiterError{}
	}

	best := usable[0]
	tied := false
	for _, s := range usable[1:] {
		switch {
		case s.mode > best.mode:
			best, tied = s, false
		case s.mode == best.mode:
			tied = true
		}
	}
	if tied {
		var finalists []rune
		for _, s := range usable {
			if s.mode == best.mode {
				finalists = append(finalists, s.delim)
			}
		}
		return 0, &AmbiguousDelimiterError{Finalists: finalists}
	}
	return best.delim, nil
}

// File samples up to sampleRows non-empty lines from path and detects its
// delimiter. Detection failures carry the path.
func File(path string, sampleRows int) (rune, error) {
	if sampleRows <= 0 {
		sampleRows = DefaultSampleRows
	}
	lines, err := HeadLines(path, sampleRows)
	if err != nil {
		return 0, err
	}
	d, err := Detect(lines)
	if err != nil {
		var amb *AmbiguousDelimiterError
		if errors.As(err, &amb) {
			amb.Path = path
		}
		return 0, err
	}
	return d, nil
}
