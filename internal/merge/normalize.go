package merge

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"concat/internal/datasource/file"
	csvparser "concat/internal/parser/csv"
)

// rewriteDelimited copies srcPath to dstPath re-delimited from "from" to
// "to", streaming in chunks of chunkSize rows. The header row is carried over
// unchanged apart from the delimiter.
func rewriteDelimited(ctx context.Context, srcPath, dstPath string, from, to rune, chunkSize int) error {
	hdrRC, err := file.NewLocal(srcPath).Open(ctx)
	if err != nil {
		return err
	}
	header, err := csvparser.PeekHeader(hdrRC, from)
	hdrRC.Close()
	if err != nil {
		return fmt.Errorf("peek header %s: %w", srcPath, err)
	}
	if len(header) == 0 {
		return fmt.Errorf("normalize %s: no header row", srcPath)
	}

	rc, err := file.NewLocal(srcPath).Open(ctx)
	if err != nil {
		return err
	}
	defer rc.Close()

	w, err := csvparser.NewWriter(dstPath, to)
	if err != nil {
		return err
	}
	if err := w.Write(header); err != nil {
		_ = w.Close()
		return err
	}

	err = csvparser.StreamChunks(ctx, rc, from, true, len(header), chunkSize, func(rows [][]string) error {
		return w.WriteAll(rows)
	})
	if err != nil {
		_ = w.Close()
		return fmt.Errorf("normalize %s: %w", srcPath, err)
	}
	return w.Close()
}

// normalizeFiles rewrites every path whose delimiter differs from target into
// dir, using a bounded worker pool. Each task owns its own source and
// destination files; there is no shared mutable state, and results are read
// back in the caller's original path order.
//
// The returned map holds original path → rewritten path for exactly the files
// that were rewritten.
func normalizeFiles(
	ctx context.Context,
	paths []string,
	delims map[string]rune,
	target rune,
	dir string,
	workers int,
	chunkSize int,
	verbose bool,
) (map[string]string, error) {
	rewritten := make(map[string]string)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, p := range paths {
		from := delims[p]
		if from == target {
			continue
		}
		// Index prefix keeps same-named files from different directories apart.
		dst := filepath.Join(dir, fmt.Sprintf("%03d_%s", i, filepath.Base(p)))
		rewritten[p] = dst

		p := p
		g.Go(func() error {
			if verbose {
				log.Printf("normalize: %s (%s -> %s)", p, string(from), string(target))
			}
			return rewriteDelimited(ctx, p, dst, from, target, chunkSize)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rewritten, nil
}
