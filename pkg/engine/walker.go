package engine

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/BlackVectorOps/filesentry/pkg/models"
)

// ScanDirectory enumerates files under root and scans each one on a bounded
// worker pool. One unreadable file degrades that file's result only; the
// walk never aborts for per-file trouble. Results are sorted by path before
// the summary is derived, so the report is identical whatever order the
// workers finished in.
//
// Cancellation is all-or-nothing at the report level: a cancelled context
// discards partial results and fails the operation.
func (e *Engine) ScanDirectory(ctx context.Context, root string, recursive, heuristicsEnabled bool) ([]models.ScanResult, error) {
	files, walkResults, err := collectFiles(root, recursive)
	if err != nil {
		return nil, err
	}

	var (
		results = walkResults
		mu      sync.Mutex
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for _, file := range files {
		f := file
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			res := e.ScanFile(f, heuristicsEnabled)
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("directory scan aborted: %w", err)
	}

	// Deterministic output: execution order must not leak into the report.
	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})
	return results, nil
}

// collectFiles enumerates scan targets under root. Directories are
// traversed, never scanned as targets. Entries that cannot be enumerated
// become error results for their path instead of failing the walk.
func collectFiles(root string, recursive bool) ([]string, []models.ScanResult, error) {
	root = filepath.Clean(root)

	if !recursive {
		return collectShallow(root)
	}

	var (
		files       []string
		walkResults []models.ScanResult
	)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Root-level failure means the whole target is inaccessible;
			// anything deeper degrades only that entry.
			if path == root {
				return err
			}
			log.WithFields(log.Fields{"path": path, "error": err}).Warn("skipping unreadable entry")
			walkResults = append(walkResults, errorResult(path, err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() && d.Type()&fs.ModeSymlink == 0 {
			walkResults = append(walkResults, errorResult(path, fmt.Errorf("not a regular file")))
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return files, walkResults, nil
}

func collectShallow(root string) ([]string, []models.ScanResult, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read directory %s: %w", root, err)
	}

	var (
		files       []string
		walkResults []models.ScanResult
	)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(root, entry.Name())
		// Irregular entries (sockets, fifos, devices) would hang or fail the
		// read; surface them as per-file errors rather than blocking.
		if !entry.Type().IsRegular() && entry.Type()&fs.ModeSymlink == 0 {
			walkResults = append(walkResults, errorResult(path, fmt.Errorf("not a regular file")))
			continue
		}
		files = append(files, path)
	}
	return files, walkResults, nil
}
