// Package jsondb implements the flat-file history backend: a single JSON
// array of scan reports, rewritten atomically on every append.
package jsondb

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/BlackVectorOps/filesentry/pkg/models"
)

// HistoryFileName is the history log file inside the data directory.
const HistoryFileName = "scan_history.json"

// History is the JSON-backed history log. Appends rewrite the whole array;
// that is acceptable because the log is capped in practice by the read limit
// and the 64MB store ceiling, and a rewrite buys us the same atomicity
// discipline the signature store uses.
type History struct {
	path string
	mu   sync.Mutex
}

// Open prepares the JSON history log, bootstrapping an empty array on first
// use. An existing file that fails to parse is surfaced as StoreCorrupt;
// silently resetting the log would violate the append-only guarantee.
func Open(dataDir string) (*History, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	h := &History{path: filepath.Join(dataDir, HistoryFileName)}

	if _, err := os.Stat(h.path); os.IsNotExist(err) {
		if err := h.writeAtomic([]models.ScanReport{}); err != nil {
			return nil, err
		}
		return h, nil
	}

	// Validate eagerly so a corrupt log fails the operation up front rather
	// than after a scan has already done its work.
	if _, err := h.readAll(); err != nil {
		return nil, err
	}
	return h, nil
}

// Append adds one report to the end of the log.
func (h *History) Append(report *models.ScanReport) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	entries, err := h.readAll()
	if err != nil {
		return err
	}
	entries = append(entries, *report)
	return h.writeAtomic(entries)
}

// ReadAll returns reports newest-first, capped at HistoryReadLimit.
func (h *History) ReadAll() ([]models.ScanReport, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	entries, err := h.readAll()
	if err != nil {
		return nil, err
	}

	// The file stores append order; reverse for newest-first parity with
	// the sqlite backend.
	out := make([]models.ScanReport, 0, len(entries))
	for i := len(entries) - 1; i >= 0 && len(out) < models.HistoryReadLimit; i-- {
		out = append(out, entries[i])
	}
	return out, nil
}

func (h *History) Close() error { return nil }

func (h *History) readAll() ([]models.ScanReport, error) {
	f, err := os.Open(h.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history log: %w", err)
	}
	defer f.Close()

	var entries []models.ScanReport
	decoder := json.NewDecoder(io.LimitReader(f, models.MaxStoreSizeBytes))
	if err := decoder.Decode(&entries); err != nil {
		return nil, fmt.Errorf("%w: history log %s failed to parse: %v", models.ErrStoreCorrupt, h.path, err)
	}
	return entries, nil
}

// writeAtomic mirrors the signature store's temp-sync-rename discipline so a
// crash mid-append can never truncate the log.
func (h *History) writeAtomic(entries []models.ScanReport) error {
	dir := filepath.Dir(h.path)
	tmpFile, err := os.CreateTemp(dir, "history-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if err := tmpFile.Chmod(models.FilePermSecure); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to set permissions on temp file: %w", err)
	}

	encoder := json.NewEncoder(tmpFile)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(entries); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to encode history log: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync history log: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := os.Rename(tmpFile.Name(), h.path); err != nil {
		return fmt.Errorf("failed to replace history log: %w", err)
	}
	return nil
}
