// Package signature owns the local hash database: loading, exact lookup,
// and safe offline merges. The store is the only mutable domain state the
// engine has, so every write goes through the atomic temp-then-rename path.
package signature

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/BlackVectorOps/filesentry/pkg/models"
)

// StoreFileName is the signature database file inside the data directory.
const StoreFileName = "signatures.json"

// defaultSet seeds a fresh installation. The hashes are placeholder test
// values only; they do not correspond to real malware.
func defaultSet() *models.SignatureSet {
	return &models.SignatureSet{
		Version: "1.0",
		Updated: "2025-01-01",
		Hashes: models.HashBucket{
			SHA256: []string{
				"0000000000000000000000000000000000000000000000000000000000000000",
				"1111111111111111111111111111111111111111111111111111111111111111",
				"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
			},
			Notes: "Placeholder test hashes for pipeline verification.",
		},
	}
}

// Store is the in-process view of the signature database.
// Detection is heavily read biased, so a Read/Write mutex lets concurrent
// lookups proceed and only stops the world during a merge.
type Store struct {
	path  string
	mu    sync.RWMutex
	set   *models.SignatureSet
	index map[string]struct{}
}

// Open loads the signature store at dir/signatures.json, creating a default
// store on first use. A present-but-unparsable store is a hard failure: we
// never silently fall back to an empty set, because an empty set turns every
// known-bad file into a clean verdict.
func Open(dir string) (*Store, error) {
	s := &Store{path: filepath.Join(dir, StoreFileName)}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		if err := writeSetAtomic(s.path, defaultSet()); err != nil {
			return nil, fmt.Errorf("failed to seed default signature store: %w", err)
		}
	}

	set, err := readSet(s.path)
	if err != nil {
		return nil, err
	}
	s.set = set
	s.index = buildIndex(set.Hashes.SHA256)
	return s, nil
}

// Lookup is an exact, case-normalized membership test on a full-content
// SHA-256 hex digest.
func (s *Store) Lookup(hash string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[strings.ToLower(hash)]
	return ok
}

// Count returns the number of distinct hashes currently loaded.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.index)
}

// Set returns a copy of the loaded signature set. Handing out the internal
// slice would let callers mutate the store without the lock.
func (s *Store) Set() models.SignatureSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := *s.set
	out.Hashes.SHA256 = append([]string(nil), s.set.Hashes.SHA256...)
	return out
}

// updateDoc mirrors the update file schema with pointer fields so a missing
// key is distinguishable from an empty value during validation.
type updateDoc struct {
	Version *string `json:"version"`
	Updated *string `json:"updated"`
	Hashes  *struct {
		SHA256 *[]string `json:"sha256"`
		Notes  string    `json:"notes"`
	} `json:"hashes"`
}

// Update validates and merges an offline signature document. Validation is
// all-or-nothing: any violation rejects the whole update and leaves the
// existing store byte-for-byte untouched. Duplicate hashes are deduplicated
// silently and reported as skipped, not errors.
func (s *Store) Update(docPath string) (models.MergeSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := parseUpdateDoc(docPath)
	if err != nil {
		return models.MergeSummary{}, err
	}

	incoming := make(map[string]struct{}, len(*doc.Hashes.SHA256))
	for _, h := range *doc.Hashes.SHA256 {
		incoming[strings.ToLower(h)] = struct{}{}
	}

	added, skipped := 0, 0
	merged := make(map[string]struct{}, len(s.index)+len(incoming))
	for h := range s.index {
		merged[h] = struct{}{}
	}
	for h := range incoming {
		if _, ok := merged[h]; ok {
			skipped++
			continue
		}
		merged[h] = struct{}{}
		added++
	}

	hashes := make([]string, 0, len(merged))
	for h := range merged {
		hashes = append(hashes, h)
	}
	sort.Strings(hashes)

	next := &models.SignatureSet{
		Version: *doc.Version,
		Updated: *doc.Updated,
		Hashes: models.HashBucket{
			SHA256: hashes,
			Notes:  s.set.Hashes.Notes,
		},
	}
	if n := strings.TrimSpace(doc.Hashes.Notes); n != "" {
		next.Hashes.Notes = n
	}

	// Persist before swapping the in-memory view: a failed write must leave
	// both disk and memory on the previous committed version.
	if err := writeSetAtomic(s.path, next); err != nil {
		return models.MergeSummary{}, fmt.Errorf("failed to persist merged signature store: %w", err)
	}

	s.set = next
	s.index = merged

	return models.MergeSummary{
		Added:   added,
		Skipped: skipped,
		Total:   len(merged),
		Version: next.Version,
		Updated: next.Updated,
	}, nil
}

func parseUpdateDoc(docPath string) (*updateDoc, error) {
	f, err := os.Open(filepath.Clean(docPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open signature update file: %w", err)
	}
	defer f.Close()

	var doc updateDoc
	decoder := json.NewDecoder(io.LimitReader(f, models.MaxStoreSizeBytes))
	if err := decoder.Decode(&doc); err != nil {
		return nil, &models.ValidationError{Reason: fmt.Sprintf("update document is not well-formed JSON: %v", err)}
	}

	if doc.Version == nil || doc.Updated == nil || doc.Hashes == nil {
		return nil, &models.ValidationError{Reason: "update document missing required keys: version, updated, hashes"}
	}
	if doc.Hashes.SHA256 == nil {
		return nil, &models.ValidationError{Reason: "hashes.sha256 must be a list"}
	}
	for _, h := range *doc.Hashes.SHA256 {
		if !isHexDigest(h) {
			return nil, &models.ValidationError{Reason: fmt.Sprintf("invalid sha256 entry %q: must be a 64-character hex string", h)}
		}
	}
	return &doc, nil
}

// isHexDigest accepts exactly 64 hex characters, either case.
func isHexDigest(s string) bool {
	if len(s) != 64 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

func buildIndex(hashes []string) map[string]struct{} {
	index := make(map[string]struct{}, len(hashes))
	for _, h := range hashes {
		index[strings.ToLower(h)] = struct{}{}
	}
	return index
}

func readSet(path string) (*models.SignatureSet, error) {
	cleanPath := filepath.Clean(path)

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("signature store unavailable at %s: %w", cleanPath, err)
	}
	// Refuse named pipes and devices; reading a blocking pipe would hang
	// the scanner indefinitely.
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("signature store path %s is not a regular file", cleanPath)
	}

	f, err := os.Open(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open signature store: %w", err)
	}
	defer f.Close()

	var set models.SignatureSet
	decoder := json.NewDecoder(io.LimitReader(f, models.MaxStoreSizeBytes))
	// We wrote this file; unknown fields mean version drift or corruption.
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&set); err != nil {
		return nil, fmt.Errorf("%w: signature store %s failed to parse: %v", models.ErrStoreCorrupt, cleanPath, err)
	}
	for _, h := range set.Hashes.SHA256 {
		if !isHexDigest(h) {
			return nil, fmt.Errorf("%w: signature store contains invalid hash %q", models.ErrStoreCorrupt, h)
		}
	}
	return &set, nil
}

// writeSetAtomic writes to a temp file in the same directory, syncs, and
// renames into place. A crash mid-write can never leave a truncated store,
// and the temp file stays on the same partition so the rename is atomic.
func writeSetAtomic(path string, set *models.SignatureSet) error {
	dir := filepath.Dir(filepath.Clean(path))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, "signatures-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	// Lock down permissions before any bytes land in the file.
	if err := tmpFile.Chmod(models.FilePermSecure); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to set permissions on temp file: %w", err)
	}

	encoder := json.NewEncoder(tmpFile)
	encoder.SetIndent("", "  ") // Humans need to read this too.
	if err := encoder.Encode(set); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to encode signature store: %w", err)
	}

	// Force flush to disk hardware. OS buffers lie to us.
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync signature store: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), path); err != nil {
		return fmt.Errorf("failed to replace signature store: %w", err)
	}
	return nil
}
