package signature

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BlackVectorOps/filesentry/pkg/models"
)

func writeUpdateDoc(t *testing.T, dir string, doc string) string {
	t.Helper()
	path := filepath.Join(dir, "update.json")
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatalf("write update doc: %v", err)
	}
	return path
}

func TestOpenSeedsDefaultStore(t *testing.T) {
	dir := t.TempDir()

	store, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if store.Count() != 3 {
		t.Errorf("fresh store hash count = %d, want 3 placeholder hashes", store.Count())
	}
	if _, err := os.Stat(filepath.Join(dir, StoreFileName)); err != nil {
		t.Errorf("signatures.json should exist after first open: %v", err)
	}
}

func TestLookupIsCaseNormalized(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if !store.Lookup("AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA") {
		t.Error("uppercase form of a stored hash must match")
	}
	if store.Lookup(strings.Repeat("9", 64)) {
		t.Error("absent hash must not match")
	}
}

func TestOpenRejectsCorruptStore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, StoreFileName)
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("write corrupt store: %v", err)
	}

	_, err := Open(dir)
	if !errors.Is(err, models.ErrStoreCorrupt) {
		t.Fatalf("Open on corrupt store: err=%v, want ErrStoreCorrupt", err)
	}
}

func TestOpenRejectsInvalidHashInStore(t *testing.T) {
	dir := t.TempDir()
	bad := models.SignatureSet{
		Version: "1.0",
		Updated: "2025-01-01",
		Hashes:  models.HashBucket{SHA256: []string{"tooshort"}},
	}
	raw, _ := json.Marshal(bad)
	if err := os.WriteFile(filepath.Join(dir, StoreFileName), raw, 0600); err != nil {
		t.Fatalf("write store: %v", err)
	}

	if _, err := Open(dir); !errors.Is(err, models.ErrStoreCorrupt) {
		t.Fatalf("err=%v, want ErrStoreCorrupt", err)
	}
}

func TestUpdateMergesAndCounts(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	newHash := strings.Repeat("b", 64)
	existing := strings.Repeat("a", 64)
	doc := `{"version":"2.0","updated":"2026-08-01","hashes":{"sha256":["` + newHash + `","` + strings.ToUpper(existing) + `"]}}`
	path := writeUpdateDoc(t, dir, doc)

	summary, err := store.Update(path)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if summary.Added != 1 || summary.Skipped != 1 {
		t.Errorf("summary = added %d skipped %d, want 1/1", summary.Added, summary.Skipped)
	}
	if summary.Total != 4 {
		t.Errorf("total = %d, want 4", summary.Total)
	}
	if !store.Lookup(newHash) {
		t.Error("merged hash must be immediately visible to lookups")
	}
}

func TestUpdateIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	doc := `{"version":"2.0","updated":"2026-08-01","hashes":{"sha256":["` + strings.Repeat("c", 64) + `"]}}`
	path := writeUpdateDoc(t, dir, doc)

	first, err := store.Update(path)
	if err != nil {
		t.Fatalf("first Update: %v", err)
	}
	second, err := store.Update(path)
	if err != nil {
		t.Fatalf("second Update: %v", err)
	}
	if second.Added != 0 {
		t.Errorf("second run added = %d, want 0", second.Added)
	}
	if second.Total != first.Total {
		t.Errorf("second run total = %d, want %d", second.Total, first.Total)
	}
}

func TestUpdateRejectsMissingKeys(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	before := store.Count()

	docs := []string{
		`{"updated":"2026-08-01","hashes":{"sha256":[]}}`,
		`{"version":"2.0","hashes":{"sha256":[]}}`,
		`{"version":"2.0","updated":"2026-08-01"}`,
		`{"version":"2.0","updated":"2026-08-01","hashes":{}}`,
		`not json at all`,
	}
	for _, doc := range docs {
		path := writeUpdateDoc(t, dir, doc)
		if _, err := store.Update(path); !models.IsValidation(err) {
			t.Errorf("doc %q: err=%v, want ValidationError", doc, err)
		}
	}

	if store.Count() != before {
		t.Errorf("rejected updates mutated the store: count %d -> %d", before, store.Count())
	}
}

func TestUpdateRejectsBadHashLeavingStoreUntouched(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	good := strings.Repeat("d", 64)
	doc := `{"version":"2.0","updated":"2026-08-01","hashes":{"sha256":["` + good + `","zz-not-hex"]}}`
	path := writeUpdateDoc(t, dir, doc)

	if _, err := store.Update(path); !models.IsValidation(err) {
		t.Fatalf("err=%v, want ValidationError", err)
	}
	// All-or-nothing: the valid hash from the rejected document must not land.
	if store.Lookup(good) {
		t.Error("partially applied update: valid hash from a rejected document is present")
	}

	reloaded, err := Open(dir)
	if err != nil {
		t.Fatalf("re-open after rejected update: %v", err)
	}
	if reloaded.Count() != 3 {
		t.Errorf("on-disk store changed by rejected update: count = %d, want 3", reloaded.Count())
	}
}

func TestUpdatePersistsAtomically(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	doc := `{"version":"3.0","updated":"2026-08-15","hashes":{"sha256":["` + strings.Repeat("e", 64) + `"]}}`
	if _, err := store.Update(writeUpdateDoc(t, dir, doc)); err != nil {
		t.Fatalf("Update: %v", err)
	}

	// No temp droppings may survive a successful update.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("leftover temp file %s after update", e.Name())
		}
	}

	reloaded, err := Open(dir)
	if err != nil {
		t.Fatalf("re-open: %v", err)
	}
	if !reloaded.Lookup(strings.Repeat("e", 64)) {
		t.Error("merged hash missing after reload")
	}
	if reloaded.Set().Version != "3.0" {
		t.Errorf("version = %q, want 3.0", reloaded.Set().Version)
	}
}
