// Package testutil holds fixture helpers shared by the scanner test suites.
// Nothing here ships in release binaries.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteFile drops a fixture file into dir and returns its full path.
// Exported for use in external test packages.
func WriteFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", name, err)
	}
	return path
}

// RepeatedDigest builds a syntactically valid sha256 hex digest from a single
// repeated character. Handy for seeding stores without hashing anything.
func RepeatedDigest(c byte) string {
	return strings.Repeat(string(c), 64)
}

// UpdateDocument writes a well-formed signature update document and returns
// its path. Callers that need a malformed document write it by hand.
func UpdateDocument(t *testing.T, dir, version, updated string, hashes []string) string {
	t.Helper()
	doc := map[string]any{
		"version": version,
		"updated": updated,
		"hashes": map[string]any{
			"sha256": hashes,
		},
	}
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		t.Fatalf("failed to marshal update document: %v", err)
	}
	return WriteFile(t, dir, "update.json", payload)
}
