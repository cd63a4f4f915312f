package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/BlackVectorOps/filesentry/pkg/heuristics"
	"github.com/BlackVectorOps/filesentry/pkg/models"
	"github.com/BlackVectorOps/filesentry/pkg/signature"
)

// newTestEngine opens a fresh signature store in its own temp dir and,
// optionally, merges the given hashes into it.
func newTestEngine(t *testing.T, knownHashes ...string) *Engine {
	t.Helper()
	dir := t.TempDir()
	store, err := signature.Open(dir)
	if err != nil {
		t.Fatalf("signature.Open: %v", err)
	}
	if len(knownHashes) > 0 {
		doc := fmt.Sprintf(`{"version":"t","updated":"2026-08-29","hashes":{"sha256":["%s"]}}`,
			strings.Join(knownHashes, `","`))
		docPath := filepath.Join(dir, "update.json")
		if err := os.WriteFile(docPath, []byte(doc), 0644); err != nil {
			t.Fatalf("write update doc: %v", err)
		}
		if _, err := store.Update(docPath); err != nil {
			t.Fatalf("store.Update: %v", err)
		}
	}
	return New(store, heuristics.NewAnalyzer())
}

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func sha256Hex(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func TestScanFileClean(t *testing.T) {
	e := newTestEngine(t)
	path := writeFile(t, t.TempDir(), "notes.txt", []byte("perfectly ordinary notes\n"))

	res := e.ScanFile(path, true)
	if res.Status != models.StatusClean {
		t.Fatalf("status = %s, want clean (reasons: %v)", res.Status, res.Reasons)
	}
	if res.RiskScore != 0 {
		t.Errorf("clean risk score = %d, want 0", res.RiskScore)
	}
	if len(res.Reasons) != 0 {
		t.Errorf("clean result carries reasons: %v", res.Reasons)
	}
	if res.SHA256 == "" {
		t.Error("clean result must carry the content hash")
	}
}

func TestScanFileSignatureMatch(t *testing.T) {
	content := []byte("known bad payload bytes")
	e := newTestEngine(t, sha256Hex(content))
	path := writeFile(t, t.TempDir(), "payload.bin", content)

	res := e.ScanFile(path, true)
	if res.Status != models.StatusSignatureMatch {
		t.Fatalf("status = %s, want signature_match", res.Status)
	}
	if res.RiskScore != models.RiskScoreSignature {
		t.Errorf("risk score = %d, want %d", res.RiskScore, models.RiskScoreSignature)
	}
	if len(res.Reasons) != 1 {
		t.Errorf("signature match should carry exactly one reason, got %v", res.Reasons)
	}
}

func TestEicarDetectedRegardlessOfExtension(t *testing.T) {
	e := newTestEngine(t)
	dir := t.TempDir()

	for _, name := range []string{"eicar.com", "eicar.txt", "eicar.jpg", "noext"} {
		path := writeFile(t, dir, name, []byte(EicarString))
		res := e.ScanFile(path, true)
		if res.Status != models.StatusEicarTest {
			t.Errorf("%s: status = %s, want eicar_test", name, res.Status)
		}
		if res.RiskScore != models.RiskScoreEicar {
			t.Errorf("%s: risk score = %d, want %d", name, res.RiskScore, models.RiskScoreEicar)
		}
		if len(res.Reasons) != 1 || !strings.Contains(res.Reasons[0], "harmless test signature") {
			t.Errorf("%s: reason must identify a harmless test signature, got %v", name, res.Reasons)
		}
	}
}

func TestEicarTakesPrecedenceOverSignature(t *testing.T) {
	// Even with the EICAR file's own hash in the signature store, the EICAR
	// verdict wins: it is a deliberate test, not an unknown threat.
	content := []byte(EicarString)
	e := newTestEngine(t, sha256Hex(content))
	path := writeFile(t, t.TempDir(), "planted.bin", content)

	res := e.ScanFile(path, true)
	if res.Status != models.StatusEicarTest {
		t.Fatalf("status = %s, want eicar_test over signature_match", res.Status)
	}
}

func TestEicarSubstringShortCircuitsSignature(t *testing.T) {
	// A file that merely contains the test string alongside other content
	// still short-circuits signature matching.
	content := append([]byte("prefix bytes "), []byte(EicarString)...)
	content = append(content, []byte(" suffix")...)
	e := newTestEngine(t, sha256Hex(content))
	path := writeFile(t, t.TempDir(), "embedded.dat", content)

	res := e.ScanFile(path, true)
	if res.Status != models.StatusEicarTest {
		t.Fatalf("status = %s, want eicar_test", res.Status)
	}
}

func TestHeuristicFlagDoubleExtension(t *testing.T) {
	e := newTestEngine(t)
	path := writeFile(t, t.TempDir(), "report.pdf.exe", []byte("harmless text, hostile name"))

	res := e.ScanFile(path, true)
	if res.Status != models.StatusHeuristicFlag {
		t.Fatalf("status = %s, want heuristic_flag", res.Status)
	}
	found := false
	for _, reason := range res.Reasons {
		if strings.Contains(reason, ".pdf") && strings.Contains(reason, ".exe") {
			found = true
		}
	}
	if !found {
		t.Errorf("reasons %v must include the masquerade naming both extensions", res.Reasons)
	}
	if res.RiskScore < models.RiskScoreHeuristicMin || res.RiskScore > models.RiskScoreHeuristicMax {
		t.Errorf("heuristic risk score %d outside [1,99]", res.RiskScore)
	}
}

func TestHeuristicsDisabledYieldsClean(t *testing.T) {
	e := newTestEngine(t)
	path := writeFile(t, t.TempDir(), "report.pdf.exe", []byte("content"))

	res := e.ScanFile(path, false)
	if res.Status != models.StatusClean {
		t.Fatalf("heuristics off: status = %s, want clean", res.Status)
	}
}

func TestHeaderMismatchFinding(t *testing.T) {
	e := newTestEngine(t)
	// PE marker under a claimed PDF extension.
	path := writeFile(t, t.TempDir(), "manual.pdf", []byte("MZ\x90\x00rest of fake binary"))

	res := e.ScanFile(path, true)
	if res.Status != models.StatusHeuristicFlag {
		t.Fatalf("status = %s, want heuristic_flag", res.Status)
	}
	found := false
	for _, reason := range res.Reasons {
		if strings.Contains(reason, "mismatch") {
			found = true
		}
	}
	if !found {
		t.Errorf("reasons %v must include the header/extension mismatch", res.Reasons)
	}
}

func TestHeaderMismatchForRenamedExecutable(t *testing.T) {
	e := newTestEngine(t)
	// PE marker under a plain-text name: the classic "screensaver.txt" drop.
	path := writeFile(t, t.TempDir(), "readme.txt", []byte("MZ\x90\x00\x03\x00\x00\x00padding"))

	res := e.ScanFile(path, true)
	if res.Status != models.StatusHeuristicFlag {
		t.Fatalf("status = %s, want heuristic_flag", res.Status)
	}
	found := false
	for _, reason := range res.Reasons {
		if strings.Contains(reason, "mismatch") {
			found = true
		}
	}
	if !found {
		t.Errorf("reasons %v must include the header/extension mismatch", res.Reasons)
	}
}

func TestScanFileUnreadable(t *testing.T) {
	e := newTestEngine(t)

	res := e.ScanFile(filepath.Join(t.TempDir(), "does-not-exist"), true)
	if res.Status != models.StatusError {
		t.Fatalf("status = %s, want error", res.Status)
	}
	if res.SHA256 != "" {
		t.Error("error result must not carry a hash")
	}
	if len(res.Reasons) != 1 || !strings.Contains(res.Reasons[0], "cannot read file") {
		t.Errorf("error result needs a single cannot-read reason, got %v", res.Reasons)
	}

	// The omitempty contract: no sha256 key on serialized error results.
	raw, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "sha256") {
		t.Errorf("serialized error result leaks a sha256 field: %s", raw)
	}
}

func TestScanFileIsDeterministic(t *testing.T) {
	e := newTestEngine(t)
	path := writeFile(t, t.TempDir(), "urgent.invoice.pdf.exe", []byte("multi-rule trigger"))

	first := e.ScanFile(path, true)
	second := e.ScanFile(path, true)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("same file, same store, different results:\n%+v\n%+v", first, second)
	}

	rawA, _ := json.Marshal(first)
	rawB, _ := json.Marshal(second)
	if string(rawA) != string(rawB) {
		t.Errorf("serialized results differ:\n%s\n%s", rawA, rawB)
	}
}

func TestExactlyOneStatusPerFile(t *testing.T) {
	e := newTestEngine(t)
	dir := t.TempDir()

	cases := map[string][]byte{
		"clean.txt":      []byte("hello"),
		"eicar.txt":      []byte(EicarString),
		"report.pdf.exe": []byte("flag me"),
	}
	valid := map[string]bool{
		models.StatusClean: true, models.StatusSignatureMatch: true,
		models.StatusHeuristicFlag: true, models.StatusEicarTest: true,
		models.StatusError: true,
	}
	for name, content := range cases {
		res := e.ScanFile(writeFile(t, dir, name, content), true)
		if !valid[res.Status] {
			t.Errorf("%s: unknown status %q", name, res.Status)
		}
	}
}
