// Package engine orchestrates per-file scanning: hashing, EICAR detection,
// signature lookup and heuristic evaluation, plus directory walking and
// report assembly. The engine only ever reads scan targets; it never
// modifies or deletes them.
package engine

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/BlackVectorOps/filesentry/pkg/heuristics"
	"github.com/BlackVectorOps/filesentry/pkg/models"
	"github.com/BlackVectorOps/filesentry/pkg/signature"
)

// Engine evaluates files against the loaded signature store and the
// heuristic rule set. It holds no per-file state; one Engine serves an
// entire invocation, sequential or pooled.
type Engine struct {
	signatures *signature.Store
	analyzer   *heuristics.Analyzer
}

// New builds an engine over an opened signature store.
func New(signatures *signature.Store, analyzer *heuristics.Analyzer) *Engine {
	if analyzer == nil {
		analyzer = heuristics.NewAnalyzer()
	}
	return &Engine{signatures: signatures, analyzer: analyzer}
}

// ScanFile produces the verdict for one file. Detection precedence is fixed:
// EICAR > signature > heuristic > clean. The result is deterministic for
// unchanged input: same bytes, same store, same verdict, byte for byte.
//
// Any I/O failure short-circuits to a status=error result for this file
// only; the caller decides whether that aborts the operation (single-file
// mode) or degrades one entry (directory mode).
func (e *Engine) ScanFile(path string, heuristicsEnabled bool) models.ScanResult {
	hashHex, sample, size, err := hashAndSample(path)
	if err != nil {
		return errorResult(path, err)
	}

	if isEicar(hashHex, sample) {
		return models.ScanResult{
			Path:      path,
			Status:    models.StatusEicarTest,
			RiskScore: models.RiskScoreEicar,
			SHA256:    hashHex,
			Reasons:   []string{EicarReason},
		}
	}

	if e.signatures.Lookup(hashHex) {
		return models.ScanResult{
			Path:      path,
			Status:    models.StatusSignatureMatch,
			RiskScore: models.RiskScoreSignature,
			SHA256:    hashHex,
			Reasons:   []string{"Known malicious signature match (offline signature set)."},
		}
	}

	if heuristicsEnabled {
		findings := e.analyzer.Evaluate(buildTarget(path, sample, size))
		if len(findings) > 0 {
			return heuristicResult(path, hashHex, findings)
		}
	}

	return models.ScanResult{
		Path:      path,
		Status:    models.StatusClean,
		RiskScore: 0,
		SHA256:    hashHex,
		Reasons:   []string{},
	}
}

// hashAndSample streams the full content through SHA-256 while capturing a
// bounded leading sample in the same pass. One open, one read sequence:
// the hash always covers every byte, the sample never exceeds its cap.
func hashAndSample(path string) (string, []byte, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil, 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", nil, 0, err
	}
	if info.IsDir() {
		return "", nil, 0, fmt.Errorf("target is a directory")
	}

	hasher := sha256.New()
	var sampleBuf bytes.Buffer
	buf := make([]byte, models.HashChunkBytes)

	for {
		n, readErr := f.Read(buf)
		if n > 0 {
			hasher.Write(buf[:n])
			if remaining := models.MaxSampleBytes - sampleBuf.Len(); remaining > 0 {
				take := n
				if take > remaining {
					take = remaining
				}
				sampleBuf.Write(buf[:take])
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return "", nil, 0, readErr
		}
	}

	return hex.EncodeToString(hasher.Sum(nil)), sampleBuf.Bytes(), info.Size(), nil
}

func buildTarget(path string, sample []byte, size int64) heuristics.Target {
	header := sample
	if len(header) > heuristics.HeaderLen {
		header = header[:heuristics.HeaderLen]
	}
	return heuristics.Target{
		Path:   path,
		Name:   filepath.Base(path),
		Size:   size,
		Header: header,
		Sample: sample,
	}
}

func heuristicResult(path, hashHex string, findings []heuristics.Finding) models.ScanResult {
	score := 0
	reasons := make([]string, 0, len(findings))
	for _, f := range findings {
		score += f.Weight
		reasons = append(reasons, f.Reason)
	}
	// Clamp into [1,99]: a heuristic verdict always scores, and never
	// reaches the certainty reserved for signature hits.
	if score < models.RiskScoreHeuristicMin {
		score = models.RiskScoreHeuristicMin
	}
	if score > models.RiskScoreHeuristicMax {
		score = models.RiskScoreHeuristicMax
	}
	return models.ScanResult{
		Path:      path,
		Status:    models.StatusHeuristicFlag,
		RiskScore: score,
		SHA256:    hashHex,
		Reasons:   reasons,
	}
}

// errorResult records a per-file failure: no hash, a single reason, and a
// zero score. Errors still count as flagged in the report summary.
func errorResult(path string, err error) models.ScanResult {
	log.WithFields(log.Fields{"path": path, "error": err}).Warn("file unreadable")
	return models.ScanResult{
		Path:      path,
		Status:    models.StatusError,
		RiskScore: 0,
		Reasons:   []string{fmt.Sprintf("cannot read file: %v", err)},
	}
}
