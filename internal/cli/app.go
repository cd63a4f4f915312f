// Package cli orchestrates the four engine operations behind the command
// contract: scan-file, scan-dir, update-signatures, history. Front-ends
// (terminal, web shell, desktop host) call these and render the JSON; no
// scanning logic lives outside the engine packages.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BlackVectorOps/filesentry/internal/config"
	"github.com/BlackVectorOps/filesentry/pkg/engine"
	"github.com/BlackVectorOps/filesentry/pkg/models"
	"github.com/BlackVectorOps/filesentry/pkg/signature"
	"github.com/BlackVectorOps/filesentry/pkg/storage"
)

// App wires configuration and an output sink into the engine operations.
// Exactly one JSON document is written to Out per successful invocation.
type App struct {
	Config *config.Config
	Out    io.Writer
}

// NewApp builds an app over resolved configuration.
func NewApp(cfg *config.Config, out io.Writer) *App {
	return &App{Config: cfg, Out: out}
}

// RunScanFile scans a single file and emits its report. An unreadable
// target is a hard failure here: in single-file mode there is no sibling
// result to degrade gracefully next to.
func (a *App) RunScanFile(ctx context.Context, path string, heuristicsEnabled bool, backend string) error {
	target, err := requireFile(path)
	if err != nil {
		return err
	}

	eng, err := a.newEngine()
	if err != nil {
		return err
	}

	result := eng.ScanFile(target, heuristicsEnabled)
	if result.Status == models.StatusError {
		return fmt.Errorf("%s", result.Reasons[0])
	}

	report := engine.BuildReport(target, models.ModeFile, heuristicsEnabled, backend, []models.ScanResult{result})
	return a.persistAndEmit(report, backend)
}

// RunScanDir scans a directory tree and emits the aggregate report.
func (a *App) RunScanDir(ctx context.Context, path string, recursive, heuristicsEnabled bool, backend string) error {
	target, err := requireDir(path)
	if err != nil {
		return err
	}

	eng, err := a.newEngine()
	if err != nil {
		return err
	}

	results, err := eng.ScanDirectory(ctx, target, recursive, heuristicsEnabled)
	if err != nil {
		return err
	}

	report := engine.BuildReport(target, models.ModeDirectory, heuristicsEnabled, backend, results)
	return a.persistAndEmit(report, backend)
}

// RunUpdate validates and merges an offline signature document, then emits
// the merge summary. The history backend is never involved: signature
// updates mutate only the signature store.
func (a *App) RunUpdate(path string) error {
	docPath, err := requireFile(path)
	if err != nil {
		return err
	}

	store, err := signature.Open(a.Config.DataDir)
	if err != nil {
		return err
	}

	summary, err := store.Update(docPath)
	if err != nil {
		return err
	}

	return a.emit(models.UpdateOutput{Status: "ok", Summary: summary})
}

// RunHistory reads back persisted reports from the chosen backend.
func (a *App) RunHistory(backend string) error {
	hist, err := storage.Open(backend, a.Config.DataDir)
	if err != nil {
		return err
	}
	defer hist.Close()

	entries, err := hist.ReadAll()
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []models.ScanReport{}
	}
	return a.emit(models.HistoryOutput{Storage: backend, History: entries})
}

func (a *App) newEngine() (*engine.Engine, error) {
	store, err := signature.Open(a.Config.DataDir)
	if err != nil {
		return nil, err
	}
	return engine.New(store, a.Config.Analyzer()), nil
}

// persistAndEmit appends the report to history, then writes it to the
// output sink. Persistence failures abort before anything reaches stdout:
// a report the caller saw but history lost would break reproducibility.
func (a *App) persistAndEmit(report *models.ScanReport, backend string) error {
	hist, err := storage.Open(backend, a.Config.DataDir)
	if err != nil {
		return err
	}
	defer hist.Close()

	if err := hist.Append(report); err != nil {
		return err
	}
	return a.emit(report)
}

func (a *App) emit(payload any) error {
	encoder := json.NewEncoder(a.Out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

func requireFile(path string) (string, error) {
	if path == "" {
		return "", &models.ArgumentError{Reason: "a --path is required"}
	}
	clean := filepath.Clean(expandHome(path))
	info, err := os.Stat(clean)
	if err != nil {
		return "", &models.ArgumentError{Reason: fmt.Sprintf("target path is not a readable file: %v", err)}
	}
	if !info.Mode().IsRegular() {
		return "", &models.ArgumentError{Reason: fmt.Sprintf("target path %s is not a regular file", clean)}
	}
	return clean, nil
}

func requireDir(path string) (string, error) {
	if path == "" {
		return "", &models.ArgumentError{Reason: "a --path is required"}
	}
	clean := filepath.Clean(expandHome(path))
	info, err := os.Stat(clean)
	if err != nil {
		return "", &models.ArgumentError{Reason: fmt.Sprintf("target path is not a readable directory: %v", err)}
	}
	if !info.IsDir() {
		return "", &models.ArgumentError{Reason: fmt.Sprintf("target path %s is not a directory", clean)}
	}
	return clean, nil
}

func expandHome(path string) string {
	if len(path) >= 2 && path[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
