package storage

import (
	"fmt"

	"github.com/BlackVectorOps/filesentry/pkg/models"
	"github.com/BlackVectorOps/filesentry/pkg/storage/jsondb"
	"github.com/BlackVectorOps/filesentry/pkg/storage/sqlitedb"
)

// HistoryProvider defines the contract for append-only scan history
// persistence. The engine never edits or deletes an entry; backends only
// grow. Implementations are selected by configuration, never by runtime
// type inspection.
type HistoryProvider interface {
	// Append persists one completed report. It must hold exclusive write
	// access for the duration so a reader never observes a partial entry.
	Append(report *models.ScanReport) error
	// ReadAll returns persisted reports newest-first, capped at the
	// backend's read limit.
	ReadAll() ([]models.ScanReport, error)
	Close() error
}

// Open selects and initializes the history backend for this invocation.
func Open(backend, dataDir string) (HistoryProvider, error) {
	switch backend {
	case models.BackendSQLite:
		return sqlitedb.Open(dataDir)
	case models.BackendJSON:
		return jsondb.Open(dataDir)
	default:
		return nil, &models.ArgumentError{Reason: fmt.Sprintf("unknown storage backend %q", backend)}
	}
}
