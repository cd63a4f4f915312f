// Package sqlitedb implements the embedded-database history backend on
// sqlite3 via gorm. Each report row carries its summary columns for cheap
// querying plus the full report JSON for lossless readback.
package sqlitedb

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/jinzhu/gorm"
	// sqlite dialect for gorm
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	log "github.com/sirupsen/logrus"

	"github.com/BlackVectorOps/filesentry/pkg/models"
)

// HistoryFileName is the sqlite database file inside the data directory.
const HistoryFileName = "scan_history.db"

// ScanRecord is one persisted scan report. The summary columns are
// denormalized from the report so operators can query the table directly;
// ReportJSON remains the source of truth for readback.
type ScanRecord struct {
	gorm.Model
	Timestamp         string
	Target            string
	Mode              string
	HeuristicsEnabled bool
	Storage           string
	FilesScanned      int
	Flagged           int
	ReportJSON        string `gorm:"type:text"`
}

// TableName pins the table to the historical name used by the flat schema.
func (ScanRecord) TableName() string { return "scans" }

// History is the sqlite-backed history log.
type History struct {
	db *gorm.DB
}

// Open opens or creates the history database and migrates the schema.
func Open(dataDir string) (*History, error) {
	path := filepath.Join(dataDir, HistoryFileName)
	db, err := gorm.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite history db %s: %w", path, err)
	}

	if err := db.AutoMigrate(&ScanRecord{}).Error; err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: sqlite history schema migration failed: %v", models.ErrStoreCorrupt, err)
	}
	return &History{db: db}, nil
}

// Append inserts one report row. The insert runs in a transaction, so a
// reader never observes a half-written entry.
func (h *History) Append(report *models.ScanReport) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	record := ScanRecord{
		Timestamp:         report.Timestamp,
		Target:            report.Target,
		Mode:              report.Mode,
		HeuristicsEnabled: report.HeuristicsEnabled,
		Storage:           report.Storage,
		FilesScanned:      report.Summary.FilesScanned,
		Flagged:           report.Summary.Flagged,
		ReportJSON:        string(raw),
	}
	if err := h.db.Create(&record).Error; err != nil {
		return fmt.Errorf("failed to append history record: %w", err)
	}
	return nil
}

// ReadAll returns reports newest-first, capped at HistoryReadLimit.
// A row whose JSON no longer parses is skipped with a warning rather than
// failing the whole read; the append path guarantees we wrote valid JSON,
// so a bad row means external tampering, not engine state.
func (h *History) ReadAll() ([]models.ScanReport, error) {
	var records []ScanRecord
	if err := h.db.Order("id desc").Limit(models.HistoryReadLimit).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to read history records: %w", err)
	}

	out := make([]models.ScanReport, 0, len(records))
	for _, rec := range records {
		var report models.ScanReport
		if err := json.Unmarshal([]byte(rec.ReportJSON), &report); err != nil {
			log.WithField("record_id", rec.ID).Warn("skipping unparsable history record")
			continue
		}
		out = append(out, report)
	}
	return out, nil
}

func (h *History) Close() error {
	return h.db.Close()
}
