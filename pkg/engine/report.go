package engine

import (
	"time"

	"github.com/BlackVectorOps/filesentry/pkg/models"
)

// Summarize derives the report summary from a final result sequence.
// Flagged counts every non-clean status, errors included: the system never
// exits successfully while silently omitting a file from the tally.
func Summarize(results []models.ScanResult) models.ScanSummary {
	flagged := 0
	for _, r := range results {
		if r.Status != models.StatusClean {
			flagged++
		}
	}
	return models.ScanSummary{
		FilesScanned: len(results),
		Flagged:      flagged,
	}
}

// BuildReport assembles the immutable report for one invocation. Results
// must already be in final (path-sorted) order; the summary is derived from
// exactly what the caller will emit and persist.
func BuildReport(target, mode string, heuristicsEnabled bool, storage string, results []models.ScanResult) *models.ScanReport {
	if results == nil {
		results = []models.ScanResult{}
	}
	return &models.ScanReport{
		Timestamp:         isoNow(),
		Target:            target,
		Mode:              mode,
		HeuristicsEnabled: heuristicsEnabled,
		Storage:           storage,
		Summary:           Summarize(results),
		Results:           results,
	}
}

// isoNow is UTC at second precision, the stable timestamp format for the
// report contract.
func isoNow() string {
	return time.Now().UTC().Truncate(time.Second).Format("2006-01-02T15:04:05Z")
}
