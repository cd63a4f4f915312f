package models

// -- Signatures --

// SignatureSet is the on-disk signature database: a versioned collection of
// known-malicious SHA-256 content hashes.
type SignatureSet struct {
	Version string     `json:"version"`
	Updated string     `json:"updated"`
	Hashes  HashBucket `json:"hashes"`
}

// HashBucket groups hash lists by algorithm. Only SHA-256 today, but the
// nesting keeps the file format open for additional digests without a
// breaking schema change.
type HashBucket struct {
	SHA256 []string `json:"sha256"`
	Notes  string   `json:"notes,omitempty"`
}

// MergeSummary reports the outcome of an offline signature update.
// Skipped counts hashes that were already present; duplicates are not errors.
type MergeSummary struct {
	Added   int    `json:"added"`
	Skipped int    `json:"skipped"`
	Total   int    `json:"total"`
	Version string `json:"version"`
	Updated string `json:"updated"`
}

// -- Scan Results --

// ScanResult is the verdict for a single file.
// SHA256 is empty (and omitted from JSON) only when Status is StatusError.
type ScanResult struct {
	Path      string   `json:"path"`
	Status    string   `json:"status"`
	RiskScore int      `json:"risk_score"`
	SHA256    string   `json:"sha256,omitempty"`
	Reasons   []string `json:"reasons"`
}

// ScanSummary aggregates counts over a report's result sequence.
// Flagged counts every result whose status is not clean, errors included.
type ScanSummary struct {
	FilesScanned int `json:"files_scanned"`
	Flagged      int `json:"flagged"`
}

// ScanReport is the complete output of one scan invocation. It is assembled
// once, appended verbatim to the history store, and never mutated afterwards.
type ScanReport struct {
	Timestamp         string       `json:"timestamp"`
	Target            string       `json:"target"`
	Mode              string       `json:"mode"`
	HeuristicsEnabled bool         `json:"heuristics_enabled"`
	Storage           string       `json:"storage"`
	Summary           ScanSummary  `json:"summary"`
	Results           []ScanResult `json:"results"`
}

// -- CLI --

// ScanOptions carries the per-invocation knobs from the CLI into the engine.
type ScanOptions struct {
	Recursive  bool
	Heuristics bool
	Storage    string
}

// UpdateOutput is the JSON document emitted by update-signatures.
type UpdateOutput struct {
	Status  string       `json:"status"`
	Summary MergeSummary `json:"summary"`
}

// HistoryOutput is the JSON document emitted by the history command.
type HistoryOutput struct {
	Storage string       `json:"storage"`
	History []ScanReport `json:"history"`
}
