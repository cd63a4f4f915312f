package models

//-- Section --

const (
	// FilePermReadWrite defines standard non-executable file permissions.
	FilePermReadWrite = 0644
	// FilePermSecure enforces strict owner-only access so other local users
	// cannot read the signature store or the scan history.
	FilePermSecure = 0600

	// caps the size of a signature or history file loaded into memory,
	// protecting the heap from a padded multi-gigabyte store.
	MaxStoreSizeBytes = 64 * 1024 * 1024 // 64 MB
	// bounds the leading sample captured per file for header, entropy and
	// EICAR inspection. Hashing always covers the full content.
	MaxSampleBytes = 1 * 1024 * 1024 // 1 MB
	// chunk size for the streaming SHA-256 pass.
	HashChunkBytes = 1 * 1024 * 1024

	//  no detection of any kind fired.
	StatusClean = "clean"
	//  the full-content SHA-256 is present in the signature store.
	StatusSignatureMatch = "signature_match"
	//  one or more explainable heuristic rules fired.
	StatusHeuristicFlag = "heuristic_flag"
	//  the standard harmless antivirus test string was recognized.
	StatusEicarTest = "eicar_test"
	//  the file could not be read; no hash, a single failure reason.
	StatusError = "error"

	//  a signature hit is a certain verdict.
	RiskScoreSignature = 100
	//  fixed moderate-high score for the deliberate EICAR test signature.
	RiskScoreEicar = 90
	// heuristic totals are clamped into [RiskScoreHeuristicMin, RiskScoreHeuristicMax]
	// so a heuristic-only verdict can never masquerade as a signature hit.
	RiskScoreHeuristicMin = 1
	RiskScoreHeuristicMax = 99

	//  single-file invocation.
	ModeFile = "file"
	//  directory invocation, recursive or not.
	ModeDirectory = "directory"

	//  portable, human readable flat-file history backend.
	BackendJSON = "json"
	//  embedded relational history backend for larger logs.
	BackendSQLite = "sqlite"

	// caps how many reports a history read returns, newest first.
	HistoryReadLimit = 200
)
