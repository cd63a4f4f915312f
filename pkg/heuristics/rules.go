package heuristics

import (
	"fmt"
	"path/filepath"
	"strings"
)

// RuleID identifies one member of the closed heuristic rule set.
// The set is fixed: composing reasons relies on exhaustively matching these
// variants, so new rules must be added here and wired into ruleOrder.
type RuleID string

const (
	RuleSuspiciousExtension RuleID = "suspicious_extension"
	RuleDoubleExtension     RuleID = "double_extension"
	RuleNameAnomaly         RuleID = "name_anomaly"
	RuleHeaderMismatch      RuleID = "header_mismatch"
	RuleHighEntropy         RuleID = "high_entropy"
)

// Rule weights. Header mismatch and double-extension masquerade are the
// strongest explainable signals; entropy is advisory and never sufficient
// alone to call a file malicious.
const (
	WeightSuspiciousExtension = 12
	WeightDoubleExtension     = 25
	WeightMultipleExtensions  = 12
	WeightHeaderMismatch      = 30
	WeightHighEntropy         = 18

	weightManyDots       = 8
	weightEdgeWhitespace = 10
	weightLureTerms      = 6
)

// Finding is one triggered heuristic rule: which rule, why in human terms,
// and its integer contribution to the risk score.
type Finding struct {
	Rule   RuleID
	Reason string
	Weight int
}

// Target is the read-only view of a file the analyzer consumes.
// Header holds the leading magic-number bytes; Sample a bounded leading
// slice of the content. The analyzer never touches the file itself.
type Target struct {
	Path   string
	Name   string
	Size   int64
	Header []byte
	Sample []byte
}

// Ext returns the final extension, lowercased, dot included.
func (t Target) Ext() string {
	return strings.ToLower(filepath.Ext(t.Name))
}

// suspiciousExtensions is the fixed high-risk script/executable class.
var suspiciousExtensions = map[string]bool{
	".exe": true, ".scr": true, ".js": true, ".vbs": true, ".bat": true,
	".cmd": true, ".ps1": true, ".dll": true, ".jar": true,
}

// docLikeExtensions is the document/media class commonly impersonated in
// masquerading chains.
var docLikeExtensions = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".ppt": true, ".pptx": true, ".txt": true, ".rtf": true,
}

// lureTerms are filename bait words that only matter when paired with a
// script/executable extension somewhere in the name.
var lureTerms = []string{"invoice", "urgent", "payment", "security", "update", "scan", "statement"}

// Analyzer evaluates the full rule set over a target.
// Rules run independently and unconditionally: no rule short-circuits or
// suppresses another, and findings come back in fixed rule order so two runs
// over the same file produce identical reason sequences.
type Analyzer struct {
	EntropyThreshold float64
}

// NewAnalyzer returns an analyzer with the stock entropy threshold.
func NewAnalyzer() *Analyzer {
	return &Analyzer{EntropyThreshold: DefaultEntropyThreshold}
}

// Evaluate runs every rule against the target and accumulates findings.
func (a *Analyzer) Evaluate(t Target) []Finding {
	var findings []Finding
	for _, eval := range ruleOrder {
		if f := eval(a, t); f != nil {
			findings = append(findings, *f)
		}
	}
	return findings
}

// ruleOrder fixes evaluation order. Reason ordering in scan output derives
// directly from this slice.
var ruleOrder = []func(*Analyzer, Target) *Finding{
	(*Analyzer).suspiciousExtension,
	(*Analyzer).doubleExtension,
	(*Analyzer).nameAnomaly,
	(*Analyzer).headerMismatch,
	(*Analyzer).highEntropy,
}

func (a *Analyzer) suspiciousExtension(t Target) *Finding {
	ext := t.Ext()
	if !suspiciousExtensions[ext] {
		return nil
	}
	return &Finding{
		Rule:   RuleSuspiciousExtension,
		Reason: fmt.Sprintf("Suspicious or high-risk extension: %s.", ext),
		Weight: WeightSuspiciousExtension,
	}
}

// doubleExtension flags the masquerading chain: a document/media suffix
// followed by a script/executable suffix (report.pdf.exe). The reason must
// name both extensions; that wording is what makes the signal explainable.
// Any other chain of two or more extensions still earns a weaker generic
// finding; stacked suffixes are unusual enough to mention on their own.
func (a *Analyzer) doubleExtension(t Target) *Finding {
	exts := extensionChain(t.Name)
	if len(exts) < 2 {
		return nil
	}
	for i := 0; i < len(exts)-1; i++ {
		if !docLikeExtensions[exts[i]] {
			continue
		}
		for j := i + 1; j < len(exts); j++ {
			if suspiciousExtensions[exts[j]] {
				return &Finding{
					Rule: RuleDoubleExtension,
					Reason: fmt.Sprintf(
						"Double-extension masquerade: document extension %s followed by executable/script extension %s.",
						exts[i], exts[j]),
					Weight: WeightDoubleExtension,
				}
			}
		}
	}
	return &Finding{
		Rule:   RuleDoubleExtension,
		Reason: fmt.Sprintf("Multiple extensions detected: %s.", strings.Join(exts, "")),
		Weight: WeightMultipleExtensions,
	}
}

// nameAnomaly bundles the lightweight filename checks: dot flooding,
// leading/trailing whitespace, and lure terms paired with a script/executable
// extension. Sub-signals accumulate into a single finding.
func (a *Analyzer) nameAnomaly(t Target) *Finding {
	var reasons []string
	weight := 0
	lower := strings.ToLower(t.Name)

	if strings.Count(lower, ".") >= 3 {
		weight += weightManyDots
		reasons = append(reasons, "unusually many dots in filename")
	}
	if t.Name != strings.TrimSpace(t.Name) {
		weight += weightEdgeWhitespace
		reasons = append(reasons, "filename has leading/trailing whitespace")
	}
	if containsAny(lower, lureTerms) && containsSuspiciousExt(lower) {
		weight += weightLureTerms
		reasons = append(reasons, "common lure term combined with a script/executable extension")
	}

	if weight == 0 {
		return nil
	}
	return &Finding{
		Rule:   RuleNameAnomaly,
		Reason: fmt.Sprintf("Filename anomaly: %s.", strings.Join(reasons, "; ")),
		Weight: weight,
	}
}

func (a *Analyzer) headerMismatch(t Target) *Finding {
	expected, ok := expectedTypeForExtension(t.Ext())
	if !ok {
		return nil
	}
	actual, ok := detectMagicType(t.Header)
	if !ok {
		// An unrecognized header is not evidence of mismatch.
		return nil
	}
	if actual == expected {
		return nil
	}
	return &Finding{
		Rule: RuleHeaderMismatch,
		Reason: fmt.Sprintf("Extension/header mismatch: extension %s implies %s, header indicates %s.",
			t.Ext(), expected, actual),
		Weight: WeightHeaderMismatch,
	}
}

func (a *Analyzer) highEntropy(t Target) *Finding {
	if len(t.Sample) == 0 {
		return nil
	}
	ent := CalculateEntropy(t.Sample)
	if ent < a.EntropyThreshold {
		return nil
	}
	return &Finding{
		Rule:   RuleHighEntropy,
		Reason: fmt.Sprintf("High entropy (%.2f) may indicate packing, compression or obfuscation.", ent),
		Weight: WeightHighEntropy,
	}
}

// extensionChain splits "report.pdf.exe" into [".pdf", ".exe"], lowercased.
// The base name itself is never treated as an extension.
func extensionChain(name string) []string {
	parts := strings.Split(strings.ToLower(name), ".")
	if len(parts) < 3 {
		return nil
	}
	exts := make([]string, 0, len(parts)-1)
	for _, p := range parts[1:] {
		exts = append(exts, "."+p)
	}
	return exts
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}

func containsSuspiciousExt(lower string) bool {
	for ext := range suspiciousExtensions {
		if strings.Contains(lower, ext) {
			return true
		}
	}
	return false
}
