package engine

import (
	"time"

	"github.com/varalys/vulnlens/internal/deps"
	"github.com/varalys/vulnlens/internal/types"
)

// severityWeights are the score deductions per finding.
var severityWeights = map[types.Severity]int{
	types.SevCritical: 25,
	types.SevHigh:     10,
	types.SevMed:      4,
	types.SevLow:      1,
	types.SevInfo:     0,
}

// Aggregate sorts findings and dependency vulnerabilities, builds the
// severity histogram and computes the score. The inputs are not modified.
func Aggregate(findings []types.Finding, vulns []types.DependencyVulnerability, filesScanned int, elapsed time.Duration) types.ScanResult {
	fs := append([]types.Finding(nil), findings...)
	vs := append([]types.DependencyVulnerability(nil), vulns...)
	sortFindings(fs)
	deps.SortVulnerabilities(vs)

	counts := make(map[types.Severity]int, len(types.Severities))
	for _, s := range types.Severities {
		counts[s] = 0
	}
	for _, f := range fs {
		counts[f.Severity]++
	}
	for _, v := range vs {
		counts[v.Severity]++
	}
	if fs == nil {
		fs = []types.Finding{}
	}
	if vs == nil {
		vs = []types.DependencyVulnerability{}
	}
	return types.ScanResult{
		Findings:       fs,
		Dependencies:   vs,
		FilesScanned:   filesScanned,
		Duration:       elapsed,
		SeverityCounts: counts,
		SecurityScore:  Score(counts),
	}
}

// Score is 100 minus the weighted severity counts, floored at 0.
func Score(counts map[types.Severity]int) int {
	score := 100
	for sev, n := range counts {
		score -= severityWeights[sev] * n
		if score <= 0 {
			return 0
		}
	}
	return score
}
