package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/varalys/vulnlens/internal/types"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name   string
		counts map[types.Severity]int
		want   int
	}{
		{"empty", nil, 100},
		{"info only", map[types.Severity]int{types.SevInfo: 50}, 100},
		{"one of each", map[types.Severity]int{types.SevCritical: 1, types.SevHigh: 1, types.SevMed: 1, types.SevLow: 1}, 60},
		{"floor", map[types.Severity]int{types.SevCritical: 5}, 0},
		{"well below floor", map[types.Severity]int{types.SevCritical: 9, types.SevHigh: 3}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.counts))
		})
	}
}

func TestScore_MonotoneNonIncreasing(t *testing.T) {
	counts := map[types.Severity]int{}
	prev := Score(counts)
	for i := 0; i < 40; i++ {
		sev := types.Severities[i%len(types.Severities)]
		counts[sev]++
		got := Score(counts)
		assert.LessOrEqual(t, got, prev)
		assert.GreaterOrEqual(t, got, 0)
		prev = got
	}
}

func TestAggregate(t *testing.T) {
	findings := []types.Finding{
		{Kind: types.KindXSS, Severity: types.SevMed, Path: "b.js", Line: 1},
		{Kind: types.KindSecret, Severity: types.SevCritical, Path: "a.go", Line: 2},
	}
	vulns := []types.DependencyVulnerability{
		{Package: "z", VulnerabilityID: "CVE-2", Severity: types.SevLow},
		{Package: "a", VulnerabilityID: "CVE-1", Severity: types.SevHigh},
	}
	res := Aggregate(findings, vulns, 7, time.Second)

	assert.Equal(t, 7, res.FilesScanned)
	assert.Equal(t, time.Second, res.Duration)
	assert.Equal(t, "a.go", res.Findings[0].Path)
	assert.Equal(t, "a", res.Dependencies[0].Package)
	assert.Equal(t, map[types.Severity]int{
		types.SevCritical: 1, types.SevHigh: 1, types.SevMed: 1, types.SevLow: 1, types.SevInfo: 0,
	}, res.SeverityCounts)
	assert.Equal(t, 60, res.SecurityScore)
	assert.Equal(t, types.SevMed, findings[0].Severity, "input order is left untouched")
}

func TestAggregate_Empty(t *testing.T) {
	res := Aggregate(nil, nil, 0, 0)
	assert.NotNil(t, res.Findings)
	assert.NotNil(t, res.Dependencies)
	assert.Equal(t, 100, res.SecurityScore)
	assert.Len(t, res.SeverityCounts, 5)
}
