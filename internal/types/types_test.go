package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanResult_CountAtLeast(t *testing.T) {
	res := ScanResult{
		Findings: []Finding{
			{Severity: SevCritical},
			{Severity: SevMed},
			{Severity: SevLow},
		},
		Dependencies: []DependencyVulnerability{
			{Severity: SevHigh},
		},
		// Stale histogram left over from before filtering; must be ignored.
		SeverityCounts: map[Severity]int{SevCritical: 9},
	}
	tests := []struct {
		min  Severity
		want int
	}{
		{SevCritical, 1},
		{SevHigh, 2},
		{SevMed, 3},
		{SevInfo, 4},
	}
	for _, tt := range tests {
		t.Run(tt.min.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, res.CountAtLeast(tt.min))
		})
	}
	assert.Zero(t, ScanResult{}.CountAtLeast(SevInfo))
}
