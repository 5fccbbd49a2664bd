package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/varalys/vulnlens/internal/types"
)

// DefaultBaselineFile is looked up in the scan root when no path is given.
const DefaultBaselineFile = "vulnlens.baseline.json"

// Baseline is a set of accepted finding fingerprints.
type Baseline struct {
	Items map[string]bool `json:"items"`
}

// LoadBaseline reads a baseline file. A missing file yields an empty
// baseline and no error.
func LoadBaseline(path string) (Baseline, error) {
	b := Baseline{Items: map[string]bool{}}
	buf, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return b, nil
	}
	if err != nil {
		return b, err
	}
	if err := json.Unmarshal(buf, &b); err != nil {
		return Baseline{Items: map[string]bool{}}, fmt.Errorf("baseline %s: %w", path, err)
	}
	if b.Items == nil {
		b.Items = map[string]bool{}
	}
	return b, nil
}

// SaveBaseline records the fingerprints of findings at path.
func SaveBaseline(path string, findings []types.Finding) error {
	b := Baseline{Items: map[string]bool{}}
	for _, f := range findings {
		b.Items[key(f)] = true
	}
	buf, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(buf, '\n'), 0o644)
}

// FilterNewFindings drops findings already present in base.
func FilterNewFindings(findings []types.Finding, base Baseline) []types.Finding {
	out := []types.Finding{}
	for _, f := range findings {
		if !base.Items[key(f)] {
			out = append(out, f)
		}
	}
	return out
}

func key(f types.Finding) string {
	if f.Fingerprint != "" {
		return f.Fingerprint
	}
	return fmt.Sprintf("%s|%s|%d|%s", f.Kind, f.Path, f.Line, f.RuleID)
}

// ShouldFail reports whether any finding or vulnerable dependency is at or
// above min.
func ShouldFail(res types.ScanResult, min types.Severity) bool {
	return res.CountAtLeast(min) > 0
}
