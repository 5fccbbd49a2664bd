package report

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/varalys/vulnlens/internal/types"
)

type sarif struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool       sarifTool      `json:"tool"`
	Results    []sarifResult  `json:"results"`
	Properties map[string]any `json:"properties,omitempty"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string         `json:"id"`
	Name             string         `json:"name,omitempty"`
	ShortDescription sarifMessage   `json:"shortDescription"`
	Help             *sarifMessage  `json:"help,omitempty"`
	Properties       map[string]any `json:"properties,omitempty"`
}

type sarifResult struct {
	RuleID       string            `json:"ruleId"`
	RuleIndex    int               `json:"ruleIndex"`
	Level        string            `json:"level"`
	Message      sarifMessage      `json:"message"`
	Locations    []sarifLoc        `json:"locations"`
	Fingerprints map[string]string `json:"partialFingerprints,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLoc struct {
	PhysicalLocation sarifPhys `json:"physicalLocation"`
}

type sarifPhys struct {
	ArtifactLocation sarifArt     `json:"artifactLocation"`
	Region           *sarifRegion `json:"region,omitempty"`
}

type sarifArt struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   int           `json:"startLine"`
	StartColumn int           `json:"startColumn,omitempty"`
	Snippet     *sarifMessage `json:"snippet,omitempty"`
}

func sevToLevel(s types.Severity) string {
	switch {
	case s >= types.SevHigh:
		return "error"
	case s == types.SevMed:
		return "warning"
	default:
		return "note"
	}
}

// ruleTable assigns stable indexes to rule IDs in first-seen order.
type ruleTable struct {
	rules []sarifRule
	index map[string]int
}

func (rt *ruleTable) add(r sarifRule) int {
	if i, ok := rt.index[r.ID]; ok {
		return i
	}
	if rt.index == nil {
		rt.index = map[string]int{}
	}
	rt.index[r.ID] = len(rt.rules)
	rt.rules = append(rt.rules, r)
	return len(rt.rules) - 1
}

// WriteSARIF writes a scan result as SARIF 2.1.0. Code findings and
// vulnerable dependencies become results of a single run; dependency
// results point at their manifest.
func WriteSARIF(w io.Writer, res types.ScanResult, version string) error {
	var rt ruleTable
	run := sarifRun{Results: []sarifResult{}}
	for _, f := range res.Findings {
		props := map[string]any{"kind": f.Kind.String(), "security-severity": severityScore(f)}
		if f.CWE != "" {
			props["cwe"] = f.CWE
		}
		if f.OWASP != "" {
			props["owasp"] = f.OWASP
		}
		rule := sarifRule{ID: f.RuleID, Name: f.Title, ShortDescription: sarifMessage{Text: f.Title}, Properties: props}
		if f.Recommendation != "" {
			rule.Help = &sarifMessage{Text: f.Recommendation}
		}
		region := &sarifRegion{StartLine: f.Line, StartColumn: f.Column}
		if f.Snippet != "" {
			region.Snippet = &sarifMessage{Text: f.Snippet}
		}
		r := sarifResult{
			RuleID:    f.RuleID,
			RuleIndex: rt.add(rule),
			Level:     sevToLevel(f.Severity),
			Message:   sarifMessage{Text: message(f)},
			Locations: []sarifLoc{{PhysicalLocation: sarifPhys{ArtifactLocation: sarifArt{URI: f.Path}, Region: region}}},
		}
		if f.Fingerprint != "" {
			r.Fingerprints = map[string]string{"vulnlens/v1": f.Fingerprint}
		}
		run.Results = append(run.Results, r)
	}
	for _, d := range res.Dependencies {
		rule := sarifRule{
			ID:               d.VulnerabilityID,
			ShortDescription: sarifMessage{Text: d.Summary},
			Properties:       map[string]any{"ecosystem": d.Ecosystem},
		}
		if d.PatchedVersion != "" {
			rule.Help = &sarifMessage{Text: "Upgrade " + d.Package + " to " + d.PatchedVersion + " or later."}
		}
		run.Results = append(run.Results, sarifResult{
			RuleID:    d.VulnerabilityID,
			RuleIndex: rt.add(rule),
			Level:     sevToLevel(d.Severity),
			Message:   sarifMessage{Text: d.Package + "@" + d.InstalledVersion + " is affected by " + d.VulnerabilityID},
			Locations: []sarifLoc{{PhysicalLocation: sarifPhys{ArtifactLocation: sarifArt{URI: d.Manifest}}}},
		})
	}
	run.Tool = sarifTool{Driver: sarifDriver{Name: "vulnlens", Version: version, Rules: rt.rules}}
	if run.Tool.Driver.Rules == nil {
		run.Tool.Driver.Rules = []sarifRule{}
	}
	run.Properties = map[string]any{
		"securityScore": res.SecurityScore,
		"filesScanned":  res.FilesScanned,
		"truncated":     res.Truncated,
	}
	doc := sarif{
		Schema:  "https://json.schemastore.org/sarif-2.1.0.json",
		Version: "2.1.0",
		Runs:    []sarifRun{run},
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func message(f types.Finding) string {
	if f.Description != "" {
		return f.Title + ": " + f.Description
	}
	return f.Title
}

// severityScore maps to the 0-10 scale code scanning UIs sort by.
func severityScore(f types.Finding) string {
	if f.CVSS > 0 {
		return strconv.FormatFloat(f.CVSS, 'f', 1, 64)
	}
	switch f.Severity {
	case types.SevCritical:
		return "9.5"
	case types.SevHigh:
		return "8.0"
	case types.SevMed:
		return "5.5"
	case types.SevLow:
		return "3.0"
	}
	return "0.0"
}
