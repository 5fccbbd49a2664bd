package types

import (
	"fmt"
	"strings"
	"time"
)

// Severity is a coarse-grained risk level for a finding. The zero value is
// SevInfo; higher values are more severe.
type Severity uint8

const (
	SevInfo Severity = iota
	SevLow
	SevMed
	SevHigh
	SevCritical
)

// Severities lists every level from most to least severe.
var Severities = []Severity{SevCritical, SevHigh, SevMed, SevLow, SevInfo}

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "info"
	case SevLow:
		return "low"
	case SevMed:
		return "medium"
	case SevHigh:
		return "high"
	case SevCritical:
		return "critical"
	}
	return fmt.Sprintf("severity(%d)", uint8(s))
}

// Valid reports whether s is one of the five defined levels.
func (s Severity) Valid() bool { return s <= SevCritical }

// ParseSeverity accepts the canonical names plus a few common aliases
// ("med", "moderate", "warning", "informational").
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info", "informational", "none":
		return SevInfo, nil
	case "low":
		return SevLow, nil
	case "medium", "med", "moderate", "warning":
		return SevMed, nil
	case "high":
		return SevHigh, nil
	case "critical", "crit":
		return SevCritical, nil
	}
	return SevInfo, fmt.Errorf("unknown severity %q", s)
}

func (s Severity) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid severity %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(b []byte) error {
	v, err := ParseSeverity(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Kind classifies what a finding is about.
type Kind uint8

const (
	KindOther Kind = iota
	KindSecret
	KindSQLInjection
	KindXSS
	KindPathTraversal
	KindWeakCrypto
	KindInsecureDeserialization
	KindCommandInjection
)

var kindNames = map[Kind]string{
	KindOther:                   "other",
	KindSecret:                  "secret",
	KindSQLInjection:            "sql_injection",
	KindXSS:                     "xss",
	KindPathTraversal:           "path_traversal",
	KindWeakCrypto:              "weak_crypto",
	KindInsecureDeserialization: "insecure_deserialization",
	KindCommandInjection:        "command_injection",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind maps a kind name back to its value.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, n := range kindNames {
		if n == s {
			return k, nil
		}
	}
	return KindOther, fmt.Errorf("unknown finding kind %q", s)
}

func (k Kind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, fmt.Errorf("invalid kind %d", uint8(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Finding describes a potential vulnerability detected at a path and line.
// Findings are values; once emitted they are never modified.
type Finding struct {
	Kind           Kind     `json:"kind"`
	Severity       Severity `json:"severity"`
	Path           string   `json:"path"`
	Line           int      `json:"line"`
	Column         int      `json:"column,omitempty"` // 1-based, 0 if unknown
	RuleID         string   `json:"rule_id"`
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	Snippet        string   `json:"snippet,omitempty"` // secret values are masked
	Recommendation string   `json:"recommendation,omitempty"`
	OWASP          string   `json:"owasp,omitempty"`
	CWE            string   `json:"cwe,omitempty"`
	CVSS           float64  `json:"cvss,omitempty"`
	Fingerprint    string   `json:"fingerprint,omitempty"`
}

// DependencyVulnerability is one (package, known vulnerability) pair.
type DependencyVulnerability struct {
	Package          string   `json:"package"`
	InstalledVersion string   `json:"installed_version"`
	VulnerabilityID  string   `json:"vulnerability_id"`
	Severity         Severity `json:"severity"`
	PatchedVersion   string   `json:"patched_version,omitempty"`
	Ecosystem        string   `json:"ecosystem,omitempty"`
	Manifest         string   `json:"manifest,omitempty"`
	Summary          string   `json:"summary,omitempty"`
}

// WarningCategory groups non-fatal conditions raised during a scan.
type WarningCategory string

const (
	WarnConfig   WarningCategory = "config"
	WarnIO       WarningCategory = "io"
	WarnSize     WarningCategory = "size"
	WarnManifest WarningCategory = "manifest"
	WarnBudget   WarningCategory = "budget"
)

// Warning is a non-fatal condition accumulated alongside a result.
type Warning struct {
	Category WarningCategory `json:"category"`
	Path     string          `json:"path,omitempty"`
	Message  string          `json:"message"`
}

func (w Warning) String() string {
	if w.Path == "" {
		return fmt.Sprintf("%s: %s", w.Category, w.Message)
	}
	return fmt.Sprintf("%s: %s: %s", w.Category, w.Path, w.Message)
}

// ScanResult is the aggregated outcome of a project scan.
type ScanResult struct {
	Root                    string                    `json:"root"`
	Findings                []Finding                 `json:"findings"`
	Dependencies            []DependencyVulnerability `json:"dependency_vulnerabilities"`
	FilesScanned            int                       `json:"files_scanned"`
	FilesSkippedBySize      int                       `json:"files_skipped_by_size"`
	FilesSkippedByExclusion int                       `json:"files_skipped_by_exclusion"`
	FilesUnreadable         int                       `json:"files_unreadable"`
	Duration                time.Duration             `json:"duration"`
	SeverityCounts          map[Severity]int          `json:"severity_counts"`
	SecurityScore           int                       `json:"security_score"`
	Truncated               bool                      `json:"truncated"`
	Warnings                []Warning                 `json:"warnings,omitempty"`
}

// CountAtLeast returns how many findings and dependency vulnerabilities are
// at or above min. It counts the lists, not SeverityCounts, so results that
// were filtered after aggregation are still counted correctly.
func (r ScanResult) CountAtLeast(min Severity) int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity >= min {
			n++
		}
	}
	for _, d := range r.Dependencies {
		if d.Severity >= min {
			n++
		}
	}
	return n
}
