package patterns

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
	"github.com/varalys/vulnlens/internal/types"
)

// CustomPattern is a caller-supplied rule, usually loaded from the
// `patterns:` section of a config file.
type CustomPattern struct {
	ID             string   `yaml:"id" json:"id"`
	Name           string   `yaml:"name" json:"name"`
	Pattern        string   `yaml:"pattern" json:"pattern"`
	Severity       string   `yaml:"severity" json:"severity"`
	Kind           string   `yaml:"kind" json:"kind,omitempty"`
	ValueGroup     int      `yaml:"value_group" json:"value_group,omitempty"`
	Keywords       []string `yaml:"keywords" json:"keywords,omitempty"`
	Paths          []string `yaml:"paths" json:"paths,omitempty"`
	Description    string   `yaml:"description" json:"description,omitempty"`
	Recommendation string   `yaml:"recommendation" json:"recommendation,omitempty"`
	OWASP          string   `yaml:"owasp" json:"owasp,omitempty"`
	CWE            string   `yaml:"cwe" json:"cwe,omitempty"`
	CVSS           float64  `yaml:"cvss" json:"cvss,omitempty"`
}

func (cp CustomPattern) label() string {
	switch {
	case cp.ID != "":
		return cp.ID
	case cp.Name != "":
		return cp.Name
	}
	return "unnamed"
}

func (cp CustomPattern) compile() (Signature, error) {
	if strings.TrimSpace(cp.Pattern) == "" {
		return Signature{}, errors.New("empty pattern")
	}
	id := cp.ID
	if id == "" {
		id = slug(cp.Name)
	}
	if id == "" {
		return Signature{}, errors.New("missing id and name")
	}
	re, err := regexp.Compile(cp.Pattern)
	if err != nil {
		return Signature{}, fmt.Errorf("invalid pattern: %w", err)
	}
	if cp.ValueGroup < 0 || cp.ValueGroup > re.NumSubexp() {
		return Signature{}, fmt.Errorf("value_group %d out of range (pattern has %d groups)", cp.ValueGroup, re.NumSubexp())
	}
	sev := types.SevMed
	if cp.Severity != "" {
		if sev, err = types.ParseSeverity(cp.Severity); err != nil {
			return Signature{}, err
		}
	}
	kind := types.KindSecret
	if cp.Kind != "" {
		if kind, err = types.ParseKind(cp.Kind); err != nil {
			return Signature{}, err
		}
	}
	for _, g := range cp.Paths {
		if !doublestar.ValidatePattern(g) {
			return Signature{}, fmt.Errorf("invalid path glob %q", g)
		}
	}
	name := cp.Name
	if name == "" {
		name = id
	}
	var kws []string
	for _, k := range cp.Keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			kws = append(kws, k)
		}
	}
	return Signature{
		ID:             id,
		Name:           name,
		Category:       CategoryForKind(kind),
		Kind:           kind,
		Matcher:        re,
		ValueGroup:     cp.ValueGroup,
		Severity:       sev,
		Keywords:       kws,
		Paths:          cp.Paths,
		Description:    cp.Description,
		Recommendation: cp.Recommendation,
		OWASP:          cp.OWASP,
		CWE:            cp.CWE,
		CVSS:           cp.CVSS,
		Custom:         true,
	}, nil
}

func slug(s string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		case !lastUnderscore && b.Len() > 0:
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
