package deps

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/blang/semver/v4"
	yaml "gopkg.in/yaml.v3"

	"github.com/varalys/vulnlens/internal/types"
)

// Advisory is one known vulnerability affecting a range of versions.
type Advisory struct {
	ID        string         `yaml:"id"`
	Package   string         `yaml:"package"`
	Ecosystem string         `yaml:"ecosystem"`
	Range     string         `yaml:"range"`
	Severity  types.Severity `yaml:"severity"`
	Patched   string         `yaml:"patched"`
	Summary   string         `yaml:"summary"`

	affects semver.Range
}

// Affects reports whether version falls inside the advisory range.
func (a Advisory) Affects(version string) bool {
	if a.affects == nil {
		return false
	}
	v, err := semver.ParseTolerant(version)
	if err != nil {
		return false
	}
	return a.affects(v)
}

// Index answers which advisories exist for a package.
type Index interface {
	Lookup(ecosystem, name string) []Advisory
}

type indexKey struct{ ecosystem, name string }

type memIndex map[indexKey][]Advisory

func (m memIndex) Lookup(ecosystem, name string) []Advisory {
	return m[key(ecosystem, name)]
}

func key(ecosystem, name string) indexKey {
	eco := strings.ToLower(ecosystem)
	if eco == strings.ToLower(EcosystemPyPI) {
		name = NormalizePyPIName(name)
	}
	return indexKey{eco, name}
}

type indexFile struct {
	Advisories []Advisory `yaml:"advisories"`
}

// NewIndex validates the advisories and builds an in-memory index.
func NewIndex(advs []Advisory) (Index, error) {
	m := memIndex{}
	for i, a := range advs {
		if a.ID == "" || a.Package == "" || a.Ecosystem == "" {
			return nil, fmt.Errorf("advisory #%d: id, package and ecosystem are required", i+1)
		}
		r, err := ParseRange(a.Range)
		if err != nil {
			return nil, fmt.Errorf("advisory %s: %w", a.ID, err)
		}
		a.affects = r
		k := key(a.Ecosystem, a.Package)
		m[k] = append(m[k], a)
	}
	return m, nil
}

// ParseIndex decodes a YAML index document.
func ParseIndex(b []byte) (Index, error) {
	var f indexFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	return NewIndex(f.Advisories)
}

// LoadIndex reads a YAML index file.
func LoadIndex(path string) (Index, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	idx, err := ParseIndex(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return idx, nil
}

//go:embed index.yaml
var bundledIndex []byte

var defaultIndex = sync.OnceValue(func() Index {
	idx, err := ParseIndex(bundledIndex)
	if err != nil {
		panic("deps: bundled index is invalid: " + err.Error())
	}
	return idx
})

// DefaultIndex returns the index bundled with the binary.
func DefaultIndex() Index { return defaultIndex() }

// ParseRange accepts blang/semver ranges plus the npm and pip spellings
// seen in advisories: "||" alternatives, "," as AND, "==" for equality and
// versions with missing minor or patch components.
func ParseRange(s string) (semver.Range, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty range")
	}
	var alts []string
	for _, alt := range strings.Split(s, "||") {
		var parts []string
		for _, tok := range strings.Fields(strings.ReplaceAll(alt, ",", " ")) {
			parts = append(parts, normalizeComparator(tok))
		}
		if len(parts) == 0 {
			return nil, fmt.Errorf("invalid range %q", s)
		}
		alts = append(alts, strings.Join(parts, " "))
	}
	r, err := semver.ParseRange(strings.Join(alts, " || "))
	if err != nil {
		return nil, fmt.Errorf("invalid range %q: %w", s, err)
	}
	return r, nil
}

func normalizeComparator(tok string) string {
	i := 0
	for i < len(tok) && strings.ContainsRune("<>=!", rune(tok[i])) {
		i++
	}
	op, ver := tok[:i], strings.TrimPrefix(tok[i:], "v")
	if op == "==" || op == "===" {
		op = "="
	}
	if strings.ContainsAny(ver, "xX*") {
		return op + ver
	}
	core, rest := ver, ""
	if j := strings.IndexAny(ver, "-+"); j >= 0 {
		core, rest = ver[:j], ver[j:]
	}
	for strings.Count(core, ".") < 2 {
		core += ".0"
	}
	return op + core + rest
}
