// Package deps parses dependency manifests and checks the declared versions
// against a vulnerability index.
package deps

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/blang/semver/v4"
	"golang.org/x/mod/modfile"
)

// Ecosystem identifiers, named as in OSV.
const (
	EcosystemNPM  = "npm"
	EcosystemPyPI = "PyPI"
	EcosystemGo   = "Go"
)

// ErrUnsupportedManifest is returned for manifests that are recognized but
// not parsed, and for unknown file names.
var ErrUnsupportedManifest = errors.New("unsupported manifest")

// Package is one declared dependency. Version is the normalized base
// version; it is empty when the declaration pins nothing usable.
type Package struct {
	Name      string
	Version   string
	Spec      string
	Ecosystem string
	Dev       bool
}

// Known manifest file names. The unsupported ones are still reported so the
// caller can warn about them.
var manifestKinds = map[string]string{
	"package.json":     EcosystemNPM,
	"requirements.txt": EcosystemPyPI,
	"go.mod":           EcosystemGo,
	"Pipfile":          "",
	"pyproject.toml":   "",
}

var reRequirementsName = regexp.MustCompile(`^(?:.*[-_.])?requirements(?:[-_.].*)?\.txt$`)

// IsManifest reports whether a file name is a dependency manifest.
func IsManifest(name string) bool {
	if _, ok := manifestKinds[name]; ok {
		return true
	}
	return reRequirementsName.MatchString(strings.ToLower(name))
}

func ecosystemFor(name string) (string, bool) {
	if eco, ok := manifestKinds[name]; ok {
		return eco, eco != ""
	}
	if reRequirementsName.MatchString(strings.ToLower(name)) {
		return EcosystemPyPI, true
	}
	return "", false
}

// Parse reads and parses a manifest. Packages are sorted by name.
func Parse(manifestPath string) ([]Package, error) {
	base := filepath.Base(manifestPath)
	eco, ok := ecosystemFor(base)
	if !ok {
		return nil, fmt.Errorf("%s: %w", base, ErrUnsupportedManifest)
	}
	b, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, err
	}
	var pkgs []Package
	switch eco {
	case EcosystemNPM:
		pkgs, err = parsePackageJSON(b)
	case EcosystemPyPI:
		pkgs = parseRequirements(b)
	case EcosystemGo:
		pkgs, err = parseGoMod(manifestPath, b)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", base, err)
	}
	sort.SliceStable(pkgs, func(i, j int) bool { return pkgs[i].Name < pkgs[j].Name })
	return pkgs, nil
}

type packageJSON struct {
	Dependencies         map[string]string `json:"dependencies"`
	DevDependencies      map[string]string `json:"devDependencies"`
	OptionalDependencies map[string]string `json:"optionalDependencies"`
	PeerDependencies     map[string]string `json:"peerDependencies"`
}

func parsePackageJSON(b []byte) ([]Package, error) {
	var pj packageJSON
	if err := json.Unmarshal(b, &pj); err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var out []Package
	add := func(m map[string]string, dev bool) {
		for name, spec := range m {
			if seen[name] {
				continue
			}
			seen[name] = true
			v, _ := npmBaseVersion(spec)
			out = append(out, Package{Name: name, Version: v, Spec: spec, Ecosystem: EcosystemNPM, Dev: dev})
		}
	}
	add(pj.Dependencies, false)
	add(pj.OptionalDependencies, false)
	add(pj.PeerDependencies, false)
	add(pj.DevDependencies, true)
	return out, nil
}

// npmBaseVersion reduces a range such as "^1.2.3", "~1.2" or ">=1.0 <2"
// to its lower bound. Tags, URLs and workspace references yield false.
func npmBaseVersion(spec string) (string, bool) {
	s := strings.TrimSpace(spec)
	if i := strings.Index(s, "||"); i >= 0 {
		s = s[:i]
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return "", false
	}
	tok := fields[0]
	if strings.Trim(tok, "^~=<>") == "" && len(fields) > 1 {
		tok = fields[1]
	}
	return baseVersion(strings.TrimLeft(tok, "^~=<>"))
}

// baseVersion normalizes a version literal, treating x/* segments as the
// end of the version.
func baseVersion(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, ":/") {
		return "", false
	}
	parts := strings.Split(strings.TrimPrefix(s, "v"), ".")
	for i, p := range parts {
		if p == "x" || p == "X" || p == "*" || p == "" {
			parts = parts[:i]
			break
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	v, err := semver.ParseTolerant(strings.Join(parts, "."))
	if err != nil {
		return "", false
	}
	return v.String(), true
}

var reRequirement = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._-]*)\s*(?:\[[^\]]*\])?\s*(.*)$`)

func parseRequirements(b []byte) []Package {
	var out []Package
	seen := map[string]bool{}
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if i := strings.Index(line, " #"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") || strings.Contains(line, "://") {
			continue
		}
		if i := strings.Index(line, ";"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		m := reRequirement.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := NormalizePyPIName(m[1])
		if seen[name] {
			continue
		}
		seen[name] = true
		spec := strings.TrimSpace(m[2])
		v, _ := pythonBaseVersion(spec)
		out = append(out, Package{Name: name, Version: v, Spec: spec, Ecosystem: EcosystemPyPI})
	}
	return out
}

// pythonBaseVersion picks the version from the first ==, ===, ~=, >= or >
// clause. Upper bounds and exclusions alone pin nothing.
func pythonBaseVersion(spec string) (string, bool) {
	for _, clause := range strings.Split(spec, ",") {
		clause = strings.TrimSpace(clause)
		for _, op := range []string{"===", "==", "~=", ">="} {
			if strings.HasPrefix(clause, op) {
				return baseVersion(strings.TrimPrefix(clause, op))
			}
		}
		if strings.HasPrefix(clause, ">") {
			return baseVersion(strings.TrimPrefix(clause, ">"))
		}
	}
	return "", false
}

// NormalizePyPIName applies PEP 503 normalization.
func NormalizePyPIName(name string) string {
	name = strings.ToLower(name)
	return strings.Map(func(r rune) rune {
		if r == '_' || r == '.' {
			return '-'
		}
		return r
	}, name)
}

func parseGoMod(path string, b []byte) ([]Package, error) {
	f, err := modfile.Parse(path, b, nil)
	if err != nil {
		return nil, err
	}
	replaced := map[string]Package{}
	for _, r := range f.Replace {
		if r.New.Version == "" {
			continue
		}
		replaced[r.Old.Path] = Package{Name: r.New.Path, Version: r.New.Version}
	}
	out := make([]Package, 0, len(f.Require))
	for _, r := range f.Require {
		name, raw := r.Mod.Path, r.Mod.Version
		if rp, ok := replaced[name]; ok {
			name, raw = rp.Name, rp.Version
		}
		v, _ := baseVersion(raw)
		out = append(out, Package{Name: name, Version: v, Spec: raw, Ecosystem: EcosystemGo, Dev: r.Indirect})
	}
	return out, nil
}
