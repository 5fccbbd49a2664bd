package deps

import (
	"errors"
	"io/fs"
	"sort"

	"github.com/varalys/vulnlens/internal/types"
)

// Audit checks every pinned dependency in manifestPath against idx. It
// never fails; problems are dropped. Use AuditWithWarnings to see them.
func Audit(manifestPath string, idx Index) []types.DependencyVulnerability {
	out, _ := AuditWithWarnings(manifestPath, idx)
	return out
}

// AuditWithWarnings is Audit plus the manifest-level warnings. A nil idx
// uses the bundled index.
func AuditWithWarnings(manifestPath string, idx Index) ([]types.DependencyVulnerability, []types.Warning) {
	if idx == nil {
		idx = DefaultIndex()
	}
	pkgs, err := Parse(manifestPath)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, fs.ErrNotExist) {
			msg = "manifest not found"
		}
		return nil, []types.Warning{{Category: types.WarnManifest, Path: manifestPath, Message: msg}}
	}
	var out []types.DependencyVulnerability
	for _, p := range pkgs {
		if p.Version == "" {
			continue
		}
		for _, a := range idx.Lookup(p.Ecosystem, p.Name) {
			if !a.Affects(p.Version) {
				continue
			}
			out = append(out, types.DependencyVulnerability{
				Package:          p.Name,
				InstalledVersion: p.Version,
				VulnerabilityID:  a.ID,
				Severity:         a.Severity,
				PatchedVersion:   a.Patched,
				Ecosystem:        p.Ecosystem,
				Manifest:         manifestPath,
				Summary:          a.Summary,
			})
		}
	}
	SortVulnerabilities(out)
	return out, nil
}

// SortVulnerabilities orders by severity (highest first), package, then ID.
func SortVulnerabilities(vs []types.DependencyVulnerability) {
	sort.SliceStable(vs, func(i, j int) bool {
		a, b := vs[i], vs[j]
		if a.Severity != b.Severity {
			return a.Severity > b.Severity
		}
		if a.Package != b.Package {
			return a.Package < b.Package
		}
		if a.VulnerabilityID != b.VulnerabilityID {
			return a.VulnerabilityID < b.VulnerabilityID
		}
		return a.Manifest < b.Manifest
	})
}
