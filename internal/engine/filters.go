package engine

import (
	"path"
	"strings"
)

var defaultExcludeDirs = map[string]bool{
	".git":             true,
	".hg":              true,
	".svn":             true,
	"node_modules":     true,
	"bower_components": true,
	"vendor":           true,
	"dist":             true,
	"build":            true,
	"target":           true,
	"out":              true,
	".next":            true,
	".nuxt":            true,
	".venv":            true,
	"venv":             true,
	".tox":             true,
	"__pycache__":      true,
	".mypy_cache":      true,
	".pytest_cache":    true,
	".terraform":       true,
	".idea":            true,
	"coverage":         true,
}

// suffixes treated as minified, generated or binary artifacts
var defaultExcludeFileSuffixes = []string{
	".min.js", ".min.css", ".map",
	".png", ".jpg", ".jpeg", ".gif", ".webp", ".ico",
	".pdf", ".zip", ".gz", ".tar", ".tgz", ".7z",
	".jar", ".class", ".exe", ".dll", ".so", ".dylib",
	".wasm", ".pyc",
	".pb.go", ".gen.go",
}

// lockfiles repeat manifest data with integrity hashes that look like secrets;
// the baseline file holds fingerprints of accepted findings
var defaultExcludeFileNames = map[string]bool{
	"yarn.lock":              true,
	"package-lock.json":      true,
	"pnpm-lock.yaml":         true,
	"composer.lock":          true,
	"poetry.lock":            true,
	"go.sum":                 true,
	".ds_store":              true,
	"vulnlens.baseline.json": true,
}

func isDefaultDirExcluded(name string) bool {
	return defaultExcludeDirs[name]
}

func isDefaultFileExcluded(lowerRel string) bool {
	if strings.HasSuffix(lowerRel, ".lock") {
		return true
	}
	for _, s := range defaultExcludeFileSuffixes {
		if strings.HasSuffix(lowerRel, s) {
			return true
		}
	}
	return defaultExcludeFileNames[path.Base(lowerRel)]
}
