package engine

import (
	"context"
	"io/fs"
	"mime"
	"path/filepath"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-hclog"

	"github.com/varalys/vulnlens/internal/deps"
	"github.com/varalys/vulnlens/internal/ignore"
	"github.com/varalys/vulnlens/internal/scanner"
	"github.com/varalys/vulnlens/internal/types"
)

type target struct {
	abs  string
	rel  string
	size int64
}

// inventory is the outcome of enumerating a root.
type inventory struct {
	files           []target
	manifests       []string
	skippedExcluded int
	skippedSize     int
	warnings        []types.Warning
}

// walker applies every exclusion source. Directories are pruned before
// descent; symlinks are never followed.
type walker struct {
	root     string
	cfg      Config
	ign      ignore.Matcher
	excludes []string
	log      hclog.Logger
}

func newWalker(root string, cfg Config, log hclog.Logger) (*walker, []types.Warning) {
	w := &walker{root: root, cfg: cfg, log: log, excludes: normalizeExcludes(cfg.ExcludePatterns)}
	var warns []types.Warning
	for _, g := range w.excludes {
		if hasGlobMeta(g) && !doublestar.ValidatePattern(g) {
			warns = append(warns, types.Warning{Category: types.WarnConfig, Message: "invalid exclude pattern " + g + " treated as substring"})
		}
	}
	if err := w.ign.AddFile(filepath.Join(root, ignore.FileName), nil); err != nil {
		warns = append(warns, types.Warning{Category: types.WarnConfig, Path: ignore.FileName, Message: err.Error()})
	}
	return w, warns
}

// Walk enumerates the eligible files under root. It stops early, without
// error, when ctx is done.
func (w *walker) Walk(ctx context.Context) inventory {
	var inv inventory
	_ = filepath.WalkDir(w.root, func(p string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return filepath.SkipAll
		}
		rel, _ := filepath.Rel(w.root, p)
		rel = filepath.ToSlash(rel)
		if err != nil {
			inv.warnings = append(inv.warnings, types.Warning{Category: types.WarnIO, Path: rel, Message: err.Error()})
			if d != nil && d.IsDir() && rel != "." {
				return filepath.SkipDir
			}
			return nil
		}
		if rel == "." {
			w.loadGitignore(p, rel, &inv)
			return nil
		}
		if strings.HasPrefix(rel, "../") {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			w.log.Trace("skipping symlink", "path", rel)
			return nil
		}
		if d.IsDir() {
			if w.excludedDir(rel, d.Name()) {
				w.log.Trace("pruned directory", "path", rel)
				return filepath.SkipDir
			}
			w.loadGitignore(p, rel, &inv)
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if w.excludedFile(rel) {
			inv.skippedExcluded++
			return nil
		}
		if deps.IsManifest(d.Name()) {
			inv.manifests = append(inv.manifests, p)
		}
		info, err := d.Info()
		if err != nil {
			inv.warnings = append(inv.warnings, types.Warning{Category: types.WarnIO, Path: rel, Message: err.Error()})
			return nil
		}
		if limit := w.cfg.maxFileSize(); info.Size() > limit {
			inv.skippedSize++
			inv.warnings = append(inv.warnings, sizeWarning(rel, info.Size(), limit))
			return nil
		}
		inv.files = append(inv.files, target{abs: p, rel: rel, size: info.Size()})
		return nil
	})
	return inv
}

func (w *walker) loadGitignore(dir, rel string, inv *inventory) {
	if !w.cfg.RespectGitignore {
		return
	}
	if err := w.ign.AddFile(filepath.Join(dir, ".gitignore"), ignore.Split(rel)); err != nil {
		inv.warnings = append(inv.warnings, types.Warning{Category: types.WarnIO, Path: rel, Message: err.Error()})
	}
}

func (w *walker) excludedDir(rel, name string) bool {
	if w.cfg.DefaultExcludes && isDefaultDirExcluded(name) {
		return true
	}
	return w.ign.Match(rel, true) || matchExcludes(rel, w.excludes)
}

func (w *walker) excludedFile(rel string) bool {
	if w.cfg.DefaultExcludes && (isDefaultFileExcluded(strings.ToLower(rel)) || looksNonTextMIME(rel)) {
		return true
	}
	return w.ign.Match(rel, false) || matchExcludes(rel, w.excludes)
}

func normalizeExcludes(in []string) []string {
	var out []string
	for _, p := range in {
		p = strings.TrimSpace(filepath.ToSlash(p))
		p = strings.TrimPrefix(p, "./")
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func hasGlobMeta(s string) bool { return strings.ContainsAny(s, "*?[{") }

func matchExcludes(rel string, excludes []string) bool {
	base := filepath.Base(rel)
	for _, g := range excludes {
		if hasGlobMeta(g) && doublestar.ValidatePattern(g) {
			if ok, _ := doublestar.Match(g, rel); ok {
				return true
			}
			if ok, _ := doublestar.Match(g, base); ok {
				return true
			}
			// "dir/**" also covers "dir" itself so it can be pruned early.
			if strings.HasSuffix(g, "/**") {
				if ok, _ := doublestar.Match(strings.TrimSuffix(g, "/**"), rel); ok {
					return true
				}
			}
			continue
		}
		if strings.Contains(rel, strings.TrimSuffix(g, "/")) {
			return true
		}
	}
	return false
}

// looksNonTextMIME uses the file extension to skip clearly non-text content
// such as images and archives. Known source and config extensions are never
// skipped: host MIME tables map ".ts" to video/mp2t.
func looksNonTextMIME(path string) bool {
	if scanner.DetectLanguage(path) != "unknown" {
		return false
	}
	ct := mime.TypeByExtension(filepath.Ext(path))
	if ct == "" {
		return false
	}
	if strings.HasPrefix(ct, "image/") || strings.HasPrefix(ct, "video/") || strings.HasPrefix(ct, "audio/") || strings.HasPrefix(ct, "font/") {
		return !strings.Contains(ct, "svg")
	}
	return strings.Contains(ct, "zip") || strings.Contains(ct, "tar") || strings.Contains(ct, "gzip")
}
