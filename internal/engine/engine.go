package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/varalys/vulnlens/internal/deps"
	"github.com/varalys/vulnlens/internal/scanner/factory"
	"github.com/varalys/vulnlens/internal/types"
)

// ErrInvalidRoot is returned when the scan root is missing or is not a
// directory. It is the only fatal condition of a project scan.
var ErrInvalidRoot = errors.New("invalid scan root")

// Project scan phases, reported at debug level.
const (
	phaseIdle        = "idle"
	phaseEnumerating = "enumerating"
	phaseScanning    = "scanning"
	phaseAuditing    = "auditing"
	phaseAggregating = "aggregating"
	phaseDone        = "done"
)

type fileResult struct {
	findings []types.Finding
	warnings []types.Warning
	ran      bool
}

// ScanProject scans every eligible file under root, audits dependency
// manifests concurrently and returns the aggregated result. Budget
// exhaustion and cancellation produce a partial result with Truncated set.
func ScanProject(ctx context.Context, root string, cfg Config) (types.ScanResult, error) {
	started := time.Now()
	log := cfg.logger().Named("engine")
	log.Debug("phase", "state", phaseIdle, "root", root)

	abs, err := filepath.Abs(root)
	if err != nil {
		return types.ScanResult{}, fmt.Errorf("%w %q: %v", ErrInvalidRoot, root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return types.ScanResult{}, fmt.Errorf("%w %q: %v", ErrInvalidRoot, root, err)
	}
	if !info.IsDir() {
		return types.ScanResult{}, fmt.Errorf("%w %q: not a directory", ErrInvalidRoot, root)
	}

	if cfg.TimeBudget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.TimeBudget)
		defer cancel()
	}

	set := cfg.PatternSet()
	warnings := set.Warnings()
	log.Debug("patterns compiled", "signatures", set.Len(), "checks", factory.Names(cfg.checks()))

	log.Debug("phase", "state", phaseEnumerating)
	w, walkWarns := newWalker(abs, cfg, log)
	warnings = append(warnings, walkWarns...)
	inv := w.Walk(ctx)
	warnings = append(warnings, inv.warnings...)
	truncated := ctx.Err() != nil
	log.Debug("enumerated", "files", len(inv.files), "manifests", len(inv.manifests),
		"excluded", inv.skippedExcluded, "oversized", inv.skippedSize)

	var (
		vulns    []types.DependencyVulnerability
		depWarns []types.Warning
	)
	auditDone := make(chan struct{})
	if cfg.ScanDependencies && len(inv.manifests) > 0 {
		go func() {
			defer close(auditDone)
			log.Debug("phase", "state", phaseAuditing, "manifests", len(inv.manifests))
			vulns, depWarns = auditManifests(ctx, abs, inv.manifests, cfg)
		}()
	} else {
		close(auditDone)
	}

	log.Debug("phase", "state", phaseScanning, "threads", cfg.threads())
	slots := make([]fileResult, len(inv.files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.threads())
	for i, t := range inv.files {
		if cfg.MaxFiles > 0 && i >= cfg.MaxFiles {
			truncated = true
			warnings = append(warnings, types.Warning{
				Category: types.WarnBudget,
				Message:  fmt.Sprintf("file limit %d reached; %d files not scanned", cfg.MaxFiles, len(inv.files)-i),
			})
			break
		}
		if gctx.Err() != nil {
			break
		}
		i, t := i, t
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			fs, ws := scanFileAs(t.abs, t.rel, set, cfg)
			slots[i] = fileResult{findings: fs, warnings: ws, ran: true}
			return nil
		})
	}
	_ = g.Wait()
	<-auditDone

	if ctx.Err() != nil {
		truncated = true
		warnings = append(warnings, types.Warning{Category: types.WarnBudget, Message: "scan stopped early: " + ctx.Err().Error()})
	}

	log.Debug("phase", "state", phaseAggregating)
	var (
		findings                       []types.Finding
		scanned, unreadable, oversized int
	)
	for _, s := range slots {
		if !s.ran {
			continue
		}
		switch classify(s.warnings) {
		case types.WarnIO:
			unreadable++
		case types.WarnSize:
			oversized++
		default:
			scanned++
		}
		findings = append(findings, s.findings...)
		warnings = append(warnings, s.warnings...)
	}
	warnings = append(warnings, depWarns...)

	res := Aggregate(findings, vulns, scanned, time.Since(started))
	res.Root = abs
	res.FilesSkippedBySize = inv.skippedSize + oversized
	res.FilesSkippedByExclusion = inv.skippedExcluded
	res.FilesUnreadable = unreadable
	res.Truncated = truncated
	res.Warnings = warnings

	log.Debug("phase", "state", phaseDone)
	log.Info("scan complete", "files", res.FilesScanned, "findings", len(res.Findings),
		"vulnerable_deps", len(res.Dependencies), "score", res.SecurityScore,
		"truncated", res.Truncated, "duration", res.Duration)
	return res, nil
}

// classify maps a file's warnings to the counter it belongs to.
func classify(ws []types.Warning) types.WarningCategory {
	for _, w := range ws {
		if w.Category == types.WarnIO || w.Category == types.WarnSize {
			return w.Category
		}
	}
	return ""
}

func auditManifests(ctx context.Context, root string, manifests []string, cfg Config) ([]types.DependencyVulnerability, []types.Warning) {
	var (
		out   []types.DependencyVulnerability
		warns []types.Warning
		idx   deps.Index
	)
	if cfg.IndexPath != "" {
		loaded, err := deps.LoadIndex(cfg.IndexPath)
		if err != nil {
			warns = append(warns, types.Warning{Category: types.WarnConfig, Path: cfg.IndexPath, Message: "falling back to bundled index: " + err.Error()})
		} else {
			idx = loaded
		}
	}
	if idx == nil {
		idx = deps.DefaultIndex()
	}
	for _, m := range manifests {
		if ctx.Err() != nil {
			break
		}
		rel, err := filepath.Rel(root, m)
		if err != nil {
			rel = m
		}
		rel = filepath.ToSlash(rel)
		vs, ws := deps.AuditWithWarnings(m, idx)
		for i := range vs {
			vs[i].Manifest = rel
		}
		for i := range ws {
			ws[i].Path = rel
		}
		out = append(out, vs...)
		warns = append(warns, ws...)
	}
	return out, warns
}
