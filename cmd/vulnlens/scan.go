package vulnlens

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/varalys/vulnlens/internal/engine"
	"github.com/varalys/vulnlens/internal/report"
	"github.com/varalys/vulnlens/internal/types"
	"github.com/varalys/vulnlens/pkg/core"
)

type scanOptions struct {
	path            string
	failOn          string
	minSeverity     string
	exclude         []string
	defaultExcludes bool
	gitignore       bool
	maxFileSize     int64
	timeBudget      time.Duration
	maxFiles        int
	index           string
	enable          string
	disable         string
	noSecrets       bool
	noInjection     bool
	noOWASP         bool
	noDeps          bool
	baseline        string
}

func newScanCmd(g *globalOptions) *cobra.Command {
	o := &scanOptions{}
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan a directory tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScan(cmd, g, o)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.path, "path", "p", ".", "path to scan")
	f.StringVar(&o.failOn, "fail-on", "high", "exit 1 when anything at or above this severity is found (none to disable)")
	f.StringVar(&o.minSeverity, "min-severity", "info", "drop findings below this severity")
	f.StringSliceVar(&o.exclude, "exclude", nil, "exclude globs or path substrings (repeatable)")
	f.BoolVar(&o.defaultExcludes, "default-excludes", true, "apply built-in exclude list (node_modules, vendor, images, lockfiles, etc.)")
	f.BoolVar(&o.gitignore, "gitignore", true, "honor .gitignore files")
	f.Int64Var(&o.maxFileSize, "max-file-size", engine.DefaultMaxFileSize, "skip files larger than this many bytes")
	f.DurationVar(&o.timeBudget, "time-budget", 0, "stop scheduling files after this long (0 = unlimited)")
	f.IntVar(&o.maxFiles, "max-files", 0, "stop after scanning this many files (0 = unlimited)")
	f.StringVar(&o.index, "index", "", "YAML vulnerability index (default: bundled)")
	f.StringVar(&o.enable, "enable", "", "only run these pattern IDs (comma-separated)")
	f.StringVar(&o.disable, "disable", "", "skip these pattern IDs (comma-separated)")
	f.BoolVar(&o.noSecrets, "no-secrets", false, "disable secret detection")
	f.BoolVar(&o.noInjection, "no-injection", false, "disable injection checks")
	f.BoolVar(&o.noOWASP, "no-owasp", false, "disable OWASP checks")
	f.BoolVar(&o.noDeps, "no-deps", false, "disable dependency auditing")
	f.StringVar(&o.baseline, "baseline", "", "baseline file of accepted findings (default: "+report.DefaultBaselineFile+" in the root)")
	return cmd
}

// scanConfig layers the scan flags over the file configuration.
func scanConfig(cmd *cobra.Command, g *globalOptions, o *scanOptions, root string) (engine.Config, error) {
	cfg, _, err := baseConfig(cmd, g, root)
	if err != nil {
		return cfg, err
	}
	if cmd.Flags().Changed("min-severity") {
		sev, err := types.ParseSeverity(o.minSeverity)
		if err != nil {
			return cfg, fmt.Errorf("--min-severity: %w", err)
		}
		cfg.MinSeverity = sev
	}
	cfg.ExcludePatterns = append(cfg.ExcludePatterns, o.exclude...)
	pickFlag(cmd, "default-excludes", &cfg.DefaultExcludes, o.defaultExcludes)
	pickFlag(cmd, "gitignore", &cfg.RespectGitignore, o.gitignore)
	pickFlag(cmd, "max-file-size", &cfg.MaxFileSize, o.maxFileSize)
	pickFlag(cmd, "time-budget", &cfg.TimeBudget, o.timeBudget)
	pickFlag(cmd, "max-files", &cfg.MaxFiles, o.maxFiles)
	pickFlag(cmd, "index", &cfg.IndexPath, o.index)
	pickFlag(cmd, "enable", &cfg.EnableRules, o.enable)
	pickFlag(cmd, "disable", &cfg.DisableRules, o.disable)
	pickFlag(cmd, "no-secrets", &cfg.ScanSecrets, !o.noSecrets)
	pickFlag(cmd, "no-injection", &cfg.ScanInjection, !o.noInjection)
	pickFlag(cmd, "no-owasp", &cfg.ScanOWASP, !o.noOWASP)
	pickFlag(cmd, "no-deps", &cfg.ScanDependencies, !o.noDeps)
	return cfg, nil
}

func runScan(cmd *cobra.Command, g *globalOptions, o *scanOptions) error {
	threshold, failing, err := parseFailOn(o.failOn)
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(o.path)
	if err != nil {
		return err
	}
	cfg, err := scanConfig(cmd, g, o, abs)
	if err != nil {
		return err
	}
	log := cfg.Logger

	res, err := engine.ScanProject(cmd.Context(), abs, cfg)
	if err != nil {
		return err
	}
	logWarnings(log, res.Warnings)

	res, err = applyBaseline(res, abs, o.baseline)
	if err != nil {
		return err
	}
	log.Info("scan finished",
		"findings", len(res.Findings),
		"vulnerable_dependencies", len(res.Dependencies),
		"files", res.FilesScanned,
		"score", res.SecurityScore,
		"duration", res.Duration)

	if err := writeResult(cmd.OutOrStdout(), res, g.sarif); err != nil {
		return err
	}
	if failing && report.ShouldFail(res, threshold) {
		return exitCode(1)
	}
	return nil
}

// applyBaseline removes accepted findings and rescores what is left.
func applyBaseline(res types.ScanResult, root, path string) (types.ScanResult, error) {
	if path == "" {
		path = filepath.Join(root, report.DefaultBaselineFile)
	}
	base, err := report.LoadBaseline(path)
	if err != nil {
		return res, err
	}
	if len(base.Items) == 0 {
		return res, nil
	}
	agg := engine.Aggregate(report.FilterNewFindings(res.Findings, base), res.Dependencies, res.FilesScanned, res.Duration)
	res.Findings = agg.Findings
	res.SeverityCounts = agg.SeverityCounts
	res.SecurityScore = agg.SecurityScore
	return res, nil
}

func writeResult(w io.Writer, res types.ScanResult, sarif bool) error {
	if sarif {
		return report.WriteSARIF(w, res, version)
	}
	return core.MarshalResult(w, res)
}
