package vulnlens

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/varalys/vulnlens/internal/engine"
	"github.com/varalys/vulnlens/internal/report"
	"github.com/varalys/vulnlens/internal/types"
)

func newFileCmd(g *globalOptions) *cobra.Command {
	var failOn string
	cmd := &cobra.Command{
		Use:   "file <path>...",
		Short: "Scan individual files without walking a tree",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			threshold, failing, err := parseFailOn(failOn)
			if err != nil {
				return err
			}
			cfg, _, err := baseConfig(cmd, g, ".")
			if err != nil {
				return err
			}
			set := cfg.PatternSet()
			var findings []types.Finding
			warnings := set.Warnings()
			for _, p := range args {
				fs, ws := engine.ScanFile(filepath.Clean(p), set, cfg)
				findings = append(findings, fs...)
				warnings = append(warnings, ws...)
			}
			logWarnings(cfg.Logger, warnings)

			res := engine.Aggregate(findings, nil, len(args), 0)
			res.Warnings = warnings
			if err := writeResult(cmd.OutOrStdout(), res, g.sarif); err != nil {
				return err
			}
			if failing && report.ShouldFail(res, threshold) {
				return exitCode(1)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&failOn, "fail-on", "high", "exit 1 when anything at or above this severity is found (none to disable)")
	return cmd
}
