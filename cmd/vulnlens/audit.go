package vulnlens

import (
	"github.com/spf13/cobra"

	"github.com/varalys/vulnlens/internal/deps"
	"github.com/varalys/vulnlens/internal/engine"
	"github.com/varalys/vulnlens/internal/report"
	"github.com/varalys/vulnlens/internal/types"
)

func newAuditCmd(g *globalOptions) *cobra.Command {
	var (
		failOn    string
		indexPath string
	)
	cmd := &cobra.Command{
		Use:   "audit <manifest>...",
		Short: "Check dependency manifests against the vulnerability index",
		Long:  "Supported manifests: package.json, requirements*.txt and go.mod.",
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
			pickFlag(cmd, "index", &cfg.IndexPath, indexPath)

			var idx deps.Index
			if cfg.IndexPath != "" {
				if idx, err = deps.LoadIndex(cfg.IndexPath); err != nil {
					return err
				}
			}
			var (
				vulns    []types.DependencyVulnerability
				warnings []types.Warning
			)
			for _, m := range args {
				vs, ws := deps.AuditWithWarnings(m, idx)
				vulns = append(vulns, vs...)
				warnings = append(warnings, ws...)
			}
			logWarnings(cfg.Logger, warnings)

			res := engine.Aggregate(nil, vulns, 0, 0)
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
	cmd.Flags().StringVar(&failOn, "fail-on", "high", "exit 1 when a vulnerability at or above this severity is found (none to disable)")
	cmd.Flags().StringVar(&indexPath, "index", "", "YAML vulnerability index (default: bundled)")
	return cmd
}
