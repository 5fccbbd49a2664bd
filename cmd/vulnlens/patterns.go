package vulnlens

import (
	"github.com/spf13/cobra"

	"github.com/varalys/vulnlens/internal/report"
)

func newPatternsCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "patterns",
		Short: "List built-in and configured custom patterns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := baseConfig(cmd, g, ".")
			if err != nil {
				return err
			}
			set := cfg.PatternSet()
			logWarnings(cfg.Logger, set.Warnings())
			return report.PrintPatterns(cmd.OutOrStdout(), set.Signatures())
		},
	}
}
