package vulnlens

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/varalys/vulnlens/internal/engine"
	"github.com/varalys/vulnlens/internal/report"
)

func newBaselineCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Manage baselines of accepted findings",
	}

	var (
		path   string
		output string
	)
	update := &cobra.Command{
		Use:   "update",
		Short: "Record the current findings as accepted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			abs, err := filepath.Abs(path)
			if err != nil {
				return err
			}
			cfg, _, err := baseConfig(cmd, g, abs)
			if err != nil {
				return err
			}
			cfg.ScanDependencies = false
			res, err := engine.ScanProject(cmd.Context(), abs, cfg)
			if err != nil {
				return err
			}
			if output == "" {
				output = filepath.Join(abs, report.DefaultBaselineFile)
			}
			if err := report.SaveBaseline(output, res.Findings); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Baseline updated: %d findings recorded in %s\n", len(res.Findings), output)
			return err
		},
	}
	update.Flags().StringVarP(&path, "path", "p", ".", "path to scan")
	update.Flags().StringVarP(&output, "output", "o", "", "baseline file (default: "+report.DefaultBaselineFile+" in the root)")

	cmd.AddCommand(update)
	return cmd
}
