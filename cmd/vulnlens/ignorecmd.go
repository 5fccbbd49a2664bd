package vulnlens

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/varalys/vulnlens/internal/ignore"
)

func newIgnoreCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "ignore <pattern>...",
		Short: "Add gitignore-style patterns to " + ignore.FileName,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			abs, err := filepath.Abs(path)
			if err != nil {
				return err
			}
			for _, p := range args {
				changed, err := ignore.Append(abs, p)
				if err != nil {
					return fmt.Errorf("%s: %w", p, err)
				}
				if changed {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "added", p)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "path", "p", ".", "project root holding "+ignore.FileName)
	return cmd
}
