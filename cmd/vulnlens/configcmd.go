package vulnlens

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/varalys/vulnlens/internal/config"
)

type configInitOptions struct {
	preset      string
	output      string
	minSeverity string
	exclude     []string
	threads     int
	force       bool
}

func newConfigCmd() *cobra.Command {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration helpers"}

	o := &configInitOptions{}
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a .vulnlens.yml with a preset of checks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd, o)
		},
	}
	initCmd.Flags().StringVar(&o.preset, "preset", "standard", "check preset: standard | secrets | code")
	initCmd.Flags().StringVar(&o.output, "output", ".vulnlens.yml", "output file path")
	initCmd.Flags().StringVar(&o.minSeverity, "min-severity", "", "drop findings below this severity")
	initCmd.Flags().StringSliceVar(&o.exclude, "exclude", nil, "exclude globs or path substrings")
	initCmd.Flags().IntVar(&o.threads, "threads", 0, "worker threads (0=GOMAXPROCS)")
	initCmd.Flags().BoolVar(&o.force, "force", false, "overwrite an existing file")

	cfgCmd.AddCommand(initCmd)
	return cfgCmd
}

func runConfigInit(cmd *cobra.Command, o *configInitOptions) error {
	fc := config.FileConfig{
		MinSeverity:      optStrPtr(o.minSeverity),
		Exclude:          o.exclude,
		Threads:          intPtr(o.threads),
		DefaultExcludes:  boolPtr(true),
		RespectGitignore: boolPtr(true),
	}
	switch strings.ToLower(o.preset) {
	case "secrets":
		fc.ScanSecrets, fc.ScanInjection, fc.ScanOWASP, fc.ScanDependencies = boolPtr(true), boolPtr(false), boolPtr(false), boolPtr(false)
	case "code":
		fc.ScanSecrets, fc.ScanInjection, fc.ScanOWASP, fc.ScanDependencies = boolPtr(false), boolPtr(true), boolPtr(true), boolPtr(false)
	case "standard", "":
		fc.ScanSecrets, fc.ScanInjection, fc.ScanOWASP, fc.ScanDependencies = boolPtr(true), boolPtr(true), boolPtr(true), boolPtr(true)
	default:
		return fmt.Errorf("unknown preset %q", o.preset)
	}

	if !o.force {
		if _, err := os.Stat(o.output); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", o.output)
		}
	}
	b, err := yaml.Marshal(&fc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(o.output, b, 0o644); err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), "Wrote", o.output)
	return err
}

func optStrPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func intPtr(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}

func boolPtr(v bool) *bool { return &v }
