package vulnlens

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

// exitCode is returned by commands that want a specific process exit
// status without printing an error.
type exitCode int

func (e exitCode) Error() string { return fmt.Sprintf("exit status %d", int(e)) }

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	logLevel   string
	threads    int
	sarif      bool
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}
	root := &cobra.Command{
		Use:           "vulnlens",
		Short:         "Find secrets, injection flaws and vulnerable dependencies",
		Long:          "vulnlens scans source trees for hardcoded secrets, injection and OWASP weaknesses, audits dependency manifests against a vulnerability index and reports a 0-100 security score.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "config file (default: .vulnlens.yml in the scanned root)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level: trace|debug|info|warn|error (env VULNLENS_LOG_LEVEL)")
	root.PersistentFlags().IntVar(&g.threads, "threads", 0, "worker count (0 = GOMAXPROCS)")
	root.PersistentFlags().BoolVar(&g.sarif, "sarif", false, "emit SARIF 2.1.0 instead of JSON")

	root.AddCommand(
		newScanCmd(g),
		newFileCmd(g),
		newAuditCmd(g),
		newPatternsCmd(g),
		newBaselineCmd(g),
		newConfigCmd(),
		newIgnoreCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the vulnlens CLI. It should be called by the main package.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the CLI and maps the outcome onto an exit status: 0 when
// clean, 1 when the fail-on threshold was reached, 2 on error.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var ec exitCode
	if errors.As(err, &ec) {
		return int(ec)
	}
	_, _ = fmt.Fprintln(stderr, "error:", err)
	return 2
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the vulnlens version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "vulnlens", version)
			return err
		},
	}
}
