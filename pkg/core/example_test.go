package core_test

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/varalys/vulnlens/pkg/core"
)

// ExampleScanProject scans a directory with a time budget and prints a summary.
func ExampleScanProject() {
	cfg := core.DefaultConfig()
	cfg.TimeBudget = 30 * time.Second
	cfg.ExcludePatterns = []string{"testdata/**"}

	res, err := core.ScanProject(context.Background(), ".", cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scan failed: %v\n", err)
		return
	}
	fmt.Printf("score %d, %d findings, %d vulnerable dependencies\n",
		res.SecurityScore, len(res.Findings), len(res.Dependencies))
	if res.Truncated {
		fmt.Println("scan stopped early")
	}
}
