package engine

import (
	"runtime"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/varalys/vulnlens/internal/patterns"
	"github.com/varalys/vulnlens/internal/scanner/factory"
	"github.com/varalys/vulnlens/internal/types"
)

// DefaultMaxFileSize is the per-file size gate used when none is set.
const DefaultMaxFileSize int64 = 1 << 20

// Config controls scanning behavior including scope, performance and
// filters. It is passed by value and never mutated by a scan.
type Config struct {
	ScanSecrets      bool
	ScanInjection    bool
	ScanOWASP        bool
	ScanDependencies bool

	// MinSeverity drops findings below this level.
	MinSeverity types.Severity

	// ExcludePatterns are doublestar globs matched against the relative path
	// and the base name. Entries without glob metacharacters match as
	// substrings of the relative path.
	ExcludePatterns  []string
	DefaultExcludes  bool
	RespectGitignore bool

	MaxFileSize    int64
	CustomPatterns []patterns.CustomPattern
	EnableRules    string
	DisableRules   string

	Threads    int
	TimeBudget time.Duration
	MaxFiles   int

	// IndexPath points at a YAML vulnerability index. Empty uses the
	// bundled index.
	IndexPath string

	Logger hclog.Logger
}

// DefaultConfig enables every check with the built-in defaults.
func DefaultConfig() Config {
	return Config{
		ScanSecrets:      true,
		ScanInjection:    true,
		ScanOWASP:        true,
		ScanDependencies: true,
		MinSeverity:      types.SevInfo,
		DefaultExcludes:  true,
		RespectGitignore: true,
		MaxFileSize:      DefaultMaxFileSize,
		Threads:          runtime.GOMAXPROCS(0),
	}
}

func (c Config) checks() factory.Config {
	return factory.Config{Secrets: c.ScanSecrets, Injection: c.ScanInjection, OWASP: c.ScanOWASP}
}

func (c Config) logger() hclog.Logger {
	if c.Logger == nil {
		return hclog.NewNullLogger()
	}
	return c.Logger
}

func (c Config) maxFileSize() int64 {
	if c.MaxFileSize <= 0 {
		return DefaultMaxFileSize
	}
	return c.MaxFileSize
}

func (c Config) threads() int {
	n := c.Threads
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	if n > 64 {
		n = 64
	}
	return n
}

// PatternSet compiles the built-in catalog plus the configured custom
// patterns and applies the enable/disable rule lists.
func (c Config) PatternSet() patterns.Set {
	return patterns.Register(c.CustomPatterns).Filter(c.EnableRules, c.DisableRules)
}
