package vulnlens

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/varalys/vulnlens/internal/config"
	"github.com/varalys/vulnlens/internal/engine"
	"github.com/varalys/vulnlens/internal/logger"
	"github.com/varalys/vulnlens/internal/types"
)

// loadFileConfig merges the global config with the local one found in root.
// An explicit path replaces the local lookup.
func loadFileConfig(root, explicit string) (config.FileConfig, error) {
	global, err := config.LoadGlobal()
	if err != nil && !errors.Is(err, config.ErrNotFound) {
		return config.FileConfig{}, err
	}
	var local config.FileConfig
	if explicit != "" {
		local, err = config.LoadFile(explicit)
	} else {
		local, err = config.LoadLocal(root)
	}
	if err != nil && !errors.Is(err, config.ErrNotFound) {
		return config.FileConfig{}, err
	}
	return config.Merge(global, local), nil
}

// baseConfig resolves CLI > local > global for the shared settings.
func baseConfig(cmd *cobra.Command, g *globalOptions, root string) (engine.Config, config.FileConfig, error) {
	fc, err := loadFileConfig(root, g.configPath)
	if err != nil {
		return engine.Config{}, fc, err
	}
	cfg, err := fc.Apply(engine.DefaultConfig())
	if err != nil {
		return cfg, fc, err
	}
	pickFlag(cmd, "threads", &cfg.Threads, g.threads)
	cfg.Logger = newLogger(cmd, g, fc)
	return cfg, fc, nil
}

func newLogger(cmd *cobra.Command, g *globalOptions, fc config.FileConfig) hclog.Logger {
	level := g.logLevel
	if level == "" && fc.LogLevel != nil {
		level = *fc.LogLevel
	}
	return logger.NewWithOutput("vulnlens", level, cmd.ErrOrStderr())
}

// pickFlag overwrites dst with v only when the flag was set explicitly.
func pickFlag[T any](cmd *cobra.Command, name string, dst *T, v T) {
	if cmd.Flags().Changed(name) {
		*dst = v
	}
}

// parseFailOn turns a --fail-on value into a threshold. "none" and "off"
// disable failing.
func parseFailOn(s string) (types.Severity, bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "off", "never":
		return 0, false, nil
	}
	sev, err := types.ParseSeverity(s)
	if err != nil {
		return 0, false, fmt.Errorf("--fail-on: %w", err)
	}
	return sev, true, nil
}

// logWarnings surfaces config problems at warn level; routine skips are
// only logged at debug since they are part of the JSON output anyway.
func logWarnings(log hclog.Logger, ws []types.Warning) {
	for _, w := range ws {
		if w.Category == types.WarnConfig {
			log.Warn(w.Message, "category", string(w.Category), "path", w.Path)
			continue
		}
		log.Debug(w.Message, "category", string(w.Category), "path", w.Path)
	}
}
