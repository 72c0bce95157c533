package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/conneroisu/bundlecfg/internal/config"
	"github.com/conneroisu/bundlecfg/internal/derive"
	"github.com/conneroisu/bundlecfg/internal/logging"
	"github.com/conneroisu/bundlecfg/internal/mode"
)

// project is everything a command needs after startup: the loaded
// settings, the mode read from the environment and a logger.
type project struct {
	config *config.Config
	mode   mode.Mode
	logger logging.Logger
}

func loadProject(cmd *cobra.Command) (*project, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})

	// The only place the environment decides the mode.
	m := mode.Parse(os.Getenv(cfg.ModeEnv))
	logger.Debug(cmd.Context(), "Resolved build mode", "env", cfg.ModeEnv, "mode", m.String())

	return &project{config: cfg, mode: m, logger: logger}, nil
}

// deriveConfiguration runs the configuration derivation against the local disk.
func (p *project) deriveConfiguration(cmd *cobra.Command) (*derive.Configuration, error) {
	perf := logging.StartOperation(p.logger, "derive")
	derived, err := derive.BuildConfiguration(p.mode, p.config.Layout(), derive.OSFileSystem())
	if err != nil {
		perf.EndWithError(cmd.Context(), err)
		return nil, err
	}
	perf.End(cmd.Context(), "pages", len(derived.Pages), "copy_rules", len(derived.CopyRules))
	return derived, nil
}
