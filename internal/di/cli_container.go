package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/phish-filter/internal/allowlist"
	"github.com/mikey/phish-filter/internal/config"
	"github.com/mikey/phish-filter/internal/core"
	"github.com/mikey/phish-filter/internal/logging"
)

// CLIFlags contains the command line flags of the scorer CLI
type CLIFlags struct {
	InputFile       string
	Sender          string
	Subject         string
	Body            string
	Output          string
	Allowlist       []string
	EnableTyposquat bool
	Verbose         bool
	JSONLog         bool
	ConfigFile      string
}

// BuildCLIContainer creates and configures the container for the scorer CLI.
// The config is prepared by the caller so that command flags can be bound to it.
func BuildCLIContainer(flags *CLIFlags, cfg *config.Config) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(logger *zap.Logger) *config.Config {
		v := cfg.GetViper()
		v.Set("server.filter_type", "cli")
		v.Set("store.enabled", false)
		if used := v.ConfigFileUsed(); used != "" {
			logger.Info("Loaded configuration from file", zap.String("file", used))
		}
		return cfg
	}); err != nil {
		return nil, err
	}

	if err := provideScoring(container); err != nil {
		return nil, err
	}

	// Register phishing service with no store or metrics
	if err := container.Provide(func(
		cfg *config.Config,
		logger *zap.Logger,
		scorer core.Scorer,
		checker *allowlist.Checker,
	) *core.PhishingService {
		return core.NewPhishingService(scorer, logger, core.ServiceOptions{
			Allowlist:  checker,
			BlockLevel: blockLevel(cfg, logger),
		})
	}); err != nil {
		return nil, err
	}

	return container, nil
}
