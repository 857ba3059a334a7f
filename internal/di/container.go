package di

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/phish-filter/internal/allowlist"
	"github.com/mikey/phish-filter/internal/config"
	"github.com/mikey/phish-filter/internal/core"
	"github.com/mikey/phish-filter/internal/factory"
	"github.com/mikey/phish-filter/internal/logging"
	"github.com/mikey/phish-filter/internal/metrics"
)

// BuildContainer creates and configures the container for the filter daemon
func BuildContainer() (*dig.Container, error) {
	return BuildContainerWithConfig(config.New)
}

// BuildContainerWithConfig is BuildContainer with a custom config source
func BuildContainerWithConfig(newConfig func() (*config.Config, error)) (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(newConfig); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideScoring(container); err != nil {
		return nil, err
	}

	// Register store
	if err := container.Provide(factory.NewStoreFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.StoreFactory) (core.AssessmentRepository, error) {
		return f.CreateStore()
	}); err != nil {
		return nil, err
	}

	// Register metrics
	if err := container.Provide(func() (*prometheus.Registry, error) {
		reg := prometheus.NewRegistry()
		if err := reg.Register(collectors.NewGoCollector()); err != nil {
			return nil, err
		}
		if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
			return nil, err
		}
		return reg, nil
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(reg *prometheus.Registry) (*metrics.Recorder, error) {
		return metrics.NewRecorder(reg)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(cfg *config.Config, reg *prometheus.Registry, logger *zap.Logger) *metrics.Server {
		return metrics.NewServer(cfg.GetString("metrics.listen_address"), reg, logger.Named("metrics"))
	}); err != nil {
		return nil, err
	}

	// Register phishing service
	if err := container.Provide(func(
		cfg *config.Config,
		logger *zap.Logger,
		scorer core.Scorer,
		repo core.AssessmentRepository,
		sf *factory.StoreFactory,
		recorder *metrics.Recorder,
		checker *allowlist.Checker,
	) (*core.PhishingService, error) {
		retention, err := sf.GetRetention()
		if err != nil {
			return nil, err
		}
		return core.NewPhishingService(scorer, logger, core.ServiceOptions{
			Store:        repo,
			Observer:     recorder,
			Allowlist:    checker,
			StoreEnabled: sf.IsStoreEnabled(),
			Retention:    retention,
			BlockLevel:   blockLevel(cfg, logger),
		}), nil
	}); err != nil {
		return nil, err
	}

	return container, nil
}
