package factory

import (
	"fmt"

	"github.com/mikey/phish-filter/internal/adapters/filter"
	"github.com/mikey/phish-filter/internal/config"
	"github.com/mikey/phish-filter/internal/core"
	"github.com/mikey/phish-filter/internal/ports"
	"github.com/mikey/phish-filter/internal/utils"
	"go.uber.org/zap"
)

// FilterFactory creates email filters based on configuration
type FilterFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	service       *core.PhishingService
	textProcessor *utils.TextProcessor
}

// NewFilterFactory creates a new filter factory
func NewFilterFactory(cfg *config.Config, logger *zap.Logger, service *core.PhishingService, textProcessor *utils.TextProcessor) *FilterFactory {
	return &FilterFactory{
		cfg:           cfg,
		logger:        logger,
		service:       service,
		textProcessor: textProcessor,
	}
}

// CreateEmailFilter creates an email filter based on the configuration
func (f *FilterFactory) CreateEmailFilter() (ports.EmailFilter, error) {
	filterType := f.cfg.GetString("server.filter_type")

	switch filterType {
	case "postfix":
		sc := f.cfg.GetServer()
		return filter.NewPostfixFilter(f.service, f.logger.Named("postfix"), f.textProcessor, filter.PostfixOptions{
			ListenAddress:    sc.ListenAddress,
			BlockPhishing:    sc.BlockPhishing,
			StatusHeader:     sc.StatusHeader,
			ScoreHeader:      sc.ScoreHeader,
			LevelHeader:      sc.LevelHeader,
			IndicatorsHeader: sc.IndicatorsHeader,
			PostfixEnabled:   sc.PostfixEnabled,
			PostfixAddress:   sc.PostfixAddress,
			PostfixPort:      sc.PostfixPort,
			ModifySubject:    sc.ModifySubject,
			SubjectPrefix:    sc.SubjectPrefix,
		}), nil
	case "cli":
		return filter.NewCliFilter(
			f.service,
			f.logger,
			f.textProcessor,
			f.cfg.GetBool("cli.verbose"),
			f.cfg.GetString("cli.output"),
		)
	default:
		return nil, fmt.Errorf("unsupported filter type: %s", filterType)
	}
}
