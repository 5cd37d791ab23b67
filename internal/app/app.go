// Package app assembles the quote pipeline from configuration.
package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog"

	"github.com/kosarica/booking-calculator/config"
	"github.com/kosarica/booking-calculator/internal/catalog"
	"github.com/kosarica/booking-calculator/internal/pricing"
	"github.com/kosarica/booking-calculator/internal/quote"
	"github.com/kosarica/booking-calculator/internal/rules"
	"github.com/kosarica/booking-calculator/internal/validation"
)

// App holds the wired engines.
type App struct {
	Catalog *catalog.Catalog
	Quotes  *quote.Service
}

// New loads the catalog named by cfg, builds the three engines and registers
// the catalog's rules. A missing catalog file yields an empty catalog.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	cat, err := loadCatalog(cfg.Catalog.Path, logger)
	if err != nil {
		return nil, err
	}

	pricingEngine, err := pricing.NewEngine(cfg.Pricing, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create pricing engine: %w", err)
	}
	rulesEngine, err := rules.NewEngine(cfg.Rules, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create rules engine: %w", err)
	}
	ids, err := cat.RegisterRules(rulesEngine)
	if err != nil {
		return nil, fmt.Errorf("failed to register catalog rules: %w", err)
	}

	if logger != nil {
		logger.Info().
			Int("services", len(cat.Services())).
			Int("rules", len(ids)).
			Int("cache_size", cfg.Pricing.CacheSize).
			Msg("Pricing pipeline ready")
	}

	return &App{
		Catalog: cat,
		Quotes:  quote.NewService(cat, validation.NewEngine(cfg.Validation, logger), pricingEngine, rulesEngine, logger),
	}, nil
}

func loadCatalog(path string, logger *zerolog.Logger) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.New(nil, nil)
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if logger != nil {
			logger.Warn().Str("path", path).Msg("Catalog file not found, starting with no services")
		}
		return catalog.New(nil, nil)
	}
	return catalog.Load(path)
}
