package collector

import (
	"fmt"
	"log/slog"

	"github.com/assareh/fragrance-scout/internal/config"
	"github.com/assareh/fragrance-scout/internal/domain"
)

// New selects the collector backend from configuration.
func New(cfg config.CollectorConfig, logger *slog.Logger) (domain.Collector, error) {
	switch cfg.Mode {
	case "", "public":
		if cfg.UserAgent == "" {
			return nil, fmt.Errorf("userAgent is required for the public collector")
		}
		return NewPublicClient(cfg.UserAgent, cfg.ClientID, cfg.ClientSecret, logger), nil
	case "api":
		return NewAPIClient(cfg.ClientID, cfg.ClientSecret, cfg.Username, cfg.Password, cfg.UserAgent)
	case "mock":
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("unknown collector mode: %s (use 'public', 'api', or 'mock')", cfg.Mode)
	}
}
