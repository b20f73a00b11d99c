package embed

import (
	"fmt"

	"github.com/twinlift/twinlift/internal/config"
)

// NewProvider creates an embedding provider from configuration.
func NewProvider(cfg config.EmbeddingConfig) (Provider, error) {
	switch cfg.Provider {
	case "http":
		return NewHTTPProvider(cfg.Endpoint, cfg.Model, cfg.Dimensions), nil
	case "mock":
		return NewMockProvider(cfg.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}
