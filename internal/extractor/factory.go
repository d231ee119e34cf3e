package extractor

import (
	"fmt"

	"claimdesk/internal/config"
	"claimdesk/internal/port"
)

// ProviderFactory is a function that creates a PageExtractor from a provider config.
type ProviderFactory func(cfg *config.ProviderConfig) (port.PageExtractor, error)

// registry of provider factories, populated by init() in each provider package
// or explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewExtractor creates a PageExtractor from a provider config using the registered factory.
func NewExtractor(cfg *config.ProviderConfig) (port.PageExtractor, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown extraction provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// NewChain builds the configured providers in primary, secondary, tertiary
// order. Each is rate limited; more than one are wrapped in a Fallback.
func NewChain(cfg *config.ExtractorConfig) (port.PageExtractor, error) {
	configs := []*config.ProviderConfig{&cfg.Primary}
	if sc := cfg.SecondaryConfig(); sc != nil {
		configs = append(configs, sc)
	}
	if tc := cfg.TertiaryConfig(); tc != nil {
		configs = append(configs, tc)
	}

	extractors := make([]port.PageExtractor, 0, len(configs))
	names := make([]string, 0, len(configs))
	for _, pc := range configs {
		e, err := NewExtractor(pc)
		if err != nil {
			return nil, fmt.Errorf("creating %s extractor: %w", pc.Provider, err)
		}
		extractors = append(extractors, NewRateLimited(e, pc.RequestsPerMinute))
		names = append(names, pc.Provider)
	}

	if len(extractors) == 1 {
		return extractors[0], nil
	}
	return NewFallback(extractors, names), nil
}
