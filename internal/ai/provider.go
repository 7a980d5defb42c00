package ai

import (
	"context"
	"fmt"

	"speedyvan/internal/config"
)

// NewGenerator builds the backend selected by cfg. It returns a nil generator
// and no error when the selected provider has no key. The returned close func
// is never nil.
func NewGenerator(ctx context.Context, cfg config.AIConfig) (TextGenerator, func(), error) {
	noop := func() {}
	if cfg.RemoteKey() == "" {
		return nil, noop, nil
	}

	switch cfg.Provider {
	case config.ProviderGroq:
		c, err := NewGroqClient(cfg.GroqKey, cfg.GroqModel)
		if err != nil {
			return nil, noop, err
		}
		return c, noop, nil
	case config.ProviderGemini:
		p, err := NewGeminiProvider(ctx, cfg.GeminiKey)
		if err != nil {
			return nil, noop, err
		}
		return p, p.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}
