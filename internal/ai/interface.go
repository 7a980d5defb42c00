package ai

import (
	"context"
)

// TextGenerator is a single-shot text completion backend.
// Implementations must honour ctx cancellation.
type TextGenerator interface {
	// Generate sends prompt as one user message and returns the reply text.
	Generate(ctx context.Context, prompt string) (string, error)

	// Name identifies the backend in logs and metrics.
	Name() string
}
