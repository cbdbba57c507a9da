package ai

import (
	"context"

	"tradenexus/internal/core/services"
)

// Disabled is the generator used when no AI backend is configured
type Disabled struct{}

// GenerateText always fails with services.ErrAIDisabled
func (Disabled) GenerateText(context.Context, services.TextRequest) (string, error) {
	return "", services.ErrAIDisabled
}

// GenerateImage always fails with services.ErrAIDisabled
func (Disabled) GenerateImage(context.Context, string) (string, error) {
	return "", services.ErrAIDisabled
}

// Enabled reports false so callers can skip work that needs a live backend
func (Disabled) Enabled() bool {
	return false
}
