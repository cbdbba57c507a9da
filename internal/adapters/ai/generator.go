package ai

import (
	"context"

	"tradenexus/internal/config"
	"tradenexus/internal/core/services"

	"go.uber.org/zap"
)

// NewGenerator picks the generator for cfg: Gemini when AI is enabled
// and a key is present, Disabled otherwise.
func NewGenerator(ctx context.Context, cfg config.AIConfig) (services.Generator, error) {
	if !cfg.Enabled {
		zap.L().Info("AI features disabled")
		return Disabled{}, nil
	}

	g, err := NewGemini(ctx, cfg)
	if err != nil {
		return nil, err
	}

	zap.L().Info("AI features enabled",
		zap.String("text_model", cfg.TextModel),
		zap.String("image_model", cfg.ImageModel),
	)
	return g, nil
}
