package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"tradenexus/internal/config"
	"tradenexus/internal/core/domain"
	"tradenexus/internal/core/services"

	"google.golang.org/genai"
)

// Gemini generates text and images with Google's Gemini API
type Gemini struct {
	client     *genai.Client
	textModel  string
	imageModel string
}

// NewGemini creates a Gemini generator from the AI config
func NewGemini(ctx context.Context, cfg config.AIConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &Gemini{
		client:     client,
		textModel:  cfg.TextModel,
		imageModel: cfg.ImageModel,
	}, nil
}

// GenerateText sends the history followed by the prompt as one conversation
func (g *Gemini) GenerateText(ctx context.Context, req services.TextRequest) (string, error) {
	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, turn := range req.History {
		contents = append(contents, genai.NewContentFromText(turn.Text, chatRole(turn)))
	}
	contents = append(contents, genai.NewContentFromText(req.Prompt, genai.RoleUser))

	var cfg *genai.GenerateContentConfig
	if req.System != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
		}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.textModel, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("gemini returned no text")
	}
	return text, nil
}

// GenerateImage returns the first generated image as a data URI
func (g *Gemini) GenerateImage(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateImages(ctx, g.imageModel, prompt, nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate images failed: %w", err)
	}

	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil || len(resp.GeneratedImages[0].Image.ImageBytes) == 0 {
		return "", errors.New("gemini returned no image")
	}

	image := resp.GeneratedImages[0].Image
	mime := image.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(image.ImageBytes), nil
}

func chatRole(turn domain.ChatTurn) genai.Role {
	if turn.Role == "model" {
		return genai.RoleModel
	}
	return genai.RoleUser
}
