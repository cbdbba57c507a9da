package services

import (
	"context"

	"tradenexus/internal/core/domain"
)

// Note: SessionService implementation is in session_service.go
// Note: DataStore implementation is in data_store.go

// Seeder produces the initial contents of the DataStore
type Seeder interface {
	Shipments() []domain.Shipment
	Companies() []domain.Company
	HsCodes() []domain.HsCode
	HsTree() []domain.HsNode
	CountryStats() []domain.CountryStats
}

// Generator is the generative-AI capability behind AIService and AssetService
type Generator interface {
	GenerateText(ctx context.Context, req TextRequest) (string, error)
	// GenerateImage returns the image as a data URI
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// TextRequest is a single text generation call
type TextRequest struct {
	Prompt  string
	System  string
	History []domain.ChatTurn
}
