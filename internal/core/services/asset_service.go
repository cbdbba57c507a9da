package services

import (
	"context"
	"maps"
	"sync"

	"tradenexus/internal/adapters/persistence/repositories"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const logoPrompt = `High-tech logo for 'TradeNexus', Global Trade Intelligence Platform.
Icon concept: Abstract nodes connecting across a globe, forming a neural network or 'nexus'.
Style: Futuristic, enterprise SaaS, vector art, 3D glossy effect.
Colors: Electric Blue, Deep Purple, and Vibrant Orange accents.
Background: Transparent or Dark Slate (matching hex #0f172a).
Typography: Modern, bold sans-serif font for 'TradeNexus'.`

// illustrations are generated in this order
var illustrations = []struct {
	key    string
	prompt string
}{
	{"no_results", "Simple vector illustration of an empty box with a magnifying glass, blue and orange gradient, dark background compatible"},
	{"welcome", "Simple vector illustration of global trade map with connection lines, futuristic, neon blue and orange glow"},
	{"chart", "Abstract business chart rising, neon blue line, minimalist vector"},
}

// Assets are the generated branding images of a profile, as data URIs
type Assets struct {
	LogoURL       string            `json:"logoUrl,omitempty"`
	Illustrations map[string]string `json:"illustrations"`
}

func (a Assets) complete() bool {
	return a.LogoURL != "" && a.Illustrations["no_results"] != "" && a.Illustrations["welcome"] != ""
}

func (a Assets) clone() Assets {
	a.Illustrations = maps.Clone(a.Illustrations)
	return a
}

// AssetService generates the logo and illustrations once per profile and
// caches them in the profile's key-value area.
type AssetService struct {
	storage profileStorage
	ai      *AIService
	log     *zap.Logger
	group   singleflight.Group

	mu        sync.Mutex
	attempted map[string]bool
}

// NewAssetService creates a new asset service
func NewAssetService(repo repositories.KVRepository, ai *AIService, log *zap.Logger) *AssetService {
	return &AssetService{
		storage:   profileStorage{repo: repo, log: log},
		ai:        ai,
		log:       log,
		attempted: make(map[string]bool),
	}
}

// Load returns the profile's assets, generating the missing ones on the
// first call of the process. Concurrent calls for one profile share a run.
func (s *AssetService) Load(ctx context.Context, profileID string) Assets {
	assets := s.stored(ctx, profileID)
	if !s.ai.Enabled() || assets.complete() {
		return assets
	}

	v, _, _ := s.group.Do(profileID, func() (interface{}, error) {
		if !s.markAttempted(profileID) {
			return s.stored(ctx, profileID), nil
		}
		return s.generate(context.WithoutCancel(ctx), profileID), nil
	})
	return v.(Assets).clone()
}

func (s *AssetService) markAttempted(profileID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attempted[profileID] {
		return false
	}
	s.attempted[profileID] = true
	return true
}

func (s *AssetService) stored(ctx context.Context, profileID string) Assets {
	assets := Assets{Illustrations: make(map[string]string)}
	assets.LogoURL, _ = s.storage.getString(ctx, profileID, KeyLogo)
	if !s.storage.getJSON(ctx, profileID, KeyIllustrations, &assets.Illustrations) || assets.Illustrations == nil {
		assets.Illustrations = make(map[string]string)
	}
	return assets
}

// generate fills in missing assets and stops at the first failure
func (s *AssetService) generate(ctx context.Context, profileID string) Assets {
	assets := s.stored(ctx, profileID)
	log := s.log.With(zap.String("profile_id", profileID))

	if assets.LogoURL == "" {
		logo, err := s.ai.GenerateImage(ctx, logoPrompt)
		if err != nil || logo == "" {
			log.Warn("logo generation failed, skipping illustrations", zap.Error(err))
			return assets
		}
		assets.LogoURL = logo
		s.storage.attempt(KeyLogo, s.storage.repo.Set(ctx, profileID, KeyLogo, logo))
	}

	changed := false
	for _, item := range illustrations {
		if assets.Illustrations[item.key] != "" {
			continue
		}
		img, err := s.ai.GenerateImage(ctx, item.prompt)
		if err != nil || img == "" {
			log.Warn("illustration generation failed, stopping", zap.String("key", item.key), zap.Error(err))
			break
		}
		assets.Illustrations[item.key] = img
		changed = true
	}

	if changed {
		s.storage.attempt(KeyIllustrations, s.storage.setJSON(ctx, profileID, KeyIllustrations, assets.Illustrations))
	}
	return assets
}
