package services

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	"tradenexus/internal/core/domain"
)

const ssoUserID = "sso-user-1"

// demoAccount is a built-in login
type demoAccount struct {
	password string
	user     domain.User
}

var demoAccounts = []demoAccount{
	{
		password: "admin123",
		user: domain.User{
			ID:        "1",
			Name:      "Admin User",
			Email:     "admin@tradenexus.com",
			Role:      domain.RoleAdmin,
			Company:   "TradeNexus HQ",
			AvatarURL: "https://ui-avatars.com/api/?name=Admin+User&background=0D8ABC&color=fff",
			OnboardingData: &domain.OnboardingData{
				Role:            "Administrator",
				Industry:        "Technology",
				BusinessLine:    "Export & Import",
				TargetCountries: []string{"USA", "China", "Germany"},
				PrimaryGoal:     "System Management",
			},
		},
	},
	{
		password: "user123",
		user: domain.User{
			ID:        "2",
			Name:      "Premium Trader",
			Email:     "user@tradenexus.com",
			Role:      domain.RolePremium,
			Company:   "Global Imports Ltd",
			AvatarURL: "https://ui-avatars.com/api/?name=Premium+Trader&background=random",
		},
	},
	{
		password: "demo123",
		user: domain.User{
			ID:        "3",
			Name:      "Demo User",
			Email:     "demo@tradenexus.com",
			Role:      domain.RoleFree,
			Company:   "Small Biz Inc",
			AvatarURL: "https://ui-avatars.com/api/?name=Demo+User&background=random",
		},
	},
}

// cloneUser copies the slices and pointers of u
func cloneUser(u domain.User) domain.User {
	out := u
	if u.Permissions != nil {
		out.Permissions = append([]string(nil), u.Permissions...)
	}
	if u.OnboardingData != nil {
		od := *u.OnboardingData
		od.TargetCountries = append([]string(nil), od.TargetCountries...)
		out.OnboardingData = &od
	}
	return out
}

func staticUser(id string) (domain.User, bool) {
	for _, a := range demoAccounts {
		if a.user.ID == id {
			return cloneUser(a.user), true
		}
	}
	return domain.User{}, false
}

func providerUser(provider domain.Provider) (domain.User, error) {
	var name, company, background string
	switch provider {
	case domain.ProviderGoogle:
		name, company, background = "Google User", "Tech Corp", "EA4335"
	case domain.ProviderLinkedIn:
		name, company, background = "LinkedIn User", "Pro Corp", "0077B5"
	default:
		return domain.User{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedProvider, provider)
	}

	return domain.User{
		ID:        "social-" + string(provider),
		Name:      name,
		Email:     string(provider) + "@example.com",
		Role:      domain.RoleFree,
		Company:   company,
		AvatarURL: fmt.Sprintf("https://ui-avatars.com/api/?name=%s+User&background=%s&color=fff", provider, background),
	}, nil
}

func ssoUser(email string) domain.User {
	return domain.User{
		ID:        ssoUserID,
		Name:      "Enterprise User",
		Email:     email,
		Role:      domain.RolePremium,
		Company:   "Enterprise Corp",
		AvatarURL: "https://ui-avatars.com/api/?name=Enterprise+User&background=000&color=fff",
	}
}

func registeredUser(id string, input RegisterInput) domain.User {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = "New User"
	}
	return domain.User{
		ID:        id,
		Name:      name,
		Email:     input.Email,
		Role:      domain.RoleFree,
		Company:   input.Company,
		AvatarURL: "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&background=random",
	}
}

// userRegistry holds users created by Register for the life of the process
type userRegistry struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func newUserRegistry() *userRegistry {
	return &userRegistry{users: make(map[string]domain.User)}
}

func (r *userRegistry) put(u domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = cloneUser(u)
}

func (r *userRegistry) get(id string) (domain.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return domain.User{}, false
	}
	return cloneUser(u), true
}

// resolve maps a token's user id back to its base user
func (s *SessionService) resolve(userID string) (domain.User, bool) {
	if u, ok := staticUser(userID); ok {
		return u, true
	}
	if provider, ok := strings.CutPrefix(userID, "social-"); ok {
		u, err := providerUser(domain.Provider(provider))
		return u, err == nil
	}
	if userID == ssoUserID {
		return ssoUser("sso@example.com"), true
	}
	return s.registry.get(userID)
}
