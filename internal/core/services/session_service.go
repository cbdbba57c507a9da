package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"tradenexus/internal/adapters/persistence/repositories"
	"tradenexus/internal/config"
	"tradenexus/internal/core/domain"
	"tradenexus/internal/pkg/password"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Simulated network latency of the mock identity backend
const (
	loginLatency    = 500 * time.Millisecond
	providerLatency = 1500 * time.Millisecond
	ssoLatency      = 2 * time.Second
	registerLatency = time.Second
)

// SessionEventType names a session transition
type SessionEventType string

const (
	SessionLogin          SessionEventType = "login"
	SessionRegister       SessionEventType = "register"
	SessionLogout         SessionEventType = "logout"
	SessionProfileUpdated SessionEventType = "profile_updated"
	SessionExpired        SessionEventType = "expired"
)

// SessionEvent is delivered to SessionService subscribers
type SessionEvent struct {
	Type      SessionEventType `json:"type"`
	ProfileID string           `json:"profileId"`
	UserID    string           `json:"userId,omitempty"`
}

// RegisterInput represents registration input
type RegisterInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
}

// SessionService owns the signed-in user of each browser profile: the mock
// token with its expiry and the per-user profile overrides.
type SessionService struct {
	storage  profileStorage
	cfg      config.SessionConfig
	registry *userRegistry
	events   listeners[SessionEvent]
	log      *zap.Logger
	now      func() time.Time

	// serializes read-modify-write of the override map
	overrideMu sync.Mutex

	hashCost  int
	credsOnce sync.Once
	creds     map[string]string // email -> bcrypt hash
}

// NewSessionService creates a new session service
func NewSessionService(repo repositories.KVRepository, cfg config.SessionConfig, log *zap.Logger) *SessionService {
	return &SessionService{
		storage:  profileStorage{repo: repo, log: log},
		cfg:      cfg,
		registry: newUserRegistry(),
		log:      log,
		now:      time.Now,
		hashCost: password.DefaultCost,
	}
}

// Subscribe registers fn for session events and returns its unsubscribe func
func (s *SessionService) Subscribe(fn func(SessionEvent)) func() {
	return s.events.add(fn)
}

// Login signs in one of the built-in demo accounts
func (s *SessionService) Login(ctx context.Context, profileID, email, pw string) (*domain.User, error) {
	if err := s.delay(ctx, loginLatency); err != nil {
		return nil, err
	}

	user, ok := s.checkCredentials(email, pw)
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	return s.startSession(ctx, profileID, user, s.cfg.LoginTTL, SessionLogin, true)
}

// LoginWithProvider signs in the synthetic user of a social provider
func (s *SessionService) LoginWithProvider(ctx context.Context, profileID string, provider domain.Provider) (*domain.User, error) {
	user, err := providerUser(provider)
	if err != nil {
		return nil, err
	}

	if err := s.delay(ctx, providerLatency); err != nil {
		return nil, err
	}

	return s.startSession(ctx, profileID, user, s.cfg.LoginTTL, SessionLogin, true)
}

// SSOLogin signs in the enterprise SSO user under the given email
func (s *SessionService) SSOLogin(ctx context.Context, profileID, email string) (*domain.User, error) {
	if err := s.delay(ctx, ssoLatency); err != nil {
		return nil, err
	}

	return s.startSession(ctx, profileID, ssoUser(email), s.cfg.LoginTTL, SessionLogin, true)
}

// Register creates a free-tier user with a short-lived session
func (s *SessionService) Register(ctx context.Context, profileID string, input RegisterInput) (*domain.User, error) {
	if err := s.delay(ctx, registerLatency); err != nil {
		return nil, err
	}

	user := registeredUser(newRegisteredID(), input)
	s.registry.put(user)

	return s.startSession(ctx, profileID, user, s.cfg.RegisterTTL, SessionRegister, false)
}

// Logout removes the profile's token
func (s *SessionService) Logout(ctx context.Context, profileID string) error {
	token, _ := s.Token(ctx, profileID)

	if err := s.storage.delete(ctx, profileID, KeyAuthToken); err != nil {
		return fmt.Errorf("failed to delete session token: %w", err)
	}

	event := SessionEvent{Type: SessionLogout, ProfileID: profileID}
	if token != nil {
		event.UserID = token.UserID
	}
	s.events.emit(event)
	return nil
}

// Token returns the stored token, valid or not
func (s *SessionService) Token(ctx context.Context, profileID string) (*domain.AuthToken, bool) {
	token, _, ok := s.storedToken(ctx, profileID)
	return token, ok
}

// storedToken returns the decoded token together with its stored form
func (s *SessionService) storedToken(ctx context.Context, profileID string) (*domain.AuthToken, string, bool) {
	raw, ok := s.storage.getString(ctx, profileID, KeyAuthToken)
	if !ok {
		return nil, "", false
	}
	token, ok := decodeToken(raw)
	if !ok {
		return nil, "", false
	}
	return token, raw, true
}

func decodeToken(raw string) (*domain.AuthToken, bool) {
	var token domain.AuthToken
	if err := json.Unmarshal([]byte(raw), &token); err != nil || token.UserID == "" {
		return nil, false
	}
	return &token, true
}

// CurrentUser returns the signed-in user or nil.
// An expired token is deleted on read.
func (s *SessionService) CurrentUser(ctx context.Context, profileID string) *domain.User {
	token, raw, ok := s.storedToken(ctx, profileID)
	if !ok {
		return nil
	}

	if !s.isValid(token) {
		s.expire(ctx, profileID, token.UserID, raw)
		return nil
	}

	base, ok := s.resolve(token.UserID)
	if !ok {
		return nil
	}

	user := s.applyOverrides(base, s.loadOverrides(ctx, profileID)[base.ID])
	return &user
}

// Restore returns the current user, signing in the admin demo account
// when there is none and auto-login is enabled.
func (s *SessionService) Restore(ctx context.Context, profileID string) (*domain.User, error) {
	if user := s.CurrentUser(ctx, profileID); user != nil {
		return user, nil
	}
	if !s.cfg.AutoLoginDemo {
		return nil, nil
	}

	admin := demoAccounts[0]
	return s.Login(ctx, profileID, admin.user.Email, admin.password)
}

// UpdateProfile merges update into the stored overrides of userID.
// Persistence is best effort.
func (s *SessionService) UpdateProfile(ctx context.Context, profileID, userID string, update domain.ProfileUpdate) error {
	if update.OnboardingData != nil && len(update.OnboardingData.TargetCountries) > domain.MaxTargetCountries {
		return fmt.Errorf("%w: at most %d target countries", domain.ErrInvalidInput, domain.MaxTargetCountries)
	}

	fields, err := overrideFields(update)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}

	s.overrideMu.Lock()
	s.mergeOverrides(ctx, profileID, userID, fields)
	s.overrideMu.Unlock()

	s.events.emit(SessionEvent{Type: SessionProfileUpdated, ProfileID: profileID, UserID: userID})
	return nil
}

// mergeOverrides writes fields into the override entry of userID.
// The caller holds overrideMu.
func (s *SessionService) mergeOverrides(ctx context.Context, profileID, userID string, fields map[string]json.RawMessage) {
	all := s.loadOverrides(ctx, profileID)
	entry := all[userID]
	if entry == nil {
		entry = make(map[string]json.RawMessage, len(fields))
	}
	for k, v := range fields {
		entry[k] = v
	}
	all[userID] = entry
	s.storage.attempt(KeyUserData, s.storage.setJSON(ctx, profileID, KeyUserData, all))
}

// CompleteOnboarding records the onboarding answers of the current user.
// It succeeds once per user.
func (s *SessionService) CompleteOnboarding(ctx context.Context, profileID string, data domain.OnboardingData) (*domain.User, error) {
	fields, err := overrideFields(domain.ProfileUpdate{OnboardingData: &data})
	if err != nil {
		return nil, err
	}

	user, err := s.recordOnboarding(ctx, profileID, data, fields)
	if err != nil {
		return nil, err
	}

	s.events.emit(SessionEvent{Type: SessionProfileUpdated, ProfileID: profileID, UserID: user.ID})
	return user, nil
}

// recordOnboarding checks and writes under overrideMu so that only one
// submission per user wins.
func (s *SessionService) recordOnboarding(ctx context.Context, profileID string, data domain.OnboardingData, fields map[string]json.RawMessage) (*domain.User, error) {
	s.overrideMu.Lock()
	defer s.overrideMu.Unlock()

	user := s.CurrentUser(ctx, profileID)
	if user == nil {
		return nil, domain.ErrNoSession
	}
	if user.OnboardingData != nil {
		return nil, domain.ErrOnboardingCompleted
	}
	if n := len(data.TargetCountries); n == 0 || n > domain.MaxTargetCountries {
		return nil, fmt.Errorf("%w: select between 1 and %d target countries", domain.ErrInvalidInput, domain.MaxTargetCountries)
	}

	s.mergeOverrides(ctx, profileID, user.ID, fields)
	user.OnboardingData = &data
	return user, nil
}

// SweepExpired deletes expired tokens across all profiles
func (s *SessionService) SweepExpired(ctx context.Context) (int, error) {
	entries, err := s.storage.repo.ListByKey(ctx, KeyAuthToken)
	if err != nil {
		return 0, fmt.Errorf("failed to list session tokens: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		token, ok := decodeToken(entry.Value)
		if !ok || s.isValid(token) {
			continue
		}
		if s.expire(ctx, entry.Scope, token.UserID, entry.Value) {
			removed++
		}
	}
	return removed, nil
}

func (s *SessionService) startSession(ctx context.Context, profileID string, user domain.User, ttl time.Duration, event SessionEventType, merge bool) (*domain.User, error) {
	token := domain.AuthToken{UserID: user.ID, Exp: s.now().Add(ttl).UnixMilli()}
	if err := s.storage.setJSON(ctx, profileID, KeyAuthToken, token); err != nil {
		return nil, fmt.Errorf("failed to persist session token: %w", err)
	}

	if merge {
		user = s.applyOverrides(user, s.loadOverrides(ctx, profileID)[user.ID])
	}

	s.events.emit(SessionEvent{Type: event, ProfileID: profileID, UserID: user.ID})
	return &user, nil
}

func (s *SessionService) isValid(token *domain.AuthToken) bool {
	return s.now().UnixMilli() < token.Exp
}

// expire deletes the token stored as raw. A token replaced since it was
// read, such as by a fresh login, is kept.
func (s *SessionService) expire(ctx context.Context, profileID, userID, raw string) bool {
	deleted, err := s.storage.repo.DeleteIfValue(ctx, profileID, KeyAuthToken, raw)
	if err != nil {
		s.log.Warn("failed to delete expired token", zap.String("profile_id", profileID), zap.Error(err))
		return false
	}
	if !deleted {
		return false
	}
	s.events.emit(SessionEvent{Type: SessionExpired, ProfileID: profileID, UserID: userID})
	return true
}

func (s *SessionService) delay(ctx context.Context, d time.Duration) error {
	if !s.cfg.SimulateLatency {
		return ctx.Err()
	}
	return simulateLatency(ctx, d)
}

// checkCredentials matches email and password against the demo accounts
func (s *SessionService) checkCredentials(email, pw string) (domain.User, bool) {
	s.credsOnce.Do(func() {
		s.creds = make(map[string]string, len(demoAccounts))
		for _, a := range demoAccounts {
			hash, err := password.HashWithCost(a.password, s.hashCost)
			if err != nil {
				s.log.Error("failed to hash demo credential", zap.String("email", a.user.Email), zap.Error(err))
				continue
			}
			s.creds[a.user.Email] = hash
		}
	})

	hash, ok := s.creds[email]
	if !ok || !password.Verify(pw, hash) {
		return domain.User{}, false
	}
	for _, a := range demoAccounts {
		if a.user.Email == email {
			return cloneUser(a.user), true
		}
	}
	return domain.User{}, false
}

// loadOverrides reads the override map of a profile, empty when unreadable
func (s *SessionService) loadOverrides(ctx context.Context, profileID string) map[string]map[string]json.RawMessage {
	all := make(map[string]map[string]json.RawMessage)
	if !s.storage.getJSON(ctx, profileID, KeyUserData, &all) || all == nil {
		return make(map[string]map[string]json.RawMessage)
	}
	return all
}

// applyOverrides shallow-merges fields over base. The id is never overridden.
func (s *SessionService) applyOverrides(base domain.User, fields map[string]json.RawMessage) domain.User {
	if len(fields) == 0 {
		return base
	}

	raw, err := json.Marshal(base)
	if err != nil {
		return base
	}
	merged := make(map[string]json.RawMessage)
	if err := json.Unmarshal(raw, &merged); err != nil {
		return base
	}
	for k, v := range fields {
		if k == "id" {
			continue
		}
		merged[k] = v
	}

	raw, err = json.Marshal(merged)
	if err != nil {
		return base
	}
	var out domain.User
	if err := json.Unmarshal(raw, &out); err != nil {
		s.log.Debug("ignoring malformed profile override", zap.String("user_id", base.ID), zap.Error(err))
		return base
	}
	out.ID = base.ID
	return out
}

// overrideFields converts the set fields of update into override entries
func overrideFields(update domain.ProfileUpdate) (map[string]json.RawMessage, error) {
	raw, err := json.Marshal(update)
	if err != nil {
		return nil, err
	}
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	delete(fields, "id")
	return fields, nil
}

func newRegisteredID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
}
