package routes

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tradenexus/internal/adapters/ai"
	"tradenexus/internal/adapters/http/middleware"
	"tradenexus/internal/adapters/persistence/repositories"
	"tradenexus/internal/config"
	"tradenexus/internal/core/domain"
	"tradenexus/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type failingGenerator struct{}

func (failingGenerator) GenerateText(context.Context, services.TextRequest) (string, error) {
	return "", errors.New("connection reset by peer")
}

func (failingGenerator) GenerateImage(context.Context, string) (string, error) {
	return "", errors.New("connection reset by peer")
}

func testConfig() *config.Config {
	return &config.Config{
		AppMode: "dev",
		Storage: config.StorageConfig{Driver: "memory"},
		JWT:     config.JWTConfig{Secret: "test-secret", ProfileTokenDays: 1},
		Cookie:  config.CookieConfig{SameSite: "lax"},
		Session: config.SessionConfig{LoginTTL: 24 * time.Hour, RegisterTTL: time.Hour},
		Seed:    config.SeedConfig{Shipments: 50, Companies: 100, RandomSeed: 7},
	}
}

type testEnv struct {
	app   *fiber.App
	store *services.DataStore
	hub   *services.EventHub
}

func newTestApp(t *testing.T, gen services.Generator) *fiber.App {
	t.Helper()
	return newTestEnv(t, gen).app
}

func newTestEnv(t *testing.T, gen services.Generator) *testEnv {
	t.Helper()

	cfg := testConfig()
	kv := repositories.NewMemoryKVRepository()
	log := zap.NewNop()

	store := services.NewDataStore(config.NewSeeder(cfg.Seed))
	sessions := services.NewSessionService(kv, cfg.Session, log)
	aiService := services.NewAIService(gen, time.Second, log)
	hub := services.NewEventHub(store, sessions, log)
	t.Cleanup(hub.Close)

	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.CustomErrorHandler,
		DisableStartupMessage: true,
	})
	Setup(app, Services{
		Sessions: sessions,
		Store:    store,
		AI:       aiService,
		Assets:   services.NewAssetService(kv, aiService, log),
		Events:   hub,
	}, cfg)
	return &testEnv{app: app, store: store, hub: hub}
}

// serve runs the app on a loopback listener and returns its base URL
func serve(t *testing.T, env *testEnv) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = env.app.Listener(ln) }()

	t.Cleanup(func() {
		env.hub.Close()
		_ = env.app.ShutdownWithTimeout(5 * time.Second)
	})
	return "http://" + ln.Addr().String()
}

// browser keeps the profile token between requests like a cookie jar.
// With base set it talks to a live listener over one keep-alive connection.
type browser struct {
	app    *fiber.App
	base   string
	client *http.Client
	token  string
}

func newLiveBrowser(t *testing.T, base string) *browser {
	t.Helper()
	transport := &http.Transport{MaxConnsPerHost: 1}
	t.Cleanup(transport.CloseIdleConnections)
	return &browser{base: base, client: &http.Client{Transport: transport, Timeout: 5 * time.Second}}
}

func (b *browser) do(t *testing.T, method, path string, body interface{}) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	var req *http.Request
	if b.base != "" {
		var err error
		req, err = http.NewRequest(method, b.base+path, reader)
		require.NoError(t, err)
	} else {
		req = httptest.NewRequest(method, path, reader)
	}
	req.Header.Set("Content-Type", "application/json")
	if b.token != "" {
		req.Header.Set(middleware.ProfileHeader, b.token)
	}

	var (
		resp *http.Response
		err  error
	)
	if b.client != nil {
		resp, err = b.client.Do(req)
	} else {
		resp, err = b.app.Test(req, -1)
	}
	require.NoError(t, err)
	defer resp.Body.Close()
	if issued := resp.Header.Get(middleware.ProfileHeader); issued != "" {
		b.token = issued
	}

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &env)
	}
	return resp, env
}

func (b *browser) login(t *testing.T, email, password string) {
	t.Helper()
	resp, env := b.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Error)
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

type sessionData struct {
	User      *domain.User `json:"user"`
	ExpiresAt int64        `json:"expiresAt"`
}

func TestAuth_LoginMeLogout(t *testing.T) {
	b := &browser{app: newTestApp(t, ai.Disabled{})}

	resp, _ := b.do(t, http.MethodGet, "/api/v1/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.NotEmpty(t, b.token, "first response issues a profile token")

	resp, env := b.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "admin@tradenexus.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid email or password", env.Error)

	b.login(t, "admin@tradenexus.com", "admin123")

	resp, env = b.do(t, http.MethodGet, "/api/v1/auth/me", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := decode[sessionData](t, env.Data)
	assert.Equal(t, domain.RoleAdmin, data.User.Role)
	assert.Greater(t, data.ExpiresAt, time.Now().UnixMilli())

	resp, _ = b.do(t, http.MethodPost, "/api/v1/auth/logout", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = b.do(t, http.MethodGet, "/api/v1/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuth_SessionsArePerBrowser(t *testing.T) {
	app := newTestApp(t, ai.Disabled{})
	first := &browser{app: app}
	second := &browser{app: app}

	first.login(t, "user@tradenexus.com", "user123")

	resp, _ := second.do(t, http.MethodGet, "/api/v1/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.NotEqual(t, first.token, second.token)
}

func TestAuth_InvalidProfileTokenIsReplaced(t *testing.T) {
	b := &browser{app: newTestApp(t, ai.Disabled{}), token: "not-a-jwt"}

	resp, _ := b.do(t, http.MethodGet, "/api/v1/", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEqual(t, "not-a-jwt", b.token)
}

func TestAuth_ProviderAndSSO(t *testing.T) {
	b := &browser{app: newTestApp(t, ai.Disabled{})}

	resp, env := b.do(t, http.MethodPost, "/api/v1/auth/provider/github", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Unsupported login provider", env.Error)

	resp, env = b.do(t, http.MethodPost, "/api/v1/auth/provider/google", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "social-google", decode[sessionData](t, env.Data).User.ID)

	resp, _ = b.do(t, http.MethodPost, "/api/v1/auth/sso", map[string]string{"email": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, env = b.do(t, http.MethodPost, "/api/v1/auth/sso", map[string]string{"email": "jane@corp.example"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "jane@corp.example", decode[sessionData](t, env.Data).User.Email)
}

func TestProfile_RegisterUpdateOnboard(t *testing.T) {
	b := &browser{app: newTestApp(t, ai.Disabled{})}

	resp, _ := b.do(t, http.MethodPut, "/api/v1/profile", map[string]string{"name": "Nobody"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = b.do(t, http.MethodPost, "/api/v1/auth/register", map[string]string{"name": "Ada"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, env := b.do(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"name": "Ada", "email": "ada@example.com", "company": "Engines Ltd",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, domain.RoleFree, decode[sessionData](t, env.Data).User.Role)

	resp, env = b.do(t, http.MethodPut, "/api/v1/profile", map[string]string{"company": "Analytical Engines"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Analytical Engines", decode[sessionData](t, env.Data).User.Company)

	onboarding := domain.OnboardingData{Role: "Founder", TargetCountries: []string{"Vietnam", "Germany"}}
	resp, env = b.do(t, http.MethodPost, "/api/v1/profile/onboarding", onboarding)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Error)

	resp, _ = b.do(t, http.MethodPost, "/api/v1/profile/onboarding", onboarding)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, env = b.do(t, http.MethodGet, "/api/v1/auth/me", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	user := decode[sessionData](t, env.Data).User
	require.NotNil(t, user.OnboardingData)
	assert.Equal(t, []string{"Vietnam", "Germany"}, user.OnboardingData.TargetCountries)
}

func TestData_RequiresSession(t *testing.T) {
	b := &browser{app: newTestApp(t, ai.Disabled{})}

	for _, path := range []string{"/api/v1/data/shipments", "/api/v1/data/hs-codes", "/api/v1/assets"} {
		resp, env := b.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		assert.Equal(t, "Authentication required", env.Error)
	}
}

func TestData_ShipmentsAndCompanies(t *testing.T) {
	b := &browser{app: newTestApp(t, ai.Disabled{})}
	b.login(t, "user@tradenexus.com", "user123")

	resp, env := b.do(t, http.MethodGet, "/api/v1/data/shipments?limit=10", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decode[struct {
		Shipments []domain.Shipment `json:"shipments"`
		Meta      struct {
			Total      int `json:"total"`
			TotalPages int `json:"total_pages"`
		} `json:"meta"`
	}](t, env.Data)
	assert.Len(t, page.Shipments, 10)
	assert.Equal(t, 50, page.Meta.Total)
	assert.Equal(t, 5, page.Meta.TotalPages)

	resp, _ = b.do(t, http.MethodGet, "/api/v1/data/companies/COMP-105", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env = b.do(t, http.MethodDelete, "/api/v1/data/companies/COMP-105", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"deleted":true}`, string(env.Data))

	resp, env = b.do(t, http.MethodDelete, "/api/v1/data/companies/COMP-105", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"deleted":false}`, string(env.Data))

	resp, _ = b.do(t, http.MethodGet, "/api/v1/data/companies/COMP-105", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = b.do(t, http.MethodPost, "/api/v1/data/companies", map[string]string{"country": "Chile"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, env = b.do(t, http.MethodPost, "/api/v1/data/companies", map[string]string{"name": "Andes Copper", "country": "Chile"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[struct {
		Company domain.Company `json:"company"`
	}](t, env.Data).Company
	assert.NotEmpty(t, created.ID)

	resp, env = b.do(t, http.MethodGet, "/api/v1/data/companies?q=andes", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	found := decode[struct {
		Companies []domain.Company `json:"companies"`
	}](t, env.Data).Companies
	require.Len(t, found, 1)
	assert.Equal(t, created.ID, found[0].ID)

	resp, _ = b.do(t, http.MethodPut, "/api/v1/data/shipments/SHP-MISSING", domain.Shipment{ProductDesc: "Tea"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestData_UpdateKeepsPathIDAcrossRequests(t *testing.T) {
	env := newTestEnv(t, ai.Disabled{})
	b := newLiveBrowser(t, serve(t, env))
	b.login(t, "user@tradenexus.com", "user123")

	resp, out := b.do(t, http.MethodPut, "/api/v1/data/companies/COMP-105", map[string]string{"name": "Zephyr Traders"})
	require.Equal(t, http.StatusOK, resp.StatusCode, out.Error)

	// later requests on the same connection reuse the request buffers
	for i := 0; i < 5; i++ {
		resp, _ = b.do(t, http.MethodGet, "/api/v1/data/companies/ABCD-999?pad=xxxxxxxxxxxx", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	}

	company, ok := env.store.Company("COMP-105")
	require.True(t, ok)
	assert.Equal(t, "Zephyr Traders", company.Name)

	resp, out = b.do(t, http.MethodGet, "/api/v1/data/companies?q=zephyr", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	found := decode[struct {
		Companies []domain.Company `json:"companies"`
	}](t, out.Data).Companies
	require.Len(t, found, 1)
	assert.Equal(t, "COMP-105", found[0].ID)
}

// readStreamEvent reads one text/event-stream frame, skipping comments
func readStreamEvent(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()

	var event, data string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")

		switch {
		case line == "":
			if event != "" || data != "" {
				return event, data
			}
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func TestEvents_StreamsDataChanges(t *testing.T) {
	env := newTestEnv(t, ai.Disabled{})
	base := serve(t, env)

	b := newLiveBrowser(t, base)
	b.login(t, "user@tradenexus.com", "user123")

	req, err := http.NewRequest(http.MethodGet, base+"/api/v1/data/events", nil)
	require.NoError(t, err)
	req.Header.Set(middleware.ProfileHeader, b.token)

	stream := &http.Client{Transport: &http.Transport{}, Timeout: 5 * time.Second}
	resp, err := stream.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	event, data := readStreamEvent(t, reader)
	assert.Equal(t, "connected", event)
	assert.Contains(t, data, "client_id")

	resp2, _ := b.do(t, http.MethodDelete, "/api/v1/data/companies/COMP-105", nil)
	require.Equal(t, http.StatusOK, resp2.StatusCode)

	event, data = readStreamEvent(t, reader)
	assert.Equal(t, "data", event)
	assert.JSONEq(t, `{"collection":"companies","op":"deleted","id":"COMP-105"}`, data)
}

func TestEvents_RequiresSession(t *testing.T) {
	b := &browser{app: newTestApp(t, ai.Disabled{})}

	resp, env := b.do(t, http.MethodGet, "/api/v1/data/events", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Authentication required", env.Error)
}

func TestReference_Cached(t *testing.T) {
	b := &browser{app: newTestApp(t, ai.Disabled{})}
	b.login(t, "demo@tradenexus.com", "demo123")

	resp, _ := b.do(t, http.MethodGet, "/api/v1/data/hs-codes", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "public, max-age=3600", resp.Header.Get("Cache-Control"))

	resp, env := b.do(t, http.MethodGet, "/api/v1/data/hs-tree/0901", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	node := decode[struct {
		Node domain.HsNode `json:"node"`
	}](t, env.Data).Node
	assert.Equal(t, domain.HsHeading, node.Level)

	resp, _ = b.do(t, http.MethodGet, "/api/v1/data/hs-tree/9999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Cache-Control"))
}

func TestAdmin_ResetRequiresAdmin(t *testing.T) {
	app := newTestApp(t, ai.Disabled{})

	free := &browser{app: app}
	free.login(t, "demo@tradenexus.com", "demo123")
	resp, _ := free.do(t, http.MethodPost, "/api/v1/data/reset", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	admin := &browser{app: app}
	admin.login(t, "admin@tradenexus.com", "admin123")
	resp, _ = admin.do(t, http.MethodDelete, "/api/v1/data/companies/COMP-105", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = admin.do(t, http.MethodPost, "/api/v1/data/reset", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = admin.do(t, http.MethodGet, "/api/v1/data/companies/COMP-105", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProfile_CannotChangeOwnRole(t *testing.T) {
	b := &browser{app: newTestApp(t, ai.Disabled{})}
	b.login(t, "demo@tradenexus.com", "demo123")

	resp, env := b.do(t, http.MethodPut, "/api/v1/profile", map[string]interface{}{
		"name":        "Demo Two",
		"role":        "admin",
		"permissions": []string{"all"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Error)
	user := decode[sessionData](t, env.Data).User
	require.NotNil(t, user)
	assert.Equal(t, "Demo Two", user.Name)
	assert.Equal(t, domain.RoleFree, user.Role)
	assert.NotContains(t, user.Permissions, "all")

	resp, _ = b.do(t, http.MethodPost, "/api/v1/data/reset", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAI_DisabledRepliesOffline(t *testing.T) {
	b := &browser{app: newTestApp(t, ai.Disabled{})}
	b.login(t, "user@tradenexus.com", "user123")

	resp, env := b.do(t, http.MethodPost, "/api/v1/ai/chat", map[string]string{"message": "Hi"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	reply := decode[services.AIReply](t, env.Data)
	assert.True(t, reply.Offline)
	assert.Equal(t, "The AI ChatBot is temporarily unavailable.", reply.Text)

	resp, _ = b.do(t, http.MethodPost, "/api/v1/ai/ask", map[string]string{"prompt": "  "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, env = b.do(t, http.MethodGet, "/api/v1/ai/news", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, decode[services.NewsItem](t, env.Data).Sources)

	resp, env = b.do(t, http.MethodGet, "/api/v1/assets", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[services.Assets](t, env.Data).LogoURL)
}

func TestAI_UnavailableIsBadGateway(t *testing.T) {
	b := &browser{app: newTestApp(t, failingGenerator{})}
	b.login(t, "user@tradenexus.com", "user123")

	resp, env := b.do(t, http.MethodPost, "/api/v1/ai/hs-classify", map[string]string{"description": "roasted coffee beans"})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, services.ErrAIUnavailable.Error(), env.Error)
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, ai.Disabled{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "disabled", body.Checks["ai"])
	assert.Equal(t, "memory", body.Checks["driver"])
}
