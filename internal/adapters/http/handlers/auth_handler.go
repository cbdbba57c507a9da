package handlers

import (
	"context"
	"errors"
	"strings"

	"tradenexus/internal/adapters/http/middleware"
	"tradenexus/internal/core/domain"
	"tradenexus/internal/core/services"
	"tradenexus/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// AuthHandler handles session endpoints
type AuthHandler struct {
	sessions *services.SessionService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(sessions *services.SessionService) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

// LoginRequest represents login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SSORequest represents SSO login request body
type SSORequest struct {
	Email string `json:"email"`
}

// RegisterRequest represents registration request body
type RegisterRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
}

// Login handles password login
// @Summary Login
// @Description Sign in with one of the demo accounts
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	// Validate required fields
	if req.Email == "" {
		return response.BadRequest(c, "Email is required")
	}
	if req.Password == "" {
		return response.BadRequest(c, "Password is required")
	}

	user, err := h.sessions.Login(c.Context(), middleware.ProfileID(c), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		return sessionError(c, err, "Failed to login")
	}

	return h.sessionResponse(c, "Login successful", user)
}

// LoginWithProvider handles social login
// @Summary Social login
// @Description Sign in with a social provider (google or linkedin)
// @Tags Auth
// @Produce json
// @Param provider path string true "Provider"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /auth/provider/{provider} [post]
func (h *AuthHandler) LoginWithProvider(c *fiber.Ctx) error {
	provider := domain.Provider(strings.ToLower(utils.CopyString(c.Params("provider"))))

	user, err := h.sessions.LoginWithProvider(c.Context(), middleware.ProfileID(c), provider)
	if err != nil {
		return sessionError(c, err, "Failed to login")
	}

	return h.sessionResponse(c, "Login successful", user)
}

// SSOLogin handles enterprise SSO login
// @Summary SSO login
// @Description Sign in through enterprise single sign-on
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body SSORequest true "Work email"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /auth/sso [post]
func (h *AuthHandler) SSOLogin(c *fiber.Ctx) error {
	var req SSORequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		return response.BadRequest(c, "Email is required")
	}

	user, err := h.sessions.SSOLogin(c.Context(), middleware.ProfileID(c), email)
	if err != nil {
		return sessionError(c, err, "Failed to login")
	}

	return h.sessionResponse(c, "Login successful", user)
}

// Register handles sign up
// @Summary Register
// @Description Create a free account
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "Registration data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if strings.TrimSpace(req.Email) == "" {
		return response.BadRequest(c, "Email is required")
	}

	input := services.RegisterInput{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Company: strings.TrimSpace(req.Company),
	}

	user, err := h.sessions.Register(c.Context(), middleware.ProfileID(c), input)
	if err != nil {
		return sessionError(c, err, "Failed to register user")
	}

	token, _ := h.sessions.Token(c.Context(), middleware.ProfileID(c))
	return response.Created(c, "User registered successfully", sessionPayload(user, token))
}

// Logout handles logout
// @Summary Logout
// @Description Remove the session token of this browser
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.sessions.Logout(c.Context(), middleware.ProfileID(c)); err != nil {
		return response.InternalServerError(c, "Failed to logout")
	}

	return response.Success(c, "Logged out successfully", nil)
}

// Me returns the current user
// @Summary Get current user
// @Description Get the signed-in user of this browser and the token expiry
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user := h.sessions.CurrentUser(c.Context(), middleware.ProfileID(c))
	if user == nil {
		return response.Unauthorized(c, "Not signed in")
	}

	return h.sessionResponse(c, "User retrieved successfully", user)
}

// Session restores the session of this browser
// @Summary Restore session
// @Description Returns the current user, signing in the demo admin when auto-login is enabled
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/session [get]
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	user, err := h.sessions.Restore(c.Context(), middleware.ProfileID(c))
	if err != nil {
		return sessionError(c, err, "Failed to restore session")
	}
	if user == nil {
		return response.Success(c, "No active session", fiber.Map{"user": nil})
	}

	return h.sessionResponse(c, "Session restored", user)
}

func (h *AuthHandler) sessionResponse(c *fiber.Ctx, message string, user *domain.User) error {
	token, _ := h.sessions.Token(c.Context(), middleware.ProfileID(c))
	return response.Success(c, message, sessionPayload(user, token))
}

func sessionPayload(user *domain.User, token *domain.AuthToken) fiber.Map {
	payload := fiber.Map{"user": user}
	if token != nil {
		payload["expiresAt"] = token.Exp
	}
	return payload
}

// sessionError maps session errors to HTTP responses
func sessionError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return response.Unauthorized(c, "Invalid email or password")
	case errors.Is(err, domain.ErrUnsupportedProvider):
		return response.BadRequest(c, "Unsupported login provider")
	case errors.Is(err, domain.ErrNoSession):
		return response.Unauthorized(c, "Authentication required")
	case errors.Is(err, domain.ErrOnboardingCompleted):
		return response.Conflict(c, "Onboarding already completed")
	case errors.Is(err, domain.ErrInvalidInput):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return response.RequestTimeout(c, "Request cancelled")
	default:
		return response.InternalServerError(c, fallback)
	}
}
