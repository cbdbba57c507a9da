package middleware

import (
	"tradenexus/internal/config"
	"tradenexus/internal/core/domain"
	"tradenexus/internal/core/services"
	"tradenexus/internal/pkg/jwt"
	"tradenexus/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// ProfileCookie carries the signed browser profile token
	ProfileCookie = "tn_profile"
	// ProfileHeader carries the same token for clients without cookies
	ProfileHeader = "X-Profile-Token"

	localsProfileID = "profileID"
	localsUser      = "user"
)

// BrowserProfile identifies the calling browser. A missing, invalid or
// expired token is replaced by a fresh profile.
func BrowserProfile(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// 1. Try to get token from cookie first
		token := c.Cookies(ProfileCookie)

		// 2. If not in cookie, try the profile header
		if token == "" {
			token = c.Get(ProfileHeader)
		}

		// 3. Valid token: reuse its profile
		if token != "" {
			if claims, err := jwt.ValidateProfileToken(token, cfg.JWT.Secret); err == nil {
				c.Locals(localsProfileID, claims.ProfileID)
				return c.Next()
			}
		}

		// 4. Otherwise issue a new profile
		profileID := uuid.NewString()
		token, err := jwt.GenerateProfileToken(profileID, cfg.JWT.Secret, cfg.JWT.ProfileTokenDays)
		if err != nil {
			return response.InternalServerError(c, "Failed to create browser profile")
		}

		c.Cookie(&fiber.Cookie{
			Name:     ProfileCookie,
			Value:    token,
			Path:     "/",
			MaxAge:   cfg.JWT.ProfileTokenDays * 24 * 60 * 60,
			Secure:   cfg.Cookie.Secure,
			HTTPOnly: true,
			SameSite: cfg.Cookie.SameSite,
			Domain:   cfg.Cookie.Domain,
		})
		c.Set(ProfileHeader, token)
		c.Locals(localsProfileID, profileID)

		return c.Next()
	}
}

// RequireSession rejects requests from profiles without a signed-in user
func RequireSession(sessions *services.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := sessions.CurrentUser(c.Context(), ProfileID(c))
		if user == nil {
			return response.Unauthorized(c, "Authentication required")
		}

		c.Locals(localsUser, user)
		return c.Next()
	}
}

// RoleMiddleware creates role-based authorization middleware
func RoleMiddleware(allowedRoles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return response.Unauthorized(c, "Unauthorized")
		}

		// Check if user's role is in allowed roles
		for _, allowedRole := range allowedRoles {
			if user.Role == allowedRole {
				return c.Next()
			}
		}

		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}

// AdminOnly middleware allows only the admin role
func AdminOnly() fiber.Handler {
	return RoleMiddleware(domain.RoleAdmin)
}

// ProfileID returns the browser profile set by BrowserProfile
func ProfileID(c *fiber.Ctx) string {
	id, _ := c.Locals(localsProfileID).(string)
	return id
}

// CurrentUser returns the user set by RequireSession
func CurrentUser(c *fiber.Ctx) *domain.User {
	user, _ := c.Locals(localsUser).(*domain.User)
	return user
}
