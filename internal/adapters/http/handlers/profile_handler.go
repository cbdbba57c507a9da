package handlers

import (
	"tradenexus/internal/adapters/http/middleware"
	"tradenexus/internal/core/domain"
	"tradenexus/internal/core/services"
	"tradenexus/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ProfileHandler handles profile endpoints of the signed-in user
type ProfileHandler struct {
	sessions *services.SessionService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(sessions *services.SessionService) *ProfileHandler {
	return &ProfileHandler{sessions: sessions}
}

// UpdateProfileRequest represents the self-service profile fields.
// Role and permissions are assigned by the account, never by the user.
type UpdateProfileRequest struct {
	Name      *string `json:"name,omitempty"`
	Email     *string `json:"email,omitempty"`
	Company   *string `json:"company,omitempty"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}

func (r UpdateProfileRequest) toUpdate() domain.ProfileUpdate {
	return domain.ProfileUpdate{
		Name:      r.Name,
		Email:     r.Email,
		Company:   r.Company,
		AvatarURL: r.AvatarURL,
	}
}

// UpdateProfile handles profile updates
// @Summary Update profile
// @Description Merge fields into the current user's profile
// @Tags Profile
// @Accept json
// @Produce json
// @Param body body UpdateProfileRequest true "Fields to change"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /profile [put]
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user := middleware.CurrentUser(c)
	profileID := middleware.ProfileID(c)

	if err := h.sessions.UpdateProfile(c.Context(), profileID, user.ID, req.toUpdate()); err != nil {
		return sessionError(c, err, "Failed to update profile")
	}

	return response.Success(c, "Profile updated successfully", fiber.Map{
		"user": h.sessions.CurrentUser(c.Context(), profileID),
	})
}

// CompleteOnboarding handles the onboarding wizard submission
// @Summary Complete onboarding
// @Description Record the onboarding answers of the current user (once)
// @Tags Profile
// @Accept json
// @Produce json
// @Param body body domain.OnboardingData true "Onboarding answers"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /profile/onboarding [post]
func (h *ProfileHandler) CompleteOnboarding(c *fiber.Ctx) error {
	var data domain.OnboardingData
	if err := c.BodyParser(&data); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.sessions.CompleteOnboarding(c.Context(), middleware.ProfileID(c), data)
	if err != nil {
		return sessionError(c, err, "Failed to complete onboarding")
	}

	return response.Success(c, "Onboarding completed", fiber.Map{"user": user})
}
