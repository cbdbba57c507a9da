package handlers

import (
	"errors"

	"tradenexus/internal/adapters/http/middleware"
	"tradenexus/internal/core/domain"
	"tradenexus/internal/core/services"
	"tradenexus/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// maxChatHistory bounds the turns forwarded to the model
const maxChatHistory = 20

// AIHandler handles generative-AI endpoints
type AIHandler struct {
	ai     *services.AIService
	assets *services.AssetService
}

// NewAIHandler creates a new AI handler
func NewAIHandler(ai *services.AIService, assets *services.AssetService) *AIHandler {
	return &AIHandler{ai: ai, assets: assets}
}

// AskRequest represents a free-form question
type AskRequest struct {
	Prompt string `json:"prompt"`
}

// ChatRequest represents a chat message with prior turns
type ChatRequest struct {
	Message string            `json:"message"`
	History []domain.ChatTurn `json:"history"`
}

// ClassifyRequest represents an HS classification request
type ClassifyRequest struct {
	Description string `json:"description"`
}

// ScriptRequest represents a sales script request
type ScriptRequest struct {
	Company  string `json:"company"`
	Industry string `json:"industry"`
}

// Ask answers a trade question
// @Summary Ask AI
// @Tags AI
// @Accept json
// @Produce json
// @Param body body AskRequest true "Question"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /ai/ask [post]
func (h *AIHandler) Ask(c *fiber.Ctx) error {
	var req AskRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	reply, err := h.ai.Ask(c.Context(), req.Prompt)
	return h.reply(c, reply, err)
}

// Chat continues a conversation with the assistant
// @Summary Chat with AI
// @Tags AI
// @Accept json
// @Produce json
// @Param body body ChatRequest true "Message and history"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /ai/chat [post]
func (h *AIHandler) Chat(c *fiber.Ctx) error {
	var req ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	history := req.History
	if len(history) > maxChatHistory {
		history = history[len(history)-maxChatHistory:]
	}

	reply, err := h.ai.Chat(c.Context(), history, req.Message)
	return h.reply(c, reply, err)
}

// ClassifyHsCode suggests HS codes for a product
// @Summary Classify product
// @Tags AI
// @Accept json
// @Produce json
// @Param body body ClassifyRequest true "Product description"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /ai/hs-classify [post]
func (h *AIHandler) ClassifyHsCode(c *fiber.Ctx) error {
	var req ClassifyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Description == "" {
		return response.BadRequest(c, "Description is required")
	}

	reply, err := h.ai.ClassifyHsCode(c.Context(), req.Description)
	return h.reply(c, reply, err)
}

// EmailScript drafts an outreach email
// @Summary Draft outreach email
// @Tags AI
// @Accept json
// @Produce json
// @Param body body ScriptRequest true "Target company"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /ai/email-script [post]
func (h *AIHandler) EmailScript(c *fiber.Ctx) error {
	var req ScriptRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Company == "" {
		return response.BadRequest(c, "Company is required")
	}

	reply, err := h.ai.EmailScript(c.Context(), req.Company, req.Industry)
	return h.reply(c, reply, err)
}

// CallScript drafts a cold call script
// @Summary Draft call script
// @Tags AI
// @Accept json
// @Produce json
// @Param body body ScriptRequest true "Target company"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /ai/call-script [post]
func (h *AIHandler) CallScript(c *fiber.Ctx) error {
	var req ScriptRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Company == "" {
		return response.BadRequest(c, "Company is required")
	}

	reply, err := h.ai.CallScript(c.Context(), req.Company)
	return h.reply(c, reply, err)
}

// TradeNews returns the trade news digest
// @Summary Trade news
// @Tags AI
// @Produce json
// @Success 200 {object} response.Response
// @Router /ai/news [get]
func (h *AIHandler) TradeNews(c *fiber.Ctx) error {
	return response.Success(c, "Trade news retrieved successfully", h.ai.TradeNews())
}

// Assets returns the generated logo and illustrations of this browser
// @Summary Branding assets
// @Description Generated once per browser profile and cached in its storage
// @Tags AI
// @Produce json
// @Success 200 {object} response.Response
// @Router /assets [get]
func (h *AIHandler) Assets(c *fiber.Ctx) error {
	assets := h.assets.Load(c.Context(), middleware.ProfileID(c))

	return response.Success(c, "Assets retrieved successfully", assets)
}

func (h *AIHandler) reply(c *fiber.Ctx, reply services.AIReply, err error) error {
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Prompt is required")
		case errors.Is(err, services.ErrAIUnavailable):
			return response.BadGateway(c, services.ErrAIUnavailable.Error())
		default:
			return response.InternalServerError(c, "AI request failed")
		}
	}

	return response.Success(c, "AI reply generated", reply)
}
