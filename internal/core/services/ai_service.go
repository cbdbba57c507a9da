package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tradenexus/internal/core/domain"

	"go.uber.org/zap"
)

// AI errors
var (
	ErrAIDisabled    = errors.New("AI features are disabled")
	ErrAIQuota       = errors.New("AI usage quota exceeded")
	ErrAIUnavailable = errors.New("AI service is unavailable, please try again")
)

// AIReply is the text answer of an AI operation. Offline marks a canned
// answer given in place of a live one.
type AIReply struct {
	Text    string `json:"text"`
	Offline bool   `json:"offline"`
}

// NewsSource is a reference attached to the trade news digest
type NewsSource struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// NewsItem is the trade news digest
type NewsItem struct {
	Text    string       `json:"text"`
	Sources []NewsSource `json:"sources"`
}

// fallback holds the canned answers of one operation
type fallback struct {
	disabled string
	offline  string
}

const disabledMessage = "AI features are temporarily unavailable due to high demand. Please check back later."

var (
	askFallback = fallback{
		disabled: disabledMessage,
		offline:  "AI insights are in offline mode because the usage limit has been reached. Please try again later.",
	}
	chatFallback = fallback{
		disabled: "The AI ChatBot is temporarily unavailable.",
		offline:  "I'm in offline mode right now because the AI usage limit was reached. Please try again in a few minutes.",
	}
	classifyFallback = fallback{
		disabled: "AI Classification is temporarily unavailable.",
		offline:  "AI Classification is in offline mode. Browse the HS code tree to classify the product manually.",
	}
	scriptFallback = fallback{
		disabled: disabledMessage,
		offline:  "Script generation is in offline mode because the usage limit has been reached. Please use a saved template for now.",
	}
)

const (
	analystInstruction = "You are a trade intelligence analyst for TradeNexus. Answer questions about international trade, markets and logistics concisely."
	chatInstruction    = "You are TradeNexus Assistant, an expert in import/export, customs, HS codes and logistics. Keep answers short and practical."
	salesInstruction   = "You are an expert B2B sales copywriter for TradeNexus, a global trade intelligence platform."
)

var tradeNews = NewsItem{
	Text: "Global trade volumes up 2.5% in Q3 as supply chains stabilize. Vietnam emerges as top alternative manufacturing hub for electronics. New tariffs announced on EV imports in EU.",
	Sources: []NewsSource{
		{Title: "Global Trade Review", URI: "#"},
		{Title: "Logistics Weekly", URI: "#"},
	},
}

// AIService is the gateway to the generative-AI backend. Every failure is
// classified: disabled and quota failures become canned offline replies,
// anything else becomes ErrAIUnavailable.
type AIService struct {
	gen     Generator
	timeout time.Duration
	log     *zap.Logger
}

// NewAIService creates a new AI service
func NewAIService(gen Generator, timeout time.Duration, log *zap.Logger) *AIService {
	return &AIService{gen: gen, timeout: timeout, log: log}
}

// Ask answers a free-form question
func (s *AIService) Ask(ctx context.Context, prompt string) (AIReply, error) {
	return s.text(ctx, "ask", TextRequest{Prompt: prompt, System: analystInstruction}, askFallback)
}

// Chat continues a conversation with the trade assistant
func (s *AIService) Chat(ctx context.Context, history []domain.ChatTurn, message string) (AIReply, error) {
	return s.text(ctx, "chat", TextRequest{Prompt: message, System: chatInstruction, History: history}, chatFallback)
}

// ClassifyHsCode suggests HS codes for a product description
func (s *AIService) ClassifyHsCode(ctx context.Context, description string) (AIReply, error) {
	prompt := fmt.Sprintf("Classify the following product under the Harmonized System. "+
		"Give the most likely 6-digit HS code, its description and a one-line rationale, "+
		"then up to two alternatives.\n\nProduct: %s", description)
	return s.text(ctx, "hs_classify", TextRequest{Prompt: prompt, System: analystInstruction}, classifyFallback)
}

// EmailScript drafts a cold outreach email
func (s *AIService) EmailScript(ctx context.Context, company, industry string) (AIReply, error) {
	prompt := fmt.Sprintf("Write a short cold outreach email to %s, a company in the %s industry, "+
		"introducing TradeNexus trade data and proposing a 15 minute call. Include a subject line.", company, industry)
	return s.text(ctx, "email_script", TextRequest{Prompt: prompt, System: salesInstruction}, scriptFallback)
}

// CallScript drafts a cold call script
func (s *AIService) CallScript(ctx context.Context, company string) (AIReply, error) {
	prompt := fmt.Sprintf("Write a concise cold call script for reaching the procurement team at %s. "+
		"Include an opener, two discovery questions, objection handling and a close that books a demo.", company)
	return s.text(ctx, "call_script", TextRequest{Prompt: prompt, System: salesInstruction}, scriptFallback)
}

// TradeNews returns the trade news digest
func (s *AIService) TradeNews() NewsItem {
	news := tradeNews
	news.Sources = append([]NewsSource(nil), tradeNews.Sources...)
	return news
}

// GenerateImage returns a data URI, or "" and the classified error
func (s *AIService) GenerateImage(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	img, err := s.gen.GenerateImage(ctx, prompt)
	if err != nil {
		return "", s.classify("image", err)
	}
	return img, nil
}

// Enabled reports whether a live generator is wired
func (s *AIService) Enabled() bool {
	return generatorEnabled(s.gen)
}

// generatorEnabled asks gen whether it is live; generators that cannot
// tell are assumed live.
func generatorEnabled(gen Generator) bool {
	if e, ok := gen.(interface{ Enabled() bool }); ok {
		return e.Enabled()
	}
	return true
}

func (s *AIService) text(ctx context.Context, op string, req TextRequest, fb fallback) (AIReply, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return AIReply{}, fmt.Errorf("%w: prompt is required", domain.ErrInvalidInput)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	text, err := s.gen.GenerateText(ctx, req)
	if err == nil {
		return AIReply{Text: text}, nil
	}

	err = s.classify(op, err)
	switch {
	case errors.Is(err, ErrAIDisabled):
		return AIReply{Text: fb.disabled, Offline: true}, nil
	case errors.Is(err, ErrAIQuota):
		return AIReply{Text: fb.offline, Offline: true}, nil
	default:
		return AIReply{}, err
	}
}

func (s *AIService) classify(op string, err error) error {
	switch {
	case errors.Is(err, ErrAIDisabled):
		return ErrAIDisabled
	case isQuotaError(err):
		s.log.Warn("AI quota exceeded, using offline reply", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrAIQuota, err)
	default:
		s.log.Error("AI request failed", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrAIUnavailable, err)
	}
}

func (s *AIService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// isQuotaError recognises rate-limit and quota failures by their message
func isQuotaError(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"429", "resource_exhausted", "quota", "rate limit"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
