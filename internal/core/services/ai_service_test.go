package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"tradenexus/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestAIService(gen Generator) *AIService {
	return NewAIService(gen, time.Second, zap.NewNop())
}

func TestAIService_LiveReply(t *testing.T) {
	gen := &fakeGenerator{text: "HS 0901.21"}
	svc := newTestAIService(gen)

	reply, err := svc.ClassifyHsCode(context.Background(), "roasted coffee beans")
	require.NoError(t, err)
	assert.Equal(t, AIReply{Text: "HS 0901.21"}, reply)

	require.Len(t, gen.textCalls, 1)
	assert.Contains(t, gen.textCalls[0].Prompt, "roasted coffee beans")
	assert.NotEmpty(t, gen.textCalls[0].System)
}

func TestAIService_ChatPassesHistory(t *testing.T) {
	gen := &fakeGenerator{text: "Sure."}
	svc := newTestAIService(gen)

	history := []domain.ChatTurn{{Role: "user", Text: "hi"}, {Role: "model", Text: "hello"}}
	_, err := svc.Chat(context.Background(), history, "what is an HS code?")
	require.NoError(t, err)

	require.Len(t, gen.textCalls, 1)
	assert.Equal(t, history, gen.textCalls[0].History)
	assert.Equal(t, "what is an HS code?", gen.textCalls[0].Prompt)
}

func TestAIService_DisabledUsesCannedText(t *testing.T) {
	svc := newTestAIService(&fakeGenerator{disabled: true})
	ctx := context.Background()

	reply, err := svc.Chat(ctx, nil, "hello")
	require.NoError(t, err)
	assert.True(t, reply.Offline)
	assert.Equal(t, "The AI ChatBot is temporarily unavailable.", reply.Text)

	reply, err = svc.ClassifyHsCode(ctx, "t-shirts")
	require.NoError(t, err)
	assert.Equal(t, "AI Classification is temporarily unavailable.", reply.Text)

	reply, err = svc.EmailScript(ctx, "Acme", "Textiles")
	require.NoError(t, err)
	assert.Equal(t, disabledMessage, reply.Text)

	assert.False(t, svc.Enabled())
}

func TestAIService_ErrorClassification(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		offline bool
	}{
		{"http 429", errors.New("Error 429, Message: Too Many Requests"), true},
		{"resource exhausted", errors.New("rpc error: RESOURCE_EXHAUSTED"), true},
		{"quota", errors.New("You exceeded your current quota"), true},
		{"rate limit", errors.New("rate limit reached"), true},
		{"other", errors.New("connection reset by peer"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestAIService(&fakeGenerator{textErr: tc.err, imageErr: tc.err})

			reply, err := svc.CallScript(context.Background(), "Acme")
			if tc.offline {
				require.NoError(t, err)
				assert.True(t, reply.Offline)
				assert.Equal(t, scriptFallback.offline, reply.Text)
			} else {
				assert.ErrorIs(t, err, ErrAIUnavailable)
			}

			img, err := svc.GenerateImage(context.Background(), "logo")
			assert.Empty(t, img)
			if tc.offline {
				assert.ErrorIs(t, err, ErrAIQuota)
			} else {
				assert.ErrorIs(t, err, ErrAIUnavailable)
			}
		})
	}
}

func TestAIService_RejectsEmptyPrompt(t *testing.T) {
	gen := &fakeGenerator{text: "x"}
	svc := newTestAIService(gen)

	_, err := svc.Ask(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, gen.textCalls)
}

func TestAIService_TradeNews(t *testing.T) {
	svc := newTestAIService(&fakeGenerator{disabled: true})

	news := svc.TradeNews()
	assert.Contains(t, news.Text, "Global trade volumes up 2.5% in Q3")
	require.Len(t, news.Sources, 2)

	news.Sources[0].Title = "mutated"
	assert.Equal(t, "Global Trade Review", svc.TradeNews().Sources[0].Title)
}
