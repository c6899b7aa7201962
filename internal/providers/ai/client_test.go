package ai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/smallbiznis/vyapar/internal/clock"
	"github.com/smallbiznis/vyapar/internal/config"
	"github.com/smallbiznis/vyapar/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAPI struct {
	requests []openai.ChatCompletionRequest
	reply    string
	err      error
}

func (f *fakeAPI) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: f.reply}},
		},
	}, nil
}

func newClient(api chatAPI, model string) (*Client, *clock.FakeClock) {
	clk := clock.NewFakeClock(time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC))
	rules := config.NewStaticRules(config.DefaultRules())
	return NewClient(api, model, rules, ratelimit.NewMemoryCooldown(clk), zap.NewNop()), clk
}

func TestCompleteSendsLimitsAndTrimsPrompt(t *testing.T) {
	api := &fakeAPI{reply: "  Restock soap.  "}
	client, _ := newClient(api, "gpt-4o-mini")

	reply, err := client.Complete(t.Context(), strings.Repeat("x", 2000), "what now?")
	require.NoError(t, err)
	assert.Equal(t, "Restock soap.", reply)

	require.Len(t, api.requests, 1)
	req := api.requests[0]
	assert.Equal(t, "gpt-4o-mini", req.Model)
	assert.Equal(t, 200, req.MaxTokens)
	assert.InDelta(t, 0.5, req.Temperature, 0.001)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
	assert.Equal(t, strings.Repeat("x", 1500)+trimmedSuffix, req.Messages[0].Content)
	assert.Equal(t, "what now?", req.Messages[1].Content)
}

func TestCompleteEnforcesGlobalInterval(t *testing.T) {
	api := &fakeAPI{reply: "ok"}
	client, clk := newClient(api, "gpt-4o-mini")

	_, err := client.Complete(t.Context(), "s", "u")
	require.NoError(t, err)

	clk.Advance(20 * time.Second)
	_, err = client.Complete(t.Context(), "s", "u")
	var cooling *CoolingDownError
	require.ErrorAs(t, err, &cooling)
	assert.Equal(t, 40*time.Second, cooling.Remaining)
	assert.Len(t, api.requests, 1)

	clk.Advance(40 * time.Second)
	_, err = client.Complete(t.Context(), "s", "u")
	require.NoError(t, err)
	assert.Len(t, api.requests, 2)
}

func TestCompleteRejectsUnlistedModel(t *testing.T) {
	api := &fakeAPI{reply: "ok"}
	client, _ := newClient(api, "gpt-4-turbo")

	_, err := client.Complete(t.Context(), "s", "u")
	assert.ErrorIs(t, err, ErrModelNotAllowed)
	assert.Empty(t, api.requests)
}

func TestCompleteMapsErrors(t *testing.T) {
	client, clk := newClient(&fakeAPI{err: &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests}}, "gpt-4o-mini")
	_, err := client.Complete(t.Context(), "s", "u")
	assert.ErrorIs(t, err, ErrBusy)

	clk.Advance(time.Minute)
	client.api = &fakeAPI{err: errors.New("boom")}
	_, err = client.Complete(t.Context(), "s", "u")
	assert.EqualError(t, err, "boom")

	clk.Advance(time.Minute)
	client.api = &fakeAPI{reply: "   "}
	_, err = client.Complete(t.Context(), "s", "u")
	assert.ErrorIs(t, err, ErrEmptyReply)

	client.api = nil
	_, err = client.Complete(t.Context(), "s", "u")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestTrimPrompt(t *testing.T) {
	assert.Equal(t, "short", TrimPrompt("short", 10))
	assert.Equal(t, "ab"+trimmedSuffix, TrimPrompt("abcdef", 2))
	assert.Equal(t, "abcdef", TrimPrompt("abcdef", 0))
}
