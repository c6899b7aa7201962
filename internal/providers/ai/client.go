// Package ai wraps chat completions behind a model whitelist and a global
// call interval.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/smallbiznis/vyapar/internal/config"
	"github.com/smallbiznis/vyapar/internal/ratelimit"
	"go.uber.org/zap"
)

const (
	globalCooldownKey = "ai:global"
	trimmedSuffix     = "\n[...data trimmed]"
	maxReplyChars     = 1500
)

var (
	ErrNotConfigured   = errors.New("ai_not_configured")
	ErrModelNotAllowed = errors.New("ai_model_not_allowed")
	ErrBusy            = errors.New("ai_busy")
	ErrEmptyReply      = errors.New("ai_empty_reply")
)

// CoolingDownError is returned while the global interval is still open.
type CoolingDownError struct {
	Remaining time.Duration
}

func (e *CoolingDownError) Error() string {
	return fmt.Sprintf("ai cooling down for %s", e.Remaining.Round(time.Second))
}

// Completer answers one system + user prompt pair.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type chatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Client struct {
	api      chatAPI
	model    string
	rules    *config.RulesHolder
	cooldown ratelimit.Cooldown
	log      *zap.Logger
}

func NewClient(api chatAPI, model string, rules *config.RulesHolder, cooldown ratelimit.Cooldown, log *zap.Logger) *Client {
	return &Client{
		api:      api,
		model:    strings.TrimSpace(model),
		rules:    rules,
		cooldown: cooldown,
		log:      log.Named("ai.client"),
	}
}

func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	if c.api == nil {
		return "", ErrNotConfigured
	}
	rules := c.rules.Get().AI
	if !slices.Contains(rules.AllowedModels, c.model) {
		c.log.Error("model rejected", zap.String("model", c.model))
		return "", ErrModelNotAllowed
	}

	ok, remaining, err := c.cooldown.Acquire(ctx, globalCooldownKey, rules.GlobalInterval)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &CoolingDownError{Remaining: remaining}
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   rules.MaxTokens,
		Temperature: rules.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: TrimPrompt(system, rules.MaxPromptChars)},
			{Role: openai.ChatMessageRoleUser, Content: TrimPrompt(user, rules.MaxPromptChars)},
		},
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			c.log.Warn("completion rate limited")
			return "", ErrBusy
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
			c.log.Warn("completion rate limited")
			return "", ErrBusy
		}
		return "", err
	}

	c.log.Info("completion usage",
		zap.String("model", c.model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)

	if len(resp.Choices) == 0 {
		return "", ErrEmptyReply
	}
	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", ErrEmptyReply
	}
	if r := []rune(reply); len(r) > maxReplyChars {
		reply = string(r[:maxReplyChars-3]) + "..."
	}
	return reply, nil
}

// TrimPrompt cuts text to limit runes and marks the cut.
func TrimPrompt(text string, limit int) string {
	r := []rune(text)
	if limit <= 0 || len(r) <= limit {
		return text
	}
	return string(r[:limit]) + trimmedSuffix
}
