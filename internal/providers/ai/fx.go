package ai

import (
	openai "github.com/sashabaranov/go-openai"
	"github.com/smallbiznis/vyapar/internal/config"
	"github.com/smallbiznis/vyapar/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("ai",
	fx.Provide(Provide),
)

// Provide returns a nil Completer when OPENAI_API_KEY is unset.
func Provide(cfg config.Config, rules *config.RulesHolder, cooldown ratelimit.Cooldown, log *zap.Logger) Completer {
	if cfg.AI.OpenAIKey == "" {
		log.Info("ai advisor disabled")
		return nil
	}
	return NewClient(openai.NewClient(cfg.AI.OpenAIKey), cfg.AI.Model, rules, cooldown, log)
}
