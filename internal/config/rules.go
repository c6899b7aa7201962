package config

import (
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Rules are business thresholds that operators can tune without a restart.
type Rules struct {
	Inventory InventoryRules `mapstructure:"inventory"`
	Dashboard DashboardRules `mapstructure:"dashboard"`
	Chat      ChatRules      `mapstructure:"chat"`
	AI        AIRules        `mapstructure:"ai"`
}

type InventoryRules struct {
	ProductLowStockThreshold int `mapstructure:"product_low_stock_threshold"`
}

type DashboardRules struct {
	LowStockLimit     int   `mapstructure:"low_stock_limit"`
	TopProductsLimit  int   `mapstructure:"top_products_limit"`
	RevenueDays       int   `mapstructure:"revenue_days"`
	RevenuePeriodDays []int `mapstructure:"revenue_period_days"`
}

type ChatRules struct {
	SessionTTL     time.Duration `mapstructure:"session_ttl"`
	LastInvoiceTTL time.Duration `mapstructure:"last_invoice_ttl"`
}

type AIRules struct {
	AllowedModels  []string      `mapstructure:"allowed_models"`
	UserCooldown   time.Duration `mapstructure:"user_cooldown"`
	GlobalInterval time.Duration `mapstructure:"global_interval"`
	MaxPromptChars int           `mapstructure:"max_prompt_chars"`
	MaxTokens      int           `mapstructure:"max_tokens"`
	Temperature    float32       `mapstructure:"temperature"`
}

func DefaultRules() Rules {
	return Rules{
		Inventory: InventoryRules{ProductLowStockThreshold: 10},
		Dashboard: DashboardRules{
			LowStockLimit:     20,
			TopProductsLimit:  5,
			RevenueDays:       30,
			RevenuePeriodDays: []int{7, 30, 90},
		},
		Chat: ChatRules{
			SessionTTL:     5 * time.Minute,
			LastInvoiceTTL: 24 * time.Hour,
		},
		AI: AIRules{
			AllowedModels:  []string{"gpt-4o-mini", "gpt-4o", "gpt-4.1-mini"},
			UserCooldown:   30 * time.Second,
			GlobalInterval: 60 * time.Second,
			MaxPromptChars: 1500,
			MaxTokens:      200,
			Temperature:    0.5,
		},
	}
}

type RulesHolder struct {
	current atomic.Value // holds Rules
}

// NewStaticRules returns a holder that never reloads.
func NewStaticRules(rules Rules) *RulesHolder {
	holder := &RulesHolder{}
	holder.current.Store(rules)
	return holder
}

func NewRulesHolder(log *zap.Logger) (*RulesHolder, error) {
	v := viper.New()

	v.SetConfigName("rules")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/vyapar")
	v.AddConfigPath(".")

	v.SetEnvPrefix("VYAPAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileFound = false
	}

	cfg := DefaultRules()
	if err := v.UnmarshalKey("rules", &cfg); err != nil {
		return nil, err
	}
	if err := validateRules(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticRules(cfg)
	if !fileFound {
		return holder, nil
	}

	log = log.Named("rules")
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated := DefaultRules()
		if err := v.UnmarshalKey("rules", &updated); err != nil {
			log.Warn("reload failed", zap.Error(err))
			return
		}
		if err := validateRules(updated); err != nil {
			log.Warn("invalid rules ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("rules reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *RulesHolder) Get() Rules {
	return h.current.Load().(Rules)
}

func validateRules(cfg Rules) error {
	if cfg.Inventory.ProductLowStockThreshold < 0 {
		return errors.New("rules.inventory.product_low_stock_threshold cannot be negative")
	}
	if cfg.Dashboard.LowStockLimit <= 0 {
		return errors.New("rules.dashboard.low_stock_limit must be positive")
	}
	if cfg.Dashboard.TopProductsLimit <= 0 {
		return errors.New("rules.dashboard.top_products_limit must be positive")
	}
	if len(cfg.Dashboard.RevenuePeriodDays) == 0 {
		return errors.New("rules.dashboard.revenue_period_days cannot be empty")
	}
	if cfg.Chat.SessionTTL <= 0 {
		return errors.New("rules.chat.session_ttl must be positive")
	}
	if len(cfg.AI.AllowedModels) == 0 {
		return errors.New("rules.ai.allowed_models cannot be empty")
	}
	if cfg.AI.MaxPromptChars <= 0 {
		return errors.New("rules.ai.max_prompt_chars must be positive")
	}
	return nil
}
