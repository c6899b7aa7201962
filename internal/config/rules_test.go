package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRulesAreValid(t *testing.T) {
	rules := DefaultRules()
	require.NoError(t, validateRules(rules))
	assert.Equal(t, 10, rules.Inventory.ProductLowStockThreshold)
	assert.Equal(t, 5*time.Minute, rules.Chat.SessionTTL)
	assert.Equal(t, 1500, rules.AI.MaxPromptChars)
}

func TestValidateRulesRejectsEmptyModels(t *testing.T) {
	rules := DefaultRules()
	rules.AI.AllowedModels = nil
	assert.Error(t, validateRules(rules))
}

func TestStaticRulesHolder(t *testing.T) {
	rules := DefaultRules()
	rules.Dashboard.LowStockLimit = 3
	holder := NewStaticRules(rules)
	assert.Equal(t, 3, holder.Get().Dashboard.LowStockLimit)
}
