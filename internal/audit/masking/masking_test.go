package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskJSONMasksSensitiveKeys(t *testing.T) {
	out := MaskJSON(map[string]any{
		"phone":    "919876543210",
		"To":       []any{"919811122233", 42},
		"amount":   "300.00",
		"password": "hunter22",
		"nested":   map[string]any{"email": "ravi@example.com"},
	})

	assert.Equal(t, "********3210", out["phone"])
	assert.Equal(t, []any{"********2233", "****"}, out["To"])
	assert.Equal(t, "300.00", out["amount"])
	assert.Equal(t, "****er22", out["password"])
	assert.Equal(t, "r****@example.com", out["nested"].(map[string]any)["email"])
}

func TestMaskJSONEmptyInput(t *testing.T) {
	assert.Empty(t, MaskJSON(nil))
}

func TestMaskSecretShortValue(t *testing.T) {
	assert.Equal(t, "****", MaskSecret("123"))
	assert.Equal(t, "", MaskSecret("  "))
}

func TestMaskEmailWithoutDomain(t *testing.T) {
	assert.Equal(t, "****ravi", MaskEmail("no-at-ravi"))
}
