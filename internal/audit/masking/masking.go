// Package masking redacts contact details and secrets from audit metadata.
package masking

import (
	"strings"

	"github.com/smallbiznis/vyapar/pkg/phone"
)

const maskToken = "****"

type rule int

const (
	ruleSecret rule = iota + 1
	rulePhone
	ruleEmail
)

// Metadata keys are compared lower-cased.
var sensitiveKeys = map[string]rule{
	"password":       ruleSecret,
	"token":          ruleSecret,
	"phone":          rulePhone,
	"to":             rulePhone,
	"from":           rulePhone,
	"sender":         rulePhone,
	"customer_phone": rulePhone,
	"email":          ruleEmail,
}

// MaskSecret redacts a value while keeping a four character suffix.
func MaskSecret(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) <= 4 {
		return maskToken
	}
	return maskToken + trimmed[len(trimmed)-4:]
}

// MaskEmail keeps the first letter of the local part and the domain.
func MaskEmail(value string) string {
	trimmed := strings.TrimSpace(value)
	at := strings.LastIndex(trimmed, "@")
	if at <= 0 {
		return MaskSecret(trimmed)
	}
	return trimmed[:1] + maskToken + trimmed[at:]
}

// MaskJSON returns a copy of input with values under sensitive keys masked.
// Nested objects are walked.
func MaskJSON(input map[string]any) map[string]any {
	masked := make(map[string]any, len(input))
	for key, value := range input {
		trimmedKey := strings.TrimSpace(key)
		if trimmedKey == "" {
			continue
		}
		if r, ok := sensitiveKeys[strings.ToLower(trimmedKey)]; ok {
			masked[trimmedKey] = maskValue(r, value)
			continue
		}
		if nested, ok := value.(map[string]any); ok {
			masked[trimmedKey] = MaskJSON(nested)
			continue
		}
		masked[trimmedKey] = value
	}
	return masked
}

func maskValue(r rule, value any) any {
	switch cast := value.(type) {
	case string:
		switch r {
		case rulePhone:
			return phone.Mask(cast)
		case ruleEmail:
			return MaskEmail(cast)
		default:
			return MaskSecret(cast)
		}
	case []any:
		out := make([]any, 0, len(cast))
		for _, item := range cast {
			out = append(out, maskValue(r, item))
		}
		return out
	default:
		return maskToken
	}
}
