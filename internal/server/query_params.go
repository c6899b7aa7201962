package server

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

const dateOnlyLayout = "2006-01-02"

var errInvalidQueryValue = errors.New("invalid_query_value")

// idFilter is an optional snowflake id passed as a list filter.
type idFilter struct {
	field string
	value string
}

// validateIDFilters rejects the first filter that is set but is not a
// snowflake id. Empty filters are skipped.
func validateIDFilters(filters ...idFilter) error {
	for _, f := range filters {
		value := strings.TrimSpace(f.value)
		if value == "" {
			continue
		}
		id, err := snowflake.ParseString(value)
		if err != nil || id <= 0 {
			return newValidationError(f.field, "invalid_"+f.field, "invalid "+f.field)
		}
	}
	return nil
}

// parseIncludeInactive reads the include_inactive list flag; absent means false.
func parseIncludeInactive(value string) (bool, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return false, nil
	}
	parsed, err := strconv.ParseBool(trimmed)
	if err != nil {
		return false, newValidationError("include_inactive", "invalid_include_inactive", "invalid include_inactive")
	}
	return parsed, nil
}

// parsePositiveInt parses an optional integer query value. It returns 0 when
// the value is absent and errInvalidQueryValue when it is not in 1..max.
// A max of 0 leaves the upper end open.
func parsePositiveInt(value string, max int) (int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil || parsed <= 0 || (max > 0 && parsed > max) {
		return 0, errInvalidQueryValue
	}
	return parsed, nil
}

// parseTimeBound accepts RFC3339 or a bare date. A bare date is widened to
// the start of the day, or to its last nanosecond when endOfDay is set.
func parseTimeBound(value string, endOfDay bool) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return &parsed, nil
	}
	parsed, err := time.ParseInLocation(dateOnlyLayout, trimmed, time.UTC)
	if err != nil {
		return nil, errInvalidQueryValue
	}
	if endOfDay {
		parsed = parsed.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &parsed, nil
}
