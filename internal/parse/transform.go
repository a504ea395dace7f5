package parse

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// parseAmount accepts the shapes the model emits for amounts: a JSON number,
// a numeric string, or a division expression "A/B" (shared expenses). The
// quotient is resolved here so a fraction is never stored literally.
func parseAmount(v interface{}) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case int: // unlikely from encoding/json, but harmless to support
		return float64(val), nil
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0, fmt.Errorf("empty amount")
		}
		if num, den, ok := strings.Cut(s, "/"); ok {
			a, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
			if err != nil {
				return 0, fmt.Errorf("invalid numerator %q: %w", num, err)
			}
			b, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
			if err != nil {
				return 0, fmt.Errorf("invalid denominator %q: %w", den, err)
			}
			if b == 0 {
				return 0, fmt.Errorf("division by zero in amount %q", s)
			}
			return a / b, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q: %w", s, err)
		}
		return f, nil
	case nil:
		return 0, fmt.Errorf("missing amount")
	default:
		return 0, fmt.Errorf("amount has type %T, want number or string", v)
	}
}

func getStringField(m map[string]interface{}, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// titleCase capitalizes the first letter of every word, matching how stored
// records are displayed.
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
		} else {
			b.WriteRune(r)
			prevLetter = false
		}
	}
	return b.String()
}
