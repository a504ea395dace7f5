package parse

import "strings"

// CleanModelJSON strips markdown fences and surrounding junk from a model
// response, keeping only the outermost JSON array or object. Models ignore
// formatting instructions often enough that every decode goes through here.
func CleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			// Single-line weirdness; just return as-is.
			return s
		}
		s = strings.TrimSpace(s)
	}

	// Remove trailing ``` if present.
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// Keep only the payload: first '[' to last ']' when the response looks
	// like a list, otherwise first '{' to last '}'.
	if strings.HasPrefix(s, "[") {
		if start, end := strings.Index(s, "["), strings.LastIndex(s, "]"); start != -1 && end > start {
			return strings.TrimSpace(s[start : end+1])
		}
	} else if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			return strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}
