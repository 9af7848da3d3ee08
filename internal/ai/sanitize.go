package ai

import (
	"encoding/json"
	"strings"

	"github.com/safetydesk/incident-service/internal/domain"
)

// ParseAnalysis turns raw provider output into a structured assessment.
// Providers are asked for bare JSON but routinely wrap it in code
// fences or surrounding prose; sanitize first, then fall back to the
// first balanced object span.
func ParseAnalysis(raw string) (*domain.AIAnalysis, error) {
	cleaned := StripCodeFences(raw)

	var analysis domain.AIAnalysis
	if err := json.Unmarshal([]byte(cleaned), &analysis); err == nil {
		return &analysis, nil
	}

	span := firstBalancedObject(cleaned)
	if span == "" {
		return nil, ErrUnavailable
	}
	if err := json.Unmarshal([]byte(span), &analysis); err != nil {
		return nil, ErrUnavailable
	}
	return &analysis, nil
}

// StripCodeFences removes markdown fence markers around a JSON payload.
func StripCodeFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	}
	return strings.TrimSpace(cleaned)
}

// firstBalancedObject extracts the first {...} span with balanced
// braces, honoring string literals and escapes.
func firstBalancedObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1]
				}
			}
		}
	}
	return ""
}
