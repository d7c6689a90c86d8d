package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeJSON unmarshals a model completion into v. Models wrap JSON in
// markdown fences or leading prose often enough that the raw content is
// trimmed down to its outermost object first.
func DecodeJSON(content string, v any) error {
	trimmed := ExtractJSON(content)
	if trimmed == "" {
		return fmt.Errorf("no JSON object in model output")
	}
	if err := json.Unmarshal([]byte(trimmed), v); err != nil {
		return fmt.Errorf("decode model output: %w", err)
	}
	return nil
}

// ExtractJSON returns the outermost {...} span of content, stripping any
// surrounding fences or prose. Empty when no object is present.
func ExtractJSON(content string) string {
	s := strings.TrimSpace(content)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
