package ai

import "strings"

// ExtractJSONObject pulls a JSON object out of raw model output. Models wrap
// JSON in markdown fences or chatty preamble often enough that callers must
// never unmarshal the raw text directly.
func ExtractJSONObject(raw string) string {
	return extractDelimited(stripCodeFences(raw), '{', '}')
}

// ExtractJSONArray is ExtractJSONObject for array-shaped output
func ExtractJSONArray(raw string) string {
	return extractDelimited(stripCodeFences(raw), '[', ']')
}

func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimSuffix(text, "```")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
	}
	return strings.TrimSpace(text)
}

func extractDelimited(text string, open, closing byte) string {
	start := strings.IndexByte(text, open)
	end := strings.LastIndexByte(text, closing)
	if start != -1 && end != -1 && end > start {
		return text[start : end+1]
	}
	return text
}
