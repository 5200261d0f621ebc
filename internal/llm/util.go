// Package llm - util.go salvages JSON payloads out of raw model text.
package llm

import "strings"

// CleanJSONBlock recovers the JSON payload from a model response. Models
// wrap output in markdown fences or pad it with prose even when told not
// to, so fences are stripped first and then the text is narrowed to the
// outermost object or array. Text containing no JSON comes back unchanged.
func CleanJSONBlock(text string) string {
	text = stripFences(strings.TrimSpace(text))

	objStart := strings.Index(text, "{")
	arrStart := strings.Index(text, "[")
	if arrStart >= 0 && (objStart < 0 || arrStart < objStart) {
		if payload := extractJSONArray(text); payload != "" {
			return payload
		}
	}
	if payload := extractJSONObject(text); payload != "" {
		return payload
	}
	return text
}

// stripFences removes a leading ```json or generic ``` fence and its
// closing marker. A bare language tag on the first line is dropped too.
func stripFences(text string) string {
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := text[:idx]
			if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.Contains(firstLine, "{") {
				text = text[idx+1:]
			}
		}
	} else {
		return text
	}

	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// extractJSONObject returns the outermost {...} span of text, or ""
// when no object is present.
func extractJSONObject(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}

// extractJSONArray returns the outermost [...] span of text, or ""
// when no array is present.
func extractJSONArray(text string) string {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}
