package estimate

import "strings"

// EstimateTokens gives a rough token count using ~1.33 tokens per word.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	tokens := int(float64(words) * 1.33)
	if tokens < 1 && len(text) > 0 {
		tokens = 1
	}
	return tokens
}

// TruncateTokens cuts text down to roughly maxTokens. Text that already fits
// is returned unchanged; cut text has its whitespace collapsed.
func TruncateTokens(text string, maxTokens int) string {
	if maxTokens <= 0 || EstimateTokens(text) <= maxTokens {
		return text
	}
	words := strings.Fields(text)
	keep := int(float64(maxTokens) / 1.33)
	if keep > len(words) {
		keep = len(words)
	}
	return strings.Join(words[:keep], " ")
}
