package enrich

import "fmt"

// ExtractSpan returns the runes of text in the half-open range [start, end).
func ExtractSpan(text string, start, end int) (string, error) {
	runes := []rune(text)
	if start < 0 || end < start || end > len(runes) {
		return "", fmt.Errorf("%w: [%d, %d) outside text of length %d", ErrInvalidSpan, start, end, len(runes))
	}
	return string(runes[start:end]), nil
}
