// Package scraper provides text processing utilities for content extraction.
package scraper

import (
	"strings"
)

// CleanWhitespace collapses runs of blank lines and doubled spaces
func CleanWhitespace(text string) string {
	if text == "" {
		return ""
	}

	cleaned := text
	for strings.Contains(cleaned, TripleNewline) {
		cleaned = strings.ReplaceAll(cleaned, TripleNewline, DoubleNewline)
	}
	for strings.Contains(cleaned, DoubleSpace) {
		cleaned = strings.ReplaceAll(cleaned, DoubleSpace, SingleSpace)
	}

	return strings.TrimSpace(cleaned)
}

// CalculateContentMetrics returns the word count, paragraph count and average paragraph length
func CalculateContentMetrics(content string) (wordCount, paragraphCount, avgParagraphLength int) {
	if content == "" {
		return 0, 0, 0
	}

	totalChars := 0
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		paragraphCount++
		totalChars += len(line)
	}

	wordCount = len(strings.Fields(content))

	if paragraphCount > 0 {
		avgParagraphLength = totalChars / paragraphCount
	}

	return wordCount, paragraphCount, avgParagraphLength
}

// ContainsAny checks if a string contains any of the substrings (case-insensitive)
func ContainsAny(s string, substrings []string) bool {
	sLower := strings.ToLower(s)
	for _, substr := range substrings {
		if substr == "" {
			continue
		}
		if strings.Contains(sLower, strings.ToLower(substr)) {
			return true
		}
	}
	return false
}

// LooksBlocked reports whether the markup is a bot-protection interstitial rather than a page
func LooksBlocked(html string) bool {
	return ContainsAny(html, CloudflarePatterns)
}
