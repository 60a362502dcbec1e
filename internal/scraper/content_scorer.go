package scraper

import (
	"strings"
)

// ContentQuality represents quality metrics for distilled content
type ContentQuality struct {
	Score              int     `json:"score"` // 0-100
	ParagraphCount     int     `json:"paragraphCount"`
	AvgParagraphLength int     `json:"avgParagraphLength"`
	HasHeadings        bool    `json:"hasHeadings"`
	LinkDensity        float64 `json:"linkDensity"` // links per 1000 chars
	WordCount          int     `json:"wordCount"`
}

// ScoreContentQuality rates Markdown output; thin or link-heavy text scores low
func ScoreContentQuality(markdown string) ContentQuality {
	if strings.TrimSpace(markdown) == "" {
		return ContentQuality{}
	}

	wordCount, paragraphCount, avgParagraphLength := CalculateContentMetrics(markdown)

	hasHeadings := false
	for _, line := range strings.Split(markdown, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			hasHeadings = true
			break
		}
	}

	linkDensity := float64(strings.Count(markdown, "](")) / float64(len(markdown)) * 1000

	return ContentQuality{
		Score:              overallScore(wordCount, paragraphCount, avgParagraphLength, hasHeadings, linkDensity),
		ParagraphCount:     paragraphCount,
		AvgParagraphLength: avgParagraphLength,
		HasHeadings:        hasHeadings,
		LinkDensity:        linkDensity,
		WordCount:          wordCount,
	}
}

func overallScore(wordCount, paragraphCount, avgParagraphLength int, hasHeadings bool, linkDensity float64) int {
	score := 0

	// Word count (0-35)
	switch {
	case wordCount >= 300:
		score += 35
	case wordCount >= 150:
		score += 25
	case wordCount >= 50:
		score += 15
	case wordCount >= 20:
		score += 5
	}

	// Paragraphs (0-25)
	switch {
	case paragraphCount >= 5:
		score += 25
	case paragraphCount >= 3:
		score += 15
	case paragraphCount >= 1:
		score += 5
	}

	// Paragraph length (0-20)
	switch {
	case avgParagraphLength >= 120:
		score += 20
	case avgParagraphLength >= 60:
		score += 12
	case avgParagraphLength >= 20:
		score += 5
	}

	if hasHeadings {
		score += 10
	}

	// Link density (-10 to +10)
	switch {
	case linkDensity <= 5:
		score += 10
	case linkDensity <= 10:
		score += 5
	case linkDensity > 20:
		score -= 10
	}

	return max(0, min(score, 100))
}
