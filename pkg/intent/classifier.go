// Package intent classifies questions into coarse analytical shapes.
package intent

import (
	"strings"

	"github.com/ekaya-inc/ekaya-nl2sql/pkg/models"
)

var (
	// aggregateKeywords are checked first; a hit wins over any time-series phrase.
	aggregateKeywords = []string{"sum", "average", "total", "top", "max", "min"}

	timeSeriesKeywords = []string{"trend", "over time", "per month", "per year"}
)

// Normalize lower-cases and trims a raw question.
func Normalize(question string) string {
	return strings.ToLower(strings.TrimSpace(question))
}

// Classify maps normalized question text to an intent using substring matches.
// Matching is plain substring containment, so "minimum" and "summary" count as
// aggregate vocabulary.
func Classify(normalized string) models.Intent {
	if containsAny(normalized, aggregateKeywords) {
		return models.IntentAggregate
	}
	if containsAny(normalized, timeSeriesKeywords) {
		return models.IntentTimeSeries
	}
	return models.IntentList
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
