package insights

import (
	"strings"

	"github.com/ekaya-inc/ekaya-nl2sql/pkg/models"
)

// ParseInsights splits an insight response into entries. Lines starting with
// "-" or "•" become one entry each, with the markers removed; other lines are
// dropped. A response without bullet lines becomes a single entry.
func ParseInsights(raw string) []models.Insight {
	var out []models.Insight
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "•") {
			continue
		}
		out = append(out, models.NewInsight(strings.TrimSpace(strings.TrimLeft(line, "•- "))))
	}

	if len(out) == 0 {
		return []models.Insight{models.NewInsight(raw)}
	}
	return out
}
