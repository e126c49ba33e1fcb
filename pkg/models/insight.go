package models

// InsightIcon is the display icon attached to every insight entry.
const InsightIcon = "fas fa-lightbulb"

// Insight is one narrative entry derived from the insight model's response.
type Insight struct {
	Title       string `json:"title"`
	Value       string `json:"value"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// NewInsight creates an insight entry with the fixed display icon.
func NewInsight(description string) Insight {
	return Insight{Description: description, Icon: InsightIcon}
}
