package prompts

import (
	"fmt"
	"strings"
)

// InsightSystemMessage is the system message for insight generation.
const InsightSystemMessage = "Generate data insights."

// BuildFullResultInsightPrompt asks for three bullet insights over a small
// result set. csv holds the header and every row.
func BuildFullResultInsightPrompt(question, csv string) string {
	var prompt strings.Builder

	prompt.WriteString("You are a data analyst assistant.\n")
	prompt.WriteString("User question:\n")
	prompt.WriteString(question + "\n\n")
	prompt.WriteString("Here are the query results in CSV (header first):\n")
	prompt.WriteString(csv + "\n\n")
	prompt.WriteString("Please provide exactly 3 concise bullet-point insights based on these results.\n")

	return prompt.String()
}

// BuildFirstRowInsightPrompt asks what the first row of a large result set
// represents. csv holds the header and the first row only.
func BuildFirstRowInsightPrompt(question, csv string, rowCount int) string {
	var prompt strings.Builder

	prompt.WriteString("You are a data analyst assistant.\n")
	prompt.WriteString("User question:\n")
	prompt.WriteString(question + "\n\n")
	prompt.WriteString(fmt.Sprintf("The query returned %d rows; here is the first row (header + values) in CSV:\n", rowCount))
	prompt.WriteString(csv + "\n\n")
	prompt.WriteString("Please describe in one or two sentences what this row represents and why it might be the top result.\n")

	return prompt.String()
}
