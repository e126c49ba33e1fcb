package prompts

import (
	"strings"

	"github.com/ekaya-inc/ekaya-nl2sql/pkg/models"
)

// NotNullRequirement is appended to every generation prompt.
const NotNullRequirement = "- For each returned column, add `AND <column> IS NOT NULL` to the WHERE clause."

// GenerationInput holds everything the SQL generation prompt is built from.
type GenerationInput struct {
	Model        string
	Entities     models.EntitySkeleton
	SchemaSubset string
	Examples     string
	Question     string
}

// BuildGenerationPrompt composes the SQL generation prompt. Section order is
// fixed and empty sections are still emitted.
func BuildGenerationPrompt(in GenerationInput) string {
	var prompt strings.Builder

	prompt.WriteString("You are a SQL-generation assistant (using " + in.Model + ").\n\n")

	prompt.WriteString("Extracted entities:\n")
	prompt.WriteString("• tables: " + RenderList(in.Entities.Tables) + "\n")
	prompt.WriteString("• columns: " + RenderList(in.Entities.Columns) + "\n")
	prompt.WriteString("• filters: " + RenderFilters(in.Entities.Filters) + "\n")
	prompt.WriteString("• order_by: " + RenderOrderBy(in.Entities.OrderBy) + "\n")
	prompt.WriteString("• limit: " + RenderLimit(in.Entities.Limit) + "\n\n")

	prompt.WriteString("Relevant schema definitions:\n")
	prompt.WriteString(in.SchemaSubset)
	prompt.WriteString("\n\n")

	prompt.WriteString("Examples:\n")
	prompt.WriteString(in.Examples)
	prompt.WriteString("\n\n")

	prompt.WriteString("User question: " + in.Question + "\n\n")

	prompt.WriteString("Requirements:\n")
	prompt.WriteString(NotNullRequirement + "\n\n")

	prompt.WriteString("Generate only the SQL query:")

	return prompt.String()
}
