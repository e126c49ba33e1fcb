package prompts

import (
	"fmt"
	"strings"

	"github.com/ekaya-inc/ekaya-nl2sql/pkg/models"
)

// ExtractionSystemMessage restricts the extraction model to the skeleton keys.
const ExtractionSystemMessage = "Extract tables, columns, filters, order_by, limit. " +
	"Respond with a single JSON object containing exactly these keys and nothing else."

// DatasetDefinitions grounds domain vocabulary used in questions.
const DatasetDefinitions = `ICD-10: International Classification of Diseases (diagnostic codes)
CPT: Current Procedural Terminology (procedure/service codes)
HCP: Healthcare Professional
HCO: Healthcare Organization
Claim: billed interaction record
Patient: individual receiving treatment
Procedure: medical operation/service
Drug: pharmaceutical product
Therapy Area: medical specialty
KOL: Key Opinion Leader
Trial: clinical study`

// BuildExtractionPrompt builds the user prompt for entity extraction.
func BuildExtractionPrompt(question string, intent models.Intent, schemaSummary string) string {
	var prompt strings.Builder

	prompt.WriteString("You are an assistant that extracts structured query components.\n")
	prompt.WriteString("Definitions:\n")
	prompt.WriteString(DatasetDefinitions)
	prompt.WriteString("\nSchema:\n")
	prompt.WriteString(schemaSummary)
	prompt.WriteString("\n")
	prompt.WriteString(fmt.Sprintf("Intent: %s\n", intent))
	prompt.WriteString(fmt.Sprintf("Question: %s\n", question))
	prompt.WriteString("Extract JSON with keys: tables, columns, filters, order_by, limit.\n")
	prompt.WriteString(`Format: {"tables": ["..."], "columns": ["..."], "filters": {"<column>": {"operator": "=", "value": ...}}, "order_by": [{"column": "...", "direction": "asc|desc"}], "limit": <integer or null>}`)
	prompt.WriteString("\n")

	return prompt.String()
}
