package insights

// FullResultMaxRows is the largest result set narrated in full.
const FullResultMaxRows = 5

// Template selects how a result set is presented to the insight model.
type Template int

const (
	// TemplateFullResult sends every row and asks for three bullet insights.
	TemplateFullResult Template = iota
	// TemplateFirstRow sends only the first row and asks what it represents.
	TemplateFirstRow
)

func (t Template) String() string {
	switch t {
	case TemplateFullResult:
		return "full_result"
	case TemplateFirstRow:
		return "first_row"
	default:
		return "unknown"
	}
}

// SelectTemplate picks the template from the row count alone.
func SelectTemplate(rowCount int) Template {
	if rowCount <= FullResultMaxRows {
		return TemplateFullResult
	}
	return TemplateFirstRow
}
