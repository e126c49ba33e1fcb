package models

// QueryResult is the tabular output of an executed statement.
type QueryResult struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"data"`
}

// RowCount returns the number of result rows.
func (r *QueryResult) RowCount() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

// GenerationResult captures every intermediate product of one NL→SQL run.
// Prompt is kept for debug output only.
type GenerationResult struct {
	Question   string          `json:"query"`
	Normalized string          `json:"normalized"`
	Intent     Intent          `json:"intent"`
	Entities   *EntitySkeleton `json:"entities"`
	Model      string          `json:"model"`
	Prompt     string          `json:"-"`
	SQL        string          `json:"sql"`
}
