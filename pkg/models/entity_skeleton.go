package models

// EntitySkeleton is the structured decomposition of a question produced by the
// entity extractor. It is built per request and discarded after prompt assembly.
//
// Tables are expected to be known catalog tables; this is not enforced here.
type EntitySkeleton struct {
	Tables  []string          `json:"tables"`
	Columns []string          `json:"columns"`
	Filters map[string]Filter `json:"filters"`
	OrderBy []OrderTerm       `json:"order_by"`
	Limit   *int              `json:"limit,omitempty"`
}

// Filter is a single column predicate.
type Filter struct {
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

// OrderTerm is one ORDER BY entry. Direction may be empty.
type OrderTerm struct {
	Column    string `json:"column"`
	Direction string `json:"direction,omitempty"`
}

// HasTables reports whether at least one table was extracted.
func (s *EntitySkeleton) HasTables() bool {
	return s != nil && len(s.Tables) > 0
}
