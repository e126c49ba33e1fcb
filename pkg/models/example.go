package models

import "fmt"

// Example is a validated question/SQL pair stored in the example index.
// Examples are written only by the offline index build.
type Example struct {
	ID       string   `json:"id" yaml:"id"`
	Question string   `json:"question" yaml:"question"`
	SQL      string   `json:"sql" yaml:"sql"`
	Tables   []string `json:"tables" yaml:"tables"`
}

// Text renders the example the way it is embedded and shown to the generator.
func (e Example) Text() string {
	return fmt.Sprintf("Q: %s\nSQL: %s", e.Question, e.SQL)
}

// SharesTable reports whether the example references any of the given tables.
func (e Example) SharesTable(tables []string) bool {
	for _, t := range e.Tables {
		for _, want := range tables {
			if t == want {
				return true
			}
		}
	}
	return false
}
