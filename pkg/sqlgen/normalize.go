package sqlgen

import "strings"

// leadingPrefixes are stripped from generated SQL, longest fence first.
var leadingPrefixes = []string{"```sql", "```", "SQL:", "Query:", "A:", "Answer:"}

// Normalize reduces a model response to a single-line statement: prefixes and
// code fences are removed and whitespace runs collapse to one space.
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(raw string) string {
	q := strings.TrimSpace(raw)

	for stripped := true; stripped; {
		stripped = false
		for _, p := range leadingPrefixes {
			if strings.HasPrefix(q, p) {
				q = strings.TrimSpace(q[len(p):])
				stripped = true
			}
		}
		if strings.HasSuffix(q, "```") {
			q = strings.TrimSpace(strings.TrimSuffix(q, "```"))
			stripped = true
		}
	}

	return strings.Join(strings.Fields(q), " ")
}
