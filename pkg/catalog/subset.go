package catalog

import "strings"

// Subset returns the schema blocks whose TABLE header names one of tables, in the
// order they appear in fullText. Each retained block is copied in full up to the
// next header. Matching is case-sensitive. Lines before the first header are never
// retained. Returns "" when nothing matches.
func Subset(fullText string, tables []string) string {
	if fullText == "" || len(tables) == 0 {
		return ""
	}

	wanted := make(map[string]struct{}, len(tables))
	for _, t := range tables {
		wanted[t] = struct{}{}
	}

	var out []string
	capture := false
	for _, line := range strings.Split(fullText, "\n") {
		if m := headerPattern.FindStringSubmatch(line); m != nil {
			_, capture = wanted[m[1]]
		}
		if capture {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// Subset returns the blocks of this catalog's schema text for the given tables.
func (c *Catalog) Subset(tables []string) string {
	return Subset(c.text, tables)
}
