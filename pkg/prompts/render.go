package prompts

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/ekaya-inc/ekaya-nl2sql/pkg/models"
)

// The entity block renders values in the literal style the generation models
// were tuned on: ['a', 'b'], {'k': v}, None, True.

// RenderList renders a string list, e.g. ['claims', 'providers'].
func RenderList(items []string) string {
	parts := make([]string, len(items))
	for i, s := range items {
		parts[i] = quote(s)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// RenderFilters renders filters keyed by column in sorted order.
func RenderFilters(filters map[string]models.Filter) string {
	cols := make([]string, 0, len(filters))
	for col := range filters {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	parts := make([]string, len(cols))
	for i, col := range cols {
		f := filters[col]
		parts[i] = fmt.Sprintf("%s: {'operator': %s, 'value': %s}", quote(col), quote(f.Operator), RenderValue(f.Value))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// RenderOrderBy renders order terms. An empty direction is left out.
func RenderOrderBy(terms []models.OrderTerm) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		if t.Direction == "" {
			parts[i] = fmt.Sprintf("{'column': %s}", quote(t.Column))
			continue
		}
		parts[i] = fmt.Sprintf("{'column': %s, 'direction': %s}", quote(t.Column), quote(t.Direction))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// RenderLimit renders an optional limit; nil is None.
func RenderLimit(limit *int) string {
	if limit == nil {
		return "None"
	}
	return strconv.Itoa(*limit)
}

// RenderValue renders a decoded JSON value.
func RenderValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "None"
	case string:
		return quote(val)
	case bool:
		if val {
			return "True"
		}
		return "False"
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1e15 {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'g', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = RenderValue(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case []string:
		return RenderList(val)
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = quote(k) + ": " + RenderValue(val[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprintf("%v", val)
	}
}

// quote prefers single quotes and switches to double quotes when the text
// contains a single quote but no double quote.
func quote(s string) string {
	q := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}

	var b strings.Builder
	b.WriteByte(q)
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == rune(q):
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(q)
	return b.String()
}
