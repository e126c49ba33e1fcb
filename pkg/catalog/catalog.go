// Package catalog holds the read-only schema description the pipeline grounds on.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/jinzhu/inflection"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-nl2sql/pkg/apperrors"
)

// headerPattern matches a table-header line such as "TABLE: claims".
var headerPattern = regexp.MustCompile(`^TABLE:\s*(\w+)`)

// columnPattern matches the leading identifier of a column line inside a block:
// "- paid_amount (numeric)", "paid_amount: numeric" or "paid_amount numeric".
var columnPattern = regexp.MustCompile(`^\s*(?:[-•*]\s*)?([A-Za-z_][A-Za-z0-9_]*)`)

// Catalog exposes table→column mappings and the raw schema text.
// It is built once at startup and never mutated, so it is safe for concurrent use.
type Catalog struct {
	text    string
	tables  []string
	columns map[string][]string
	loadErr error
}

// Load reads the schema description at path. A missing or unreadable file is not
// fatal: the catalog is empty and LoadError reports ErrResourceUnavailable.
func Load(path string, logger *zap.Logger) *Catalog {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Schema file unavailable, continuing with empty schema",
			zap.String("path", path),
			zap.Error(err))
		c := New("")
		c.loadErr = fmt.Errorf("%w: schema file %s: %v", apperrors.ErrResourceUnavailable, path, err)
		return c
	}

	c := New(string(data))
	logger.Info("Schema catalog loaded",
		zap.String("path", path),
		zap.Int("tables", len(c.tables)))
	return c
}

// New builds a catalog from schema text.
func New(text string) *Catalog {
	c := &Catalog{
		text:    text,
		columns: make(map[string][]string),
	}

	current := ""
	for _, line := range strings.Split(text, "\n") {
		if m := headerPattern.FindStringSubmatch(line); m != nil {
			current = m[1]
			if _, seen := c.columns[current]; !seen {
				c.tables = append(c.tables, current)
				c.columns[current] = nil
			}
			continue
		}
		trimmed := strings.TrimSpace(line)
		if current == "" || trimmed == "" || strings.HasSuffix(trimmed, ":") {
			continue
		}
		if m := columnPattern.FindStringSubmatch(line); m != nil {
			c.columns[current] = append(c.columns[current], m[1])
		}
	}
	return c
}

// Text returns the full schema description. It doubles as the schema summary given
// to the entity extractor.
func (c *Catalog) Text() string {
	return c.text
}

// Tables returns table names in file order.
func (c *Catalog) Tables() []string {
	out := make([]string, len(c.tables))
	copy(out, c.tables)
	return out
}

// Columns returns the columns of a table, or nil when the table is unknown.
func (c *Catalog) Columns(table string) []string {
	cols, ok := c.columns[table]
	if !ok {
		return nil
	}
	out := make([]string, len(cols))
	copy(out, cols)
	return out
}

// HasTable reports whether the table appears in the schema.
func (c *Catalog) HasTable(table string) bool {
	_, ok := c.columns[table]
	return ok
}

// LoadError returns the degradation recorded by Load, if any.
func (c *Catalog) LoadError() error {
	return c.loadErr
}

// Unavailable reports whether the catalog degraded to empty at load time.
func (c *Catalog) Unavailable() bool {
	return errors.Is(c.loadErr, apperrors.ErrResourceUnavailable)
}

// UnknownTables returns the names that are not catalog tables, each paired with a
// known table whose singular/plural form matches, if any. Used for diagnostics only;
// extraction output is trusted as-is.
func (c *Catalog) UnknownTables(names []string) map[string]string {
	unknown := make(map[string]string)
	for _, name := range names {
		if c.HasTable(name) {
			continue
		}
		unknown[name] = c.suggest(name)
	}
	return unknown
}

func (c *Catalog) suggest(name string) string {
	candidates := []string{inflection.Plural(name), inflection.Singular(name)}
	lower := strings.ToLower(name)
	for _, t := range c.tables {
		for _, cand := range candidates {
			if t == cand {
				return t
			}
		}
		if strings.ToLower(t) == lower {
			return t
		}
	}
	return ""
}

// Summary renders "table(col, col, ...)" lines sorted by table name. It is a
// compact alternative to Text for logs and tooling.
func (c *Catalog) Summary() string {
	names := c.Tables()
	sort.Strings(names)
	var b strings.Builder
	for _, t := range names {
		b.WriteString(t)
		b.WriteString("(")
		b.WriteString(strings.Join(c.columns[t], ", "))
		b.WriteString(")\n")
	}
	return b.String()
}
