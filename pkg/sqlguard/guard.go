// Package sqlguard prepares generated SQL for execution.
package sqlguard

import (
	"regexp"
	"strings"
)

var fenceRe = regexp.MustCompile("(?m)^```(?:sql)?|```$")

// CleanForExecution removes markdown fences and a trailing semicolon.
//
// The order is:
// 1. Remove fence markers at line starts (```sql, ```) and line ends (```)
// 2. Trim whitespace
// 3. Strip one trailing semicolon
func CleanForExecution(sqlQuery string) string {
	cleaned := fenceRe.ReplaceAllString(strings.TrimSpace(sqlQuery), "")
	return stripTrailingSemicolon(strings.TrimSpace(cleaned))
}

// IsSelect reports whether the statement starts with the SELECT keyword,
// ignoring case and leading whitespace. This prefix check is the only
// statement filter applied before execution.
func IsSelect(sqlQuery string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(sqlQuery)), "select")
}

// stripTrailingSemicolon removes a trailing semicolon and any whitespace after it.
func stripTrailingSemicolon(sqlQuery string) string {
	sqlQuery = strings.TrimRight(sqlQuery, " \t\n\r")

	if strings.HasSuffix(sqlQuery, ";") {
		sqlQuery = strings.TrimSuffix(sqlQuery, ";")
		sqlQuery = strings.TrimRight(sqlQuery, " \t\n\r")
	}

	return sqlQuery
}
