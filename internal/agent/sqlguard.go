package agent

import (
	"regexp"
	"strings"
)

var (
	selectPrefixRegex = regexp.MustCompile(`(?i)^\s*SELECT\s`)
	forbiddenRegex    = regexp.MustCompile(`(?i)\b(INSERT|UPDATE|DELETE|DROP|CREATE|ALTER|TRUNCATE|GRANT|REVOKE)\b`)
)

// IsValidSelect reports whether sql consists only of SELECT statements. The
// input may contain several semicolon-separated statements; every non-empty
// one must start with SELECT and must not contain a mutating keyword as a
// whole word.
//
// This is a syntactic denylist, not a parser. It is deliberately conservative:
// a SELECT mentioning a column literally named "update" is rejected, and
// sufficiently obscure dialect features could in principle slip past it. The
// database role it runs under is the second line of defense.
func IsValidSelect(sql string) bool {
	parts := strings.Split(sql, ";")
	checked := 0
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !selectPrefixRegex.MatchString(part) {
			return false
		}
		if forbiddenRegex.MatchString(part) {
			return false
		}
		checked++
	}
	return checked > 0
}
