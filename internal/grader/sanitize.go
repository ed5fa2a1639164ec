package grader

import (
	"errors"
	"fmt"
	"strings"
)

var ErrQueryNotAllowed = errors.New("grader: query not allowed")

// blockedKeywords are statement prefixes that modify schema, data or grants.
var blockedKeywords = []string{
	"DROP", "DELETE", "TRUNCATE", "ALTER", "CREATE", "INSERT",
	"UPDATE", "GRANT", "REVOKE", "EXEC", "EXECUTE",
}

// Sanitize accepts read-only statements: those starting with SELECT or WITH.
func Sanitize(query string) (string, error) {
	upper := strings.ToUpper(strings.TrimSpace(query))
	if upper == "" {
		return "", fmt.Errorf("%w: empty query", ErrQueryNotAllowed)
	}

	for _, kw := range blockedKeywords {
		if strings.HasPrefix(upper, kw) {
			return "", fmt.Errorf("%w: %s statements are not permitted", ErrQueryNotAllowed, kw)
		}
	}
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return "", fmt.Errorf("%w: only SELECT and WITH (CTE) statements are allowed", ErrQueryNotAllowed)
	}
	return query, nil
}
