package grader

import (
	"regexp"
	"time"
)

var (
	selectWord    = regexp.MustCompile(`(?i)\bSELECT\b`)
	joinWord      = regexp.MustCompile(`(?i)\bJOIN\b`)
	aggregateWord = regexp.MustCompile(`(?i)\b(COUNT|SUM|AVG|MAX|MIN)\s*\(|\bGROUP\s+BY\b`)
)

// Complexity is a rough shape summary of a submitted query.
type Complexity struct {
	QueryLength     int   `json:"query_length"`
	RowCount        int   `json:"row_count"`
	ExecutionTimeMs int64 `json:"execution_time_ms"`
	HasJoins        bool  `json:"has_joins"`
	HasSubqueries   bool  `json:"has_subqueries"`
	HasAggregates   bool  `json:"has_aggregates"`
}

func Analyze(query string, rowCount int, elapsed time.Duration) Complexity {
	return Complexity{
		QueryLength:     len(query),
		RowCount:        rowCount,
		ExecutionTimeMs: elapsed.Milliseconds(),
		HasJoins:        joinWord.MatchString(query),
		HasSubqueries:   len(selectWord.FindAllStringIndex(query, -1)) > 1,
		HasAggregates:   aggregateWord.MatchString(query),
	}
}
