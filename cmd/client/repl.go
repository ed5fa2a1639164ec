package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tuannm99/sqlgrade/internal/assignment"
	"github.com/tuannm99/sqlgrade/internal/grader"
	"github.com/tuannm99/sqlgrade/internal/validate"
)

// statementComplete reports whether buf holds a ';' outside JSON strings.
func statementComplete(buf string) bool {
	inString := false
	escaped := false

	for _, r := range buf {
		if escaped {
			escaped = false
			continue
		}
		switch {
		case r == '\\' && inString:
			escaped = true
		case r == '"':
			inString = !inString
		case r == ';' && !inString:
			return true
		}
	}
	return false
}

// parseResult turns a JSON array of row objects (optionally ';'-terminated)
// into a QueryResult. Columns are the union of keys in first-seen order;
// a key missing from a row reads as NULL.
func parseResult(input string) (*grader.QueryResult, error) {
	input = strings.TrimSpace(input)
	input = strings.TrimSpace(strings.TrimSuffix(input, ";"))
	if input == "" {
		return nil, errors.New("empty result")
	}

	var records []validate.Record
	if err := json.Unmarshal([]byte(input), &records); err != nil {
		return nil, fmt.Errorf("result must be a JSON array of objects: %w", err)
	}

	var cols []string
	seen := map[string]bool{}
	for _, r := range records {
		for _, c := range r.Columns {
			k := strings.ToLower(c)
			if !seen[k] {
				seen[k] = true
				cols = append(cols, c)
			}
		}
	}

	rows := make([][]any, len(records))
	for i, r := range records {
		row := make([]any, len(cols))
		for j, c := range cols {
			row[j], _ = r.Get(c)
		}
		rows[i] = row
	}
	return &grader.QueryResult{Columns: cols, Rows: rows, RowCount: len(rows)}, nil
}

func printAssignments(w io.Writer, list []assignment.Summary) {
	if len(list) == 0 {
		fmt.Fprintln(w, "(no assignments)")
		return
	}
	width := len("id")
	for _, s := range list {
		width = max(width, len(s.ID))
	}
	for _, s := range list {
		fmt.Fprintf(w, "%-*s  %-6s  %2d tests  %s\n", width, s.ID, s.Difficulty, s.TestCases, s.Title)
	}
}

func printReport(w io.Writer, r *grader.Report) {
	status := "FAIL"
	if r.Passed {
		status = "PASS"
	}
	fmt.Fprintf(w, "%s  %s  (submission %s)\n", status, r.AssignmentID, r.SubmissionID)
	if r.Error != "" {
		fmt.Fprintf(w, "  error: %s\n", r.Error)
	}

	for _, tr := range r.TestResults {
		mark := "x"
		if tr.Passed {
			mark = "ok"
		}
		fmt.Fprintf(w, "  [%-2s] %s", mark, tr.Name)
		if tr.Description != "" {
			fmt.Fprintf(w, " - %s", tr.Description)
		}
		fmt.Fprintln(w)
		if tr.Diagnostic != "" {
			fmt.Fprintf(w, "       %s\n", tr.Diagnostic)
		}
		if tr.Error != "" {
			fmt.Fprintf(w, "       error: %s\n", tr.Error)
		}
	}

	c := r.Complexity
	fmt.Fprintf(w, "  rows=%d length=%d joins=%t subqueries=%t aggregates=%t\n",
		r.RowCount, c.QueryLength, c.HasJoins, c.HasSubqueries, c.HasAggregates)
}

const helpText = `meta commands:
  \use <assignment-id>   select the assignment to grade against
  \list                  list assignments
  \query <sql>           set the query being graded
  \fail <message>        report that the query failed to execute
  \history               print history
  \help                  show help
  \q | quit | exit       quit

result:
  paste the query result as a JSON array of row objects, ending with ';'
  e.g. [{"category": "Electronics", "count": 3}];
  multiline is supported (CLI will wait until ';')`
