// Package grader runs a submission's result through every test case of an
// assignment and assembles the report returned to the learner.
package grader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tuannm99/sqlgrade/internal/assignment"
	"github.com/tuannm99/sqlgrade/internal/validate"
)

var ErrNoExecutor = errors.New("grader: no query executor configured")

// QueryResult is what the query executor hands back: column names plus
// positional rows, like a driver result set.
type QueryResult struct {
	Columns       []string      `json:"columns"`
	Rows          [][]any       `json:"rows"`
	RowCount      int           `json:"row_count,omitempty"`
	ExecutionTime time.Duration `json:"execution_time,omitempty"`
}

func (r *QueryResult) ResultSet() validate.ResultSet {
	return validate.FromRows(r.Columns, r.Rows)
}

// Executor runs a read-only query inside an assignment's schema.
// Implementations live with the host; a non-nil error means the query failed.
type Executor interface {
	Execute(ctx context.Context, schema, query string) (*QueryResult, error)
}

type Submission struct {
	AssignmentID string `json:"assignment_id"`
	UserID       string `json:"user_id,omitempty"`
	Query        string `json:"query"`
}

type TestResult struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Passed      bool   `json:"passed"`
	Diagnostic  string `json:"diagnostic,omitempty"`
	Error       string `json:"error,omitempty"`
}

type Report struct {
	SubmissionID uuid.UUID    `json:"submission_id"`
	AssignmentID string       `json:"assignment_id"`
	UserID       string       `json:"user_id,omitempty"`
	Passed       bool         `json:"passed"`
	Error        string       `json:"error,omitempty"`
	TestResults  []TestResult `json:"test_results"`
	Complexity   Complexity   `json:"complexity"`
	RowCount     int          `json:"row_count"`
	GradedAt     time.Time    `json:"graded_at"`
}

type Options struct {
	// MaxRows rejects larger results before matching, which is quadratic. 0 disables the cap.
	MaxRows int
	// Parallel validates test cases concurrently.
	Parallel  bool
	Validator *validate.Validator
}

type Grader struct {
	store     assignment.Store
	exec      Executor
	validator *validate.Validator
	maxRows   int
	parallel  bool
}

// New builds a Grader. exec may be nil when results always arrive with the
// submission (see Evaluate).
func New(store assignment.Store, exec Executor, opts Options) *Grader {
	v := opts.Validator
	if v == nil {
		v = validate.New(validate.DefaultOptions())
	}
	return &Grader{
		store:     store,
		exec:      exec,
		validator: v,
		maxRows:   opts.MaxRows,
		parallel:  opts.Parallel,
	}
}

// Grade sanitizes and executes the submission, then evaluates the result.
func (g *Grader) Grade(ctx context.Context, sub Submission) (*Report, error) {
	a, err := g.store.Get(ctx, sub.AssignmentID)
	if err != nil {
		return nil, err
	}
	if _, err := Sanitize(sub.Query); err != nil {
		return nil, err
	}
	if g.exec == nil {
		return nil, ErrNoExecutor
	}

	res, execErr := g.exec.Execute(ctx, a.SchemaName, sub.Query)
	return g.evaluate(ctx, a, sub, res, execErr), nil
}

// Evaluate grades a result the caller already obtained. A non-nil execErr
// produces a failed report without running any comparison.
func (g *Grader) Evaluate(ctx context.Context, sub Submission, res *QueryResult, execErr error) (*Report, error) {
	a, err := g.store.Get(ctx, sub.AssignmentID)
	if err != nil {
		return nil, err
	}
	if _, err := Sanitize(sub.Query); err != nil {
		return nil, err
	}
	return g.evaluate(ctx, a, sub, res, execErr), nil
}

func (g *Grader) evaluate(ctx context.Context, a *assignment.Assignment, sub Submission, res *QueryResult, execErr error) *Report {
	report := &Report{
		SubmissionID: uuid.New(),
		AssignmentID: a.ID,
		UserID:       sub.UserID,
		TestResults:  []TestResult{},
		GradedAt:     time.Now().UTC(),
	}
	defer g.logReport(report)

	if execErr == nil && res == nil {
		execErr = errors.New("executor returned no result")
	}
	if execErr != nil {
		report.Error = execErr.Error()
		report.Complexity = Analyze(sub.Query, 0, 0)
		return report
	}

	report.RowCount = res.RowCount
	if report.RowCount == 0 {
		report.RowCount = len(res.Rows)
	}
	report.Complexity = Analyze(sub.Query, report.RowCount, res.ExecutionTime)

	if g.maxRows > 0 && len(res.Rows) > g.maxRows {
		report.Error = fmt.Sprintf("result has %d rows, limit is %d", len(res.Rows), g.maxRows)
		return report
	}

	actual := res.ResultSet()
	switch {
	case len(a.TestCases) > 0:
		report.TestResults = g.runTestCases(ctx, a.TestCases, actual)
	case a.ExpectedOutput != nil:
		v := g.validator.Validate(actual, *a.ExpectedOutput)
		report.TestResults = []TestResult{{
			Name:        "Default Test",
			Description: "Validates against expected output",
			Passed:      v.Passed,
			Diagnostic:  v.Diagnostic,
		}}
	default:
		report.TestResults = []TestResult{{
			Name:        "Execution Test",
			Description: "Query executed successfully",
			Passed:      true,
		}}
	}

	report.Passed = true
	for _, tr := range report.TestResults {
		if !tr.Passed {
			report.Passed = false
			break
		}
	}
	return report
}

func (g *Grader) runTestCases(ctx context.Context, cases []assignment.TestCase, actual validate.ResultSet) []TestResult {
	out := make([]TestResult, len(cases))
	run := func(i int) {
		tc := cases[i]
		out[i] = TestResult{Name: tc.Name, Description: tc.Description}
		if err := ctx.Err(); err != nil {
			out[i].Error = err.Error()
			return
		}
		if tc.ExpectedOutput == nil {
			out[i].Error = "test case has no expected output"
			return
		}
		v := g.validator.Validate(actual, *tc.ExpectedOutput)
		out[i].Passed = v.Passed
		out[i].Diagnostic = v.Diagnostic
	}

	if !g.parallel {
		for i := range cases {
			run(i)
		}
		return out
	}

	var wg sync.WaitGroup
	for i := range cases {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			run(i)
		}(i)
	}
	wg.Wait()
	return out
}

func (g *Grader) logReport(r *Report) {
	slog.Info("grader: submission graded",
		"submission", r.SubmissionID,
		"assignment", r.AssignmentID,
		"passed", r.Passed,
		"tests", len(r.TestResults),
		"rows", r.RowCount,
	)
	if r.Error != "" {
		slog.Debug("grader: submission failed before validation", "submission", r.SubmissionID, "err", r.Error)
	}
	for _, tr := range r.TestResults {
		if !tr.Passed {
			slog.Debug("grader: test case failed",
				"submission", r.SubmissionID,
				"test", tr.Name,
				"diagnostic", tr.Diagnostic,
				"err", tr.Error,
			)
		}
	}
}
