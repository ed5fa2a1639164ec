package gradewire

import (
	"github.com/tuannm99/sqlgrade/internal/assignment"
	"github.com/tuannm99/sqlgrade/internal/grader"
)

type Op string

const (
	OpGrade Op = "grade"
	OpList  Op = "list"
)

// Request is a single command. For OpGrade the caller supplies the result it
// got from running Submission.Query, or ExecError when the query failed.
type Request struct {
	ID         uint64              `json:"id"`
	Op         Op                  `json:"op"`
	Submission grader.Submission   `json:"submission"`
	Result     *grader.QueryResult `json:"result,omitempty"`
	ExecError  string              `json:"exec_error,omitempty"`
}

// Response is the response for a request ID.
type Response struct {
	ID          uint64               `json:"id"`
	Report      *grader.Report       `json:"report,omitempty"`
	Assignments []assignment.Summary `json:"assignments,omitempty"`
	Error       string               `json:"error,omitempty"`
}
