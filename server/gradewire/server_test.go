package gradewire

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/sqlgrade/internal/assignment"
	"github.com/tuannm99/sqlgrade/internal/grader"
	"github.com/tuannm99/sqlgrade/internal/validate"
)

func newHandler(t *testing.T) *Handler {
	t.Helper()
	store, err := assignment.NewMemStore(&assignment.Assignment{
		ID:          "assignment_5",
		Title:       "Highest salary",
		Description: "Aggregate",
		Difficulty:  assignment.Easy,
		Question:    "Find the maximum salary.",
		SchemaName:  "assignment_5",
		TestCases: []assignment.TestCase{{
			Name:           "Maximum salary value",
			ExpectedOutput: &validate.ExpectedOutput{Kind: validate.KindSingleValue, Value: 80000},
		}},
	})
	require.NoError(t, err)
	return &Handler{Grader: grader.New(store, nil, grader.Options{}), Store: store}
}

func TestFrame_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	in := Request{ID: 7, Op: OpGrade, Submission: grader.Submission{AssignmentID: "a", Query: "SELECT 1"}}
	require.NoError(t, WriteFrame(&buf, in))

	var out Request
	require.NoError(t, ReadFrame(&buf, &out))
	require.Equal(t, in, out)
}

func TestFrame_KeepsBigIntegers(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, json.RawMessage(`{"id":1,"result":{"columns":["n"],"rows":[[12345678901234567890]]}}`)))

	var out Request
	require.NoError(t, ReadFrame(&buf, &out))
	require.Equal(t, json.Number("12345678901234567890"), out.Result.Rows[0][0])
}

func TestFrame_Rejects(t *testing.T) {
	var hdr [4]byte
	require.Error(t, ReadFrame(bytes.NewReader(hdr[:]), &Request{}))

	binary.BigEndian.PutUint32(hdr[:], MaxFrameSize+1)
	err := ReadFrame(bytes.NewReader(hdr[:]), &Request{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "too large")

	var buf bytes.Buffer
	binary.BigEndian.PutUint32(hdr[:], 3)
	buf.Write(hdr[:])
	buf.WriteString("{{{")
	err = ReadFrame(&buf, &Request{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "bad json")
}

func TestHandle_Ops(t *testing.T) {
	h := newHandler(t)
	ctx := context.Background()

	resp := h.Handle(ctx, Request{ID: 1, Op: OpList})
	require.Empty(t, resp.Error)
	require.Equal(t, []assignment.Summary{{ID: "assignment_5", Title: "Highest salary", Difficulty: assignment.Easy, TestCases: 1}}, resp.Assignments)

	resp = h.Handle(ctx, Request{
		ID:         2,
		Op:         OpGrade,
		Submission: grader.Submission{AssignmentID: "assignment_5", Query: "SELECT MAX(salary) AS max_salary FROM employees"},
		Result:     &grader.QueryResult{Columns: []string{"max_salary"}, Rows: [][]any{{json.Number("80000.00")}}},
	})
	require.Empty(t, resp.Error)
	require.Equal(t, uint64(2), resp.ID)
	require.True(t, resp.Report.Passed)

	resp = h.Handle(ctx, Request{
		ID:         3,
		Submission: grader.Submission{AssignmentID: "assignment_5", Query: "SELECT MAX(salry) FROM employees"},
		ExecError:  `column "salry" does not exist`,
	})
	require.Empty(t, resp.Error)
	require.False(t, resp.Report.Passed)
	require.Contains(t, resp.Report.Error, "salry")

	resp = h.Handle(ctx, Request{ID: 4, Op: OpGrade, Submission: grader.Submission{AssignmentID: "missing", Query: "SELECT 1"}})
	require.Contains(t, resp.Error, "not found")

	resp = h.Handle(ctx, Request{ID: 5, Op: "explain"})
	require.Contains(t, resp.Error, "unknown op")
}

func TestHandleConn_OverPipe(t *testing.T) {
	h := newHandler(t)
	srv, cli := net.Pipe()
	defer func() { _ = cli.Close() }()

	done := make(chan struct{})
	go func() {
		handleConn(context.Background(), srv, h)
		close(done)
	}()

	require.NoError(t, WriteFrame(cli, Request{ID: 9, Op: OpList}))
	var resp Response
	require.NoError(t, ReadFrame(cli, &resp))
	require.Equal(t, uint64(9), resp.ID)
	require.Len(t, resp.Assignments, 1)

	require.NoError(t, cli.Close())
	<-done
}
