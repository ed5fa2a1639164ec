package gradeclient

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/sqlgrade/internal/assignment"
	"github.com/tuannm99/sqlgrade/internal/grader"
	"github.com/tuannm99/sqlgrade/internal/validate"
	"github.com/tuannm99/sqlgrade/server/gradewire"
)

func startServer(t *testing.T) string {
	t.Helper()

	store, err := assignment.NewMemStore(&assignment.Assignment{
		ID:          "assignment_1",
		Title:       "Adults",
		Description: "Filtering",
		Difficulty:  assignment.Easy,
		Question:    "Select all users older than 25.",
		SchemaName:  "assignment_1",
		ExpectedOutput: &validate.ExpectedOutput{Kind: validate.KindTable, Value: validate.ResultSet{
			validate.NewRecord("id", 1, "name", "Alice", "age", 30),
			validate.NewRecord("id", 3, "name", "Carol", "age", 41),
		}},
	})
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- gradewire.Serve(ctx, ln, &gradewire.Handler{
			Grader: grader.New(store, nil, grader.Options{}),
			Store:  store,
		})
	}()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
	return ln.Addr().String()
}

func TestClient_ListAndGrade(t *testing.T) {
	addr := startServer(t)

	c, err := Dial(addr, time.Second)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()
	c.SetRWTimeout(5 * time.Second)

	ctx := context.Background()

	list, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "assignment_1", list[0].ID)

	sub := grader.Submission{AssignmentID: "assignment_1", UserID: "u42", Query: "SELECT * FROM users WHERE age > 25"}
	res := &grader.QueryResult{
		Columns: []string{"ID", "Name", "Age"},
		Rows:    [][]any{{3, "Carol", "41"}, {1, "alice", 30.0}},
	}

	r, err := c.Grade(ctx, sub, res, "")
	require.NoError(t, err)
	require.True(t, r.Passed, "%+v", r.TestResults)
	require.Equal(t, "Default Test", r.TestResults[0].Name)
	require.Equal(t, "u42", r.UserID)
	require.Equal(t, 2, r.RowCount)

	res.Rows = res.Rows[:1]
	r, err = c.Grade(ctx, sub, res, "")
	require.NoError(t, err)
	require.False(t, r.Passed)
	require.Contains(t, r.TestResults[0].Diagnostic, "expected 2 rows, got 1")

	r, err = c.Grade(ctx, sub, nil, "syntax error at or near \"FORM\"")
	require.NoError(t, err)
	require.False(t, r.Passed)
	require.Contains(t, r.Error, "syntax error")
}

func TestClient_ServerErrors(t *testing.T) {
	addr := startServer(t)

	c, err := DialContext(context.Background(), addr, time.Second)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = c.Grade(ctx, grader.Submission{AssignmentID: "nope", Query: "SELECT 1"}, &grader.QueryResult{}, "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not found")

	_, err = c.Grade(ctx, grader.Submission{AssignmentID: "assignment_1", Query: "DELETE FROM users"}, &grader.QueryResult{}, "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "DELETE statements are not permitted")

	// connection stays usable after an error response
	list, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestClient_NilClient(t *testing.T) {
	var c *Client
	_, err := c.List(context.Background())
	require.Error(t, err)
	require.NoError(t, c.Close())
}
