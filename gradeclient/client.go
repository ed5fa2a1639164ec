package gradeclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tuannm99/sqlgrade/internal/assignment"
	"github.com/tuannm99/sqlgrade/internal/grader"
	"github.com/tuannm99/sqlgrade/server/gradewire"
)

// Client is a simple synchronous client.
// It locks send/recv so you can call it concurrently but requests serialize.
type Client struct {
	conn net.Conn
	mu   sync.Mutex
	id   atomic.Uint64

	// Optional per-request timeout (0 = no timeout).
	rwTimeout time.Duration
}

func Dial(addr string, timeout time.Duration) (*Client, error) {
	return DialContext(context.Background(), addr, timeout)
}

func DialContext(ctx context.Context, addr string, timeout time.Duration) (*Client, error) {
	d := net.Dialer{Timeout: timeout}
	c, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Client{conn: c}, nil
}

// NewClient wraps an established connection.
func NewClient(conn net.Conn) *Client {
	return &Client{conn: conn}
}

// SetRWTimeout sets a per-request read/write deadline.
// Useful to avoid hanging forever if server dies.
func (c *Client) SetRWTimeout(d time.Duration) {
	if c == nil {
		return
	}
	c.rwTimeout = d
}

func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// Grade submits a result for grading. Pass a non-empty execErr instead of
// res when the query failed to run.
func (c *Client) Grade(ctx context.Context, sub grader.Submission, res *grader.QueryResult, execErr string) (*grader.Report, error) {
	resp, err := c.roundTrip(ctx, gradewire.Request{
		Op:         gradewire.OpGrade,
		Submission: sub,
		Result:     res,
		ExecError:  execErr,
	})
	if err != nil {
		return nil, err
	}
	if resp.Report == nil {
		return nil, fmt.Errorf("gradeclient: empty report")
	}
	return resp.Report, nil
}

func (c *Client) List(ctx context.Context) ([]assignment.Summary, error) {
	resp, err := c.roundTrip(ctx, gradewire.Request{Op: gradewire.OpList})
	if err != nil {
		return nil, err
	}
	return resp.Assignments, nil
}

func (c *Client) roundTrip(ctx context.Context, req gradewire.Request) (*gradewire.Response, error) {
	if c == nil || c.conn == nil {
		return nil, fmt.Errorf("gradeclient: nil client")
	}

	req.ID = c.id.Add(1)

	c.mu.Lock()
	defer c.mu.Unlock()

	// Apply deadline if configured or context has deadline.
	if err := c.applyDeadline(ctx); err != nil {
		return nil, err
	}
	defer func() {
		// Clear deadline after request so idle connection doesn't expire.
		_ = c.conn.SetDeadline(time.Time{})
	}()

	if err := gradewire.WriteFrame(c.conn, req); err != nil {
		return nil, err
	}

	var resp gradewire.Response
	if err := gradewire.ReadFrame(c.conn, &resp); err != nil {
		return nil, err
	}

	if resp.ID != req.ID {
		return nil, fmt.Errorf("gradeclient: response id mismatch: got=%d want=%d", resp.ID, req.ID)
	}
	if resp.Error != "" {
		return nil, errors.New(resp.Error)
	}
	return &resp, nil
}

func (c *Client) applyDeadline(ctx context.Context) error {
	// Prefer context deadline if present; otherwise use rwTimeout.
	if dl, ok := ctx.Deadline(); ok {
		return c.conn.SetDeadline(dl)
	}
	if c.rwTimeout > 0 {
		return c.conn.SetDeadline(time.Now().Add(c.rwTimeout))
	}
	return nil
}
