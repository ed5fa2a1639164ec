package gradewire

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os/signal"
	"syscall"
	"time"

	"github.com/tuannm99/sqlgrade/internal/assignment"
	"github.com/tuannm99/sqlgrade/internal/grader"
)

type ServerConfig struct {
	Addr string
}

// Handler answers requests. It holds no per-connection state.
type Handler struct {
	Grader *grader.Grader
	Store  assignment.Store
}

func (h *Handler) Handle(ctx context.Context, req Request) Response {
	resp := Response{ID: req.ID}

	switch req.Op {
	case OpList:
		as, err := h.Store.List(ctx)
		if err != nil {
			resp.Error = err.Error()
			return resp
		}
		resp.Assignments = make([]assignment.Summary, len(as))
		for i, a := range as {
			resp.Assignments[i] = a.Summary()
		}

	case OpGrade, "":
		var execErr error
		if req.ExecError != "" {
			execErr = errors.New(req.ExecError)
		}
		report, err := h.Grader.Evaluate(ctx, req.Submission, req.Result, execErr)
		if err != nil {
			resp.Error = err.Error()
			return resp
		}
		resp.Report = report

	default:
		resp.Error = fmt.Sprintf("gradewire: unknown op %q", req.Op)
	}
	return resp
}

// Run listens on sc.Addr until SIGINT or SIGTERM.
func Run(sc ServerConfig, h *Handler) error {
	ln, err := net.Listen("tcp", sc.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("sqlgrade tcp server listening", "addr", ln.Addr().String())
	return Serve(ctx, ln, h)
}

// Serve accepts connections on ln until ctx is done. It closes ln.
func Serve(ctx context.Context, ln net.Listener, h *Handler) error {
	defer func() { _ = ln.Close() }()

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			slog.Warn("accept", "err", err)
			continue
		}
		go handleConn(ctx, conn, h)
	}
}

func handleConn(ctx context.Context, conn net.Conn, h *Handler) {
	defer func() { _ = conn.Close() }()

	// No global deadline; clients set per-request deadlines.
	_ = conn.SetDeadline(time.Time{})

	remote := conn.RemoteAddr().String()
	slog.Debug("gradewire: client connected", "remote", remote)
	defer slog.Debug("gradewire: client disconnected", "remote", remote)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		var req Request
		if err := ReadFrame(conn, &req); err != nil {
			// Client closed or bad frame.
			return
		}

		if err := WriteFrame(conn, h.Handle(ctx, req)); err != nil {
			slog.Warn("gradewire: write response", "remote", remote, "err", err)
			return
		}
	}
}
