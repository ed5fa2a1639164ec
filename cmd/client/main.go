package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/tuannm99/sqlgrade/gradeclient"
	"github.com/tuannm99/sqlgrade/internal/grader"
)

const prompt = "sqlgrade> "

// session is the REPL state between lines.
type session struct {
	cli        *gradeclient.Client
	hist       *History
	out        io.Writer
	user       string
	assignment string
	query      string
}

func (s *session) submit(res *grader.QueryResult, execErr string) {
	if s.assignment == "" {
		fmt.Fprintln(s.out, `no assignment selected (use \use <id>)`)
		return
	}
	if strings.TrimSpace(s.query) == "" {
		fmt.Fprintln(s.out, `no query set (use \query <sql>)`)
		return
	}

	sub := grader.Submission{AssignmentID: s.assignment, UserID: s.user, Query: s.query}
	r, err := s.cli.Grade(context.Background(), sub, res, execErr)
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}
	printReport(s.out, r)
}

// meta runs a backslash command. It returns false when the REPL should exit.
func (s *session) meta(line string) bool {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case `\q`, "quit", "exit":
		return false
	case `\help`:
		fmt.Fprintln(s.out, helpText)
	case `\history`:
		s.hist.Print(s.out, 50)
	case `\list`:
		list, err := s.cli.List(context.Background())
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
			break
		}
		printAssignments(s.out, list)
	case `\use`:
		if arg == "" {
			fmt.Fprintf(s.out, "current assignment: %q\n", s.assignment)
			break
		}
		s.assignment = arg
		fmt.Fprintf(s.out, "using %s\n", arg)
	case `\query`:
		if arg == "" {
			fmt.Fprintf(s.out, "current query: %s\n", s.query)
			break
		}
		s.query = strings.TrimSpace(strings.TrimSuffix(arg, ";"))
		_ = s.hist.Append(line)
	case `\fail`:
		if arg == "" {
			fmt.Fprintln(s.out, `usage: \fail <message>`)
			break
		}
		s.submit(nil, arg)
	default:
		fmt.Fprintf(s.out, "unknown command: %s\n", line)
	}
	return true
}

func isMetaCommand(line string) bool {
	return strings.HasPrefix(line, `\`) || line == "quit" || line == "exit"
}

func main() {
	var (
		addr       = flag.String("addr", "127.0.0.1:8866", "server address")
		timeout    = flag.Duration("timeout", 3*time.Second, "dial timeout")
		rwTimeout  = flag.Duration("rw-timeout", 10*time.Second, "per-request read/write timeout")
		histPath   = flag.String("history", defaultHistoryPath(), "history file path")
		histMax    = flag.Int("history-max", 2000, "max history lines loaded into memory")
		user       = flag.String("user", os.Getenv("USER"), "user id attached to submissions")
		assignID   = flag.String("assignment", "", "assignment id to grade against")
		query      = flag.String("query", "", "the SQL query whose result is being graded")
		oneShotRes = flag.String("c", "", "grade one JSON result (array of row objects) and exit")
	)
	flag.Parse()

	cli, err := gradeclient.Dial(*addr, *timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dial: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = cli.Close() }()
	cli.SetRWTimeout(*rwTimeout)

	s := &session{
		cli:        cli,
		hist:       NewHistory(*histPath),
		out:        os.Stdout,
		user:       *user,
		assignment: *assignID,
		query:      *query,
	}

	// one-shot mode
	if strings.TrimSpace(*oneShotRes) != "" {
		res, err := parseResult(*oneShotRes)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		sub := grader.Submission{AssignmentID: s.assignment, UserID: s.user, Query: s.query}
		r, err := cli.Grade(context.Background(), sub, res, "")
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		printReport(os.Stdout, r)
		if !r.Passed {
			os.Exit(2)
		}
		return
	}

	_ = s.hist.Load(*histMax)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = rl.Close() }()
	s.out = rl.Stdout()

	for _, line := range s.hist.lines {
		_ = rl.SaveHistory(line)
	}

	var buf strings.Builder

	fmt.Fprintf(s.out, "connected to %s\n", *addr)
	fmt.Fprintln(s.out, `type \help for help`)

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			// Ctrl+C clears current buffer
			if buf.Len() > 0 {
				buf.Reset()
				rl.SetPrompt(prompt)
				continue
			}
			fmt.Fprintln(s.out, "^C")
			continue
		}
		if err != nil {
			// EOF
			fmt.Fprintln(s.out)
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if buf.Len() == 0 && isMetaCommand(line) {
			if !s.meta(line) {
				return
			}
			continue
		}

		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(line)

		if !statementComplete(buf.String()) {
			rl.SetPrompt("...> ")
			continue
		}

		input := buf.String()
		buf.Reset()
		rl.SetPrompt(prompt)

		_ = s.hist.Append(input)
		_ = rl.SaveHistory(compactOneLine(input))

		res, err := parseResult(input)
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
			continue
		}
		s.submit(res, "")
	}
}
