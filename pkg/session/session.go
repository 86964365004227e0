// Package session runs the interactive mentor dialogue over a memory store.
//
// A Session reads one line at a time, retrieves related turns, asks the
// generator for an answer and records the exchange. It also performs the
// one-shot code analysis that opens every session started by the watcher.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/papercomputeco/mentor/pkg/cliui"
	"github.com/papercomputeco/mentor/pkg/generation"
	"github.com/papercomputeco/mentor/pkg/logger"
	"github.com/papercomputeco/mentor/pkg/memory"
	"github.com/papercomputeco/mentor/pkg/prompt"
)

// ExitCommand ends a session. Matching ignores case and surrounding space.
const ExitCommand = "exit"

// State is the controller state.
type State int

const (
	StateIdle State = iota
	StateActiveTurn
	StateTerminal
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActiveTurn:
		return "active-turn"
	case StateTerminal:
		return "terminal"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Config wires a Session to its collaborators.
type Config struct {
	Store     *memory.Store
	Generator generation.Generator
	Params    generation.Params

	// TopK is the number of related turns included in each prompt.
	TopK int

	In  *LineReader
	Out io.Writer

	// Render formats model output for the terminal. Nil prints it as is.
	Render func(string) string

	// Progress, when set, shows a step line while an analysis generates.
	Progress io.Writer

	Logger *slog.Logger
}

// Session is a sequential read-respond loop. It is not safe to Run twice
// concurrently.
type Session struct {
	store     *memory.Store
	generator generation.Generator
	params    generation.Params
	topK      int
	in        *LineReader
	out       io.Writer
	render    func(string) string
	progress  io.Writer
	logger    *slog.Logger

	mu    sync.Mutex
	state State
}

// New creates a Session.
func New(c Config) (*Session, error) {
	if c.Store == nil {
		return nil, errors.New("session requires a memory store")
	}
	if c.Generator == nil {
		return nil, errors.New("session requires a generator")
	}

	topK := c.TopK
	if topK <= 0 {
		topK = memory.DefaultTopK
	}

	params := c.Params
	if params.MaxTokens <= 0 {
		params.MaxTokens = generation.DefaultMaxTokens
	}

	render := c.Render
	if render == nil {
		render = func(s string) string { return s }
	}

	out := c.Out
	if out == nil {
		out = io.Discard
	}

	return &Session{
		store:     c.Store,
		generator: c.Generator,
		params:    params,
		topK:      topK,
		in:        c.In,
		out:       out,
		render:    render,
		progress:  c.Progress,
		logger:    logger.OrNop(c.Logger),
	}, nil
}

// State returns the current controller state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// IsExit reports whether line is the exit command.
func IsExit(line string) bool {
	return strings.EqualFold(strings.TrimSpace(line), ExitCommand)
}

// Run processes input lines until the exit command, end of input or
// cancellation of ctx. Failed turns are reported and the loop continues.
func (s *Session) Run(ctx context.Context) error {
	if s.in == nil {
		return errors.New("session has no input")
	}

	s.setState(StateIdle)
	defer s.setState(StateTerminal)

	lines := s.in.Lines()

	fmt.Fprintf(s.out, "  %s\n\n", cliui.DimStyle.Render("Ask me anything or type 'exit' to stop."))

	for {
		fmt.Fprint(s.out, cliui.UserPrompt)

		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			fmt.Fprintln(s.out)
			return nil
		case line, ok = <-lines:
		}

		if !ok {
			fmt.Fprintln(s.out)
			if err := s.in.Err(); err != nil {
				return fmt.Errorf("reading input: %w", err)
			}
			return nil
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if IsExit(input) {
			fmt.Fprintf(s.out, "  %s\n\n", cliui.DimStyle.Render("Exiting chat mode..."))
			return nil
		}

		if _, err := s.Turn(ctx, input); err != nil && ctx.Err() != nil {
			return nil
		}
	}
}

// Turn answers one user input and records the exchange. Failures are
// reported on the session output and returned; nothing is recorded for a
// failed turn.
func (s *Session) Turn(ctx context.Context, input string) (string, error) {
	s.setState(StateActiveTurn)
	defer s.setState(StateIdle)

	if input == memory.SubjectKey {
		fmt.Fprintf(s.out, "  %s %q is reserved, try rephrasing\n", cliui.FailMark, input)
		return "", memory.ErrReservedKey
	}

	related, err := s.store.QueryRelevant(ctx, input, s.topK)
	if err != nil {
		return "", s.fail("retrieving related turns", err)
	}

	subject, _, err := s.store.Subject(ctx)
	if err != nil {
		return "", s.fail("loading the current code", err)
	}

	s.logger.Debug("dialogue turn",
		"related", len(related),
		"has_subject", subject != "",
	)

	res := generation.Run(ctx, s.generator, prompt.Dialogue(subject, related, input), s.params)
	if !res.OK() {
		return "", s.failGeneration(res.Failure)
	}

	text := strings.TrimSpace(res.Text)
	if _, err := s.store.Append(ctx, input, text); err != nil {
		return "", s.fail("saving the conversation", err)
	}

	s.emit(text)
	return text, nil
}

// Analyze makes code the session subject and prints the model's review of
// it. A subject replacement failure is returned as is. A generation failure
// is reported and returned as a *generation.Failure; the subject stays in
// place so a session can still follow.
func (s *Session) Analyze(ctx context.Context, code string) (string, error) {
	if err := s.store.ReplaceSubject(ctx, code); err != nil {
		return "", fmt.Errorf("replacing subject: %w", err)
	}

	var res generation.Result
	generate := func() error {
		res = generation.Run(ctx, s.generator, prompt.Analysis(code), s.params)
		if !res.OK() {
			return res.Failure
		}
		return nil
	}
	if s.progress != nil {
		_ = cliui.Step(s.progress, "Reviewing code", generate)
	} else {
		_ = generate()
	}
	if !res.OK() {
		return "", s.failGeneration(res.Failure)
	}

	text := strings.TrimSpace(res.Text)
	s.emit(text)
	return text, nil
}

func (s *Session) emit(text string) {
	fmt.Fprintf(s.out, "\n%s%s\n", cliui.MentorPrompt, s.render(text))
}

func (s *Session) fail(doing string, err error) error {
	s.logger.Error("turn failed", "step", doing, "error", err)
	fmt.Fprintf(s.out, "  %s %s failed: memory store unavailable\n", cliui.FailMark, doing)
	return fmt.Errorf("%s: %w", doing, err)
}

func (s *Session) failGeneration(f *generation.Failure) error {
	if f.Reason == generation.ReasonCanceled {
		s.logger.Debug("generation canceled", "error", f.Err)
	} else {
		s.logger.Error("generation failed", "reason", string(f.Reason), "error", f.Err)
	}
	fmt.Fprintf(s.out, "  %s %s\n", cliui.FailMark, f.Cause())
	return f
}
