package generation

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Reason classifies why a generation attempt produced no usable text.
type Reason string

const (
	ReasonUnavailable Reason = "unavailable"
	ReasonTimeout     Reason = "timeout"
	ReasonCanceled    Reason = "canceled"
	ReasonEmpty       Reason = "empty"
)

// Failure is a generation attempt that produced no usable text.
type Failure struct {
	Reason Reason
	Err    error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("generation %s", f.Reason)
	}
	return fmt.Sprintf("generation %s: %v", f.Reason, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Cause is a short, human readable description for the terminal.
func (f *Failure) Cause() string {
	switch f.Reason {
	case ReasonTimeout:
		return "the model took too long to answer"
	case ReasonCanceled:
		return "the request was canceled"
	case ReasonEmpty:
		return "the model returned an empty response"
	default:
		return "the model is unavailable right now"
	}
}

// Result is either response text or a Failure, never both.
type Result struct {
	Text    string
	Failure *Failure
}

// OK reports whether the result carries usable text.
func (r Result) OK() bool {
	return r.Failure == nil
}

// Err returns the failure as an error, or nil.
func (r Result) Err() error {
	if r.Failure == nil {
		return nil
	}
	return r.Failure
}

// Run calls g with a per-call timeout and classifies the outcome.
func Run(ctx context.Context, g Generator, prompt string, p Params) Result {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	text, err := g.Generate(callCtx, prompt, p)
	if err != nil {
		return Result{Failure: classify(ctx, err)}
	}

	if strings.TrimSpace(text) == "" {
		return Result{Failure: &Failure{Reason: ReasonEmpty}}
	}

	return Result{Text: text}
}

func classify(parent context.Context, err error) *Failure {
	if errors.Is(parent.Err(), context.Canceled) || errors.Is(err, context.Canceled) {
		return &Failure{Reason: ReasonCanceled, Err: err}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Failure{Reason: ReasonTimeout, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Failure{Reason: ReasonTimeout, Err: err}
	}

	return &Failure{Reason: ReasonUnavailable, Err: err}
}
