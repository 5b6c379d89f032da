package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/xxxsen/noteagent/internal/ai"
)

// Tool is a named capability the model may invoke. Registration is
// data-driven: adding a tool means constructing one of these, not touching
// the run loop.
type Tool struct {
	Decl ai.ToolDecl
	Run  func(ctx context.Context, args map[string]interface{}) (string, error)
}

// RetryableError marks a tool failure the model is expected to correct by
// revising its arguments. Anything else returned from a tool aborts the run.
type RetryableError struct {
	Reason string
}

func (e *RetryableError) Error() string {
	return e.Reason
}

func Retryablef(format string, args ...interface{}) error {
	return &RetryableError{Reason: fmt.Sprintf(format, args...)}
}

func AsRetryable(err error) (*RetryableError, bool) {
	var re *RetryableError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

func stringArg(args map[string]interface{}, name string) (string, error) {
	raw, ok := args[name]
	if !ok {
		return "", Retryablef("missing required argument %q", name)
	}
	value, ok := raw.(string)
	if !ok {
		return "", Retryablef("argument %q must be a string", name)
	}
	return value, nil
}
