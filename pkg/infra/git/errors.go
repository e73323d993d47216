package git

import (
	"fmt"
	"strings"
)

// CommandError describes a failed git invocation
type CommandError struct {
	Subcommand string
	Args       []string
	Stderr     string
	Err        error
}

func newCommandError(args []string, err error, stderr string) *CommandError {
	e := &CommandError{
		Err:    err,
		Stderr: strings.TrimSpace(stderr),
	}
	if len(args) > 0 {
		e.Subcommand = args[0]
		e.Args = args[1:]
	}
	return e
}

// Error implements the error interface
func (e *CommandError) Error() string {
	msg := fmt.Sprintf("git %s failed", e.Subcommand)
	if e.Stderr != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Stderr)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying process error
func (e *CommandError) Unwrap() error {
	return e.Err
}
