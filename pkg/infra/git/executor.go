package git

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
)

// CommandExecutor runs git commands. It is the seam tests replace to avoid invoking git.
type CommandExecutor interface {
	// Run executes git with args in dir and returns trimmed stdout. On failure the error is a
	// *CommandError carrying stderr.
	Run(ctx context.Context, dir string, args ...string) (string, error)
}

// ExecExecutor is the default CommandExecutor backed by os/exec
type ExecExecutor struct {
	binary string
}

// NewExecExecutor creates an executor that runs the git binary found on PATH
func NewExecExecutor() *ExecExecutor {
	return &ExecExecutor{binary: "git"}
}

// Run implements CommandExecutor
func (e *ExecExecutor) Run(ctx context.Context, dir string, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, e.binary, args...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Never block on an editor or credential prompt
	cmd.Env = append(cmd.Environ(), "GIT_TERMINAL_PROMPT=0", "GIT_EDITOR=true")

	if err := cmd.Run(); err != nil {
		return "", newCommandError(args, err, stderr.String())
	}

	return strings.TrimSpace(stdout.String()), nil
}

