// Package git implements the version-control backend of the release workflow on top of the
// git command line. Every operation shells out once and blocks until git exits.
package git

import (
	"context"
	"slices"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/cutrelease/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"
)

type client struct {
	repoDir  string
	remote   string
	executor CommandExecutor
}

// Option is a functional option for the git client
type Option func(*client)

// WithExecutor replaces the command executor, primarily for tests
func WithExecutor(executor CommandExecutor) Option {
	return func(c *client) {
		c.executor = executor
	}
}

// WithRemote pins the remote used for fast-forwarding instead of discovering it
func WithRemote(remote string) Option {
	return func(c *client) {
		c.remote = remote
	}
}

// NewClient creates a git client operating on repoDir
func NewClient(repoDir string, opts ...Option) interfaces.GitClient {
	c := &client{
		repoDir:  repoDir,
		executor: NewExecExecutor(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *client) run(ctx context.Context, args ...string) (string, error) {
	ctxlog.From(ctx).Debug("Running git command", "args", args, "dir", c.repoDir)
	return c.executor.Run(ctx, c.repoDir, args...)
}

// Available implements interfaces.GitClient
func (c *client) Available(ctx context.Context) error {
	if _, err := c.run(ctx, "--version"); err != nil {
		return goerr.Wrap(err, "git is not installed or not executable")
	}

	out, err := c.run(ctx, "rev-parse", "--is-inside-work-tree")
	if err != nil {
		return goerr.Wrap(err, "not a git repository", goerr.V("dir", c.repoDir))
	}
	if out != "true" {
		return goerr.New("not inside a git work tree", goerr.V("dir", c.repoDir))
	}
	return nil
}

// HasUncommittedChanges implements interfaces.GitClient. Untracked files are ignored since
// they never take part in the release commits.
func (c *client) HasUncommittedChanges(ctx context.Context) (bool, error) {
	out, err := c.run(ctx, "status", "--porcelain", "--untracked-files=no")
	if err != nil {
		return false, goerr.Wrap(err, "failed to check git status")
	}
	return out != "", nil
}

// CurrentBranch implements interfaces.GitClient
func (c *client) CurrentBranch(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", goerr.Wrap(err, "failed to resolve current branch")
	}
	if out == "HEAD" {
		return "", nil
	}
	return out, nil
}

// RevParse implements interfaces.GitClient
func (c *client) RevParse(ctx context.Context, ref string) (string, error) {
	out, err := c.run(ctx, "rev-parse", "--verify", "--quiet", ref+"^{commit}")
	if err != nil {
		return "", goerr.Wrap(err, "failed to resolve ref", goerr.V("ref", ref))
	}
	return out, nil
}

// Checkout implements interfaces.GitClient
func (c *client) Checkout(ctx context.Context, branch string) error {
	if _, err := c.run(ctx, "checkout", branch); err != nil {
		return goerr.Wrap(err, "failed to checkout branch", goerr.V("branch", branch))
	}
	return nil
}

// FastForwardSource implements interfaces.GitClient. A branch that was never pushed has no
// remote counterpart and yields an empty result.
func (c *client) FastForwardSource(ctx context.Context, branch string) (string, error) {
	remote, err := c.fastForwardRemote(ctx)
	if err != nil {
		return "", err
	}
	if remote == "" {
		ctxlog.From(ctx).Debug("No remote configured, nothing to fast-forward from", "branch", branch)
		return "", nil
	}

	out, err := c.run(ctx, "ls-remote", "--heads", remote, "refs/heads/"+branch)
	if err != nil {
		return "", goerr.Wrap(err, "failed to query remote branch",
			goerr.V("remote", remote),
			goerr.V("branch", branch),
		)
	}
	if out == "" {
		ctxlog.From(ctx).Debug("Branch does not exist on remote, nothing to fast-forward from",
			"remote", remote,
			"branch", branch,
		)
		return "", nil
	}

	return remote, nil
}

// Pull implements interfaces.GitClient
func (c *client) Pull(ctx context.Context, branch string) error {
	remote, err := c.FastForwardSource(ctx, branch)
	if err != nil {
		return err
	}
	if remote == "" {
		return nil
	}

	if _, err := c.run(ctx, "pull", "--ff-only", remote, branch); err != nil {
		return goerr.Wrap(err, "failed to fast-forward branch",
			goerr.V("remote", remote),
			goerr.V("branch", branch),
		)
	}
	return nil
}

// IsAncestor implements interfaces.GitClient. The merge base of an ancestor and its
// descendant is the ancestor itself.
func (c *client) IsAncestor(ctx context.Context, ancestor, ref string) (bool, error) {
	base, err := c.run(ctx, "merge-base", ancestor, ref)
	if err != nil {
		return false, goerr.Wrap(err, "failed to find merge base",
			goerr.V("ancestor", ancestor),
			goerr.V("ref", ref),
		)
	}

	commit, err := c.RevParse(ctx, ancestor)
	if err != nil {
		return false, err
	}

	return base == commit, nil
}

// fastForwardRemote picks the pinned remote, else the only remote, else "origin". An empty
// result means the repository has no remote at all.
func (c *client) fastForwardRemote(ctx context.Context) (string, error) {
	if c.remote != "" {
		return c.remote, nil
	}

	remotes, err := c.Remotes(ctx)
	if err != nil {
		return "", err
	}

	switch {
	case len(remotes) == 0:
		return "", nil
	case len(remotes) == 1:
		return remotes[0], nil
	case slices.Contains(remotes, "origin"):
		return "origin", nil
	default:
		return "", goerr.New("multiple remotes configured and none is origin", goerr.V("remotes", remotes))
	}
}

// Merge implements interfaces.GitClient. A failed merge is aborted so the working tree is
// left clean for whatever runs next.
func (c *client) Merge(ctx context.Context, branch, message string) error {
	if _, err := c.run(ctx, "merge", "--no-ff", "-m", message, branch); err != nil {
		if _, abortErr := c.run(ctx, "merge", "--abort"); abortErr != nil {
			ctxlog.From(ctx).Warn("Failed to abort merge", "error", abortErr)
		}
		return goerr.Wrap(err, "failed to merge branch", goerr.V("branch", branch))
	}
	return nil
}

// Add implements interfaces.GitClient
func (c *client) Add(ctx context.Context, paths ...string) error {
	args := append([]string{"add", "--"}, paths...)
	if _, err := c.run(ctx, args...); err != nil {
		return goerr.Wrap(err, "failed to stage files", goerr.V("paths", paths))
	}
	return nil
}

// Commit implements interfaces.GitClient
func (c *client) Commit(ctx context.Context, message string) error {
	if _, err := c.run(ctx, "commit", "-m", message); err != nil {
		return goerr.Wrap(err, "failed to commit")
	}
	return nil
}

// Amend implements interfaces.GitClient
func (c *client) Amend(ctx context.Context) error {
	if _, err := c.run(ctx, "commit", "--amend", "--no-edit"); err != nil {
		return goerr.Wrap(err, "failed to amend commit")
	}
	return nil
}

// Tags implements interfaces.GitClient
func (c *client) Tags(ctx context.Context) ([]string, error) {
	out, err := c.run(ctx, "tag", "--list")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list tags")
	}
	return splitLines(out), nil
}

// TagsAt implements interfaces.GitClient
func (c *client) TagsAt(ctx context.Context, ref string) ([]string, error) {
	out, err := c.run(ctx, "tag", "--points-at", ref)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list tags at ref", goerr.V("ref", ref))
	}
	return splitLines(out), nil
}

// CreateTag implements interfaces.GitClient
func (c *client) CreateTag(ctx context.Context, name, message string) error {
	if _, err := c.run(ctx, "tag", "-a", name, "-m", message); err != nil {
		return goerr.Wrap(err, "failed to create tag", goerr.V("tag", name))
	}
	return nil
}

// DeleteTag implements interfaces.GitClient
func (c *client) DeleteTag(ctx context.Context, name string) error {
	if _, err := c.run(ctx, "tag", "-d", name); err != nil {
		return goerr.Wrap(err, "failed to delete tag", goerr.V("tag", name))
	}
	return nil
}

// ResetHard implements interfaces.GitClient
func (c *client) ResetHard(ctx context.Context, commit string) error {
	if _, err := c.run(ctx, "reset", "--hard", commit); err != nil {
		return goerr.Wrap(err, "failed to reset", goerr.V("commit", commit))
	}
	return nil
}

// Remotes implements interfaces.GitClient
func (c *client) Remotes(ctx context.Context) ([]string, error) {
	out, err := c.run(ctx, "remote")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list remotes")
	}
	return splitLines(out), nil
}

// Push implements interfaces.GitClient
func (c *client) Push(ctx context.Context, remote, ref string) error {
	if _, err := c.run(ctx, "push", remote, ref); err != nil {
		return goerr.Wrap(err, "failed to push", goerr.V("remote", remote), goerr.V("ref", ref))
	}
	return nil
}

func splitLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
