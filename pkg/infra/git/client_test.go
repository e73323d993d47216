package git_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/m-mizutani/cutrelease/pkg/infra/git"
	"github.com/m-mizutani/gt"
)

// recordingExecutor returns canned output per command line and records every call
type recordingExecutor struct {
	outputs map[string]string
	errs    map[string]error
	calls   []string
}

func newRecordingExecutor() *recordingExecutor {
	return &recordingExecutor{
		outputs: map[string]string{},
		errs:    map[string]error{},
	}
}

func (r *recordingExecutor) Run(ctx context.Context, dir string, args ...string) (string, error) {
	line := strings.Join(args, " ")
	r.calls = append(r.calls, line)
	if err, ok := r.errs[line]; ok {
		return "", err
	}
	return r.outputs[line], nil
}

func TestClient_CurrentBranch(t *testing.T) {
	ctx := context.Background()

	t.Run("named branch", func(t *testing.T) {
		exec := newRecordingExecutor()
		exec.outputs["rev-parse --abbrev-ref HEAD"] = "feature-x"
		c := git.NewClient("/repo", git.WithExecutor(exec))

		branch, err := c.CurrentBranch(ctx)
		gt.NoError(t, err)
		gt.Value(t, branch).Equal("feature-x")
	})

	t.Run("detached head", func(t *testing.T) {
		exec := newRecordingExecutor()
		exec.outputs["rev-parse --abbrev-ref HEAD"] = "HEAD"
		c := git.NewClient("/repo", git.WithExecutor(exec))

		branch, err := c.CurrentBranch(ctx)
		gt.NoError(t, err)
		gt.Value(t, branch).Equal("")
	})
}

func TestClient_Available(t *testing.T) {
	ctx := context.Background()

	t.Run("inside work tree", func(t *testing.T) {
		exec := newRecordingExecutor()
		exec.outputs["rev-parse --is-inside-work-tree"] = "true"
		c := git.NewClient("/repo", git.WithExecutor(exec))
		gt.NoError(t, c.Available(ctx))
	})

	t.Run("git missing", func(t *testing.T) {
		exec := newRecordingExecutor()
		exec.errs["--version"] = errors.New("executable file not found in $PATH")
		c := git.NewClient("/repo", git.WithExecutor(exec))
		gt.Error(t, c.Available(ctx))
	})

	t.Run("not a repository", func(t *testing.T) {
		exec := newRecordingExecutor()
		exec.errs["rev-parse --is-inside-work-tree"] = errors.New("exit status 128")
		c := git.NewClient("/repo", git.WithExecutor(exec))
		gt.Error(t, c.Available(ctx))
	})
}

func TestClient_HasUncommittedChanges(t *testing.T) {
	ctx := context.Background()
	exec := newRecordingExecutor()
	c := git.NewClient("/repo", git.WithExecutor(exec))

	dirty, err := c.HasUncommittedChanges(ctx)
	gt.NoError(t, err)
	gt.False(t, dirty)

	exec.outputs["status --porcelain --untracked-files=no"] = " M package.json"
	dirty, err = c.HasUncommittedChanges(ctx)
	gt.NoError(t, err)
	gt.True(t, dirty)
}

func TestClient_Merge_AbortsOnFailure(t *testing.T) {
	ctx := context.Background()
	exec := newRecordingExecutor()
	exec.errs["merge --no-ff -m Release 2.0.0 feature-x"] = errors.New("CONFLICT")
	c := git.NewClient("/repo", git.WithExecutor(exec))

	err := c.Merge(ctx, "feature-x", "Release 2.0.0")
	gt.Error(t, err)
	gt.Value(t, exec.calls).Equal([]string{
		"merge --no-ff -m Release 2.0.0 feature-x",
		"merge --abort",
	})
}

func TestClient_Pull(t *testing.T) {
	ctx := context.Background()

	t.Run("no remote skips fast-forward", func(t *testing.T) {
		exec := newRecordingExecutor()
		c := git.NewClient("/repo", git.WithExecutor(exec))

		gt.NoError(t, c.Pull(ctx, "main"))
		gt.Value(t, exec.calls).Equal([]string{"remote"})
	})

	t.Run("single remote", func(t *testing.T) {
		exec := newRecordingExecutor()
		exec.outputs["remote"] = "upstream"
		exec.outputs["ls-remote --heads upstream refs/heads/main"] = "0a1b2c\trefs/heads/main"
		c := git.NewClient("/repo", git.WithExecutor(exec))

		gt.NoError(t, c.Pull(ctx, "main"))
		gt.Value(t, exec.calls).Equal([]string{
			"remote",
			"ls-remote --heads upstream refs/heads/main",
			"pull --ff-only upstream main",
		})
	})

	t.Run("branch missing on remote skips fast-forward", func(t *testing.T) {
		exec := newRecordingExecutor()
		exec.outputs["remote"] = "origin"
		c := git.NewClient("/repo", git.WithExecutor(exec))

		gt.NoError(t, c.Pull(ctx, "develop"))
		gt.Value(t, exec.calls).Equal([]string{
			"remote",
			"ls-remote --heads origin refs/heads/develop",
		})
	})

	t.Run("origin preferred among many", func(t *testing.T) {
		exec := newRecordingExecutor()
		exec.outputs["remote"] = "fork\norigin"
		exec.outputs["ls-remote --heads origin refs/heads/develop"] = "0a1b2c\trefs/heads/develop"
		c := git.NewClient("/repo", git.WithExecutor(exec))

		gt.NoError(t, c.Pull(ctx, "develop"))
		gt.Value(t, exec.calls[2]).Equal("pull --ff-only origin develop")
	})

	t.Run("ambiguous remotes", func(t *testing.T) {
		exec := newRecordingExecutor()
		exec.outputs["remote"] = "fork\nupstream"
		c := git.NewClient("/repo", git.WithExecutor(exec))

		gt.Error(t, c.Pull(ctx, "main"))
	})

	t.Run("pinned remote", func(t *testing.T) {
		exec := newRecordingExecutor()
		exec.outputs["ls-remote --heads mirror refs/heads/main"] = "0a1b2c\trefs/heads/main"
		c := git.NewClient("/repo", git.WithExecutor(exec), git.WithRemote("mirror"))

		gt.NoError(t, c.Pull(ctx, "main"))
		gt.Value(t, exec.calls).Equal([]string{
			"ls-remote --heads mirror refs/heads/main",
			"pull --ff-only mirror main",
		})
	})

	t.Run("unreachable remote fails", func(t *testing.T) {
		exec := newRecordingExecutor()
		exec.outputs["remote"] = "origin"
		exec.errs["ls-remote --heads origin refs/heads/main"] = errors.New("could not read from remote repository")
		c := git.NewClient("/repo", git.WithExecutor(exec))

		gt.Error(t, c.Pull(ctx, "main"))
		gt.Value(t, exec.calls[len(exec.calls)-1]).Equal("ls-remote --heads origin refs/heads/main")
	})
}

func TestClient_IsAncestor(t *testing.T) {
	ctx := context.Background()

	t.Run("already merged", func(t *testing.T) {
		exec := newRecordingExecutor()
		exec.outputs["merge-base feature-x main"] = "abc"
		exec.outputs["rev-parse --verify --quiet feature-x^{commit}"] = "abc"
		c := git.NewClient("/repo", git.WithExecutor(exec))

		merged, err := c.IsAncestor(ctx, "feature-x", "main")
		gt.NoError(t, err)
		gt.True(t, merged)
	})

	t.Run("diverged", func(t *testing.T) {
		exec := newRecordingExecutor()
		exec.outputs["merge-base feature-x main"] = "abc"
		exec.outputs["rev-parse --verify --quiet feature-x^{commit}"] = "def"
		c := git.NewClient("/repo", git.WithExecutor(exec))

		merged, err := c.IsAncestor(ctx, "feature-x", "main")
		gt.NoError(t, err)
		gt.False(t, merged)
	})

	t.Run("unrelated histories", func(t *testing.T) {
		exec := newRecordingExecutor()
		exec.errs["merge-base feature-x main"] = errors.New("exit status 1")
		c := git.NewClient("/repo", git.WithExecutor(exec))

		_, err := c.IsAncestor(ctx, "feature-x", "main")
		gt.Error(t, err)
	})
}

func TestClient_TagsAndRemotes(t *testing.T) {
	ctx := context.Background()
	exec := newRecordingExecutor()
	exec.outputs["tag --list"] = "1.0.0\n1.1.0\n"
	exec.outputs["tag --points-at HEAD"] = "1.1.0"
	exec.outputs["remote"] = "origin\n"
	c := git.NewClient("/repo", git.WithExecutor(exec))

	tags, err := c.Tags(ctx)
	gt.NoError(t, err)
	gt.Value(t, tags).Equal([]string{"1.0.0", "1.1.0"})

	at, err := c.TagsAt(ctx, "HEAD")
	gt.NoError(t, err)
	gt.Value(t, at).Equal([]string{"1.1.0"})

	remotes, err := c.Remotes(ctx)
	gt.NoError(t, err)
	gt.Value(t, remotes).Equal([]string{"origin"})
}

func TestClient_MutatingCommands(t *testing.T) {
	ctx := context.Background()
	exec := newRecordingExecutor()
	c := git.NewClient("/repo", git.WithExecutor(exec))

	gt.NoError(t, c.Checkout(ctx, "main"))
	gt.NoError(t, c.Add(ctx, "package.json", "lib/version.sh"))
	gt.NoError(t, c.Commit(ctx, "Bump version to 2.0.0"))
	gt.NoError(t, c.Amend(ctx))
	gt.NoError(t, c.CreateTag(ctx, "2.0.0", "Release 2.0.0"))
	gt.NoError(t, c.DeleteTag(ctx, "2.0.0"))
	gt.NoError(t, c.ResetHard(ctx, "abc123"))
	gt.NoError(t, c.Push(ctx, "origin", "refs/tags/2.0.0"))

	gt.Value(t, exec.calls).Equal([]string{
		"checkout main",
		"add -- package.json lib/version.sh",
		"commit -m Bump version to 2.0.0",
		"commit --amend --no-edit",
		"tag -a 2.0.0 -m Release 2.0.0",
		"tag -d 2.0.0",
		"reset --hard abc123",
		"push origin refs/tags/2.0.0",
	})
}

func TestCommandError(t *testing.T) {
	exec := newRecordingExecutor()
	cause := errors.New("exit status 1")
	exec.errs["checkout nope"] = cause
	c := git.NewClient("/repo", git.WithExecutor(exec))

	err := c.Checkout(context.Background(), "nope")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, cause))
	gt.String(t, err.Error()).Contains("failed to checkout branch")
}
