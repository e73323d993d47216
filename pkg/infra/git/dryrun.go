package git

import (
	"context"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/cutrelease/pkg/domain/interfaces"
)

// Reporter receives a description of every suppressed mutation
type Reporter interface {
	Action(format string, args ...any)
}

type dryRun struct {
	inner    interfaces.GitClient
	reporter Reporter

	// head is the branch a suppressed Checkout would have switched to
	head string
}

// NewDryRun wraps a client so that read-only calls reach git while mutating calls are only
// reported. Mutations always report success. Reads of "HEAD" follow suppressed checkouts, so
// they see the branch the real run would be on.
func NewDryRun(inner interfaces.GitClient, reporter Reporter) interfaces.GitClient {
	return &dryRun{inner: inner, reporter: reporter}
}

func (d *dryRun) suppress(ctx context.Context, args ...string) error {
	cmd := "git " + strings.Join(quoteArgs(args), " ")
	ctxlog.From(ctx).Info("Dry run, skipping mutation", "command", cmd)
	d.reporter.Action("%s", cmd)
	return nil
}

func (d *dryRun) Available(ctx context.Context) error {
	return d.inner.Available(ctx)
}

func (d *dryRun) HasUncommittedChanges(ctx context.Context) (bool, error) {
	return d.inner.HasUncommittedChanges(ctx)
}

func (d *dryRun) resolve(ref string) string {
	if ref == "HEAD" && d.head != "" {
		return d.head
	}
	return ref
}

func (d *dryRun) CurrentBranch(ctx context.Context) (string, error) {
	if d.head != "" {
		return d.head, nil
	}
	return d.inner.CurrentBranch(ctx)
}

func (d *dryRun) RevParse(ctx context.Context, ref string) (string, error) {
	return d.inner.RevParse(ctx, d.resolve(ref))
}

func (d *dryRun) Tags(ctx context.Context) ([]string, error) {
	return d.inner.Tags(ctx)
}

func (d *dryRun) TagsAt(ctx context.Context, ref string) ([]string, error) {
	return d.inner.TagsAt(ctx, d.resolve(ref))
}

func (d *dryRun) FastForwardSource(ctx context.Context, branch string) (string, error) {
	return d.inner.FastForwardSource(ctx, branch)
}

func (d *dryRun) IsAncestor(ctx context.Context, ancestor, ref string) (bool, error) {
	return d.inner.IsAncestor(ctx, d.resolve(ancestor), d.resolve(ref))
}

func (d *dryRun) Remotes(ctx context.Context) ([]string, error) {
	return d.inner.Remotes(ctx)
}

func (d *dryRun) Checkout(ctx context.Context, branch string) error {
	if err := d.suppress(ctx, "checkout", branch); err != nil {
		return err
	}
	d.head = branch
	return nil
}

// Pull reports the exact pull the real run would issue, and nothing when it would skip
func (d *dryRun) Pull(ctx context.Context, branch string) error {
	remote, err := d.inner.FastForwardSource(ctx, branch)
	if err != nil {
		return err
	}
	if remote == "" {
		return nil
	}
	return d.suppress(ctx, "pull", "--ff-only", remote, branch)
}

func (d *dryRun) Merge(ctx context.Context, branch, message string) error {
	return d.suppress(ctx, "merge", "--no-ff", "-m", message, branch)
}

func (d *dryRun) Add(ctx context.Context, paths ...string) error {
	return d.suppress(ctx, append([]string{"add", "--"}, paths...)...)
}

func (d *dryRun) Commit(ctx context.Context, message string) error {
	return d.suppress(ctx, "commit", "-m", message)
}

func (d *dryRun) Amend(ctx context.Context) error {
	return d.suppress(ctx, "commit", "--amend", "--no-edit")
}

func (d *dryRun) CreateTag(ctx context.Context, name, message string) error {
	return d.suppress(ctx, "tag", "-a", name, "-m", message)
}

func (d *dryRun) DeleteTag(ctx context.Context, name string) error {
	return d.suppress(ctx, "tag", "-d", name)
}

func (d *dryRun) ResetHard(ctx context.Context, commit string) error {
	return d.suppress(ctx, "reset", "--hard", commit)
}

func (d *dryRun) Push(ctx context.Context, remote, ref string) error {
	return d.suppress(ctx, "push", remote, ref)
}

func quoteArgs(args []string) []string {
	quoted := make([]string, len(args))
	for i, a := range args {
		if strings.ContainsAny(a, " \t'\"") {
			a = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
		}
		quoted[i] = a
	}
	return quoted
}
