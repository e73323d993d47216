package interfaces

import (
	"context"
)

// GitClient is the version-control backend used by the release workflow. Every call blocks
// until git returns. Mutating calls are Checkout, Pull, Merge, Add, Commit, Amend, CreateTag,
// DeleteTag, ResetHard and Push; everything else is read-only.
type GitClient interface {
	// Available checks that git is installed and the working directory is inside a repository
	Available(ctx context.Context) error

	// HasUncommittedChanges returns true if the working tree or index differs from HEAD
	HasUncommittedChanges(ctx context.Context) (bool, error)

	// CurrentBranch returns the checked out branch, or an empty string when HEAD is detached
	CurrentBranch(ctx context.Context) (string, error)

	// RevParse resolves a ref to a full commit hash
	RevParse(ctx context.Context, ref string) (string, error)

	// Checkout switches to an existing branch
	Checkout(ctx context.Context, branch string) error

	// FastForwardSource returns the remote branch would be fast-forwarded from, or an empty
	// string when there is no remote or the remote does not carry branch
	FastForwardSource(ctx context.Context, branch string) (string, error)

	// Pull fast-forwards the current branch from its remote counterpart.
	// It is a no-op when FastForwardSource finds nothing to fast-forward from.
	Pull(ctx context.Context, branch string) error

	// IsAncestor reports whether ancestor is reachable from ref, in which case merging
	// ancestor into ref changes nothing
	IsAncestor(ctx context.Context, ancestor, ref string) (bool, error)

	// Merge merges branch into the current branch, always creating a merge commit
	Merge(ctx context.Context, branch, message string) error

	// Add stages the given paths
	Add(ctx context.Context, paths ...string) error

	// Commit records staged changes as a new commit
	Commit(ctx context.Context, message string) error

	// Amend folds staged changes into HEAD, keeping its message
	Amend(ctx context.Context) error

	// Tags lists every tag in the repository
	Tags(ctx context.Context) ([]string, error)

	// TagsAt lists tags pointing at ref
	TagsAt(ctx context.Context, ref string) ([]string, error)

	// CreateTag creates an annotated tag on HEAD
	CreateTag(ctx context.Context, name, message string) error

	// DeleteTag deletes a local tag
	DeleteTag(ctx context.Context, name string) error

	// ResetHard moves the current branch and working tree to commit
	ResetHard(ctx context.Context, commit string) error

	// Remotes lists configured remote names
	Remotes(ctx context.Context) ([]string, error)

	// Push publishes ref (a branch name or refs/tags/<name>) to remote
	Push(ctx context.Context, remote, ref string) error
}

// VersionStore persists a version string into the tracked files holding version markers
type VersionStore interface {
	// Update rewrites every version marker to version and returns the paths whose content
	// changed. Files already carrying version are not touched.
	Update(ctx context.Context, version string) ([]string, error)
}

// SemVer provides the reference pattern a release version must match and a way to order
// versions.
type SemVer interface {
	// Match reports whether v is a conformant semantic version
	Match(v string) bool

	// Compare returns -1, 0 or +1 as a is lower, equal or higher than b. Invalid versions sort
	// lowest.
	Compare(a, b string) int
}
