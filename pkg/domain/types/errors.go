package types

import "errors"

// Release failure taxonomy. Every error returned by the release workflow wraps exactly one of
// these (or joins one with ErrRollbackIncomplete), so callers can branch with errors.Is.
var (
	// ErrInvalidVersion indicates the target version is not a conformant semantic version
	ErrInvalidVersion = errors.New("invalid version")

	// ErrToolingMissing indicates the git executable or the repository is unavailable
	ErrToolingMissing = errors.New("version control tooling missing")

	// ErrDirtyRepository indicates uncommitted changes exist in the working tree
	ErrDirtyRepository = errors.New("repository has uncommitted changes")

	// ErrDetachedState indicates HEAD does not resolve to a named branch
	ErrDetachedState = errors.New("repository is in detached HEAD state")

	// ErrMergeFailed indicates a checkout, fast-forward or merge step failed
	ErrMergeFailed = errors.New("merge failed")

	// ErrCommitFailed indicates rewriting or committing version markers failed
	ErrCommitFailed = errors.New("commit failed")

	// ErrTagFailed indicates the release tag could not be inspected or created
	ErrTagFailed = errors.New("tag failed")

	// ErrPushFailed indicates the push stage could not publish a ref
	ErrPushFailed = errors.New("push failed")

	// ErrRollbackIncomplete indicates at least one rollback step failed and the repository
	// needs manual attention
	ErrRollbackIncomplete = errors.New("rollback incomplete")
)
