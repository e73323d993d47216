package model

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// ReleaseOptions holds the immutable inputs of one release invocation
type ReleaseOptions struct {
	Version string // Target semantic version, also the tag name
	DryRun  bool   // Suppress every mutating call
	Push    bool   // Run the push stage after success
}

// ReleaseRun is the single mutable record describing one invocation.
//
// Checkpoint fields start empty and are set at most once, each by the forward step that makes
// it necessary to undo. Presence of a checkpoint is the "this step happened" flag consumed by
// rollback. Only rollback clears them, after undoing the step.
//
// A ReleaseRun is owned by exactly one orchestrator execution and is never persisted.
type ReleaseRun struct {
	ID      string
	Options ReleaseOptions
	State   State

	OriginalBranch string // Branch checked out when the run began
	OriginalCommit string // Commit OriginalBranch pointed to at run start
	MainCommit     string // Stable branch tip right before the release merge
	DevCommit      string // Development branch tip right before the merge-back
	TagID          string // Commit the release tag was attached to

	// VersionsCommitted is set when version markers changed and were committed. It is not a
	// rollback checkpoint; the stable or original branch reset already discards that commit.
	VersionsCommitted bool
}

// NewReleaseRun creates a run in the Start state
func NewReleaseRun(opts ReleaseOptions) *ReleaseRun {
	return &ReleaseRun{
		ID:      uuid.NewString(),
		Options: opts,
		State:   StateStart,
	}
}

// RecordOrigin records the branch and commit checked out when the run began
func (r *ReleaseRun) RecordOrigin(branch, commit string) error {
	if err := setOnce(&r.OriginalBranch, "original_branch", branch); err != nil {
		return err
	}
	return setOnce(&r.OriginalCommit, "original_commit", commit)
}

// RecordMainCommit records the stable branch tip before merging into it
func (r *ReleaseRun) RecordMainCommit(commit string) error {
	return setOnce(&r.MainCommit, "main_commit", commit)
}

// RecordDevCommit records the development branch tip before merging back into it
func (r *ReleaseRun) RecordDevCommit(commit string) error {
	return setOnce(&r.DevCommit, "dev_commit", commit)
}

// RecordTag records the commit the release tag was created on
func (r *ReleaseRun) RecordTag(commit string) error {
	return setOnce(&r.TagID, "tag_id", commit)
}

// StableMoved reports whether this run advanced the stable branch
func (r *ReleaseRun) StableMoved() bool {
	return r.MainCommit != "" || r.VersionsCommitted
}

// Checkpoints returns the recorded checkpoints in forward order, skipping absent ones
func (r *ReleaseRun) Checkpoints() []Checkpoint {
	all := []Checkpoint{
		{Name: "original_branch", Value: r.OriginalBranch},
		{Name: "original_commit", Value: r.OriginalCommit},
		{Name: "main_commit", Value: r.MainCommit},
		{Name: "tag_id", Value: r.TagID},
		{Name: "dev_commit", Value: r.DevCommit},
	}

	var present []Checkpoint
	for _, cp := range all {
		if cp.Value != "" {
			present = append(present, cp)
		}
	}
	return present
}

// Checkpoint is a recorded pre-mutation state
type Checkpoint struct {
	Name  string
	Value string
}

func setOnce(field *string, name, value string) error {
	if value == "" {
		return goerr.New("empty checkpoint value", goerr.V("checkpoint", name))
	}
	if *field != "" {
		return goerr.New("checkpoint already recorded",
			goerr.V("checkpoint", name),
			goerr.V("current", *field),
			goerr.V("new", value),
		)
	}
	*field = value
	return nil
}
