package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/cutrelease/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// validateVersion rejects anything that is not a conformant semantic version
func (uc *releaseUseCase) validateVersion(ctx context.Context, version string) error {
	if !uc.semver.Match(version) {
		ctxlog.From(ctx).Error("Version is not a semantic version", "version", version)
		return goerr.Wrap(types.ErrInvalidVersion, "version must match MAJOR.MINOR.PATCH[-PRERELEASE][+BUILD]",
			goerr.V("version", version),
		)
	}
	return nil
}

// checkRepository makes sure git is usable, the tree is clean and HEAD is on a branch.
// It performs no mutation.
func (uc *releaseUseCase) checkRepository(ctx context.Context) error {
	logger := ctxlog.From(ctx)

	if err := uc.git.Available(ctx); err != nil {
		return stepError(types.ErrToolingMissing, err, "git repository is not available")
	}

	dirty, err := uc.git.HasUncommittedChanges(ctx)
	if err != nil {
		return stepError(types.ErrToolingMissing, err, "failed to inspect working tree")
	}
	if dirty {
		return goerr.Wrap(types.ErrDirtyRepository, "commit or stash your changes before releasing")
	}

	branch, err := uc.git.CurrentBranch(ctx)
	if err != nil {
		return stepError(types.ErrDetachedState, err, "failed to resolve HEAD")
	}
	if branch == "" {
		return goerr.Wrap(types.ErrDetachedState, "check out a branch before releasing")
	}

	logger.Debug("Repository guard passed", "branch", branch)
	return nil
}

// warnIfOutdated warns when an existing release tag is newer than the target. Never fatal.
func (uc *releaseUseCase) warnIfOutdated(ctx context.Context, version string) {
	logger := ctxlog.From(ctx)

	tags, err := uc.git.Tags(ctx)
	if err != nil {
		logger.Warn("Failed to list tags for ordering check", "error", err)
		return
	}

	var newest string
	for _, tag := range tags {
		if uc.semver.Compare(tag, version) > 0 && (newest == "" || uc.semver.Compare(tag, newest) > 0) {
			newest = tag
		}
	}

	if newest != "" {
		logger.Warn("Target version is lower than an existing release tag", "newest_tag", newest)
		uc.reporter.Warn("version %s is lower than existing tag %s", version, newest)
	}
}
