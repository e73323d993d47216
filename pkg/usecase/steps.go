package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/cutrelease/pkg/domain/model"
	"github.com/m-mizutani/cutrelease/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// mergeToStable records where the run started and merges the current branch into the stable
// branch with a merge commit. Starting on the stable branch, or from a branch the stable branch
// already contains, skips the merge and leaves main_commit unset.
func (uc *releaseUseCase) mergeToStable(ctx context.Context, run *model.ReleaseRun) error {
	logger := ctxlog.From(ctx)
	stable := uc.cfg.StableBranch

	branch, err := uc.git.CurrentBranch(ctx)
	if err != nil {
		return stepError(types.ErrMergeFailed, err, "failed to resolve current branch")
	}
	commit, err := uc.git.RevParse(ctx, branch)
	if err != nil {
		return stepError(types.ErrMergeFailed, err, "failed to resolve current commit", goerr.V("branch", branch))
	}
	if err := run.RecordOrigin(branch, commit); err != nil {
		return stepError(types.ErrMergeFailed, err, "failed to record original branch")
	}

	if branch == stable {
		logger.Info("Already on stable branch, no merge required", "branch", branch)
		uc.reporter.Step("already on %s, skipping merge", stable)
		return nil
	}

	uc.reporter.Step("merging %s into %s", branch, stable)

	if err := uc.git.Checkout(ctx, stable); err != nil {
		return stepError(types.ErrMergeFailed, err, "failed to checkout stable branch", goerr.V("branch", stable))
	}
	if err := uc.git.Pull(ctx, stable); err != nil {
		return stepError(types.ErrMergeFailed, err, "failed to fast-forward stable branch", goerr.V("branch", stable))
	}

	merged, err := uc.git.IsAncestor(ctx, branch, stable)
	if err != nil {
		return stepError(types.ErrMergeFailed, err, "failed to compare with stable branch",
			goerr.V("from", branch),
			goerr.V("into", stable),
		)
	}
	if merged {
		logger.Info("Branch is already merged into stable branch", "from", branch, "into", stable)
		uc.reporter.Step("%s is already merged into %s, skipping merge", branch, stable)
		return nil
	}

	mainCommit, err := uc.git.RevParse(ctx, stable)
	if err != nil {
		return stepError(types.ErrMergeFailed, err, "failed to resolve stable branch", goerr.V("branch", stable))
	}
	if err := run.RecordMainCommit(mainCommit); err != nil {
		return stepError(types.ErrMergeFailed, err, "failed to record stable branch checkpoint")
	}

	msg := fmt.Sprintf("Release %s: merge branch '%s' into %s", run.Options.Version, branch, stable)
	if err := uc.git.Merge(ctx, branch, msg); err != nil {
		return stepError(types.ErrMergeFailed, err, "failed to merge into stable branch",
			goerr.V("from", branch),
			goerr.V("into", stable),
		)
	}

	logger.Info("Merged into stable branch", "from", branch, "into", stable, "main_commit", mainCommit)
	return nil
}

// updateVersions rewrites version markers and commits them. The release merge commit is
// amended when this run created one, so the stable branch gains a single release commit.
// Otherwise a new commit is made, and the stable tip is recorded first unless the original
// branch checkpoint already covers it.
func (uc *releaseUseCase) updateVersions(ctx context.Context, run *model.ReleaseRun) error {
	logger := ctxlog.From(ctx)
	version := run.Options.Version

	uc.reporter.Step("updating version markers to %s", version)

	changed, err := uc.versions.Update(ctx, version)
	if err != nil {
		return stepError(types.ErrCommitFailed, err, "failed to rewrite version markers")
	}
	if len(changed) == 0 {
		logger.Info("Version markers already up to date, nothing to commit")
		return nil
	}

	amend := run.MainCommit != ""
	if !amend && run.OriginalBranch != uc.cfg.StableBranch {
		// No merge happened but the version commit still advances the stable branch
		if err := uc.recordStableTip(ctx, run); err != nil {
			return err
		}
	}

	if err := uc.git.Add(ctx, changed...); err != nil {
		return stepError(types.ErrCommitFailed, err, "failed to stage version files", goerr.V("paths", changed))
	}

	if amend {
		if err := uc.git.Amend(ctx); err != nil {
			return stepError(types.ErrCommitFailed, err, "failed to amend release merge commit")
		}
	} else {
		if err := uc.git.Commit(ctx, fmt.Sprintf("Bump version to %s", version)); err != nil {
			return stepError(types.ErrCommitFailed, err, "failed to commit version files")
		}
	}
	run.VersionsCommitted = true

	logger.Info("Committed version markers", "paths", changed, "amend", amend)
	return nil
}

func (uc *releaseUseCase) recordStableTip(ctx context.Context, run *model.ReleaseRun) error {
	stable := uc.cfg.StableBranch
	tip, err := uc.git.RevParse(ctx, stable)
	if err != nil {
		return stepError(types.ErrCommitFailed, err, "failed to resolve stable branch", goerr.V("branch", stable))
	}
	if err := run.RecordMainCommit(tip); err != nil {
		return stepError(types.ErrCommitFailed, err, "failed to record stable branch checkpoint")
	}
	return nil
}

// tag creates the annotated release tag on HEAD. HEAD already carrying the tag is a no-op;
// HEAD carrying a different tag is reported and the tag is not created. A commit this run
// created carries no tag yet, so HEAD is only inspected when the run committed nothing.
func (uc *releaseUseCase) tag(ctx context.Context, run *model.ReleaseRun) error {
	logger := ctxlog.From(ctx)
	version := run.Options.Version

	if run.MainCommit == "" && !run.VersionsCommitted {
		existing, err := uc.git.TagsAt(ctx, "HEAD")
		if err != nil {
			return stepError(types.ErrTagFailed, err, "failed to list tags at HEAD")
		}

		if slices.Contains(existing, version) {
			logger.Info("HEAD is already tagged with target version", "tag", version)
			uc.reporter.Step("%s is already tagged, nothing to do", version)
			return nil
		}
		if len(existing) > 0 {
			logger.Warn("HEAD is already tagged with a different version", "tags", existing)
			uc.reporter.Warn("HEAD is already tagged as %s, not tagging %s", strings.Join(existing, ", "), version)
			return nil
		}
	}

	all, err := uc.git.Tags(ctx)
	if err != nil {
		return stepError(types.ErrTagFailed, err, "failed to list tags")
	}
	if slices.Contains(all, version) {
		return goerr.Wrap(types.ErrTagFailed, "tag already exists on another commit", goerr.V("tag", version))
	}

	head, err := uc.git.RevParse(ctx, "HEAD")
	if err != nil {
		return stepError(types.ErrTagFailed, err, "failed to resolve HEAD")
	}

	uc.reporter.Step("tagging %s", version)
	if err := uc.git.CreateTag(ctx, version, uc.tagMessage(version)); err != nil {
		return stepError(types.ErrTagFailed, err, "failed to create tag", goerr.V("tag", version))
	}
	if err := run.RecordTag(head); err != nil {
		return stepError(types.ErrTagFailed, err, "failed to record tag checkpoint")
	}

	logger.Info("Created release tag", "tag", version, "commit", head)
	return nil
}

func (uc *releaseUseCase) tagMessage(version string) string {
	if strings.Contains(uc.cfg.TagMessage, "%s") {
		return fmt.Sprintf(uc.cfg.TagMessage, version)
	}
	if uc.cfg.TagMessage == "" {
		return "Release " + version
	}
	return uc.cfg.TagMessage
}

// mergeBack merges the stable branch into the development branch when this run moved the
// stable branch, then returns to the stable branch. Otherwise it succeeds without doing
// anything.
func (uc *releaseUseCase) mergeBack(ctx context.Context, run *model.ReleaseRun) error {
	logger := ctxlog.From(ctx)
	stable, dev := uc.cfg.StableBranch, uc.cfg.DevBranch

	if run.MainCommit == "" && run.TagID == "" {
		logger.Info("Stable branch did not move, skipping merge back")
		return nil
	}

	uc.reporter.Step("merging %s back into %s", stable, dev)

	if err := uc.git.Checkout(ctx, dev); err != nil {
		return stepError(types.ErrMergeFailed, err, "failed to checkout development branch", goerr.V("branch", dev))
	}
	if err := uc.git.Pull(ctx, dev); err != nil {
		return stepError(types.ErrMergeFailed, err, "failed to fast-forward development branch", goerr.V("branch", dev))
	}

	devCommit, err := uc.git.RevParse(ctx, dev)
	if err != nil {
		return stepError(types.ErrMergeFailed, err, "failed to resolve development branch", goerr.V("branch", dev))
	}
	if err := run.RecordDevCommit(devCommit); err != nil {
		return stepError(types.ErrMergeFailed, err, "failed to record development branch checkpoint")
	}

	msg := fmt.Sprintf("Merge release %s into %s", run.Options.Version, dev)
	if err := uc.git.Merge(ctx, stable, msg); err != nil {
		return stepError(types.ErrMergeFailed, err, "failed to merge back into development branch",
			goerr.V("from", stable),
			goerr.V("into", dev),
		)
	}

	if err := uc.git.Checkout(ctx, stable); err != nil {
		return stepError(types.ErrMergeFailed, err, "failed to return to stable branch", goerr.V("branch", stable))
	}

	logger.Info("Merged release back", "from", stable, "into", dev, "dev_commit", devCommit)
	return nil
}
