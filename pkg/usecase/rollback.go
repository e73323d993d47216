package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/cutrelease/pkg/domain/model"
	"github.com/m-mizutani/cutrelease/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// rollback undoes recorded checkpoints newest-first: tag, development branch, stable branch,
// original branch. Every applicable step is attempted even if an earlier one failed.
// Checkpoints that were undone are cleared so the run shows what is still outstanding.
func (uc *releaseUseCase) rollback(ctx context.Context, run *model.ReleaseRun) error {
	logger := ctxlog.From(ctx)
	uc.reporter.Step("rolling back")

	var errs []error

	if run.TagID != "" {
		if err := uc.git.DeleteTag(ctx, run.Options.Version); err != nil {
			logger.Error("Failed to delete release tag", "tag", run.Options.Version, "error", err)
			errs = append(errs, goerr.Wrap(err, "failed to delete release tag", goerr.V("tag", run.Options.Version)))
		} else {
			logger.Info("Deleted release tag", "tag", run.Options.Version)
			run.TagID = ""
		}
	}

	if run.DevCommit != "" {
		if err := uc.restoreBranch(ctx, uc.cfg.DevBranch, run.DevCommit); err != nil {
			errs = append(errs, err)
		} else {
			run.DevCommit = ""
		}
	}

	if run.MainCommit != "" {
		if err := uc.restoreBranch(ctx, uc.cfg.StableBranch, run.MainCommit); err != nil {
			errs = append(errs, err)
		} else {
			run.MainCommit = ""
			run.VersionsCommitted = false
		}
	}

	if run.OriginalBranch != "" {
		if err := uc.restoreBranch(ctx, run.OriginalBranch, run.OriginalCommit); err != nil {
			errs = append(errs, err)
		} else if run.OriginalBranch == uc.cfg.StableBranch {
			run.VersionsCommitted = false
		}
	}

	if len(errs) > 0 {
		incomplete := goerr.Wrap(types.ErrRollbackIncomplete, "repository needs manual attention",
			goerr.V("failed_steps", len(errs)),
		)
		return errors.Join(append([]error{incomplete}, errs...)...)
	}

	return nil
}

// restoreBranch checks out branch and hard-resets it to commit. The reset is skipped if the
// checkout failed, since it would move whatever branch is checked out instead. An empty
// commit only checks the branch out.
func (uc *releaseUseCase) restoreBranch(ctx context.Context, branch, commit string) error {
	logger := ctxlog.From(ctx)

	if err := uc.git.Checkout(ctx, branch); err != nil {
		logger.Error("Failed to checkout branch for rollback", "branch", branch, "error", err)
		return goerr.Wrap(err, "failed to checkout branch for rollback", goerr.V("branch", branch))
	}

	if commit == "" {
		return nil
	}

	if err := uc.git.ResetHard(ctx, commit); err != nil {
		logger.Error("Failed to reset branch", "branch", branch, "commit", commit, "error", err)
		return goerr.Wrap(err, "failed to reset branch", goerr.V("branch", branch), goerr.V("commit", commit))
	}

	logger.Info("Restored branch", "branch", branch, "commit", commit)
	return nil
}
