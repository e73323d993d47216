package usecase

import (
	"context"
	"slices"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/cutrelease/pkg/domain/model"
	"github.com/m-mizutani/cutrelease/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// push publishes the stable branch, the development branch and the tag, each only if this
// run changed it. The first failure stops the stage; nothing is retried or rolled back.
func (uc *releaseUseCase) push(ctx context.Context, run *model.ReleaseRun) error {
	logger := ctxlog.From(ctx)

	var refs []string
	if run.StableMoved() {
		refs = append(refs, uc.cfg.StableBranch)
	}
	if run.DevCommit != "" {
		refs = append(refs, uc.cfg.DevBranch)
	}
	if run.TagID != "" {
		refs = append(refs, "refs/tags/"+run.Options.Version)
	}

	if len(refs) == 0 {
		logger.Info("Nothing changed, nothing to push")
		uc.reporter.Step("nothing to push")
		return nil
	}

	remote, err := uc.discoverRemote(ctx)
	if err != nil {
		return err
	}

	for _, ref := range refs {
		uc.reporter.Step("pushing %s to %s", ref, remote)
		if err := uc.git.Push(ctx, remote, ref); err != nil {
			return stepError(types.ErrPushFailed, err, "failed to push "+ref,
				goerr.V("remote", remote),
				goerr.V("ref", ref),
			)
		}
		logger.Info("Pushed ref", "remote", remote, "ref", ref)
	}

	return nil
}

// discoverRemote returns the configured remote if it exists, else the single configured
// remote. Zero remotes or several unconfigured ones fail.
func (uc *releaseUseCase) discoverRemote(ctx context.Context) (string, error) {
	remotes, err := uc.git.Remotes(ctx)
	if err != nil {
		return "", stepError(types.ErrPushFailed, err, "failed to list remotes")
	}

	if uc.cfg.Remote != "" {
		if !slices.Contains(remotes, uc.cfg.Remote) {
			return "", goerr.Wrap(types.ErrPushFailed, "configured remote does not exist",
				goerr.V("remote", uc.cfg.Remote),
				goerr.V("remotes", remotes),
			)
		}
		return uc.cfg.Remote, nil
	}

	switch len(remotes) {
	case 0:
		return "", goerr.Wrap(types.ErrPushFailed, "no remote configured")
	case 1:
		return remotes[0], nil
	default:
		return "", goerr.Wrap(types.ErrPushFailed, "more than one remote configured, choose one with --remote",
			goerr.V("remotes", remotes),
		)
	}
}
