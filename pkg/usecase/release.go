package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/cutrelease/pkg/domain/interfaces"
	"github.com/m-mizutani/cutrelease/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

// Reporter receives operator-facing progress. *printer.Printer satisfies it.
type Reporter interface {
	Step(format string, args ...any)
	Warn(format string, args ...any)
}

type nopReporter struct{}

func (nopReporter) Step(string, ...any) {}
func (nopReporter) Warn(string, ...any) {}

type releaseUseCase struct {
	git      interfaces.GitClient
	versions interfaces.VersionStore
	semver   interfaces.SemVer
	cfg      model.ReleaseConfig
	reporter Reporter
}

// Option is a functional option for the release use case
type Option func(*releaseUseCase)

// WithConfig sets branch names, remote and tag message
func WithConfig(cfg model.ReleaseConfig) Option {
	return func(uc *releaseUseCase) {
		uc.cfg = cfg
	}
}

// WithReporter sets where step progress and warnings are shown
func WithReporter(r Reporter) Option {
	return func(uc *releaseUseCase) {
		uc.reporter = r
	}
}

// NewRelease creates a new instance of ReleaseUseCase.
//
// The use case assumes it is the only writer to the repository for the duration of a run.
// It takes no lock; running two releases against the same repository at once is unsupported
// and may corrupt branch state.
func NewRelease(
	git interfaces.GitClient,
	versions interfaces.VersionStore,
	semver interfaces.SemVer,
	opts ...Option,
) interfaces.ReleaseUseCase {
	uc := &releaseUseCase{
		git:      git,
		versions: versions,
		semver:   semver,
		cfg:      model.DefaultReleaseConfig(),
		reporter: nopReporter{},
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

type releaseStep struct {
	name string
	next model.State
	run  func(ctx context.Context, run *model.ReleaseRun) error
}

// Release runs the workflow to completion. Validation and guard failures return before any
// mutation. A failure in a mutating step rolls back every recorded checkpoint and returns the
// step error, joined with ErrRollbackIncomplete if rollback could not finish. Push failures
// are returned without rollback.
func (uc *releaseUseCase) Release(ctx context.Context, run *model.ReleaseRun) error {
	logger := ctxlog.From(ctx).With(
		slog.String("run_id", run.ID),
		slog.String("version", run.Options.Version),
		slog.Bool("dry_run", run.Options.DryRun),
	)
	ctx = ctxlog.With(ctx, logger)

	logger.Info("Starting release",
		"stable_branch", uc.cfg.StableBranch,
		"dev_branch", uc.cfg.DevBranch,
		"push", run.Options.Push,
	)

	if err := uc.validateVersion(ctx, run.Options.Version); err != nil {
		run.State = model.StateFailed
		return err
	}
	uc.advance(ctx, run, model.StateValidated)

	if err := uc.checkRepository(ctx); err != nil {
		run.State = model.StateFailed
		return err
	}
	uc.advance(ctx, run, model.StateRepoReady)

	uc.warnIfOutdated(ctx, run.Options.Version)

	steps := []releaseStep{
		{name: "merge to stable", next: model.StateMergedMain, run: uc.mergeToStable},
		{name: "update versions", next: model.StateVersionsUpdated, run: uc.updateVersions},
		{name: "tag", next: model.StateTagged, run: uc.tag},
		{name: "merge back", next: model.StateMergedDev, run: uc.mergeBack},
	}

	for _, step := range steps {
		if err := step.run(ctx, run); err != nil {
			from := run.State
			run.State = model.StateFailed
			logger.Error("Release step failed, rolling back",
				"step", step.name,
				"from", from,
				"error", err,
			)

			if rbErr := uc.rollback(ctx, run); rbErr != nil {
				run.State = model.StateRollbackIncomplete
				logger.Error("Rollback incomplete, manual intervention required", "error", rbErr)
				return errors.Join(err, rbErr)
			}

			run.State = model.StateRolledBack
			logger.Info("Rollback completed")
			return err
		}
		uc.advance(ctx, run, step.next)
	}

	uc.advance(ctx, run, model.StateDone)

	if run.Options.Push {
		if err := uc.push(ctx, run); err != nil {
			return err
		}
	}

	return nil
}

func (uc *releaseUseCase) advance(ctx context.Context, run *model.ReleaseRun, next model.State) {
	ctxlog.From(ctx).Debug("State transition", "from", run.State, "to", next)
	run.State = next
}

// stepError wraps cause so that errors.Is matches both the failure kind and the cause
func stepError(kind, cause error, msg string, opts ...goerr.Option) error {
	if cause == nil {
		return goerr.Wrap(kind, msg, opts...)
	}
	return goerr.Wrap(fmt.Errorf("%w: %w", kind, cause), msg, opts...)
}
