package cli

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/cutrelease/pkg/cli/config"
	"github.com/m-mizutani/cutrelease/pkg/domain/interfaces"
	"github.com/m-mizutani/cutrelease/pkg/domain/model"
	"github.com/m-mizutani/cutrelease/pkg/domain/types"
	"github.com/m-mizutani/cutrelease/pkg/infra/git"
	"github.com/m-mizutani/cutrelease/pkg/infra/semver"
	"github.com/m-mizutani/cutrelease/pkg/infra/versionfile"
	"github.com/m-mizutani/cutrelease/pkg/usecase"
	"github.com/m-mizutani/cutrelease/pkg/utils/printer"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func runRelease(ctx context.Context, c *cli.Command, releaseCfg *config.Release) error {
	if c.Args().Len() != 1 {
		return goerr.New("exactly one version argument is required",
			goerr.V("usage", types.AppName+" [options] <version>"),
			goerr.V("args", c.Args().Slice()),
		)
	}
	version := c.Args().First()

	cfg, err := releaseCfg.Build(c)
	if err != nil {
		return err
	}

	var printerOpts []printer.Option
	if releaseCfg.NoColor {
		printerOpts = append(printerOpts, printer.WithColor(false))
	}
	p := printer.New(printerOpts...)

	var gitClient interfaces.GitClient = git.NewClient(releaseCfg.RepoDir, git.WithRemote(cfg.Remote))
	if releaseCfg.DryRun {
		gitClient = git.NewDryRun(gitClient, p)
	}

	versions, err := versionfile.New(releaseCfg.RepoDir, cfg.VersionFiles, versionfile.WithDryRun(releaseCfg.DryRun))
	if err != nil {
		return err
	}

	uc := usecase.NewRelease(gitClient, versions, semver.New(),
		usecase.WithConfig(cfg),
		usecase.WithReporter(p),
	)

	run := model.NewReleaseRun(model.ReleaseOptions{
		Version: version,
		DryRun:  releaseCfg.DryRun,
		Push:    releaseCfg.Push,
	})

	ctxlog.From(ctx).Debug("Release configured",
		"run_id", run.ID,
		"repo", releaseCfg.RepoDir,
		"config", cfg,
	)

	err = uc.Release(ctx, run)
	printSummary(p, run, err)
	return err
}

func printSummary(p *printer.Printer, run *model.ReleaseRun, err error) {
	version := run.Options.Version

	switch {
	case err == nil:
		p.Success("released %s", version)
		for _, cp := range run.Checkpoints() {
			p.Detail("%s: %s", cp.Name, cp.Value)
		}
		if run.Options.DryRun {
			p.Detail("dry run: the repository was not modified")
		}

	case !run.State.IsTerminal():
		// validation and guard failures stop before any mutation
		p.Failure("release %s aborted: %v", version, err)

	case run.State == model.StateDone:
		p.Failure("released %s locally, but push failed: %v", version, err)
		p.Detail("the release is intact; push the branches and tag manually")

	case run.State == model.StateRolledBack:
		p.Failure("release %s failed: %v", version, err)
		p.Detail("all changes were rolled back")

	default:
		p.Failure("release %s failed and rollback is incomplete: %v", version, err)
		p.Detail("restore the repository manually from these checkpoints:")
		for _, cp := range run.Checkpoints() {
			p.Detail("  %s: %s", cp.Name, cp.Value)
		}
	}
}
