package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/cutrelease/pkg/cli/config"
	"github.com/m-mizutani/cutrelease/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// Run runs the CLI application
func Run(ctx context.Context, args []string) error {
	var loggerCfg config.Logger
	var releaseCfg config.Release
	var logger *slog.Logger

	flags := append(loggerCfg.Flags(), releaseCfg.Flags()...)

	app := &cli.Command{
		Name:      types.AppName,
		Usage:     "Cut a release: merge into the stable branch, bump versions, tag and merge back",
		ArgsUsage: "<version>",
		Version:   types.Version,
		Flags:     flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			var err error
			logger, err = loggerCfg.Configure()
			if err != nil {
				return nil, err
			}

			slog.SetDefault(logger)
			ctx = ctxlog.With(ctx, logger)
			return ctx, nil
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runRelease(ctx, c, &releaseCfg)
		},
	}

	if err := app.Run(ctx, args); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("CLI execution failed", slog.Any("error", err))
		return err
	}

	return nil
}
