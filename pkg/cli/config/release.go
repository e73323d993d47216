package config

import (
	"github.com/m-mizutani/cutrelease/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Release holds release workflow configuration
type Release struct {
	DryRun       bool
	Push         bool
	StableBranch string
	DevBranch    string
	Remote       string
	RepoDir      string
	ConfigPath   string
	NoColor      bool
}

// FlagChecker reports whether a flag was set explicitly. *cli.Command satisfies it.
type FlagChecker interface {
	IsSet(name string) bool
}

// Flags returns CLI flags for release configuration
func (c *Release) Flags() []cli.Flag {
	defaults := model.DefaultReleaseConfig()

	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "dry-run",
			Aliases:     []string{"d"},
			Usage:       "Print every mutating git action instead of running it",
			Destination: &c.DryRun,
			Sources:     cli.EnvVars("CUTRELEASE_DRY_RUN"),
		},
		&cli.BoolFlag{
			Name:        "push",
			Aliases:     []string{"p"},
			Usage:       "Push the stable branch, development branch and tag after a successful release",
			Destination: &c.Push,
			Sources:     cli.EnvVars("CUTRELEASE_PUSH"),
		},
		&cli.StringFlag{
			Name:        "stable-branch",
			Usage:       "Branch releases are merged into and tagged on",
			Value:       defaults.StableBranch,
			Destination: &c.StableBranch,
			Sources:     cli.EnvVars("CUTRELEASE_STABLE_BRANCH"),
		},
		&cli.StringFlag{
			Name:        "dev-branch",
			Usage:       "Branch the release is merged back into",
			Value:       defaults.DevBranch,
			Destination: &c.DevBranch,
			Sources:     cli.EnvVars("CUTRELEASE_DEV_BRANCH"),
		},
		&cli.StringFlag{
			Name:        "remote",
			Usage:       "Remote to fast-forward from and push to (default: the only configured remote)",
			Destination: &c.Remote,
			Sources:     cli.EnvVars("CUTRELEASE_REMOTE"),
		},
		&cli.StringFlag{
			Name:        "repo",
			Usage:       "Path to the repository",
			Value:       ".",
			Destination: &c.RepoDir,
			Sources:     cli.EnvVars("CUTRELEASE_REPO"),
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Config file (TOML or YAML). Default: .cutrelease.{toml,yaml,yml} in the repository",
			Destination: &c.ConfigPath,
			Sources:     cli.EnvVars("CUTRELEASE_CONFIG"),
		},
		&cli.BoolFlag{
			Name:        "no-color",
			Usage:       "Disable colored output",
			Destination: &c.NoColor,
			Sources:     cli.EnvVars("CUTRELEASE_NO_COLOR", "NO_COLOR"),
		},
	}
}

// Build merges defaults, the config file and explicitly set flags, in increasing priority
func (c *Release) Build(flags FlagChecker) (model.ReleaseConfig, error) {
	cfg := model.DefaultReleaseConfig()

	path := c.ConfigPath
	if path == "" {
		path = FindConfigFile(c.RepoDir)
	}
	if path != "" {
		file, err := LoadFile(path)
		if err != nil {
			return cfg, err
		}
		file.apply(&cfg)
	}

	if flags.IsSet("stable-branch") || cfg.StableBranch == "" {
		cfg.StableBranch = c.StableBranch
	}
	if flags.IsSet("dev-branch") || cfg.DevBranch == "" {
		cfg.DevBranch = c.DevBranch
	}
	if flags.IsSet("remote") {
		cfg.Remote = c.Remote
	}

	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validate(cfg model.ReleaseConfig) error {
	if cfg.StableBranch == "" {
		return goerr.New("stable branch must not be empty")
	}
	if cfg.DevBranch == "" {
		return goerr.New("development branch must not be empty")
	}
	if cfg.StableBranch == cfg.DevBranch {
		return goerr.New("stable and development branches must differ", goerr.V("branch", cfg.StableBranch))
	}
	for _, f := range cfg.VersionFiles {
		if f.Path == "" || f.Pattern == "" {
			return goerr.New("version file needs both path and pattern", goerr.V("path", f.Path))
		}
	}
	return nil
}
