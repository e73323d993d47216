package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/cutrelease/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var configFileNames = []string{".cutrelease.toml", ".cutrelease.yaml", ".cutrelease.yml"}

// File models the on-disk config file schema
type File struct {
	StableBranch string              `toml:"stable_branch" yaml:"stable_branch"`
	DevBranch    string              `toml:"dev_branch" yaml:"dev_branch"`
	Remote       string              `toml:"remote" yaml:"remote"`
	TagMessage   string              `toml:"tag_message" yaml:"tag_message"`
	VersionFiles []model.VersionFile `toml:"version_files" yaml:"version_files"`
}

// FindConfigFile returns the first default config file present in repoDir, or an empty string
func FindConfigFile(repoDir string) string {
	for _, name := range configFileNames {
		path := filepath.Join(repoDir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// LoadFile reads a TOML or YAML config file, chosen by extension
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
	}

	var file File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &file); err != nil {
			return nil, goerr.Wrap(err, "failed to parse TOML config", goerr.V("path", path))
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, goerr.Wrap(err, "failed to parse YAML config", goerr.V("path", path))
		}
	default:
		return nil, goerr.New("unsupported config file extension", goerr.V("path", path))
	}

	return &file, nil
}

func (f *File) apply(cfg *model.ReleaseConfig) {
	if f.StableBranch != "" {
		cfg.StableBranch = f.StableBranch
	}
	if f.DevBranch != "" {
		cfg.DevBranch = f.DevBranch
	}
	if f.Remote != "" {
		cfg.Remote = f.Remote
	}
	if f.TagMessage != "" {
		cfg.TagMessage = f.TagMessage
	}
	if len(f.VersionFiles) > 0 {
		cfg.VersionFiles = f.VersionFiles
	}
}
