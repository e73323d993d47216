package model

// VersionFile is a tracked file holding a single-line version marker.
// Pattern must contain exactly one capture group matching the version value.
type VersionFile struct {
	Path    string `toml:"path" yaml:"path"`
	Pattern string `toml:"pattern" yaml:"pattern"`
}

// ReleaseConfig holds repository-level settings shared by every run
type ReleaseConfig struct {
	StableBranch string        // Branch releases are tagged on
	DevBranch    string        // Integration branch release changes are merged back into
	Remote       string        // Remote to push to; discovered when empty
	TagMessage   string        // Format string for the annotated tag message, %s is the version
	VersionFiles []VersionFile // Files whose markers are rewritten to the target version
}

// DefaultVersionFiles returns the markers rewritten when no config file overrides them:
// the shell config module and the package manifest.
func DefaultVersionFiles() []VersionFile {
	return []VersionFile{
		{Path: "lib/version.sh", Pattern: `(?m)^VERSION="([^"]*)"`},
		{Path: "package.json", Pattern: `"version"\s*:\s*"([^"]*)"`},
	}
}

// DefaultReleaseConfig returns the settings used without flags or a config file
func DefaultReleaseConfig() ReleaseConfig {
	return ReleaseConfig{
		StableBranch: "main",
		DevBranch:    "develop",
		TagMessage:   "Release %s",
		VersionFiles: DefaultVersionFiles(),
	}
}
