package versionfile

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/cutrelease/pkg/domain/interfaces"
	"github.com/m-mizutani/cutrelease/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

type marker struct {
	path    string
	pattern *regexp.Regexp
}

type store struct {
	root    string
	markers []marker
	dryRun  bool
}

// Option is a functional option for the version store
type Option func(*store)

// WithDryRun makes Update report changes without writing any file
func WithDryRun(dryRun bool) Option {
	return func(s *store) {
		s.dryRun = dryRun
	}
}

// New creates a version store rooted at the repository root. Every pattern must compile and
// contain exactly one capture group.
func New(root string, files []model.VersionFile, opts ...Option) (interfaces.VersionStore, error) {
	s := &store{root: root}
	for _, opt := range opts {
		opt(s)
	}

	for _, f := range files {
		re, err := regexp.Compile(f.Pattern)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid version marker pattern",
				goerr.V("path", f.Path),
				goerr.V("pattern", f.Pattern),
			)
		}
		if re.NumSubexp() != 1 {
			return nil, goerr.New("version marker pattern must have exactly one capture group",
				goerr.V("path", f.Path),
				goerr.V("pattern", f.Pattern),
				goerr.V("groups", re.NumSubexp()),
			)
		}
		s.markers = append(s.markers, marker{path: f.Path, pattern: re})
	}

	return s, nil
}

// Update rewrites the value portion of each marker. Missing files and files without a marker
// are skipped with a warning.
func (s *store) Update(ctx context.Context, version string) ([]string, error) {
	logger := ctxlog.From(ctx)

	var changed []string
	for _, m := range s.markers {
		fullPath := filepath.Join(s.root, m.path)

		info, err := os.Stat(fullPath)
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("Version file not found, skipping", "path", m.path)
			continue
		}
		if err != nil {
			return changed, goerr.Wrap(err, "failed to stat version file", goerr.V("path", m.path))
		}

		content, err := os.ReadFile(fullPath)
		if err != nil {
			return changed, goerr.Wrap(err, "failed to read version file", goerr.V("path", m.path))
		}

		updated, current, found := Rewrite(content, m.pattern, version)
		if !found {
			logger.Warn("Version marker not found, skipping", "path", m.path, "pattern", m.pattern.String())
			continue
		}
		if current == version {
			logger.Debug("Version marker already up to date", "path", m.path, "version", version)
			continue
		}

		logger.Info("Rewriting version marker",
			"path", m.path,
			"from", current,
			"to", version,
			"dry_run", s.dryRun,
		)

		if !s.dryRun {
			if err := os.WriteFile(fullPath, updated, info.Mode().Perm()); err != nil {
				return changed, goerr.Wrap(err, "failed to write version file", goerr.V("path", m.path))
			}
		}
		changed = append(changed, m.path)
	}

	return changed, nil
}

// Rewrite replaces the first capture group of the first match of pattern with version. It
// returns the new content, the previous value, and whether a marker was found. Content
// outside the capture group is preserved byte for byte.
func Rewrite(content []byte, pattern *regexp.Regexp, version string) ([]byte, string, bool) {
	loc := pattern.FindSubmatchIndex(content)
	if loc == nil || len(loc) < 4 || loc[2] < 0 {
		return content, "", false
	}

	start, end := loc[2], loc[3]
	current := string(content[start:end])

	out := make([]byte, 0, len(content)-(end-start)+len(version))
	out = append(out, content[:start]...)
	out = append(out, version...)
	out = append(out, content[end:]...)
	return out, current, true
}
