package semver

import (
	"regexp"

	"github.com/m-mizutani/cutrelease/pkg/domain/interfaces"
	xsemver "golang.org/x/mod/semver"
)

// Pattern is the semver.org 2.0.0 grammar, without any "v" prefix
const Pattern = `^(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)` +
	`(?:-((?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*)(?:\.(?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*))*))?` +
	`(?:\+([0-9a-zA-Z-]+(?:\.[0-9a-zA-Z-]+)*))?$`

var pattern = regexp.MustCompile(Pattern)

type validator struct{}

// New returns the semantic version collaborator
func New() interfaces.SemVer {
	return &validator{}
}

// Match reports whether v matches Pattern
func (x *validator) Match(v string) bool {
	return pattern.MatchString(v)
}

// Compare orders two versions by semver precedence. Tags such as "v1.2.3" are accepted so
// that existing tags written with a prefix still sort correctly.
func (x *validator) Compare(a, b string) int {
	return xsemver.Compare(canonical(a), canonical(b))
}

// canonical converts a version into the "v"-prefixed form golang.org/x/mod expects. Anything
// that does not match Pattern after stripping an optional "v" becomes invalid (sorts lowest).
func canonical(v string) string {
	if len(v) > 0 && v[0] == 'v' {
		v = v[1:]
	}
	if !pattern.MatchString(v) {
		return ""
	}
	return "v" + v
}
