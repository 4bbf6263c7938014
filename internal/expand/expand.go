// Package expand substitutes release variables into asset-name templates and
// matches the result against the catalog's glob syntax.
package expand

import (
	"regexp"
	"strings"
)

// Vars holds the values substituted into an asset template.
type Vars struct {
	Platform  string // declared platform identifier, or "any" for wildcard
	Build     string // selector lower bound, or "any" for the wildcard
	PyVersion string // interpreter version with separators removed, e.g. "38"
	Version   string // resolved version without its tag prefix
}

// Expand substitutes ${platform}, ${st_build}, ${py_version} and ${version}
// in a single left-to-right pass. Unknown ${...} tokens are kept literal so
// they can still participate in glob matching.
func Expand(template string, vars Vars) string {
	var b strings.Builder
	b.Grow(len(template))

	for {
		start := strings.Index(template, "${")
		if start < 0 {
			b.WriteString(template)
			return b.String()
		}
		end := strings.Index(template[start:], "}")
		if end < 0 {
			b.WriteString(template)
			return b.String()
		}
		end += start

		b.WriteString(template[:start])
		switch template[start+2 : end] {
		case "platform":
			b.WriteString(vars.Platform)
		case "st_build":
			b.WriteString(vars.Build)
		case "py_version":
			b.WriteString(vars.PyVersion)
		case "version":
			b.WriteString(vars.Version)
		default:
			b.WriteString(template[start : end+1])
		}
		template = template[end+1:]
	}
}

// HasPlatform reports whether the template fans out per declared platform.
func HasPlatform(template string) bool {
	return strings.Contains(template, "${platform}")
}

// HasPyVersion reports whether the template fans out per python version.
func HasPyVersion(template string) bool {
	return strings.Contains(template, "${py_version}")
}

// PyVersionToken renders an interpreter version for ${py_version}
// substitution, removing separators: "3.8" becomes "38".
func PyVersionToken(version string) string {
	return strings.Map(func(r rune) rune {
		if r == '.' || r == '-' || r == '_' {
			return -1
		}
		return r
	}, version)
}

// GlobMatch reports whether candidate matches pattern. "*" matches zero or
// more characters and "?" matches exactly one; matching is case-sensitive
// and anchored at both ends.
func GlobMatch(pattern, candidate string) bool {
	quoted := regexp.QuoteMeta(pattern)
	quoted = strings.ReplaceAll(quoted, `\*`, `.*`)
	quoted = strings.ReplaceAll(quoted, `\?`, `.`)
	re, err := regexp.Compile(`^` + quoted + `$`)
	if err != nil {
		return false
	}
	return re.MatchString(candidate)
}
