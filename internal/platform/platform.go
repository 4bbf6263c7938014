// Package platform matches declared release platforms against a client's
// operating system and architecture.
//
// Declared identifiers are "*", a bare OS ("windows", "osx", "linux") or an
// OS-arch pair ("osx-arm64", "linux-x64"). A client context matches from
// most to least specific: exact OS-arch, bare OS, wildcard.
package platform

import "strings"

// Specificity scores for tie-breaking between otherwise equal releases.
const (
	SpecificityWildcard = 0
	SpecificityOS       = 1
	SpecificityExact    = 2
)

// Spec is the ordered set of platform identifiers a release declares.
type Spec []string

// Wildcard is the default declaration, compatible with every client.
var Wildcard = Spec{"*"}

// Selectors returns the identifiers that match a client, most specific
// first: "os-arch", "os", "*".
func Selectors(os, arch string) []string {
	return []string{os + "-" + arch, os, "*"}
}

// Compatible reports whether the spec declares any identifier matching the
// client's OS and architecture.
func (s Spec) Compatible(os, arch string) bool {
	return s.Match(os, arch) != ""
}

// Match returns the most specific declared identifier matching the client,
// or "" if none does.
func (s Spec) Match(os, arch string) string {
	for _, sel := range Selectors(os, arch) {
		for _, decl := range s {
			if decl == sel {
				return sel
			}
		}
	}
	return ""
}

// Specificity scores how precisely the spec targets the client: 2 for an
// exact OS-arch match, 1 for a bare OS match, 0 for the wildcard or no
// match. Used only to break ties between releases that pass every other
// filter.
func (s Spec) Specificity(os, arch string) int {
	switch matched := s.Match(os, arch); {
	case matched == "":
		return SpecificityWildcard
	case matched == "*":
		return SpecificityWildcard
	case strings.Contains(matched, "-"):
		return SpecificityExact
	default:
		return SpecificityOS
	}
}

// IsWildcard reports whether the spec is exactly the wildcard declaration.
func (s Spec) IsWildcard() bool {
	return len(s) == 1 && s[0] == "*"
}
