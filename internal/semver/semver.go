// Package semver parses and orders release version strings.
//
// Version tags published by catalog maintainers are semantic versions with a
// few tolerated deviations: an optional literal tag prefix (e.g. "st3-"),
// omitted minor/patch components, date-based versions produced from commit
// timestamps, and pre-release suffixes that are not valid semver identifiers.
package semver

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	sv "github.com/Masterminds/semver/v3"
)

// ErrInvalidVersion is returned when a tag cannot be parsed as a version.
var ErrInvalidVersion = errors.New("invalid version")

// dateTimeRE matches versions derived from commit timestamps,
// e.g. "2020.07.15" or "2020.07.15.10.50.38".
var dateTimeRE = regexp.MustCompile(`^\d{4}\.\d{2}\.\d{2}(?:\.\d{2}\.\d{2}\.\d{2})?$`)

// Version is a parsed release version. The tag prefix, if any, is retained
// for reconstructing the original tag but takes no part in equality or
// ordering.
type Version struct {
	v       *sv.Version
	prefix  string
	tag     string
	display string
}

// Parse parses tag into a Version, stripping prefix first.
//
// If prefix is non-empty the tag must start with it or parsing fails. Date
// based tags (yyyy.mm.dd[.hh.mm.ss]) order as 0.0.1 builds with the
// timestamp as build metadata, so explicitly versioned tags always outrank
// them, but String keeps the original date text. Minor and patch components
// default to 0 when omitted.
func Parse(tag, prefix string) (Version, error) {
	body := tag
	if prefix != "" {
		if !strings.HasPrefix(tag, prefix) {
			return Version{}, fmt.Errorf("%w: tag %q does not match prefix %q", ErrInvalidVersion, tag, prefix)
		}
		body = tag[len(prefix):]
	}

	var display string
	if dateTimeRE.MatchString(body) {
		display = body
		body = "0.0.1+" + body
	}

	parsed, err := sv.NewVersion(body)
	if err != nil {
		// Tolerate pre-release suffixes that are not valid semver
		// identifiers by treating them as a dev build.
		if head, pre, ok := strings.Cut(body, "-"); ok && head != "" && pre != "" {
			if parsed, err = sv.NewVersion(head + "-dev+" + pre); err == nil {
				return Version{v: parsed, prefix: prefix, tag: tag}, nil
			}
		}
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, tag)
	}

	return Version{v: parsed, prefix: prefix, tag: tag, display: display}, nil
}

// MatchPrefix parses tag if it matches prefix, reporting whether it did.
// A non-matching or unparsable tag is not an error for callers enumerating
// remote tags, so only an ok bool is returned.
func MatchPrefix(tag, prefix string) (Version, bool) {
	v, err := Parse(tag, prefix)
	return v, err == nil
}

// Zero reports whether v is the zero Version (never produced by Parse).
func (v Version) Zero() bool {
	return v.v == nil
}

// Prefix returns the literal tag prefix stripped during parsing.
func (v Version) Prefix() string {
	return v.prefix
}

// Tag returns the original tag text, prefix included.
func (v Version) Tag() string {
	return v.tag
}

// Prerelease returns the pre-release component, or "".
func (v Version) Prerelease() string {
	return v.v.Prerelease()
}

// String renders the version without its tag prefix. Date based versions
// keep their original date text.
func (v Version) String() string {
	if v.display != "" {
		return v.display
	}
	if v.v == nil {
		return ""
	}
	s := fmt.Sprintf("%d.%d.%d", v.v.Major(), v.v.Minor(), v.v.Patch())
	if pre := v.v.Prerelease(); pre != "" {
		s += "-" + pre
	}
	if meta := v.v.Metadata(); meta != "" {
		s += "+" + meta
	}
	return s
}

// Compare returns -1, 0 or 1 depending on whether v is older than, equal to
// or newer than o. Numeric fields compare first, a version without a
// pre-release ranks above one with, pre-release identifiers compare
// component-wise with numeric identifiers sorting below alphanumeric ones,
// and build metadata is ignored. The resulting order is a strict total order
// over distinct versions.
func (v Version) Compare(o Version) int {
	return v.v.Compare(o.v)
}

// Equal reports whether two versions compare equal. Tag prefixes are not
// part of equality.
func (v Version) Equal(o Version) bool {
	return v.Compare(o) == 0
}

// LessThan reports whether v orders before o.
func (v Version) LessThan(o Version) bool {
	return v.Compare(o) < 0
}
