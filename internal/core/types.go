// Package core provides the shared catalog data model and the host system.
package core

import (
	"time"

	"github.com/editor-pkgs/catalog/internal/platform"
	"github.com/editor-pkgs/catalog/internal/selector"
)

// DateFormat is the wire format for release dates, in UTC.
const DateFormat = "2006-01-02 15:04:05"

// DefaultPyVersions is the interpreter-version set assumed when a release
// declares none.
var DefaultPyVersions = []string{"3.3"}

// ClientContext describes the execution context a release must be
// installable in. Immutable; constructed once per resolution session.
type ClientContext struct {
	// Build is the host application build number.
	Build int
	// OS and Arch identify the client platform ("osx", "arm64", ...).
	OS   string
	Arch string
	// PyVersions are the interpreter-version tags the client can load.
	PyVersions []string
	// IncludePrereleases admits pre-release versions even when stable
	// candidates exist.
	IncludePrereleases bool
}

// Platform returns the client's full platform identifier, e.g. "osx-arm64".
func (c ClientContext) Platform() string {
	return c.OS + "-" + c.Arch
}

// ReleaseKind discriminates the shapes a declared release can take. The
// kind is decided once during normalization and never re-inspected through
// ad-hoc field checks.
type ReleaseKind int

const (
	// TagRelease discovers versions by enumerating repository tags.
	TagRelease ReleaseKind = iota + 1
	// ExplicitRelease is fully self-describing: version, URL and date.
	ExplicitRelease
	// AssetRelease downloads a named artifact of a tag release instead of
	// the generated source archive.
	AssetRelease
	// BranchRelease tracks a branch head; its version derives from the
	// head commit timestamp.
	BranchRelease
)

func (k ReleaseKind) String() string {
	switch k {
	case TagRelease:
		return "tags"
	case ExplicitRelease:
		return "explicit"
	case AssetRelease:
		return "asset"
	case BranchRelease:
		return "branch"
	}
	return "unknown"
}

// ReleaseSpec is a normalized declared release. All kinds share the
// selector/platform/python-version/library envelope; the remaining fields
// are populated per kind.
type ReleaseSpec struct {
	Kind ReleaseKind

	Selector   selector.Selector
	Platforms  platform.Spec
	PyVersions []string
	Libraries  []string

	// Base is the repository URL versions are discovered from
	// (tag, asset and branch kinds).
	Base string
	// TagsAny admits every parsable tag; TagPrefix restricts discovery to
	// tags carrying a literal prefix. Mutually exclusive.
	TagsAny   bool
	TagPrefix string
	// Branch names the tracked branch (branch kind).
	Branch string
	// Asset is the artifact name template or glob (asset kind).
	Asset string
	// Version, URL and Date describe an explicit release.
	Version string
	URL     string
	Date    string
	// Sha256 is the artifact digest, mandatory for plain-http URLs.
	Sha256 string
}

// Entry is a single package or library in the catalog.
type Entry struct {
	Name          string
	IsLibrary     bool
	PreviousNames []string

	// Descriptive metadata; not load-bearing for resolution.
	Description string
	Author      string
	Homepage    string
	Issues      string

	Releases []ReleaseSpec

	// Sources lists the repository documents that defined this entry,
	// in load order. The last one won.
	Sources []string
}

// Release is a fully resolved, installable release.
type Release struct {
	Name    string
	Version string
	URL     string
	Date    string
	Sha256  string
	// Platform is the declared platform label the release was matched
	// under ("*", "osx", "osx-arm64", ...).
	Platform string
	// PyVersions are the interpreter versions the release accepts.
	PyVersions []string
	// Libraries are required library names, resolved transitively by the
	// caller.
	Libraries []string
}

// Tag is a version-control label discovered from a source host.
type Tag struct {
	Name string
	Date time.Time
}

// Asset is a named downloadable artifact attached to a tag release.
type Asset struct {
	Name string
	URL  string
	Size int64
}

// RepoInfo is descriptive metadata resolved from a "details" URL.
type RepoInfo struct {
	Name        string
	Description string
	Author      string
	Homepage    string
	Issues      string
}

// MergeRepoInfo fills empty entry metadata fields from resolved repository
// info. Explicit fields always win; only absent values are filled.
func MergeRepoInfo(e *Entry, info *RepoInfo) {
	if info == nil {
		return
	}
	if e.Name == "" {
		e.Name = info.Name
	}
	if e.Description == "" {
		e.Description = info.Description
	}
	if e.Author == "" {
		e.Author = info.Author
	}
	if e.Homepage == "" {
		e.Homepage = info.Homepage
	}
	if e.Issues == "" {
		e.Issues = info.Issues
	}
}
