// Package resolve selects the best installable release for a client context
// from an entry's declared release specs.
//
// Selection is pure given the discovery results. All remote lookups go
// through a Session, which memoizes tag, asset and branch queries so that
// resolving many entries against the same repositories performs each remote
// call once.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/editor-pkgs/catalog/internal/core"
	"github.com/editor-pkgs/catalog/internal/expand"
	"github.com/editor-pkgs/catalog/internal/selector"
	"github.com/editor-pkgs/catalog/internal/semver"
)

// ErrNoRelease is returned when no declared release is compatible with the
// client context.
var ErrNoRelease = errors.New("no compatible release")

// branchVersionFormat renders a branch head timestamp as a date-based
// version tag.
const branchVersionFormat = "2006.01.02.15.04.05"

// Session memoizes host discovery for the duration of one resolution run.
// Safe for concurrent use.
type Session struct {
	hosts    core.HostSet
	warnings *core.Warnings

	sf       singleflight.Group
	mu       sync.Mutex
	tags     map[string][]core.Tag
	assets   map[string][]core.Asset
	branches map[string]time.Time
}

// NewSession creates a resolution session over the given hosts. Pass nil
// warnings to let the session own its collector.
func NewSession(hosts core.HostSet, warnings *core.Warnings) *Session {
	if warnings == nil {
		warnings = &core.Warnings{}
	}
	return &Session{
		hosts:    hosts,
		warnings: warnings,
		tags:     make(map[string][]core.Tag),
		assets:   make(map[string][]core.Asset),
		branches: make(map[string]time.Time),
	}
}

// Warnings returns the discovery problems recorded so far.
func (s *Session) Warnings() []core.Warning {
	return s.warnings.All()
}

func (s *Session) tagsFor(ctx context.Context, host core.Host, base string) ([]core.Tag, error) {
	s.mu.Lock()
	if tags, ok := s.tags[base]; ok {
		s.mu.Unlock()
		return tags, nil
	}
	s.mu.Unlock()

	v, err, _ := s.sf.Do("tags\x00"+base, func() (any, error) {
		tags, err := host.Tags(ctx, base)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.tags[base] = tags
		s.mu.Unlock()
		return tags, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]core.Tag), nil
}

func (s *Session) assetsFor(ctx context.Context, host core.Host, base, tag string) ([]core.Asset, error) {
	key := base + "\x00" + tag

	s.mu.Lock()
	if assets, ok := s.assets[key]; ok {
		s.mu.Unlock()
		return assets, nil
	}
	s.mu.Unlock()

	v, err, _ := s.sf.Do("assets\x00"+key, func() (any, error) {
		assets, err := host.ReleaseAssets(ctx, base, tag)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.assets[key] = assets
		s.mu.Unlock()
		return assets, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]core.Asset), nil
}

func (s *Session) branchHead(ctx context.Context, host core.Host, base, branch string) (time.Time, error) {
	key := base + "\x00" + branch

	s.mu.Lock()
	if date, ok := s.branches[key]; ok {
		s.mu.Unlock()
		return date, nil
	}
	s.mu.Unlock()

	v, err, _ := s.sf.Do("branch\x00"+key, func() (any, error) {
		date, err := host.Branch(ctx, base, branch)
		if err != nil {
			return time.Time{}, err
		}
		s.mu.Lock()
		s.branches[key] = date
		s.mu.Unlock()
		return date, nil
	})
	if err != nil {
		return time.Time{}, err
	}
	return v.(time.Time), nil
}

// candidate pairs an installable release with its ordering keys.
type candidate struct {
	release     core.Release
	version     semver.Version
	specificity int
	order       int
}

// Select resolves the single best release of e for the client context.
//
// Declared specs are filtered by build selector, platform and interpreter
// version, then materialized into concrete candidates. Discovery failures
// skip the affected spec with a recorded warning; they never fail entries
// whose other specs still resolve. Pre-release candidates are excluded when
// any stable candidate exists, unless the context opts in. Among equal
// versions the more platform-specific declaration wins, then the earlier
// one.
func Select(ctx context.Context, s *Session, e *core.Entry, cctx core.ClientContext) (*core.Release, error) {
	clientPys := cctx.PyVersions
	if len(clientPys) == 0 {
		clientPys = core.DefaultPyVersions
	}

	var candidates []candidate
	for i, spec := range e.Releases {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !spec.Selector.Match(cctx.Build) {
			continue
		}
		matched := spec.Platforms.Match(cctx.OS, cctx.Arch)
		if matched == "" {
			continue
		}
		if !selector.Intersects(spec.PyVersions, clientPys) {
			continue
		}

		found, err := s.materialize(ctx, e.Name, spec, matched, cctx, clientPys)
		if err != nil {
			s.warnings.AddError(spec.Base, e.Name, err)
			continue
		}
		for _, c := range found {
			c.order = i
			candidates = append(candidates, c)
		}
	}

	candidates = dropPrereleases(candidates, cctx.IncludePrereleases)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%s: %w", e.Name, ErrNoRelease)
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if better(c, best) {
			best = c
		}
	}
	return &best.release, nil
}

// better reports whether a should be selected over b: newer version first,
// then more specific platform declaration, then earlier declaration.
func better(a, b candidate) bool {
	switch cmp := a.version.Compare(b.version); {
	case cmp != 0:
		return cmp > 0
	case a.specificity != b.specificity:
		return a.specificity > b.specificity
	default:
		return a.order < b.order
	}
}

// dropPrereleases removes pre-release candidates when a stable one exists.
func dropPrereleases(candidates []candidate, includePrereleases bool) []candidate {
	if includePrereleases {
		return candidates
	}
	stable := candidates[:0:0]
	for _, c := range candidates {
		if c.version.Prerelease() == "" {
			stable = append(stable, c)
		}
	}
	if len(stable) == 0 {
		return candidates
	}
	return stable
}

// materialize turns one declared spec into zero or more concrete candidates.
func (s *Session) materialize(ctx context.Context, name string, spec core.ReleaseSpec, matched string, cctx core.ClientContext, clientPys []string) ([]candidate, error) {
	specificity := spec.Platforms.Specificity(cctx.OS, cctx.Arch)

	base := func(version semver.Version) candidate {
		return candidate{
			release: core.Release{
				Name:       name,
				Version:    version.String(),
				Sha256:     spec.Sha256,
				Platform:   matched,
				PyVersions: spec.PyVersions,
				Libraries:  spec.Libraries,
			},
			version:     version,
			specificity: specificity,
		}
	}

	switch spec.Kind {
	case core.ExplicitRelease:
		v, err := semver.Parse(spec.Version, "")
		if err != nil {
			return nil, err
		}
		c := base(v)
		c.release.URL = spec.URL
		c.release.Date = spec.Date
		return []candidate{c}, nil

	case core.TagRelease:
		host, err := s.hosts.ForURL(spec.Base)
		if err != nil {
			return nil, err
		}
		tags, err := s.tagsFor(ctx, host, spec.Base)
		if err != nil {
			return nil, fmt.Errorf("listing tags: %w", err)
		}

		var out []candidate
		for _, t := range tags {
			v, ok := semver.MatchPrefix(t.Name, spec.TagPrefix)
			if !ok {
				continue
			}
			url := host.DownloadURL(spec.Base, t.Name)
			if url == "" {
				continue
			}
			c := base(v)
			c.release.URL = url
			if !t.Date.IsZero() {
				c.release.Date = t.Date.UTC().Format(core.DateFormat)
			}
			out = append(out, c)
		}
		return out, nil

	case core.AssetRelease:
		return s.materializeAssets(ctx, spec, base, cctx, clientPys)

	case core.BranchRelease:
		host, err := s.hosts.ForURL(spec.Base)
		if err != nil {
			return nil, err
		}
		head, err := s.branchHead(ctx, host, spec.Base, spec.Branch)
		if err != nil {
			return nil, fmt.Errorf("resolving branch %q: %w", spec.Branch, err)
		}
		url := host.DownloadURL(spec.Base, spec.Branch)
		if url == "" {
			return nil, fmt.Errorf("host has no archives for %s", spec.Base)
		}
		v, err := semver.Parse(head.UTC().Format(branchVersionFormat), "")
		if err != nil {
			return nil, err
		}
		c := base(v)
		c.release.URL = url
		c.release.Date = head.UTC().Format(core.DateFormat)
		return []candidate{c}, nil
	}

	return nil, fmt.Errorf("unknown release kind %v", spec.Kind)
}

// materializeAssets resolves an asset release. Matching tags are tried from
// newest to oldest; the first tag carrying an artifact that matches the
// expanded template wins.
func (s *Session) materializeAssets(ctx context.Context, spec core.ReleaseSpec, base func(semver.Version) candidate, cctx core.ClientContext, clientPys []string) ([]candidate, error) {
	host, err := s.hosts.ForURL(spec.Base)
	if err != nil {
		return nil, err
	}
	tags, err := s.tagsFor(ctx, host, spec.Base)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}

	var versions []semver.Version
	for _, t := range tags {
		if v, ok := semver.MatchPrefix(t.Name, spec.TagPrefix); ok {
			versions = append(versions, v)
		}
	}
	// Newest first, so the common case fetches one asset list.
	for i := 0; i < len(versions); i++ {
		for j := i + 1; j < len(versions); j++ {
			if versions[i].LessThan(versions[j]) {
				versions[i], versions[j] = versions[j], versions[i]
			}
		}
	}

	// ${platform} expands to the declared identifier the client matched,
	// since artifacts are named for what the release declares.
	platformVar := spec.Platforms.Match(cctx.OS, cctx.Arch)
	if platformVar == "*" {
		platformVar = "any"
	}

	pys := intersect(spec.PyVersions, clientPys)
	if !expand.HasPyVersion(spec.Asset) {
		pys = pys[:1]
	}

	for _, v := range versions {
		assets, err := s.assetsFor(ctx, host, spec.Base, v.Tag())
		if err != nil {
			return nil, fmt.Errorf("listing assets of %q: %w", v.Tag(), err)
		}

		var out []candidate
		for _, py := range pys {
			pattern := expand.Expand(spec.Asset, expand.Vars{
				Platform:  platformVar,
				Build:     spec.Selector.LowerBound(),
				PyVersion: expand.PyVersionToken(py),
				Version:   v.String(),
			})
			for _, a := range assets {
				if !expand.GlobMatch(pattern, a.Name) {
					continue
				}
				c := base(v)
				c.release.URL = a.URL
				out = append(out, c)
			}
		}
		if len(out) > 0 {
			return out, nil
		}
	}
	return nil, nil
}

// intersect returns the accepted values the client offers, in declared
// order.
func intersect(accepted, offered []string) []string {
	out := make([]string, 0, len(accepted))
	for _, a := range accepted {
		for _, o := range offered {
			if a == o {
				out = append(out, a)
				break
			}
		}
	}
	return out
}
