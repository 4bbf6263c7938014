// Package normalize builds a flat, typed catalog from the raw document
// graph: channel, repositories and their recursive includes.
//
// Normalization is tolerant by design. A malformed release, entry or
// repository is dropped with a recorded warning; it never aborts the rest
// of the catalog. The finished catalog depends only on declaration order
// within the documents, never on fetch completion timing.
package normalize

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/editor-pkgs/catalog/internal/core"
	"github.com/editor-pkgs/catalog/internal/platform"
	"github.com/editor-pkgs/catalog/internal/selector"
	"github.com/editor-pkgs/catalog/internal/semver"
)

const defaultConcurrency = 8

// Loader fetches raw catalog documents. Implementations own all transport
// concerns: retries, caching, file:// support.
type Loader interface {
	Load(ctx context.Context, url string) ([]byte, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, url string) ([]byte, error)

func (f LoaderFunc) Load(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}

// Normalizer walks raw documents into a core.Catalog.
type Normalizer struct {
	loader      Loader
	hosts       core.HostSet
	warnings    *core.Warnings
	concurrency int
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithConcurrency bounds the parallel repository fetch.
func WithConcurrency(n int) Option {
	return func(nm *Normalizer) {
		if n > 0 {
			nm.concurrency = n
		}
	}
}

// WithWarnings collects warnings into a caller-owned collector.
func WithWarnings(ws *core.Warnings) Option {
	return func(nm *Normalizer) {
		nm.warnings = ws
	}
}

// New creates a Normalizer. hosts resolve "details" metadata lookups; pass
// nil to skip metadata resolution entirely.
func New(loader Loader, hosts core.HostSet, opts ...Option) *Normalizer {
	nm := &Normalizer{
		loader:      loader,
		hosts:       hosts,
		warnings:    &core.Warnings{},
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(nm)
	}
	return nm
}

// Warnings returns the problems recorded so far.
func (n *Normalizer) Warnings() []core.Warning {
	return n.warnings.All()
}

// BuildCatalog loads the channel document, then every repository it
// references, and assembles the normalized catalog. Repository documents
// are fetched in parallel but merged strictly in declaration order.
func (n *Normalizer) BuildCatalog(ctx context.Context, channelURL string) (*core.Catalog, error) {
	repos, err := n.channelRepositories(ctx, channelURL)
	if err != nil {
		return nil, err
	}
	return n.BuildFromRepositories(ctx, repos)
}

// BuildFromRepositories assembles a catalog from repository URLs directly,
// bypassing channel indirection.
func (n *Normalizer) BuildFromRepositories(ctx context.Context, repos []string) (*core.Catalog, error) {
	cache := newDocCache(n.loader)

	// Prefetch top-level repository documents concurrently. Includes are
	// discovered during the walk and fetched on demand.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n.concurrency)
	for _, repo := range repos {
		if n.hostURL(repo) {
			continue
		}
		g.Go(func() error {
			_, _ = cache.load(gctx, repo)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cat := core.NewCatalog()
	for _, repo := range repos {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n.addRepository(ctx, cat, repo, cache)
	}
	return cat, nil
}

// channelRepositories resolves the channel document (and any included
// channels) into an ordered repository URL list.
func (n *Normalizer) channelRepositories(ctx context.Context, channelURL string) ([]string, error) {
	var repos []string
	visited := make(map[string]bool)
	stack := []string{channelURL}
	root := true

	for len(stack) > 0 {
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[u] {
			n.warnings.Add(u, "", "include cycle detected, skipping")
			continue
		}
		visited[u] = true

		isRoot := root
		root = false

		data, err := n.loader.Load(ctx, u)
		if err != nil {
			if isRoot {
				return nil, fmt.Errorf("loading channel %s: %w", u, err)
			}
			n.warnings.AddError(u, "", err)
			continue
		}

		var doc channelDocument
		if err := json.Unmarshal(stripComments(data), &doc); err != nil {
			if isRoot {
				return nil, fmt.Errorf("parsing channel %s: %w", u, err)
			}
			n.warnings.Add(u, "", "malformed channel document: %v", err)
			continue
		}
		if len(doc.SchemaVersion) == 0 {
			n.warnings.Add(u, "", `missing "schema_version" key`)
		}

		repos = append(repos, resolveURLs(u, doc.Repositories)...)

		includes := resolveURLs(u, doc.Includes)
		for i := len(includes) - 1; i >= 0; i-- {
			stack = append(stack, includes[i])
		}
	}

	return repos, nil
}

// addRepository walks one repository document and its includes, merging
// entries into the catalog. The walk is iterative with an explicit
// worklist; a URL repeated within the walk is skipped with a warning.
func (n *Normalizer) addRepository(ctx context.Context, cat *core.Catalog, repoURL string, cache *docCache) {
	visited := make(map[string]bool)
	stack := []string{repoURL}

	for len(stack) > 0 {
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[u] {
			n.warnings.Add(u, "", "include cycle detected, skipping")
			continue
		}
		visited[u] = true

		if n.hostURL(u) {
			n.addHostEntries(ctx, cat, u)
			continue
		}

		data, err := cache.load(ctx, u)
		if err != nil {
			n.warnings.Add(u, "", "repository skipped: %v", err)
			continue
		}

		var doc repositoryDocument
		if err := json.Unmarshal(stripComments(data), &doc); err != nil {
			n.warnings.Add(u, "", "malformed repository document: %v", err)
			continue
		}
		if len(doc.SchemaVersion) == 0 {
			n.warnings.Add(u, "", `missing "schema_version" key`)
		}

		for _, raw := range doc.Packages {
			if e, ok := n.normalizeEntry(ctx, u, raw, false); ok {
				cat.Add(e)
			}
		}
		for _, raw := range doc.Libraries {
			if e, ok := n.normalizeEntry(ctx, u, raw, true); ok {
				cat.Add(e)
			}
		}

		includes := resolveURLs(u, doc.Includes)
		for i := len(includes) - 1; i >= 0; i-- {
			stack = append(stack, includes[i])
		}
	}
}

// hostURL reports whether u is a source host page (a repository or a user
// page) rather than a catalog document. Document URLs keep their ".json"
// suffix even when served from a host.
func (n *Normalizer) hostURL(u string) bool {
	if n.hosts == nil || strings.HasSuffix(u, ".json") {
		return false
	}
	if _, err := n.hosts.ForURL(u); err == nil {
		return true
	}
	return n.userLister(u) != nil
}

func (n *Normalizer) userLister(u string) core.RepoLister {
	for _, h := range n.hosts {
		if lister, ok := h.(core.RepoLister); ok && lister.MatchUser(u) {
			return lister
		}
	}
	return nil
}

// addHostEntries synthesizes catalog entries for a repository list item
// that is a bare host URL. A repository URL becomes one tag-discovered
// package named through its resolved metadata; a user page becomes one
// such package per repository.
func (n *Normalizer) addHostEntries(ctx context.Context, cat *core.Catalog, u string) {
	repos := []string{u}
	if lister := n.userLister(u); lister != nil {
		var err error
		repos, err = lister.UserRepos(ctx, u)
		if err != nil {
			n.warnings.Add(u, "", "listing user repositories: %v", err)
			return
		}
	}

	for _, repo := range repos {
		raw := entryJSON{
			Details:  repo,
			Releases: []releaseJSON{{Details: repo, Tags: json.RawMessage(`true`)}},
		}
		if e, ok := n.normalizeEntry(ctx, u, raw, false); ok {
			cat.Add(e)
		}
	}
}

// normalizeEntry validates one package or library object. Metadata absent
// from the document is resolved from the entry's "details" URL; explicit
// fields always win the merge.
func (n *Normalizer) normalizeEntry(ctx context.Context, repoURL string, raw entryJSON, isLibrary bool) (*core.Entry, bool) {
	e := &core.Entry{
		Name:          raw.Name,
		IsLibrary:     isLibrary,
		PreviousNames: raw.PreviousNames,
		Description:   raw.Description,
		Author:        raw.Author.first(),
		Homepage:      raw.Homepage,
		Issues:        raw.Issues,
		Sources:       []string{repoURL},
	}

	if details := resolveURL(repoURL, raw.Details); details != "" && n.hosts != nil {
		if info, err := n.repoInfo(ctx, details); err != nil {
			n.warnings.Add(repoURL, raw.Name, "resolving details %q: %v", raw.Details, err)
		} else {
			core.MergeRepoInfo(e, info)
		}
	}

	if e.Name == "" {
		n.warnings.Add(repoURL, "", `entry without a "name" value dropped`)
		return nil, false
	}

	for _, rawRel := range raw.Releases {
		spec, err := n.normalizeRelease(repoURL, e.Name, rawRel)
		if err != nil {
			n.warnings.AddError(repoURL, e.Name, err)
			continue
		}
		e.Releases = append(e.Releases, spec)
	}

	return e, true
}

func (n *Normalizer) repoInfo(ctx context.Context, details string) (*core.RepoInfo, error) {
	host, err := n.hosts.ForURL(details)
	if err != nil {
		return nil, err
	}
	return host.RepoInfo(ctx, details)
}

// normalizeRelease validates one raw release object and decides its kind.
func (n *Normalizer) normalizeRelease(repoURL, entryName string, r releaseJSON) (core.ReleaseSpec, error) {
	var spec core.ReleaseSpec

	fail := func(field, reason string) (core.ReleaseSpec, error) {
		return core.ReleaseSpec{}, &core.ValidationError{
			Source: repoURL,
			Entry:  entryName,
			Field:  field,
			Reason: reason,
		}
	}

	// Shared envelope.
	selText := r.SublimeText
	if selText == "" {
		selText = "*"
	}
	sel, err := selector.Parse(selText)
	if err != nil {
		return fail("sublime_text", err.Error())
	}
	spec.Selector = sel

	spec.Platforms = platform.Spec(r.Platforms)
	if len(spec.Platforms) == 0 {
		spec.Platforms = platform.Wildcard
	}

	spec.PyVersions = r.PythonVersions
	if len(spec.PyVersions) == 0 {
		spec.PyVersions = core.DefaultPyVersions
	}

	spec.Libraries = r.libraryNames()
	spec.Sha256 = r.Sha256

	tagsAny, tagPrefix, tagsPresent, err := r.tagsFilter()
	if err != nil {
		return fail("tags", err.Error())
	}

	// Explicit release: a literal url makes version and date mandatory and
	// discovery keys illegal.
	if r.URL != "" {
		if tagsPresent {
			return fail("tags", `illegal for a release with an explicit "url"`)
		}
		if r.Version == "" {
			return fail("version", `missing for a release with an explicit "url"`)
		}
		if _, err := semver.Parse(r.Version, ""); err != nil {
			return fail("version", err.Error())
		}
		if r.Date == "" {
			return fail("date", `missing for a release with an explicit "url"`)
		}
		if _, err := time.Parse(core.DateFormat, r.Date); err != nil {
			return fail("date", fmt.Sprintf("must be YYYY-MM-DD HH:MM:SS UTC: %v", err))
		}

		resolved := resolveURL(repoURL, r.URL)
		if resolved == "" {
			return fail("url", "unresolvable")
		}
		if parsed, err := url.Parse(resolved); err == nil && parsed.Scheme == "http" && r.Sha256 == "" {
			return fail("sha256", `required for a non-secure "url"`)
		}

		spec.Kind = core.ExplicitRelease
		spec.Version = r.Version
		spec.URL = resolved
		spec.Date = r.Date
		return spec, nil
	}

	// Discovered release: version identity comes from the base repository.
	base := r.Base
	if base == "" {
		base = r.Details
	}
	if base == "" {
		return fail("base", `missing "base" or "details" for a discovered release`)
	}
	base = resolveURL(repoURL, base)
	if base == "" {
		return fail("base", "unresolvable")
	}
	spec.Base = base
	spec.TagsAny = tagsAny
	spec.TagPrefix = tagPrefix

	switch {
	case r.Asset != "":
		if r.Branch != "" {
			return fail("asset", "illegal for a branch based release")
		}
		if !tagsPresent {
			return fail("asset", `requires a "tags" key for version discovery`)
		}
		spec.Kind = core.AssetRelease
		spec.Asset = r.Asset
	case tagsPresent:
		spec.Kind = core.TagRelease
	case r.Branch != "":
		spec.Kind = core.BranchRelease
		spec.Branch = r.Branch
	default:
		return fail("releases", `missing "tags", "branch" or "url" key`)
	}

	return spec, nil
}

// docCache memoizes document loads across the repository walks of one
// build, so a document included from several places is fetched once.
type docCache struct {
	loader Loader
	mu     sync.Mutex
	docs   map[string]cachedDoc
}

type cachedDoc struct {
	data []byte
	err  error
}

func newDocCache(loader Loader) *docCache {
	return &docCache{
		loader: loader,
		docs:   make(map[string]cachedDoc),
	}
}

func (c *docCache) load(ctx context.Context, url string) ([]byte, error) {
	c.mu.Lock()
	if doc, ok := c.docs[url]; ok {
		c.mu.Unlock()
		return doc.data, doc.err
	}
	c.mu.Unlock()

	data, err := c.loader.Load(ctx, url)

	c.mu.Lock()
	c.docs[url] = cachedDoc{data: data, err: err}
	c.mu.Unlock()
	return data, err
}
