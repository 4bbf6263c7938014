// Package catalog loads package catalogs for an extensible text editor and
// resolves the best installable release of each package for a client.
//
// A catalog starts from a channel document listing repository documents.
// Repositories declare packages and libraries, whose releases are either
// fully explicit or discovered from a source host (GitHub, GitLab,
// BitBucket, PyPI) through tags, release assets or branch heads.
//
// Basic usage:
//
//	import (
//		"context"
//		"github.com/editor-pkgs/catalog"
//		_ "github.com/editor-pkgs/catalog/all"
//	)
//
//	cat, warnings, err := catalog.Load(context.Background(),
//		"https://packagecontrol.io/channel_v4.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	session := catalog.NewSession(catalog.NewHosts(nil))
//	release, err := catalog.Resolve(context.Background(), session, cat,
//		"Alignment", catalog.ClientContext{Build: 4149, OS: "osx", Arch: "arm64"})
//
// Host support is registered by import, so blank-import the all subpackage
// (or individual hosts) before loading.
package catalog

import (
	"context"
	"sync"

	"github.com/editor-pkgs/catalog/client"
	"github.com/editor-pkgs/catalog/fetch"
	"github.com/editor-pkgs/catalog/internal/core"
	"github.com/editor-pkgs/catalog/internal/normalize"
	"github.com/editor-pkgs/catalog/internal/resolve"
)

// Re-export types from internal/core
type (
	// Catalog is the normalized set of packages and libraries.
	Catalog = core.Catalog

	// Entry is a single package or library.
	Entry = core.Entry

	// ReleaseSpec is a declared release before resolution.
	ReleaseSpec = core.ReleaseSpec

	// Release is a resolved, installable release.
	Release = core.Release

	// ClientContext describes the client a release must be installable in.
	ClientContext = core.ClientContext

	// Warning is a recorded, non-fatal catalog problem.
	Warning = core.Warning

	// Host is a source host discovery client.
	Host = core.Host

	// HostSet is an ordered collection of hosts.
	HostSet = core.HostSet

	// RepoLister is an optional Host capability: enumerating the
	// repositories behind a user or organization page URL.
	RepoLister = core.RepoLister

	// Tag is a version-control label discovered from a host.
	Tag = core.Tag

	// Asset is a downloadable artifact attached to a tag.
	Asset = core.Asset

	// RepoInfo is metadata resolved from a "details" URL.
	RepoInfo = core.RepoInfo
)

// Re-export types from client
type (
	// Client is an HTTP client with retry logic for host APIs.
	Client = client.Client

	// URLBuilder constructs URLs for a host.
	URLBuilder = client.URLBuilder
)

// Re-export release kinds
const (
	TagRelease      = core.TagRelease
	ExplicitRelease = core.ExplicitRelease
	AssetRelease    = core.AssetRelease
	BranchRelease   = core.BranchRelease
)

// Re-export errors
var (
	ErrNotFound     = client.ErrNotFound
	ErrNoHost       = core.ErrNoHost
	ErrUnknownEntry = core.ErrUnknownEntry
	ErrNoRelease    = resolve.ErrNoRelease
)

// Error types
type (
	HTTPError         = client.HTTPError
	RateLimitError    = client.RateLimitError
	UnknownEntryError = core.UnknownEntryError
	ValidationError   = core.ValidationError
)

// DefaultClient returns a client with sensible defaults:
// - 30s timeout
// - 5 retries with exponential backoff
// - Retry on 429 and 5xx responses
func DefaultClient() *Client {
	return client.DefaultClient()
}

// NewClient creates a new client with the given options.
func NewClient(opts ...Option) *Client {
	return client.NewClient(opts...)
}

// Option configures a Client.
type Option = client.Option

// WithTimeout sets the HTTP client timeout.
var WithTimeout = client.WithTimeout

// WithMaxRetries sets the maximum number of retries.
var WithMaxRetries = client.WithMaxRetries

// NewHosts instantiates every registered host.
// If c is nil, DefaultClient() is used.
func NewHosts(c *Client) HostSet {
	return core.NewHosts(c)
}

// SupportedHosts returns all registered host names.
// Note: hosts must be imported to be registered.
func SupportedHosts() []string {
	return core.SupportedHosts()
}

// Loader fetches raw catalog documents. The default loader handles http(s)
// URLs, file:// URLs and bare filesystem paths.
type Loader = normalize.Loader

// Session memoizes host discovery across resolutions. Create one per
// catalog refresh and share it between Resolve calls.
type Session = resolve.Session

// NewSession creates a resolution session over the given hosts.
func NewSession(hosts HostSet) *Session {
	return resolve.NewSession(hosts, nil)
}

// loadConfig collects Load options.
type loadConfig struct {
	client      *Client
	loader      Loader
	hosts       HostSet
	hostsSet    bool
	concurrency int
}

// LoadOption configures Load.
type LoadOption func(*loadConfig)

// WithClient sets the HTTP client used for host API calls.
func WithClient(c *Client) LoadOption {
	return func(cfg *loadConfig) {
		cfg.client = c
	}
}

// WithLoader replaces the document loader.
func WithLoader(l Loader) LoadOption {
	return func(cfg *loadConfig) {
		cfg.loader = l
	}
}

// WithHosts replaces the host set used for metadata resolution. Pass nil to
// skip "details" lookups entirely.
func WithHosts(hosts HostSet) LoadOption {
	return func(cfg *loadConfig) {
		cfg.hosts = hosts
		cfg.hostsSet = true
	}
}

// WithConcurrency bounds the parallel repository document fetch.
func WithConcurrency(n int) LoadOption {
	return func(cfg *loadConfig) {
		cfg.concurrency = n
	}
}

func newNormalizer(opts []LoadOption) *normalize.Normalizer {
	cfg := &loadConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.loader == nil {
		cfg.loader = fetch.NewDocumentLoader(
			fetch.NewCircuitBreakerFetcher(fetch.NewFetcher()))
	}
	if !cfg.hostsSet {
		cfg.hosts = core.NewHosts(cfg.client)
	}

	var nopts []normalize.Option
	if cfg.concurrency > 0 {
		nopts = append(nopts, normalize.WithConcurrency(cfg.concurrency))
	}
	return normalize.New(cfg.loader, cfg.hosts, nopts...)
}

// Load builds a catalog from a channel URL. Problems with individual
// repositories, entries or releases are returned as warnings; only a failure
// to load the channel itself is an error.
func Load(ctx context.Context, channelURL string, opts ...LoadOption) (*Catalog, []Warning, error) {
	n := newNormalizer(opts)
	cat, err := n.BuildCatalog(ctx, channelURL)
	return cat, n.Warnings(), err
}

// LoadRepositories builds a catalog directly from repository URLs,
// bypassing channel indirection.
func LoadRepositories(ctx context.Context, repoURLs []string, opts ...LoadOption) (*Catalog, []Warning, error) {
	n := newNormalizer(opts)
	cat, err := n.BuildFromRepositories(ctx, repoURLs)
	return cat, n.Warnings(), err
}

// Resolve selects the best installable release of the named entry for the
// client context. The name may be a previous name of the entry.
//
// An entry with no release compatible with the context is not broken, just
// unavailable for that client; this case is reported as ErrNoRelease so
// callers can separate it from lookup and discovery failures with errors.Is.
func Resolve(ctx context.Context, s *Session, cat *Catalog, name string, cctx ClientContext) (*Release, error) {
	e, ok := cat.Get(name)
	if !ok {
		return nil, &UnknownEntryError{Name: name}
	}
	return resolve.Select(ctx, s, e, cctx)
}

// ResolveAll resolves multiple entries in parallel.
// Individual resolution errors are silently ignored - those entries are
// omitted from results. Returns a map of entry name to Release.
func ResolveAll(ctx context.Context, s *Session, cat *Catalog, names []string, cctx ClientContext) map[string]*Release {
	return ResolveAllWithConcurrency(ctx, s, cat, names, cctx, 10)
}

// ResolveAllWithConcurrency resolves entries with a custom concurrency limit.
func ResolveAllWithConcurrency(ctx context.Context, s *Session, cat *Catalog, names []string, cctx ClientContext, concurrency int) map[string]*Release {
	if concurrency < 1 {
		concurrency = 1
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]*Release)
		sem     = make(chan struct{}, concurrency)
	)

	for _, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			rel, err := Resolve(ctx, s, cat, name, cctx)
			if err != nil {
				return
			}

			mu.Lock()
			results[name] = rel
			mu.Unlock()
		}()
	}

	wg.Wait()
	return results
}

// Download fetches a resolved release archive and verifies its SHA-256
// digest when the release declares one.
func Download(ctx context.Context, f fetch.FetcherInterface, rel *Release) ([]byte, error) {
	return fetch.Download(ctx, f, rel.URL, rel.Sha256)
}
