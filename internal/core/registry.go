package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/editor-pkgs/catalog/client"
)

// Host is the discovery collaborator for one source host (GitHub, GitLab,
// BitBucket, PyPI). Implementations perform all remote I/O on behalf of the
// otherwise pure engine.
type Host interface {
	// Name returns the host identifier (e.g. "github").
	Name() string

	// Match reports whether this host serves the given repository URL.
	Match(rawurl string) bool

	// Tags enumerates version-control tags with their commit dates. The
	// date may be zero when the host API does not expose it cheaply.
	Tags(ctx context.Context, base string) ([]Tag, error)

	// ReleaseAssets lists the named artifacts attached to a tag.
	ReleaseAssets(ctx context.Context, base, tag string) ([]Asset, error)

	// Branch returns the head commit timestamp of a branch.
	Branch(ctx context.Context, base, branch string) (time.Time, error)

	// RepoInfo resolves descriptive metadata for a "details" URL.
	RepoInfo(ctx context.Context, rawurl string) (*RepoInfo, error)

	// DownloadURL returns the source archive URL for a tag or branch, or
	// "" if the host has no generated archives.
	DownloadURL(base, ref string) string

	// URLs returns the URL builder for this host.
	URLs() client.URLBuilder
}

// RepoLister is implemented by hosts that can enumerate the repositories
// behind a user or organization page URL. Channel repository entries that
// are bare user pages expand to one package per listed repository.
type RepoLister interface {
	// MatchUser reports whether the URL points at a user or organization
	// page on this host.
	MatchUser(rawurl string) bool

	// UserRepos lists the repository URLs of a user page.
	UserRepos(ctx context.Context, rawurl string) ([]string, error)
}

// Factory creates a host instance backed by the given HTTP client.
type Factory func(c *client.Client) Host

type hostFactory struct {
	name    string
	factory Factory
}

var (
	factories []hostFactory
	mu        sync.RWMutex
)

// Register adds a host factory. Hosts are tried in registration order when
// matching a URL, so registration order is part of observable behavior.
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories = append(factories, hostFactory{name: name, factory: factory})
}

// NewHosts instantiates every registered host, in registration order.
// If c is nil, client.DefaultClient() is used.
func NewHosts(c *client.Client) HostSet {
	if c == nil {
		c = client.DefaultClient()
	}

	mu.RLock()
	defer mu.RUnlock()

	hosts := make([]Host, 0, len(factories))
	for _, f := range factories {
		hosts = append(hosts, f.factory(c))
	}
	return HostSet(hosts)
}

// SupportedHosts returns all registered host names.
// Note: hosts must be imported to be registered.
func SupportedHosts() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(factories))
	for _, f := range factories {
		names = append(names, f.name)
	}
	return names
}

// HostSet is an ordered collection of hosts.
type HostSet []Host

// ForURL returns the first host claiming the URL.
func (hs HostSet) ForURL(rawurl string) (Host, error) {
	for _, h := range hs {
		if h.Match(rawurl) {
			return h, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoHost, rawurl)
}
