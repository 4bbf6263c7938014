// Package bitbucket provides the source host client for bitbucket.org.
package bitbucket

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/editor-pkgs/catalog/internal/core"
)

const (
	// DefaultURL is the BitBucket REST API base.
	DefaultURL = "https://api.bitbucket.org/2.0"
	hostName   = "bitbucket"
)

func init() {
	core.Register(hostName, func(c *core.Client) core.Host {
		return New(DefaultURL, c)
	})
}

var (
	repoRE = regexp.MustCompile(`^https?://bitbucket\.org/([^/]+/[^/]+?)(?:\.git)?(/.*)?$`)
	userRE = regexp.MustCompile(`^https?://bitbucket\.org/([^/]+?)/?$`)
)

// Host is the bitbucket.org discovery client.
type Host struct {
	apiBase string
	client  *core.Client
	urls    *core.BaseURLs
}

// New creates a BitBucket host client. apiBase overrides the REST API base,
// primarily for tests; pass "" for the public API.
func New(apiBase string, c *core.Client) *Host {
	if apiBase == "" {
		apiBase = DefaultURL
	}
	if c == nil {
		c = core.DefaultClient()
	}
	h := &Host{
		apiBase: strings.TrimSuffix(apiBase, "/"),
		client:  c,
	}
	h.urls = &core.BaseURLs{
		RepositoryFn: func(userRepo string) string {
			return "https://bitbucket.org/" + userRepo
		},
		APIFn: func(userRepo, suffix string) string {
			return h.apiBase + "/repositories/" + userRepo + suffix
		},
		ArchiveFn: func(userRepo, ref string) string {
			return "https://bitbucket.org/" + userRepo + "/get/" + url.PathEscape(ref) + ".zip"
		},
	}
	return h
}

func (h *Host) Name() string {
	return hostName
}

func (h *Host) URLs() core.URLBuilder {
	return h.urls
}

// Match reports whether the URL points at a bitbucket.org repository.
func (h *Host) Match(rawurl string) bool {
	return repoRE.MatchString(rawurl)
}

func userRepo(rawurl string) (string, error) {
	m := repoRE.FindStringSubmatch(rawurl)
	if m == nil {
		return "", fmt.Errorf("%w: %s", core.ErrNoHost, rawurl)
	}
	return m[1], nil
}

// MatchUser reports whether the URL points at a user or workspace page.
func (h *Host) MatchUser(rawurl string) bool {
	return userRE.MatchString(rawurl)
}

type userReposResponse struct {
	Values []struct {
		Links struct {
			HTML struct {
				Href string `json:"href"`
			} `json:"html"`
		} `json:"links"`
	} `json:"values"`
	Next string `json:"next"`
}

// UserRepos lists the repository URLs of a user or workspace page,
// following BitBucket's cursor pagination.
func (h *Host) UserRepos(ctx context.Context, rawurl string) ([]string, error) {
	m := userRE.FindStringSubmatch(rawurl)
	if m == nil {
		return nil, fmt.Errorf("%w: %s", core.ErrNoHost, rawurl)
	}

	var repos []string
	next := h.apiBase + "/repositories/" + m[1] + "?pagelen=100"
	for next != "" {
		var resp userReposResponse
		if err := h.client.GetJSON(ctx, next, &resp); err != nil {
			return nil, err
		}
		for _, v := range resp.Values {
			repos = append(repos, v.Links.HTML.Href)
		}
		next = resp.Next
	}
	return repos, nil
}

type tagsResponse struct {
	Values []struct {
		Name   string `json:"name"`
		Target struct {
			Date time.Time `json:"date"`
		} `json:"target"`
	} `json:"values"`
}

// Tags lists repository tags with their commit dates.
func (h *Host) Tags(ctx context.Context, base string) ([]core.Tag, error) {
	slug, err := userRepo(base)
	if err != nil {
		return nil, err
	}

	var resp tagsResponse
	if err := h.client.GetJSON(ctx, h.urls.API(slug, "/refs/tags?pagelen=100"), &resp); err != nil {
		return nil, err
	}

	tags := make([]core.Tag, 0, len(resp.Values))
	for _, t := range resp.Values {
		tags = append(tags, core.Tag{Name: t.Name, Date: t.Target.Date})
	}
	return tags, nil
}

// ReleaseAssets is unsupported: BitBucket has no per-tag release artifacts.
func (h *Host) ReleaseAssets(ctx context.Context, base, tag string) ([]core.Asset, error) {
	return nil, fmt.Errorf("bitbucket: release assets for %s: %w", base, core.ErrNotFound)
}

type commitsResponse struct {
	Values []struct {
		Date time.Time `json:"date"`
	} `json:"values"`
}

// Branch returns the head commit timestamp of a branch.
func (h *Host) Branch(ctx context.Context, base, branch string) (time.Time, error) {
	slug, err := userRepo(base)
	if err != nil {
		return time.Time{}, err
	}

	var resp commitsResponse
	query := "/commits/" + url.PathEscape(branch) + "?pagelen=1"
	if err := h.client.GetJSON(ctx, h.urls.API(slug, query), &resp); err != nil {
		return time.Time{}, err
	}
	if len(resp.Values) == 0 {
		return time.Time{}, fmt.Errorf("no commits on branch %q of %s", branch, base)
	}
	return resp.Values[0].Date, nil
}

type repoResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Website     string `json:"website"`
	HasIssues   bool   `json:"has_issues"`
	Owner       struct {
		DisplayName string `json:"display_name"`
	} `json:"owner"`
	Links struct {
		HTML struct {
			Href string `json:"href"`
		} `json:"html"`
	} `json:"links"`
}

// RepoInfo resolves descriptive metadata for a repository URL.
func (h *Host) RepoInfo(ctx context.Context, rawurl string) (*core.RepoInfo, error) {
	slug, err := userRepo(rawurl)
	if err != nil {
		return nil, err
	}

	var resp repoResponse
	if err := h.client.GetJSON(ctx, h.urls.API(slug, ""), &resp); err != nil {
		return nil, err
	}

	info := &core.RepoInfo{
		Name:        resp.Name,
		Description: resp.Description,
		Author:      resp.Owner.DisplayName,
		Homepage:    resp.Website,
	}
	if info.Homepage == "" {
		info.Homepage = resp.Links.HTML.Href
	}
	if resp.HasIssues {
		info.Issues = h.urls.Repository(slug) + "/issues"
	}
	return info, nil
}

// DownloadURL returns the generated source archive for a tag or branch.
func (h *Host) DownloadURL(base, ref string) string {
	slug, err := userRepo(base)
	if err != nil {
		return ""
	}
	return h.urls.Archive(slug, ref)
}
