// Package github provides the source host client for github.com.
package github

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
	// DefaultURL is the GitHub REST API base.
	DefaultURL = "https://api.github.com"
	hostName   = "github"
	pageSize   = 100
)

func init() {
	core.Register(hostName, func(c *core.Client) core.Host {
		return New(DefaultURL, c)
	})
}

var (
	repoRE = regexp.MustCompile(`^https?://github\.com/([^/]+/[^/]+?)(?:\.git)?(/.*)?$`)
	userRE = regexp.MustCompile(`^https?://github\.com/([^/]+?)/?$`)
)

// Host is the github.com discovery client.
type Host struct {
	apiBase string
	client  *core.Client
	urls    *core.BaseURLs
}

// New creates a GitHub host client. apiBase overrides the REST API base,
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
			return "https://github.com/" + userRepo
		},
		APIFn: func(userRepo, suffix string) string {
			return h.apiBase + "/repos/" + userRepo + suffix
		},
		ArchiveFn: func(userRepo, ref string) string {
			return "https://codeload.github.com/" + userRepo + "/zip/" + url.PathEscape(ref)
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

// Match reports whether the URL points at a github.com repository.
func (h *Host) Match(rawurl string) bool {
	return repoRE.MatchString(rawurl)
}

// userRepo extracts the "user/repo" slug from a repository URL.
func userRepo(rawurl string) (string, error) {
	m := repoRE.FindStringSubmatch(rawurl)
	if m == nil {
		return "", fmt.Errorf("%w: %s", core.ErrNoHost, rawurl)
	}
	return m[1], nil
}

type tagInfo struct {
	Name string `json:"name"`
}

// Tags lists repository tags, following pagination so that repositories
// with long histories keep their old tags. The GitHub tags endpoint does
// not expose commit dates, so Tag.Date is zero.
func (h *Host) Tags(ctx context.Context, base string) ([]core.Tag, error) {
	slug, err := userRepo(base)
	if err != nil {
		return nil, err
	}

	var tags []core.Tag
	for page := 1; ; page++ {
		var raw []tagInfo
		query := fmt.Sprintf("/tags?per_page=%d&page=%d", pageSize, page)
		if err := h.client.GetJSON(ctx, h.urls.API(slug, query), &raw); err != nil {
			return nil, err
		}
		for _, t := range raw {
			tags = append(tags, core.Tag{Name: t.Name})
		}
		if len(raw) < pageSize {
			return tags, nil
		}
	}
}

// MatchUser reports whether the URL points at a user or organization page.
func (h *Host) MatchUser(rawurl string) bool {
	return userRE.MatchString(rawurl)
}

type userRepoInfo struct {
	HTMLURL string `json:"html_url"`
}

// UserRepos lists the repository URLs of a user or organization page.
func (h *Host) UserRepos(ctx context.Context, rawurl string) ([]string, error) {
	m := userRE.FindStringSubmatch(rawurl)
	if m == nil {
		return nil, fmt.Errorf("%w: %s", core.ErrNoHost, rawurl)
	}

	var repos []string
	for page := 1; ; page++ {
		var raw []userRepoInfo
		u := fmt.Sprintf("%s/users/%s/repos?per_page=%d&page=%d",
			h.apiBase, url.PathEscape(m[1]), pageSize, page)
		if err := h.client.GetJSON(ctx, u, &raw); err != nil {
			return nil, err
		}
		for _, r := range raw {
			repos = append(repos, r.HTMLURL)
		}
		if len(raw) < pageSize {
			return repos, nil
		}
	}
}

type releaseInfo struct {
	TagName     string    `json:"tag_name"`
	PublishedAt time.Time `json:"published_at"`
	Assets      []struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
		Size               int64  `json:"size"`
	} `json:"assets"`
}

// ReleaseAssets lists the artifacts attached to a tag's release.
func (h *Host) ReleaseAssets(ctx context.Context, base, tag string) ([]core.Asset, error) {
	slug, err := userRepo(base)
	if err != nil {
		return nil, err
	}

	var rel releaseInfo
	if err := h.client.GetJSON(ctx, h.urls.API(slug, "/releases/tags/"+url.PathEscape(tag)), &rel); err != nil {
		return nil, err
	}

	assets := make([]core.Asset, 0, len(rel.Assets))
	for _, a := range rel.Assets {
		assets = append(assets, core.Asset{Name: a.Name, URL: a.BrowserDownloadURL, Size: a.Size})
	}
	return assets, nil
}

type commitInfo struct {
	Commit struct {
		Committer struct {
			Date time.Time `json:"date"`
		} `json:"committer"`
	} `json:"commit"`
}

// Branch returns the head commit timestamp of a branch.
func (h *Host) Branch(ctx context.Context, base, branch string) (time.Time, error) {
	slug, err := userRepo(base)
	if err != nil {
		return time.Time{}, err
	}

	var commits []commitInfo
	query := "/commits?sha=" + url.QueryEscape(branch) + "&per_page=1"
	if err := h.client.GetJSON(ctx, h.urls.API(slug, query), &commits); err != nil {
		return time.Time{}, err
	}
	if len(commits) == 0 {
		return time.Time{}, fmt.Errorf("no commits on branch %q of %s", branch, base)
	}
	return commits[0].Commit.Committer.Date, nil
}

type repoResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Homepage    string `json:"homepage"`
	HTMLURL     string `json:"html_url"`
	HasIssues   bool   `json:"has_issues"`
	Owner       struct {
		Login string `json:"login"`
	} `json:"owner"`
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
		Author:      resp.Owner.Login,
		Homepage:    resp.Homepage,
	}
	if info.Homepage == "" {
		info.Homepage = resp.HTMLURL
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
