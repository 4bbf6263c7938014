// Package gitlab provides the source host client for gitlab.com.
package gitlab

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
	// DefaultURL is the GitLab REST API base.
	DefaultURL = "https://gitlab.com/api/v4"
	hostName   = "gitlab"
)

func init() {
	core.Register(hostName, func(c *core.Client) core.Host {
		return New(DefaultURL, c)
	})
}

var (
	repoRE = regexp.MustCompile(`^https?://gitlab\.com/([^/]+/[^/]+?)(?:\.git)?(/.*)?$`)
	userRE = regexp.MustCompile(`^https?://gitlab\.com/([^/]+?)/?$`)
)

// Host is the gitlab.com discovery client.
type Host struct {
	apiBase string
	client  *core.Client
	urls    *core.BaseURLs
}

// New creates a GitLab host client. apiBase overrides the REST API base,
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
			return "https://gitlab.com/" + userRepo
		},
		APIFn: func(userRepo, suffix string) string {
			return h.apiBase + "/projects/" + url.PathEscape(userRepo) + suffix
		},
		ArchiveFn: func(userRepo, ref string) string {
			_, repo, _ := strings.Cut(userRepo, "/")
			return fmt.Sprintf("https://gitlab.com/%s/-/archive/%s/%s-%s.zip",
				userRepo, url.PathEscape(ref), repo, url.PathEscape(ref))
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

// Match reports whether the URL points at a gitlab.com repository.
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

// MatchUser reports whether the URL points at a user page.
func (h *Host) MatchUser(rawurl string) bool {
	return userRE.MatchString(rawurl)
}

type userInfo struct {
	ID int `json:"id"`
}

type userProjectInfo struct {
	WebURL string `json:"web_url"`
}

// UserRepos lists the project URLs of a user page. GitLab addresses users
// by numeric id, so the username resolves through a lookup first.
func (h *Host) UserRepos(ctx context.Context, rawurl string) ([]string, error) {
	m := userRE.FindStringSubmatch(rawurl)
	if m == nil {
		return nil, fmt.Errorf("%w: %s", core.ErrNoHost, rawurl)
	}

	var users []userInfo
	if err := h.client.GetJSON(ctx, h.apiBase+"/users?username="+url.QueryEscape(m[1]), &users); err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("gitlab user %q: %w", m[1], core.ErrNotFound)
	}

	var projects []userProjectInfo
	u := fmt.Sprintf("%s/users/%d/projects?per_page=100", h.apiBase, users[0].ID)
	if err := h.client.GetJSON(ctx, u, &projects); err != nil {
		return nil, err
	}

	repos := make([]string, 0, len(projects))
	for _, p := range projects {
		repos = append(repos, p.WebURL)
	}
	return repos, nil
}

type tagInfo struct {
	Name   string `json:"name"`
	Commit struct {
		CreatedAt time.Time `json:"created_at"`
	} `json:"commit"`
}

// Tags lists repository tags with their commit dates.
func (h *Host) Tags(ctx context.Context, base string) ([]core.Tag, error) {
	slug, err := userRepo(base)
	if err != nil {
		return nil, err
	}

	var raw []tagInfo
	if err := h.client.GetJSON(ctx, h.urls.API(slug, "/repository/tags?per_page=100"), &raw); err != nil {
		return nil, err
	}

	tags := make([]core.Tag, 0, len(raw))
	for _, t := range raw {
		tags = append(tags, core.Tag{Name: t.Name, Date: t.Commit.CreatedAt})
	}
	return tags, nil
}

type releaseInfo struct {
	Assets struct {
		Links []struct {
			Name string `json:"name"`
			URL  string `json:"url"`
		} `json:"links"`
	} `json:"assets"`
}

// ReleaseAssets lists the linked artifacts of a tag's release. GitLab does
// not report asset sizes, so Size is zero.
func (h *Host) ReleaseAssets(ctx context.Context, base, tag string) ([]core.Asset, error) {
	slug, err := userRepo(base)
	if err != nil {
		return nil, err
	}

	var rel releaseInfo
	if err := h.client.GetJSON(ctx, h.urls.API(slug, "/releases/"+url.PathEscape(tag)), &rel); err != nil {
		return nil, err
	}

	assets := make([]core.Asset, 0, len(rel.Assets.Links))
	for _, a := range rel.Assets.Links {
		assets = append(assets, core.Asset{Name: a.Name, URL: a.URL})
	}
	return assets, nil
}

type branchInfo struct {
	Commit struct {
		CommittedDate time.Time `json:"committed_date"`
	} `json:"commit"`
}

// Branch returns the head commit timestamp of a branch.
func (h *Host) Branch(ctx context.Context, base, branch string) (time.Time, error) {
	slug, err := userRepo(base)
	if err != nil {
		return time.Time{}, err
	}

	var resp branchInfo
	if err := h.client.GetJSON(ctx, h.urls.API(slug, "/repository/branches/"+url.PathEscape(branch)), &resp); err != nil {
		return time.Time{}, err
	}
	return resp.Commit.CommittedDate, nil
}

type projectResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	WebURL      string `json:"web_url"`
	Namespace   struct {
		Name string `json:"name"`
	} `json:"namespace"`
}

// RepoInfo resolves descriptive metadata for a repository URL.
func (h *Host) RepoInfo(ctx context.Context, rawurl string) (*core.RepoInfo, error) {
	slug, err := userRepo(rawurl)
	if err != nil {
		return nil, err
	}

	var resp projectResponse
	if err := h.client.GetJSON(ctx, h.urls.API(slug, ""), &resp); err != nil {
		return nil, err
	}

	return &core.RepoInfo{
		Name:        resp.Name,
		Description: resp.Description,
		Author:      resp.Namespace.Name,
		Homepage:    resp.WebURL,
		Issues:      resp.WebURL + "/-/issues",
	}, nil
}

// DownloadURL returns the generated source archive for a tag or branch.
func (h *Host) DownloadURL(base, ref string) string {
	slug, err := userRepo(base)
	if err != nil {
		return ""
	}
	return h.urls.Archive(slug, ref)
}
