// Package pypi provides the source host client for pypi.org, used by
// libraries whose releases are wheels published on PyPI.
package pypi

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/editor-pkgs/catalog/internal/core"
)

const (
	// DefaultURL is the PyPI JSON API base.
	DefaultURL = "https://pypi.org"
	hostName   = "pypi"
)

func init() {
	core.Register(hostName, func(c *core.Client) core.Host {
		return New(DefaultURL, c)
	})
}

var projectRE = regexp.MustCompile(`^https?://pypi\.org/project/([^/]+)/?$`)

// Host is the pypi.org discovery client. PyPI versions map onto tags and a
// version's files onto release assets, so asset releases based on PyPI work
// through the same pipeline as git-hosted ones.
type Host struct {
	apiBase string
	client  *core.Client
	urls    *core.BaseURLs
}

// New creates a PyPI host client. apiBase overrides the JSON API base,
// primarily for tests; pass "" for pypi.org.
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
		RepositoryFn: func(name string) string {
			return "https://pypi.org/project/" + name + "/"
		},
		APIFn: func(name, suffix string) string {
			return h.apiBase + "/pypi/" + name + suffix + "/json"
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

// Match reports whether the URL points at a pypi.org project page.
func (h *Host) Match(rawurl string) bool {
	return projectRE.MatchString(rawurl)
}

func projectName(rawurl string) (string, error) {
	m := projectRE.FindStringSubmatch(rawurl)
	if m == nil {
		return "", fmt.Errorf("%w: %s", core.ErrNoHost, rawurl)
	}
	return m[1], nil
}

type projectResponse struct {
	Info struct {
		Name     string `json:"name"`
		Summary  string `json:"summary"`
		Author   string `json:"author"`
		HomePage string `json:"home_page"`
	} `json:"info"`
	Releases map[string][]releaseFile `json:"releases"`
}

type releaseFile struct {
	Filename          string            `json:"filename"`
	URL               string            `json:"url"`
	Size              int64             `json:"size"`
	Yanked            bool              `json:"yanked"`
	PackageType       string            `json:"packagetype"`
	UploadTimeISO8601 time.Time         `json:"upload_time_iso_8601"`
	Digests           map[string]string `json:"digests"`
}

func (h *Host) project(ctx context.Context, base string) (*projectResponse, error) {
	name, err := projectName(base)
	if err != nil {
		return nil, err
	}

	var resp projectResponse
	if err := h.client.GetJSON(ctx, h.urls.API(name, ""), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Tags lists published versions as tags, dated by their first upload.
func (h *Host) Tags(ctx context.Context, base string) ([]core.Tag, error) {
	resp, err := h.project(ctx, base)
	if err != nil {
		return nil, err
	}

	tags := make([]core.Tag, 0, len(resp.Releases))
	for version, files := range resp.Releases {
		var date time.Time
		for _, f := range files {
			if date.IsZero() || f.UploadTimeISO8601.Before(date) {
				date = f.UploadTimeISO8601
			}
		}
		tags = append(tags, core.Tag{Name: version, Date: date})
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

// ReleaseAssets lists the non-yanked wheels of a version.
func (h *Host) ReleaseAssets(ctx context.Context, base, tag string) ([]core.Asset, error) {
	resp, err := h.project(ctx, base)
	if err != nil {
		return nil, err
	}

	files, ok := resp.Releases[tag]
	if !ok {
		return nil, fmt.Errorf("pypi: version %q of %s: %w", tag, base, core.ErrNotFound)
	}

	assets := make([]core.Asset, 0, len(files))
	for _, f := range files {
		if f.Yanked || f.PackageType != "bdist_wheel" {
			continue
		}
		assets = append(assets, core.Asset{Name: f.Filename, URL: f.URL, Size: f.Size})
	}
	return assets, nil
}

// Branch is unsupported: PyPI has no branches.
func (h *Host) Branch(ctx context.Context, base, branch string) (time.Time, error) {
	return time.Time{}, fmt.Errorf("pypi: branch releases are not supported for %s", base)
}

// RepoInfo resolves descriptive metadata for a project URL.
func (h *Host) RepoInfo(ctx context.Context, rawurl string) (*core.RepoInfo, error) {
	resp, err := h.project(ctx, rawurl)
	if err != nil {
		return nil, err
	}

	homepage := resp.Info.HomePage
	if homepage == "" {
		homepage = h.urls.Repository(resp.Info.Name)
	}
	return &core.RepoInfo{
		Name:        resp.Info.Name,
		Description: resp.Info.Summary,
		Author:      resp.Info.Author,
		Homepage:    homepage,
	}, nil
}

// DownloadURL returns "": PyPI has no generated source archives; releases
// must name an asset.
func (h *Host) DownloadURL(base, ref string) string {
	return ""
}
