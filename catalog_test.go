package catalog_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/editor-pkgs/catalog"
	_ "github.com/editor-pkgs/catalog/all"
	"github.com/editor-pkgs/catalog/client"
)

func TestSupportedHosts(t *testing.T) {
	hosts := catalog.SupportedHosts()

	expected := []string{"bitbucket", "github", "gitlab", "pypi"}
	sort.Strings(hosts)

	if len(hosts) != len(expected) {
		t.Fatalf("expected %d hosts, got %d: %v", len(expected), len(hosts), hosts)
	}
	for i, h := range expected {
		if hosts[i] != h {
			t.Errorf("expected host %q at position %d, got %q", h, i, hosts[i])
		}
	}
}

// fakeHost serves canned discovery data for the test channel.
type fakeHost struct {
	tags []catalog.Tag
}

func (f *fakeHost) Name() string { return "fake" }
func (f *fakeHost) Match(rawurl string) bool {
	return strings.HasPrefix(rawurl, "https://fake.test/")
}
func (f *fakeHost) Tags(context.Context, string) ([]catalog.Tag, error) {
	return f.tags, nil
}
func (f *fakeHost) ReleaseAssets(context.Context, string, string) ([]catalog.Asset, error) {
	return nil, catalog.ErrNotFound
}
func (f *fakeHost) Branch(context.Context, string, string) (time.Time, error) {
	return time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC), nil
}
func (f *fakeHost) RepoInfo(_ context.Context, rawurl string) (*catalog.RepoInfo, error) {
	return &catalog.RepoInfo{
		Name:        "Discovered",
		Description: "resolved from details",
		Homepage:    rawurl,
	}, nil
}
func (f *fakeHost) DownloadURL(base, ref string) string {
	return base + "/archive/" + ref + ".zip"
}
func (f *fakeHost) URLs() catalog.URLBuilder { return &client.BaseURLs{} }

func testChannel(t *testing.T) *httptest.Server {
	t.Helper()

	channel := `{
		"schema_version": "4.0.0",
		"repositories": ["./repository.json"]
	}`
	repository := `{
		"schema_version": "4.0.0",
		// explicit and discovered packages side by side
		"packages": [
			{
				"name": "Alignment",
				"author": "wbond",
				"previous_names": ["alignment_legacy"],
				"releases": [
					{"sublime_text": ">=3000",
					 "version": "2.1.0",
					 "url": "https://dl.test/alignment-2.1.0.zip",
					 "date": "2021-06-01 09:30:00"}
				]
			},
			{
				"name": "TagPkg",
				"releases": [
					{"base": "https://fake.test/user/tagpkg", "tags": true}
				]
			},
			{
				"details": "https://fake.test/user/discovered",
				"releases": [
					{"details": "https://fake.test/user/discovered", "branch": "master"}
				]
			}
		],
		"libraries": [
			{
				"name": "bz2",
				"releases": [
					{"base": "https://fake.test/user/bz2", "tags": true,
					 "python_versions": ["3.3", "3.8"]}
				]
			}
		]
	}`

	mux := http.NewServeMux()
	mux.HandleFunc("/channel.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(channel))
	})
	mux.HandleFunc("/repository.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(repository))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestLoadAndResolve(t *testing.T) {
	server := testChannel(t)
	hosts := catalog.HostSet{&fakeHost{tags: []catalog.Tag{
		{Name: "1.0.0"},
		{Name: "1.4.2"},
	}}}

	cat, warnings, err := catalog.Load(context.Background(), server.URL+"/channel.json",
		catalog.WithHosts(hosts))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if cat.Len() != 4 {
		t.Fatalf("entries = %v", cat.Names())
	}

	session := catalog.NewSession(hosts)
	cctx := catalog.ClientContext{Build: 4149, OS: "osx", Arch: "arm64"}

	rel, err := catalog.Resolve(context.Background(), session, cat, "Alignment", cctx)
	if err != nil {
		t.Fatalf("Resolve(Alignment) failed: %v", err)
	}
	if rel.Version != "2.1.0" || rel.URL != "https://dl.test/alignment-2.1.0.zip" {
		t.Errorf("release = %+v", rel)
	}

	rel, err = catalog.Resolve(context.Background(), session, cat, "TagPkg", cctx)
	if err != nil {
		t.Fatalf("Resolve(TagPkg) failed: %v", err)
	}
	if rel.Version != "1.4.2" {
		t.Errorf("version = %q, want the newest tag", rel.Version)
	}
	if rel.URL != "https://fake.test/user/tagpkg/archive/1.4.2.zip" {
		t.Errorf("url = %q", rel.URL)
	}

	// Entry named through resolved metadata, versioned from a branch head.
	rel, err = catalog.Resolve(context.Background(), session, cat, "Discovered", cctx)
	if err != nil {
		t.Fatalf("Resolve(Discovered) failed: %v", err)
	}
	if rel.Version != "2021.03.01.12.00.00" {
		t.Errorf("version = %q", rel.Version)
	}

	// Previous names resolve to the current entry.
	if _, err := catalog.Resolve(context.Background(), session, cat, "alignment_legacy", cctx); err != nil {
		t.Errorf("Resolve(previous name) failed: %v", err)
	}

	_, err = catalog.Resolve(context.Background(), session, cat, "NoSuchPkg", cctx)
	if !errors.Is(err, catalog.ErrUnknownEntry) {
		t.Errorf("err = %v, want ErrUnknownEntry", err)
	}

	// An entry whose releases all gate on newer builds is unavailable for
	// this client, reported through the ErrNoRelease sentinel.
	old := catalog.ClientContext{Build: 2500, OS: "osx", Arch: "arm64"}
	_, err = catalog.Resolve(context.Background(), session, cat, "Alignment", old)
	if !errors.Is(err, catalog.ErrNoRelease) {
		t.Errorf("err = %v, want ErrNoRelease", err)
	}
}

func TestResolveAll(t *testing.T) {
	server := testChannel(t)
	hosts := catalog.HostSet{&fakeHost{tags: []catalog.Tag{{Name: "1.0.0"}}}}

	cat, _, err := catalog.Load(context.Background(), server.URL+"/channel.json",
		catalog.WithHosts(hosts))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	session := catalog.NewSession(hosts)
	cctx := catalog.ClientContext{Build: 4149, OS: "linux", Arch: "x64", PyVersions: []string{"3.3"}}

	results := catalog.ResolveAll(context.Background(), session, cat,
		append(cat.Names(), "NoSuchPkg"), cctx)

	if len(results) != 4 {
		t.Errorf("results = %v, want every real entry and no phantom", results)
	}
	if _, ok := results["NoSuchPkg"]; ok {
		t.Error("unknown entry present in results")
	}
	if rel := results["bz2"]; rel == nil || len(rel.PyVersions) != 2 {
		t.Errorf("bz2 = %+v", rel)
	}
}

func TestLoadRepositories(t *testing.T) {
	server := testChannel(t)

	cat, _, err := catalog.LoadRepositories(context.Background(),
		[]string{server.URL + "/repository.json"},
		catalog.WithHosts(catalog.HostSet{&fakeHost{}}))
	if err != nil {
		t.Fatalf("LoadRepositories failed: %v", err)
	}
	if _, ok := cat.Get("Alignment"); !ok {
		t.Errorf("entries = %v", cat.Names())
	}
}

func TestLoadChannelFailureIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, _, err := catalog.Load(context.Background(), server.URL+"/channel.json",
		catalog.WithHosts(nil))
	if err == nil {
		t.Fatal("Load succeeded against a missing channel")
	}
}
