package gitlab

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/editor-pkgs/catalog/internal/core"
)

func TestMatch(t *testing.T) {
	h := New("", nil)
	if !h.Match("https://gitlab.com/user/repo") {
		t.Error("Match(gitlab URL) = false")
	}
	if h.Match("https://github.com/user/repo") {
		t.Error("Match(github URL) = true")
	}
}

func TestTags(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/projects/user%2Frepo/repository/tags" {
			t.Errorf("unexpected path: %s", r.URL.EscapedPath())
			w.WriteHeader(404)
			return
		}
		_, _ = w.Write([]byte(`[
			{"name": "v1.1.0", "commit": {"created_at": "2021-03-01T09:00:00Z"}},
			{"name": "v1.0.0", "commit": {"created_at": "2020-07-15T10:50:38Z"}}
		]`))
	}))
	defer server.Close()

	h := New(server.URL, core.DefaultClient())
	tags, err := h.Tags(context.Background(), "https://gitlab.com/user/repo")
	if err != nil {
		t.Fatalf("Tags failed: %v", err)
	}
	if len(tags) != 2 {
		t.Fatalf("got %d tags, want 2", len(tags))
	}
	if tags[0].Name != "v1.1.0" || tags[0].Date.IsZero() {
		t.Errorf("tags[0] = %+v", tags[0])
	}
}

func TestBranch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/projects/user%2Frepo/repository/branches/main" {
			t.Errorf("unexpected path: %s", r.URL.EscapedPath())
			w.WriteHeader(404)
			return
		}
		_, _ = w.Write([]byte(`{"commit": {"committed_date": "2022-01-02T03:04:05Z"}}`))
	}))
	defer server.Close()

	h := New(server.URL, core.DefaultClient())
	date, err := h.Branch(context.Background(), "https://gitlab.com/user/repo", "main")
	if err != nil {
		t.Fatalf("Branch failed: %v", err)
	}
	if date.Year() != 2022 {
		t.Errorf("date = %v", date)
	}
}

func TestDownloadURL(t *testing.T) {
	h := New("", nil)
	got := h.DownloadURL("https://gitlab.com/user/repo", "v1.0.0")
	want := "https://gitlab.com/user/repo/-/archive/v1.0.0/repo-v1.0.0.zip"
	if got != want {
		t.Errorf("DownloadURL = %q, want %q", got, want)
	}
}
