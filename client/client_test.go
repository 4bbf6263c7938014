package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "editor-pkgs-catalog/1.0" {
			t.Errorf("User-Agent = %q", ua)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"Alignment"}`))
	}))
	defer server.Close()

	var out struct {
		Name string `json:"name"`
	}
	if err := DefaultClient().GetJSON(context.Background(), server.URL, &out); err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if out.Name != "Alignment" {
		t.Errorf("Name = %q, want %q", out.Name, "Alignment")
	}
}

func TestGetNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := DefaultClient().Get(context.Background(), server.URL)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get = %v, want ErrNotFound", err)
	}

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || !httpErr.IsNotFound() {
		t.Errorf("error %v is not a 404 HTTPError", err)
	}
}

func TestGetAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := DefaultClient().Get(context.Background(), server.URL)
	if !errors.Is(err, ErrAuth) {
		t.Errorf("Get = %v, want ErrAuth", err)
	}
}

func TestGetRetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`ok`))
	}))
	defer server.Close()

	c := NewClient(WithBaseDelay(time.Millisecond))
	body, err := c.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(body) != "ok" {
		t.Errorf("body = %q, want %q", body, "ok")
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestGetDoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := NewClient(WithBaseDelay(time.Millisecond))
	if _, err := c.Get(context.Background(), server.URL); err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestGetAuthFunc(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := NewClient(WithAuthFunc(func(url string) (string, string) {
		return "Authorization", "token secret"
	}))
	if _, err := c.Get(context.Background(), server.URL); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if gotAuth != "token secret" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestBuildURLs(t *testing.T) {
	urls := &BaseURLs{
		RepositoryFn: func(userRepo string) string { return "https://github.com/" + userRepo },
		ArchiveFn: func(userRepo, ref string) string {
			return "https://codeload.github.com/" + userRepo + "/zip/" + ref
		},
	}

	got := BuildURLs(urls, "user/repo", "v1.0.0")
	if got["repository"] != "https://github.com/user/repo" {
		t.Errorf("repository = %q", got["repository"])
	}
	if got["archive"] != "https://codeload.github.com/user/repo/zip/v1.0.0" {
		t.Errorf("archive = %q", got["archive"])
	}
	if _, ok := got["api"]; ok {
		t.Error("api key present for empty builder func")
	}
}
