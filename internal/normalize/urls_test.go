package normalize

import "testing"

func TestResolveURL(t *testing.T) {
	tests := []struct {
		root string
		ref  string
		want string
	}{
		{"https://example.com/dir/channel.json", "", ""},
		{"https://example.com/dir/channel.json", "https://other.test/repo.json", "https://other.test/repo.json"},
		{"https://example.com/dir/channel.json", "./repo.json", "https://example.com/dir/repo.json"},
		{"https://example.com/dir/channel.json", "../repo.json", "https://example.com/repo.json"},
		{"https://example.com/dir/channel.json", "//cdn.test/repo.json", "https://cdn.test/repo.json"},
		{"http://example.com/channel.json", "//cdn.test/repo.json", "http://cdn.test/repo.json"},
		{"file:///srv/channel.json", "./repo.json", "file:///srv/repo.json"},
		{"file:///srv/channel.json", "//cdn.test/repo.json", "file://cdn.test/repo.json"},
		{"https://example.com/dir/channel.json", "/rooted.json", ""},
		{"https://example.com/dir/channel.json", "github.com/user/repo", "github.com/user/repo"},
	}

	for _, tt := range tests {
		if got := resolveURL(tt.root, tt.ref); got != tt.want {
			t.Errorf("resolveURL(%q, %q) = %q, want %q", tt.root, tt.ref, got, tt.want)
		}
	}
}

func TestResolveURLs(t *testing.T) {
	got := resolveURLs("https://example.com/channel.json", []string{
		"./a.json", "/rejected.json", "", "https://b.test/b.json",
	})
	want := []string{"https://example.com/a.json", "https://b.test/b.json"}
	if len(got) != len(want) {
		t.Fatalf("resolveURLs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("resolveURLs[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
