package expand

import "testing"

func TestExpand(t *testing.T) {
	vars := Vars{
		Platform:  "windows-x64",
		Build:     "4107",
		PyVersion: "38",
		Version:   "1.0.5",
	}

	tests := []struct {
		template string
		want     string
	}{
		{"Name-${version}-st${st_build}.sublime-package", "Name-1.0.5-st4107.sublime-package"},
		{"Name-${version}-${platform}.zip", "Name-1.0.5-windows-x64.zip"},
		{"pkg-${version}-cp${py_version}-*.whl", "pkg-1.0.5-cp38-*.whl"},
		{"no variables here", "no variables here"},
		{"${version}${version}", "1.0.51.0.5"},
		{"${unknown} stays", "${unknown} stays"},
		{"dangling ${version", "dangling ${version"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Expand(tt.template, vars); got != tt.want {
			t.Errorf("Expand(%q) = %q, want %q", tt.template, got, tt.want)
		}
	}
}

func TestExpandWildcardValues(t *testing.T) {
	vars := Vars{Platform: "any", Build: "any", Version: "2.0.0"}
	got := Expand("Name-${version}-${platform}-st${st_build}.zip", vars)
	want := "Name-2.0.0-any-stany.zip"
	if got != want {
		t.Errorf("Expand = %q, want %q", got, want)
	}
}

func TestHasPlatform(t *testing.T) {
	if !HasPlatform("x-${platform}.zip") {
		t.Error("HasPlatform = false, want true")
	}
	if HasPlatform("x-${version}.zip") {
		t.Error("HasPlatform = true, want false")
	}
}

func TestPyVersionToken(t *testing.T) {
	tests := []struct{ in, want string }{
		{"3.8", "38"},
		{"3.3", "33"},
		{"3.10", "310"},
		{"38", "38"},
	}
	for _, tt := range tests {
		if got := PyVersionToken(tt.in); got != tt.want {
			t.Errorf("PyVersionToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGlobMatch(t *testing.T) {
	tests := []struct {
		pattern   string
		candidate string
		want      bool
	}{
		{"*.sublime-package", "Name-1.0.5.sublime-package", true},
		{"Name-*.zip", "Name-1.0.5.zip", true},
		{"Name-*.zip", "Other-1.0.5.zip", false},
		{"Name-?.zip", "Name-1.zip", true},
		{"Name-?.zip", "Name-10.zip", false},
		{"exact.zip", "exact.zip", true},
		{"exact.zip", "EXACT.zip", false}, // case-sensitive
		{"a*b*c", "aXXbYYc", true},
		{"a*b*c", "aXXbYYcZ", false}, // anchored at both ends
		{"file.zip", "file_zip", false},
		{"*", "anything", true},
		{"", "", true},
		{"", "x", false},
	}

	for _, tt := range tests {
		if got := GlobMatch(tt.pattern, tt.candidate); got != tt.want {
			t.Errorf("GlobMatch(%q, %q) = %v, want %v", tt.pattern, tt.candidate, got, tt.want)
		}
	}
}
