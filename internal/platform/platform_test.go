package platform

import "testing"

func TestCompatible(t *testing.T) {
	tests := []struct {
		spec Spec
		os   string
		arch string
		want bool
	}{
		{Spec{"*"}, "osx", "arm64", true},
		{Spec{"osx"}, "osx", "arm64", true},
		{Spec{"osx-arm64"}, "osx", "arm64", true},
		{Spec{"osx-x64"}, "osx", "arm64", false},
		{Spec{"windows"}, "osx", "arm64", false},
		{Spec{"windows", "linux"}, "linux", "x64", true},
		{Spec{"windows-x64", "*"}, "linux", "x64", true},
		{Spec{}, "osx", "arm64", false},
	}

	for _, tt := range tests {
		if got := tt.spec.Compatible(tt.os, tt.arch); got != tt.want {
			t.Errorf("Spec(%v).Compatible(%q, %q) = %v, want %v", tt.spec, tt.os, tt.arch, got, tt.want)
		}
	}
}

func TestSpecificity(t *testing.T) {
	tests := []struct {
		spec Spec
		want int
	}{
		{Spec{"osx-arm64"}, SpecificityExact},
		{Spec{"osx"}, SpecificityOS},
		{Spec{"*"}, SpecificityWildcard},
		{Spec{"osx", "osx-arm64"}, SpecificityExact}, // most specific match wins
		{Spec{"osx", "*"}, SpecificityOS},
		{Spec{"windows"}, SpecificityWildcard}, // no match at all
	}

	for _, tt := range tests {
		if got := tt.spec.Specificity("osx", "arm64"); got != tt.want {
			t.Errorf("Spec(%v).Specificity(osx, arm64) = %d, want %d", tt.spec, got, tt.want)
		}
	}
}

func TestMatch(t *testing.T) {
	spec := Spec{"*", "linux", "linux-x64"}
	if got := spec.Match("linux", "x64"); got != "linux-x64" {
		t.Errorf("Match = %q, want %q", got, "linux-x64")
	}
	if got := spec.Match("linux", "arm64"); got != "linux" {
		t.Errorf("Match = %q, want %q", got, "linux")
	}
	if got := spec.Match("osx", "arm64"); got != "*" {
		t.Errorf("Match = %q, want %q", got, "*")
	}
}

func TestSelectors(t *testing.T) {
	got := Selectors("osx", "arm64")
	want := []string{"osx-arm64", "osx", "*"}
	if len(got) != len(want) {
		t.Fatalf("Selectors = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Selectors[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestIsWildcard(t *testing.T) {
	if !Wildcard.IsWildcard() {
		t.Error("Wildcard.IsWildcard() = false")
	}
	if (Spec{"osx"}).IsWildcard() {
		t.Error("Spec{osx}.IsWildcard() = true")
	}
}
