package semver

import (
	"errors"
	"sort"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		tag    string
		prefix string
		want   string
		ok     bool
	}{
		{"1.2.3", "", "1.2.3", true},
		{"v1.2.3", "", "1.2.3", true},
		{"1.2", "", "1.2.0", true},
		{"1", "", "1.0.0", true},
		{"1.2.3-beta.1", "", "1.2.3-beta.1", true},
		{"1.2.3+build.5", "", "1.2.3+build.5", true},
		{"st3-1.0.0", "st3-", "1.0.0", true},
		{"st3-1.0.0", "st2-", "", false},
		{"1.0.0", "st3-", "", false},
		{"2020.07.15", "", "2020.07.15", true},
		{"2020.07.15.10.50.38", "", "2020.07.15.10.50.38", true},
		{"not-a-version", "", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		v, err := Parse(tt.tag, tt.prefix)
		if tt.ok && err != nil {
			t.Errorf("Parse(%q, %q) failed: %v", tt.tag, tt.prefix, err)
			continue
		}
		if !tt.ok {
			if err == nil {
				t.Errorf("Parse(%q, %q) = %v, want error", tt.tag, tt.prefix, v)
			} else if !errors.Is(err, ErrInvalidVersion) {
				t.Errorf("Parse(%q, %q) error = %v, want ErrInvalidVersion", tt.tag, tt.prefix, err)
			}
			continue
		}
		if v.String() != tt.want {
			t.Errorf("Parse(%q, %q) = %q, want %q", tt.tag, tt.prefix, v.String(), tt.want)
		}
		if v.Tag() != tt.tag {
			t.Errorf("Tag() = %q, want %q", v.Tag(), tt.tag)
		}
	}
}

func TestParseRetainsPrefix(t *testing.T) {
	v, err := Parse("st3-2.1.0", "st3-")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if v.Prefix() != "st3-" {
		t.Errorf("Prefix() = %q, want %q", v.Prefix(), "st3-")
	}
	if v.String() != "2.1.0" {
		t.Errorf("String() = %q, want %q", v.String(), "2.1.0")
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0.0", "2.0.0", -1},
		{"1.2.0", "1.10.0", -1}, // numeric, not lexical
		{"1.0.1", "1.0.0", 1},
		{"1.0.0-rc.1", "1.0.0", -1}, // rc is older than final
		{"1.0.0-alpha", "1.0.0-beta", -1},
		{"1.0.0-alpha.1", "1.0.0-alpha.2", -1},
		{"1.0.0-1", "1.0.0-alpha", -1}, // numeric below alphanumeric
		{"1.0.0+a", "1.0.0+b", 0},      // metadata ignored
		{"0.0.1+2020.07.15", "1.0.0", -1},
	}

	for _, tt := range tests {
		a := mustParse(t, tt.a)
		b := mustParse(t, tt.b)
		if got := a.Compare(b); got != tt.want {
			t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
		if got := b.Compare(a); got != -tt.want {
			t.Errorf("Compare(%q, %q) = %d, want %d", tt.b, tt.a, got, -tt.want)
		}
	}
}

func TestCompareTotalOrder(t *testing.T) {
	// Transitivity across a shuffled set: sorting must give one stable answer.
	tags := []string{"2.0.0", "1.0.0-rc.1", "1.0.0", "1.10.0", "1.2.0", "1.0.0-alpha"}
	want := []string{"1.0.0-alpha", "1.0.0-rc.1", "1.0.0", "1.2.0", "1.10.0", "2.0.0"}

	versions := make([]Version, len(tags))
	for i, tag := range tags {
		versions[i] = mustParse(t, tag)
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i].LessThan(versions[j]) })

	for i, w := range want {
		if versions[i].String() != w {
			t.Errorf("sorted[%d] = %q, want %q", i, versions[i].String(), w)
		}
	}
}

func TestCompareEqualityIgnoresPrefix(t *testing.T) {
	a := mustParseTag(t, "st3-1.0.0", "st3-")
	b := mustParse(t, "1.0.0")
	if !a.Equal(b) {
		t.Errorf("%q and %q should compare equal", a.Tag(), b.Tag())
	}
}

func TestMatchPrefix(t *testing.T) {
	tags := []string{"st3-1.0.0", "st2-1.0.0", "v1.0.0"}
	var matched []string
	for _, tag := range tags {
		if v, ok := MatchPrefix(tag, "st3-"); ok {
			matched = append(matched, v.String())
		}
	}
	if len(matched) != 1 || matched[0] != "1.0.0" {
		t.Errorf("MatchPrefix matches = %v, want [1.0.0]", matched)
	}
}

func TestDateVersionDisplayAndOrder(t *testing.T) {
	d := mustParse(t, "2020.07.15.10.50.38")
	if d.String() != "2020.07.15.10.50.38" {
		t.Errorf("String() = %q, want the original date text", d.String())
	}
	if d.Prerelease() != "" {
		t.Errorf("Prerelease() = %q, want none", d.Prerelease())
	}
	// Date versions order below any explicitly versioned tag.
	if !d.LessThan(mustParse(t, "0.1.0")) {
		t.Error("date version should order below explicit versions")
	}
}

func TestParseDevFallback(t *testing.T) {
	// A pre-release suffix that is not a valid semver identifier parses as a
	// dev build with the suffix kept as metadata.
	v, err := Parse("1.2.3-foo.01", "")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if v.Prerelease() != "dev" {
		t.Errorf("Prerelease() = %q, want %q", v.Prerelease(), "dev")
	}
}

func mustParse(t *testing.T, tag string) Version {
	t.Helper()
	return mustParseTag(t, tag, "")
}

func mustParseTag(t *testing.T, tag, prefix string) Version {
	t.Helper()
	v, err := Parse(tag, prefix)
	if err != nil {
		t.Fatalf("Parse(%q, %q) failed: %v", tag, prefix, err)
	}
	return v
}
