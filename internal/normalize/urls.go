package normalize

import (
	"net/url"
	"regexp"
	"strings"
)

var schemeRE = regexp.MustCompile(`(?i)^(file:/|https?:)//`)

// resolveURL converts a possibly relative reference into an absolute URL,
// anchored at the document that declared it.
//
// Protocol-relative references ("//host/path") inherit the document's
// scheme, falling back to https. Dot-relative references ("./x", "../x")
// resolve against the parent directory of the document, for file:// and
// https:// roots alike. Rooted paths ("/x") are rejected: catalogs may not
// escape onto arbitrary hosts. Anything else is returned unchanged.
func resolveURL(rootURL, ref string) string {
	if ref == "" {
		return ""
	}

	if strings.HasPrefix(ref, "//") {
		if m := schemeRE.FindStringSubmatch(rootURL); m != nil {
			return m[1] + ref
		}
		return "https:" + ref
	}

	if strings.HasPrefix(ref, "./") || strings.HasPrefix(ref, "../") {
		root, err := url.Parse(rootURL)
		if err != nil {
			return ref
		}
		rel, err := url.Parse(ref)
		if err != nil {
			return ref
		}
		return root.ResolveReference(rel).String()
	}

	if strings.HasPrefix(ref, "/") {
		return ""
	}

	return ref
}

// resolveURLs resolves a list of references, dropping empty and rejected
// ones.
func resolveURLs(rootURL string, refs []string) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if resolved := resolveURL(rootURL, ref); resolved != "" {
			out = append(out, resolved)
		}
	}
	return out
}
