package client

// URLBuilder constructs web, API and archive URLs for a source host.
type URLBuilder interface {
	// Repository returns the human-readable page for a user/repo slug.
	Repository(userRepo string) string
	// API returns the REST endpoint for a user/repo slug plus a path suffix.
	API(userRepo, suffix string) string
	// Archive returns the source archive download URL for a tag or branch.
	Archive(userRepo, ref string) string
}

// BaseURLs provides a default URLBuilder implementation.
type BaseURLs struct {
	RepositoryFn func(userRepo string) string
	APIFn        func(userRepo, suffix string) string
	ArchiveFn    func(userRepo, ref string) string
}

func (b *BaseURLs) Repository(userRepo string) string {
	if b.RepositoryFn != nil {
		return b.RepositoryFn(userRepo)
	}
	return ""
}

func (b *BaseURLs) API(userRepo, suffix string) string {
	if b.APIFn != nil {
		return b.APIFn(userRepo, suffix)
	}
	return ""
}

func (b *BaseURLs) Archive(userRepo, ref string) string {
	if b.ArchiveFn != nil {
		return b.ArchiveFn(userRepo, ref)
	}
	return ""
}

// BuildURLs returns a map of all non-empty URLs for a repository ref.
// Keys are "repository", "api", and "archive".
func BuildURLs(urls URLBuilder, userRepo, ref string) map[string]string {
	result := make(map[string]string)
	if v := urls.Repository(userRepo); v != "" {
		result["repository"] = v
	}
	if v := urls.API(userRepo, ""); v != "" {
		result["api"] = v
	}
	if v := urls.Archive(userRepo, ref); v != "" {
		result["archive"] = v
	}
	return result
}
