// Package all imports all supported source host implementations.
//
// Import this package for its side effects to register all hosts:
//
//	import (
//		"github.com/editor-pkgs/catalog"
//		_ "github.com/editor-pkgs/catalog/all"
//	)
//
//	// Now all hosts are available
//	hosts := catalog.SupportedHosts()
//	// ["github", "gitlab", "bitbucket", "pypi"]
package all

import (
	_ "github.com/editor-pkgs/catalog/internal/bitbucket"
	_ "github.com/editor-pkgs/catalog/internal/github"
	_ "github.com/editor-pkgs/catalog/internal/gitlab"
	_ "github.com/editor-pkgs/catalog/internal/pypi"
)
