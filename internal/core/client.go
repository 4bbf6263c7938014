package core

import (
	"github.com/editor-pkgs/catalog/client"
)

// Type aliases so host implementations only import core.
type (
	Client     = client.Client
	Option     = client.Option
	URLBuilder = client.URLBuilder
	BaseURLs   = client.BaseURLs
	HTTPError  = client.HTTPError
)

// Function and error aliases.
var (
	DefaultClient  = client.DefaultClient
	NewClient      = client.NewClient
	WithTimeout    = client.WithTimeout
	WithMaxRetries = client.WithMaxRetries
	ErrNotFound    = client.ErrNotFound
	ErrAuth        = client.ErrAuth
)
