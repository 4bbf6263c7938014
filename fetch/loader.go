package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"strings"
)

const (
	// maxDocumentSize caps catalog document reads. Channel and repository
	// documents are small; anything larger is a misconfigured URL.
	maxDocumentSize = 10 << 20

	// maxArtifactSize caps archive downloads.
	maxArtifactSize = 1 << 30
)

// ErrDigestMismatch is returned when a downloaded artifact does not match
// its declared SHA-256 digest.
var ErrDigestMismatch = errors.New("artifact digest mismatch")

// ErrTooLarge is returned when an artifact exceeds maxArtifactSize.
var ErrTooLarge = errors.New("artifact too large")

// DocumentLoader loads catalog documents from HTTP URLs and local files.
// file:// URLs and bare filesystem paths are read directly, which keeps
// locally mirrored channels usable offline.
type DocumentLoader struct {
	fetcher FetcherInterface
}

// NewDocumentLoader creates a loader backed by the given fetcher.
func NewDocumentLoader(f FetcherInterface) *DocumentLoader {
	return &DocumentLoader{fetcher: f}
}

// Load fetches one document.
func (l *DocumentLoader) Load(ctx context.Context, rawurl string) ([]byte, error) {
	if path, ok := localPath(rawurl); ok {
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", rawurl, ErrNotFound)
		}
		return data, err
	}

	artifact, err := l.fetcher.Fetch(ctx, rawurl)
	if err != nil {
		return nil, err
	}
	defer func() { _ = artifact.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(artifact.Body, maxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rawurl, err)
	}
	if len(data) > maxDocumentSize {
		return nil, fmt.Errorf("document %s exceeds %d bytes", rawurl, maxDocumentSize)
	}
	return data, nil
}

// localPath reports whether rawurl names a local file and returns its path.
func localPath(rawurl string) (string, bool) {
	if strings.HasPrefix(rawurl, "file://") {
		u, err := url.Parse(rawurl)
		if err != nil {
			return "", false
		}
		return u.Path, true
	}
	if !strings.Contains(rawurl, "://") {
		return rawurl, true
	}
	return "", false
}

// Download fetches an artifact fully into memory and, when a digest is
// declared, verifies it before returning any bytes to the caller. A HEAD
// preflight rejects oversized artifacts before any body bytes transfer;
// hosts that reject HEAD are still downloadable.
func Download(ctx context.Context, f FetcherInterface, rawurl, sha256Hex string) ([]byte, error) {
	if size, _, err := f.Head(ctx, rawurl); err == nil && size > maxArtifactSize {
		return nil, fmt.Errorf("%s: %d bytes: %w", rawurl, size, ErrTooLarge)
	}

	artifact, err := f.Fetch(ctx, rawurl)
	if err != nil {
		return nil, err
	}
	defer func() { _ = artifact.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(artifact.Body, maxArtifactSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rawurl, err)
	}
	if len(data) > maxArtifactSize {
		return nil, fmt.Errorf("%s: %w", rawurl, ErrTooLarge)
	}

	if sha256Hex != "" {
		sum := sha256.Sum256(data)
		if !strings.EqualFold(hex.EncodeToString(sum[:]), sha256Hex) {
			return nil, fmt.Errorf("%s: %w", rawurl, ErrDigestMismatch)
		}
	}
	return data, nil
}
