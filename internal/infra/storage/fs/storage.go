// Package fs implements the txarchive ObjectStorage port on the local
// filesystem. It is meant for development and tests, mirroring the bucket
// layout as a directory tree under a configured root.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabapcia/tokenwatch/internal/txarchive"
)

// storage writes objects as files below root, one file per object key.
type storage struct {
	root string
}

// Ensure compile-time compliance with the txarchive storage port.
var _ txarchive.ObjectStorage = (*storage)(nil)

// New creates a filesystem object storage rooted at the given directory,
// creating it if necessary.
func New(root string) (*storage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage root %q: %w", root, err)
	}

	return &storage{root: root}, nil
}

// Put writes data to the file mapped from key, creating parent directories as
// needed and replacing any existing file.
//
// Keys embed feed-supplied token addresses, so a key that would resolve
// outside the storage root (absolute, or smuggling ".." segments) is rejected
// instead of written.
func (s *storage) Put(_ context.Context, key string, data []byte) error {
	rel := filepath.FromSlash(key)
	if !filepath.IsLocal(rel) {
		return fmt.Errorf("object key %q escapes the storage root", key)
	}

	path := filepath.Join(s.root, rel)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating object directory for %q: %w", key, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing object %q: %w", key, err)
	}

	return nil
}
