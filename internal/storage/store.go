// Package storage keeps rendered reports until they are downloaded.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

var ErrNotFound = errors.New("report file not found")

// ErrExists is returned by Put when the name is already taken. Stored
// reports are never overwritten.
var ErrExists = errors.New("report file already exists")

// ErrInvalidName is returned for names that are empty or try to leave the
// store's namespace.
var ErrInvalidName = errors.New("invalid report file name")

// Store holds rendered report files by flat file name.
type Store interface {
	// Kind names the backend for health reporting.
	Kind() string
	// Put stores a new file and fails with ErrExists if name is taken.
	Put(ctx context.Context, name, contentType string, content []byte) error
	// Open returns the file and its size. The caller closes it.
	Open(ctx context.Context, name string) (io.ReadCloser, int64, error)
	// Check reports whether the backend is reachable and writable.
	Check(ctx context.Context) error
}

// CleanName validates a download file name.
func CleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || filepath.Base(name) != name || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return name, nil
}
