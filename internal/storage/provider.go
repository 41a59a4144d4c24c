// Package storage supplies raw dataset files from the data directory.
package storage

import (
	"io"

	"github.com/starford/newsledger/internal/models"
)

// Provider is the interface for dataset file access.
type Provider interface {
	// List returns metadata for every dataset file directly under the data root.
	List() ([]models.SourceMeta, error)
	// Open returns a reader over the file at path (relative to the data root).
	// A missing file yields an error wrapping apperr.ErrSourceUnavailable.
	Open(path string) (io.ReadCloser, error)
	// Read returns the full contents of the file at path.
	Read(path string) ([]byte, error)
	// Root returns the absolute data directory.
	Root() string
}
