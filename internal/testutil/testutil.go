// Package testutil provides shared test helpers for dataset directories and catalogs.
package testutil

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/newsledger/internal/catalog"
	"github.com/starford/newsledger/internal/dataset"
	"github.com/starford/newsledger/internal/parser"
	"github.com/starford/newsledger/internal/storage"
)

// Header is the first line of every dataset file.
const Header = "title,text,subject,date"

// Files maps every dataset to the file name used by test catalogs.
var Files = map[dataset.ID]string{
	dataset.True:     "true.csv",
	dataset.Fake:     "fake.csv",
	dataset.Combined: "combined.csv",
}

// Logger returns a logger that drops everything.
func Logger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// WriteDataset writes a dataset file made of Header followed by rows.
func WriteDataset(t *testing.T, dir, name string, rows ...string) {
	t.Helper()
	content := Header + "\n" + strings.Join(rows, "\n")
	if len(rows) > 0 {
		content += "\n"
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// DataDir creates a temporary data directory holding the given datasets.
func DataDir(t *testing.T, datasets map[dataset.ID][]string) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	for id, rows := range datasets {
		WriteDataset(t, dir, Files[id], rows...)
	}
	src, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, src
}

// Catalog creates a data directory with the given datasets and a loaded catalog over it.
func Catalog(t *testing.T, datasets map[dataset.ID][]string) (*catalog.Catalog, string) {
	t.Helper()
	dir, src := DataDir(t, datasets)
	c := catalog.New(src, Files, parser.Comma, Logger())
	if err := c.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	return c, dir
}
