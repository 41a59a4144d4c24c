// Package catalog owns the three loaded datasets and serialises access to them.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/newsledger/internal/apperr"
	"github.com/starford/newsledger/internal/checksum"
	"github.com/starford/newsledger/internal/dataset"
	"github.com/starford/newsledger/internal/models"
	"github.com/starford/newsledger/internal/news"
	"github.com/starford/newsledger/internal/storage"
)

// Event kinds passed to an EventCallback.
const (
	EventLoaded      = "loaded"
	EventUnavailable = "unavailable"
	EventSorted      = "sorted"
)

// EventCallback is called after a dataset is (re)loaded or reordered.
type EventCallback func(kind string, id dataset.ID)

// Info describes the current state of one dataset.
type Info struct {
	ID         dataset.ID    `json:"id"`
	File       string        `json:"file"`
	Checksum   string        `json:"checksum,omitempty"`
	Stats      dataset.Stats `json:"stats"`
	Sorted     bool          `json:"sorted"`
	LoadedAt   time.Time     `json:"loaded_at"`
	Diagnostic string        `json:"diagnostic,omitempty"`
}

type entry struct {
	mu    sync.RWMutex
	store *news.Store
	info  Info
}

// Catalog holds one store per dataset. Datasets share nothing, so each has
// its own lock; operations on one dataset run one writer at a time.
type Catalog struct {
	src     storage.Provider
	delim   rune
	logger  *slog.Logger
	entries map[dataset.ID]*entry
	byFile  map[string]dataset.ID

	cbMu sync.RWMutex
	cb   EventCallback
}

// New creates a catalog reading the given dataset files from src.
// Every dataset starts out as an empty store until Load or Reload runs.
func New(src storage.Provider, files map[dataset.ID]string, delim rune, logger *slog.Logger) *Catalog {
	c := &Catalog{
		src:     src,
		delim:   delim,
		logger:  logger,
		entries: make(map[dataset.ID]*entry, len(files)),
		byFile:  make(map[string]dataset.ID, len(files)),
	}
	for id, file := range files {
		c.entries[id] = &entry{
			store: news.NewStore(),
			info:  Info{ID: id, File: file},
		}
		c.byFile[file] = id
	}
	return c
}

// OnEvent registers cb to be called after dataset changes.
func (c *Catalog) OnEvent(cb EventCallback) {
	c.cbMu.Lock()
	c.cb = cb
	c.cbMu.Unlock()
}

func (c *Catalog) emit(kind string, id dataset.ID) {
	c.cbMu.RLock()
	cb := c.cb
	c.cbMu.RUnlock()
	if cb != nil {
		cb(kind, id)
	}
}

// Load reads every dataset in parallel. A missing or unreadable source is
// not fatal: the dataset stays empty and its Info carries a diagnostic.
func (c *Catalog) Load(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)
	for id := range c.entries {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			_, _ = c.Reload(id)
			return nil
		})
	}
	return g.Wait()
}

// Reload re-reads one dataset from its source. It reports whether the store
// was replaced; an unchanged checksum leaves the current store (and its
// order) alone. Source errors are returned and recorded as a diagnostic.
func (c *Catalog) Reload(id dataset.ID) (bool, error) {
	e, err := c.entry(id)
	if err != nil {
		return false, err
	}
	e.mu.RLock()
	file := e.info.File
	e.mu.RUnlock()

	start := time.Now()
	store, stats, sum, loadErr := c.read(file)
	if store == nil {
		if !errors.Is(loadErr, apperr.ErrSourceUnavailable) {
			loadErr = fmt.Errorf("%w: %w", apperr.ErrSourceUnavailable, loadErr)
		}
		e.mu.Lock()
		e.store = news.NewStore()
		e.info = Info{ID: id, File: file, LoadedAt: time.Now(), Diagnostic: loadErr.Error()}
		e.mu.Unlock()

		c.logger.Warn("catalog: source unavailable",
			slog.String("dataset", id.String()),
			slog.String("file", file),
			slog.String("error", loadErr.Error()))
		c.emit(EventUnavailable, id)
		return true, loadErr
	}

	e.mu.Lock()
	if loadErr == nil && sum == e.info.Checksum {
		e.mu.Unlock()
		c.logger.Debug("catalog: unchanged", slog.String("dataset", id.String()))
		return false, nil
	}
	e.store = store
	e.info = Info{ID: id, File: file, Checksum: sum, Stats: stats, LoadedAt: time.Now()}
	if loadErr != nil {
		e.info.Diagnostic = loadErr.Error()
	}
	e.mu.Unlock()

	c.logger.Info("catalog: loaded",
		slog.String("dataset", id.String()),
		slog.String("file", file),
		slog.Int("rows", stats.Rows),
		slog.Int("short", stats.Short),
		slog.Int("long", stats.Long),
		slog.Int("undated", stats.Undated),
		slog.Duration("elapsed", time.Since(start)))
	if loadErr != nil {
		c.logger.Warn("catalog: partial load",
			slog.String("dataset", id.String()),
			slog.String("error", loadErr.Error()))
	}
	c.emit(EventLoaded, id)
	return true, loadErr
}

func (c *Catalog) read(file string) (*news.Store, dataset.Stats, string, error) {
	rc, err := c.src.Open(file)
	if err != nil {
		return nil, dataset.Stats{}, "", err
	}
	defer rc.Close()

	cr := checksum.NewReader(rc)
	store, stats, err := dataset.Load(cr, c.delim)
	return store, stats, cr.Sum(), err
}

func (c *Catalog) entry(id dataset.ID) (*entry, error) {
	e, ok := c.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: dataset %q", apperr.ErrInvalidSelector, id)
	}
	return e, nil
}

// View runs fn with shared access to a dataset's store. fn must not modify
// the store or keep it after returning.
func (c *Catalog) View(id dataset.ID, fn func(*news.Store, Info) error) error {
	e, err := c.entry(id)
	if err != nil {
		return err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return fn(e.store, e.info)
}

// Sort orders a dataset by date in place.
func (c *Catalog) Sort(id dataset.ID) (Info, error) {
	e, err := c.entry(id)
	if err != nil {
		return Info{}, err
	}
	e.mu.Lock()
	e.store.Sort()
	e.info.Sorted = true
	info := e.info
	e.mu.Unlock()

	c.emit(EventSorted, id)
	return info, nil
}

// Info returns the state of one dataset.
func (c *Catalog) Info(id dataset.ID) (Info, error) {
	e, err := c.entry(id)
	if err != nil {
		return Info{}, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.info, nil
}

// Infos returns the state of every dataset in menu order.
func (c *Catalog) Infos() []Info {
	out := make([]Info, 0, len(c.entries))
	for _, id := range dataset.IDs {
		if info, err := c.Info(id); err == nil {
			out = append(out, info)
		}
	}
	return out
}

// IDForFile maps a file name inside the data directory to its dataset.
func (c *Catalog) IDForFile(name string) (dataset.ID, bool) {
	id, ok := c.byFile[name]
	return id, ok
}

// Root returns the data directory backing the catalog.
func (c *Catalog) Root() string { return c.src.Root() }

// Sources lists the dataset files present in the data directory, including
// files no dataset is configured to read.
func (c *Catalog) Sources() ([]models.SourceMeta, error) {
	return c.src.List()
}
