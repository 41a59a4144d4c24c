// Package newsservice exposes the dataset operations used by the CLI, the
// HTTP API and the MCP server.
package newsservice

import (
	"context"
	"log/slog"
	"time"

	"github.com/starford/newsledger/internal/catalog"
	"github.com/starford/newsledger/internal/dataset"
	"github.com/starford/newsledger/internal/models"
	"github.com/starford/newsledger/internal/news"
	"github.com/starford/newsledger/internal/query"
)

// Page is one window of a dataset in current chain order.
type Page struct {
	Dataset dataset.ID    `json:"dataset"`
	Total   int           `json:"total"`
	Offset  int           `json:"offset"`
	Empty   bool          `json:"empty"`
	Records []news.Record `json:"records"`
}

// CountResult holds the record count of one or more datasets.
type CountResult struct {
	Counts map[dataset.ID]int `json:"counts"`
	Total  int                `json:"total"`
}

// SearchResult is the outcome of a subject or year search.
type SearchResult struct {
	Dataset dataset.ID    `json:"dataset"`
	Found   bool          `json:"found"`
	Skipped int           `json:"skipped"`
	Records []news.Record `json:"records"`
}

// Service coordinates catalog access and query execution.
type Service struct {
	cat     *catalog.Catalog
	year    int
	keyword string
	logger  *slog.Logger
}

// NewService creates a new service. year and keyword are the monthly report
// defaults.
func NewService(cat *catalog.Catalog, year int, keyword string, logger *slog.Logger) *Service {
	return &Service{cat: cat, year: year, keyword: keyword, logger: logger}
}

// ReportYear returns the default year of the monthly report.
func (s *Service) ReportYear() int { return s.year }

func (s *Service) timed(op string, id dataset.ID, start time.Time, attrs ...slog.Attr) {
	attrs = append(attrs,
		slog.String("dataset", id.String()),
		slog.Duration("elapsed", time.Since(start)))
	s.logger.LogAttrs(context.Background(), slog.LevelInfo, op, attrs...)
}

// Datasets returns the state of every dataset.
func (s *Service) Datasets(_ context.Context) []catalog.Info {
	return s.cat.Infos()
}

// Sources lists the dataset files found in the data directory.
func (s *Service) Sources(_ context.Context) ([]models.SourceMeta, error) {
	items, err := s.cat.Sources()
	if err != nil {
		return nil, err
	}
	return nonNilSlice(items), nil
}

// Dataset returns the state of one dataset.
func (s *Service) Dataset(_ context.Context, id dataset.ID) (catalog.Info, error) {
	return s.cat.Info(id)
}

// Display returns up to limit records starting at offset. A non-positive
// limit returns the rest of the chain.
func (s *Service) Display(_ context.Context, id dataset.ID, offset, limit int) (*Page, error) {
	start := time.Now()
	page := &Page{Dataset: id, Offset: offset}
	err := s.cat.View(id, func(st *news.Store, _ catalog.Info) error {
		page.Empty = st.Empty()
		if page.Empty {
			page.Records = []news.Record{}
			return nil
		}
		page.Total = st.Count()
		page.Records = nonNilSlice(st.Page(offset, limit))
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.timed("display", id, start, slog.Int("records", len(page.Records)))
	return page, nil
}

// Sort orders a dataset by date, oldest first.
func (s *Service) Sort(_ context.Context, id dataset.ID) (catalog.Info, error) {
	start := time.Now()
	info, err := s.cat.Sort(id)
	if err != nil {
		return catalog.Info{}, err
	}
	s.timed("sort", id, start, slog.Int("records", info.Stats.Rows))
	return info, nil
}

// Count returns the number of records in a dataset.
func (s *Service) Count(_ context.Context, id dataset.ID) (int, error) {
	start := time.Now()
	var n int
	err := s.cat.View(id, func(st *news.Store, _ catalog.Info) error {
		n = st.Count()
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.timed("count", id, start, slog.Int("records", n))
	return n, nil
}

// CountAll counts each of ids and sums them.
func (s *Service) CountAll(ctx context.Context, ids []dataset.ID) (*CountResult, error) {
	res := &CountResult{Counts: make(map[dataset.ID]int, len(ids))}
	for _, id := range ids {
		n, err := s.Count(ctx, id)
		if err != nil {
			return nil, err
		}
		res.Counts[id] = n
		res.Total += n
	}
	return res, nil
}

// SearchBySubject returns records whose subject equals subject exactly.
func (s *Service) SearchBySubject(_ context.Context, id dataset.ID, subject string) (*SearchResult, error) {
	start := time.Now()
	var res query.Result
	err := s.cat.View(id, func(st *news.Store, _ catalog.Info) error {
		res = query.BySubject(st, subject)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.timed("search_subject", id, start, slog.String("subject", subject), slog.Int("matches", len(res.Records)))
	return toSearchResult(id, res), nil
}

// SearchByYear returns records dated in year.
func (s *Service) SearchByYear(_ context.Context, id dataset.ID, year int) (*SearchResult, error) {
	start := time.Now()
	var res query.Result
	err := s.cat.View(id, func(st *news.Store, _ catalog.Info) error {
		res = query.ByYear(st, year)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.timed("search_year", id, start, slog.Int("year", year), slog.Int("matches", len(res.Records)), slog.Int("skipped", res.Skipped))
	return toSearchResult(id, res), nil
}

// MonthlyReport computes the monthly keyword ratio of a dataset. A zero year
// uses the configured default.
func (s *Service) MonthlyReport(_ context.Context, id dataset.ID, year int) (*query.Report, error) {
	if year == 0 {
		year = s.year
	}
	start := time.Now()
	var rep query.Report
	err := s.cat.View(id, func(st *news.Store, _ catalog.Info) error {
		rep = query.MonthlyRatio(st, year, s.keyword)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.timed("monthly_report", id, start, slog.Int("year", year), slog.Int("counted", rep.Total()))
	return &rep, nil
}

// Reload re-reads a dataset from its source.
func (s *Service) Reload(_ context.Context, id dataset.ID) (catalog.Info, error) {
	if _, err := s.cat.Reload(id); err != nil {
		info, _ := s.cat.Info(id)
		return info, err
	}
	return s.cat.Info(id)
}

func toSearchResult(id dataset.ID, res query.Result) *SearchResult {
	return &SearchResult{
		Dataset: id,
		Found:   res.Found(),
		Skipped: res.Skipped,
		Records: nonNilSlice(res.Records),
	}
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
