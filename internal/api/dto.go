package api

import (
	"github.com/starford/newsledger/internal/catalog"
	"github.com/starford/newsledger/internal/dataset"
	"github.com/starford/newsledger/internal/models"
	"github.com/starford/newsledger/internal/newsservice"
	"github.com/starford/newsledger/internal/query"
)

// DatasetInfo is the state of one dataset (aliased from the catalog).
type DatasetInfo = catalog.Info

// DatasetListResponse wraps the dataset listing.
type DatasetListResponse struct {
	Datasets []DatasetInfo `json:"datasets"`
}

// SourceListResponse wraps the data directory listing.
type SourceListResponse struct {
	Sources []models.SourceMeta `json:"sources"`
}

// RecordsResponse is one page of records (aliased from the service layer).
type RecordsResponse = newsservice.Page

// CountResponse is returned by the count endpoint.
type CountResponse struct {
	Dataset string `json:"dataset"`
	Count   int    `json:"count"`
	// Counts breaks a multi-dataset count down per dataset.
	Counts    map[dataset.ID]int `json:"counts,omitempty"`
	ElapsedMS int64              `json:"elapsed_ms"`
}

// SortResponse is returned after sorting a dataset.
type SortResponse struct {
	Dataset   DatasetInfo `json:"dataset"`
	ElapsedMS int64       `json:"elapsed_ms"`
}

// SearchResponse wraps search results. Found is false when nothing matched.
type SearchResponse struct {
	*newsservice.SearchResult
	ElapsedMS int64 `json:"elapsed_ms"`
}

// ReportResponse wraps the monthly ratio report.
type ReportResponse struct {
	Dataset string `json:"dataset"`
	*query.Report
	ElapsedMS int64 `json:"elapsed_ms"`
}
