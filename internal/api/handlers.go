package api

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/starford/newsledger/internal/dataset"
	"github.com/starford/newsledger/internal/newsservice"
	"github.com/starford/newsledger/internal/render"
)

// Handler holds API route handlers.
type Handler struct {
	svc *newsservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *newsservice.Service) *Handler {
	return &Handler{svc: svc}
}

// datasetID resolves the {id} URL parameter. Menu numbers 1-3 are accepted.
func datasetID(w http.ResponseWriter, r *http.Request) (dataset.ID, bool) {
	id, err := dataset.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return "", false
	}
	return id, true
}

func wantsText(r *http.Request) bool {
	return r.URL.Query().Get("format") == "text"
}

func queryInt(r *http.Request, key string) (int, bool, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, true, err
	}
	return n, true, nil
}

func elapsedMS(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}

// ListDatasets handles GET /api/datasets.
//
//	@Summary		List the configured datasets and their load state
//	@Tags			datasets
//	@Produce		json
//	@Success		200		{object}	DatasetListResponse
//	@Security		BearerAuth
//	@Router			/datasets [get]
func (h *Handler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, DatasetListResponse{Datasets: h.svc.Datasets(r.Context())})
}

// ListSources handles GET /api/sources.
//
//	@Summary		List the dataset files present in the data directory
//	@Tags			datasets
//	@Produce		json
//	@Success		200		{object}	SourceListResponse
//	@Security		BearerAuth
//	@Router			/sources [get]
func (h *Handler) ListSources(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Sources(r.Context())
	if err != nil {
		slog.Error("list sources failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, SourceListResponse{Sources: items})
}

// GetDataset handles GET /api/datasets/{id}.
//
//	@Summary		Get the load state of one dataset
//	@Tags			datasets
//	@Produce		json
//	@Param			id	path		string	true	"Dataset"	Enums(true, fake, combined)
//	@Success		200	{object}	DatasetInfo
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/datasets/{id} [get]
func (h *Handler) GetDataset(w http.ResponseWriter, r *http.Request) {
	id, ok := datasetID(w, r)
	if !ok {
		return
	}
	info, err := h.svc.Dataset(r.Context(), id)
	if err != nil {
		writeError(w, "get dataset", id, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// Records handles GET /api/datasets/{id}/records.
//
//	@Summary		Page through the records of a dataset in current order
//	@Tags			records
//	@Produce		json,plain
//	@Param			id		path		string	true	"Dataset"
//	@Param			offset	query		int		false	"Records to skip"
//	@Param			limit	query		int		false	"Page size (0 = all)"
//	@Param			format	query		string	false	"Output format"	Enums(json, text)
//	@Success		200		{object}	RecordsResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/datasets/{id}/records [get]
func (h *Handler) Records(w http.ResponseWriter, r *http.Request) {
	id, ok := datasetID(w, r)
	if !ok {
		return
	}
	offset, _, err := queryInt(r, "offset")
	if err != nil || offset < 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("offset must be a non-negative integer"))
		return
	}
	limit, _, err := queryInt(r, "limit")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("limit must be an integer"))
		return
	}

	page, err := h.svc.Display(r.Context(), id, offset, limit)
	if err != nil {
		writeError(w, "display", id, err)
		return
	}
	if wantsText(r) {
		writeText(w, func(out io.Writer) error { return render.Records(out, page.Records) })
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Count handles GET /api/datasets/{id}/count. The id "both" sums the true
// and fake datasets and reports each count.
//
//	@Summary		Count the records of a dataset, or of true and fake together
//	@Tags			records
//	@Produce		json
//	@Param			id	path		string	true	"Dataset"	Enums(true, fake, combined, both)
//	@Success		200	{object}	CountResponse
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/datasets/{id}/count [get]
func (h *Handler) Count(w http.ResponseWriter, r *http.Request) {
	ids, err := dataset.ParseIDs(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	start := time.Now()
	res, err := h.svc.CountAll(r.Context(), ids)
	if err != nil {
		writeError(w, "count", ids[0], err)
		return
	}
	resp := CountResponse{Dataset: ids[0].String(), Count: res.Total, ElapsedMS: elapsedMS(start)}
	if len(ids) > 1 {
		resp.Dataset = dataset.Both
		resp.Counts = res.Counts
	}
	writeJSON(w, http.StatusOK, resp)
}

// Sort handles POST /api/datasets/{id}/sort.
//
//	@Summary		Sort a dataset by date, oldest first
//	@Tags			datasets
//	@Produce		json
//	@Param			id	path		string	true	"Dataset"
//	@Success		200	{object}	SortResponse
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/datasets/{id}/sort [post]
func (h *Handler) Sort(w http.ResponseWriter, r *http.Request) {
	id, ok := datasetID(w, r)
	if !ok {
		return
	}
	start := time.Now()
	info, err := h.svc.Sort(r.Context(), id)
	if err != nil {
		writeError(w, "sort", id, err)
		return
	}
	writeJSON(w, http.StatusOK, SortResponse{Dataset: info, ElapsedMS: elapsedMS(start)})
}

// Search handles GET /api/datasets/{id}/search.
// Exactly one of subject or year must be given.
//
//	@Summary		Search a dataset by exact subject or by year
//	@Tags			records
//	@Produce		json
//	@Param			id		path		string	true	"Dataset"
//	@Param			subject	query		string	false	"Exact, case-sensitive subject"
//	@Param			year	query		int		false	"Four-digit year"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/datasets/{id}/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	id, ok := datasetID(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	_, hasSubject := q["subject"]
	year, hasYear, err := queryInt(r, "year")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("year must be an integer"))
		return
	}
	if hasSubject == hasYear {
		writeJSON(w, http.StatusBadRequest, errorBody("exactly one of subject or year is required"))
		return
	}

	start := time.Now()
	var res *newsservice.SearchResult
	if hasSubject {
		res, err = h.svc.SearchBySubject(r.Context(), id, q.Get("subject"))
	} else {
		res, err = h.svc.SearchByYear(r.Context(), id, year)
	}
	if err != nil {
		writeError(w, "search", id, err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{SearchResult: res, ElapsedMS: elapsedMS(start)})
}

// Report handles GET /api/datasets/{id}/report.
//
//	@Summary		Monthly share of keyword-tagged articles for one year
//	@Tags			reports
//	@Produce		json,plain
//	@Param			id		path		string	true	"Dataset"
//	@Param			year	query		int		false	"Year (defaults to the configured report year)"
//	@Param			format	query		string	false	"Output format"	Enums(json, text)
//	@Success		200		{object}	ReportResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/datasets/{id}/report [get]
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	id, ok := datasetID(w, r)
	if !ok {
		return
	}
	year, _, err := queryInt(r, "year")
	if err != nil || year < 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("year must be a positive integer"))
		return
	}

	start := time.Now()
	rep, err := h.svc.MonthlyReport(r.Context(), id, year)
	if err != nil {
		writeError(w, "report", id, err)
		return
	}
	if wantsText(r) {
		writeText(w, func(out io.Writer) error { return render.Report(out, *rep) })
		return
	}
	writeJSON(w, http.StatusOK, ReportResponse{Dataset: id.String(), Report: rep, ElapsedMS: elapsedMS(start)})
}

// Reload handles POST /api/datasets/{id}/reload.
//
//	@Summary		Re-read a dataset from its source file
//	@Tags			datasets
//	@Produce		json
//	@Param			id	path		string	true	"Dataset"
//	@Success		200	{object}	DatasetInfo
//	@Failure		503	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/datasets/{id}/reload [post]
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	id, ok := datasetID(w, r)
	if !ok {
		return
	}
	info, err := h.svc.Reload(r.Context(), id)
	if err != nil {
		writeError(w, "reload", id, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}
