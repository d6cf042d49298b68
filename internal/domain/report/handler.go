package report

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/osintdesk/console-api/internal/pkg/errorhandler"
	"github.com/osintdesk/console-api/internal/pkg/response"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Credits handles GET /reports/credits
func (h *Handler) Credits(w http.ResponseWriter, r *http.Request) {
	period, err := periodFromQuery(r)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	summary, err := h.svc.Credits(r.Context(), period)
	if err != nil {
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError,
			"REPORT_CREDITS_FAILED", "Failed to build credit report", err)
		return
	}

	response.OK(w, summary)
}

// Queries handles GET /reports/queries
func (h *Handler) Queries(w http.ResponseWriter, r *http.Request) {
	period, err := periodFromQuery(r)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	summary, err := h.svc.Queries(r.Context(), period)
	if err != nil {
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError,
			"REPORT_QUERIES_FAILED", "Failed to build query report", err)
		return
	}

	response.OK(w, summary)
}

// ExportTransactions handles GET /reports/export/transactions
func (h *Handler) ExportTransactions(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "transactions", h.svc.ExportTransactions)
}

// ExportQueries handles GET /reports/export/queries
func (h *Handler) ExportQueries(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "queries", h.svc.ExportQueries)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request, name string,
	fn func(ctx context.Context, p Period) (string, []byte, error)) {
	period, err := periodFromQuery(r)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	url, data, err := fn(r.Context(), period)
	if err != nil {
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError,
			"REPORT_EXPORT_FAILED", "Failed to export "+name, err)
		return
	}

	if url != "" {
		response.OK(w, map[string]string{"download_url": url})
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func periodFromQuery(r *http.Request) (Period, error) {
	var p Period
	q := r.URL.Query()

	if v := q.Get("officer_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return p, errors.New("invalid officer_id")
		}
		p.OfficerID = &id
	}
	if v := q.Get("date_from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return p, errors.New("invalid date_from: want RFC3339")
		}
		p.DateFrom = &t
	}
	if v := q.Get("date_to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return p, errors.New("invalid date_to: want RFC3339")
		}
		p.DateTo = &t
	}

	return p, nil
}

// Routes returns the report routes
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Get("/credits", h.Credits)
	r.Get("/queries", h.Queries)
	r.Get("/export/transactions", h.ExportTransactions)
	r.Get("/export/queries", h.ExportQueries)
	return r
}
