package query

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/osintdesk/console-api/internal/domain/ledger"
	"github.com/osintdesk/console-api/internal/domain/officer"
	"github.com/osintdesk/console-api/internal/pkg/errorhandler"
	"github.com/osintdesk/console-api/internal/pkg/response"
	"github.com/osintdesk/console-api/internal/pkg/validator"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// RecordRequest is the request body for registering an incoming query
type RecordRequest struct {
	OfficerID   string `json:"officer_id" validate:"required,uuid"`
	Type        string `json:"type" validate:"required,query_type"`
	Input       string `json:"input" validate:"required,max=500"`
	Source      string `json:"source" validate:"omitempty,max=100"`
	CreditsUsed int    `json:"credits_used" validate:"min=0"`
	SessionID   string `json:"session_id" validate:"omitempty,max=100"`
	Platform    string `json:"platform" validate:"omitempty,max=50"`
}

// CompleteRequest is the request body for finishing a query
type CompleteRequest struct {
	Success        bool   `json:"success"`
	ResultSummary  string `json:"result_summary" validate:"omitempty,max=2000"`
	ResponseTimeMs int    `json:"response_time_ms" validate:"min=0"`
	ErrorMessage   string `json:"error_message" validate:"omitempty,max=1000"`
}

// Record handles POST /queries
func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	var req RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	officerID, err := uuid.Parse(req.OfficerID)
	if err != nil {
		response.BadRequest(w, "Invalid officer ID")
		return
	}

	q, err := h.svc.Record(r.Context(), RecordInput{
		OfficerID:   officerID,
		Type:        Type(req.Type),
		Input:       req.Input,
		Source:      req.Source,
		CreditsUsed: req.CreditsUsed,
		SessionID:   req.SessionID,
		Platform:    req.Platform,
	})
	if err != nil {
		switch {
		case errors.Is(err, officer.ErrNotFound):
			response.NotFound(w, "Officer not found")
		case errors.Is(err, ErrOfficerNotActive):
			response.Forbidden(w, "Officer is not active")
		case errors.Is(err, ErrProAccessDisabled):
			response.Forbidden(w, "PRO access is not enabled for this officer")
		case errors.Is(err, ErrRateLimited):
			response.TooManyRequests(w)
		default:
			errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError,
				"QUERY_RECORD_FAILED", "Failed to record query", err)
		}
		return
	}

	response.Created(w, q)
}

// Complete handles POST /queries/{id}/complete
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid query ID")
		return
	}

	var req CompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	q, err := h.svc.Complete(r.Context(), id, CompleteInput{
		Success:        req.Success,
		ResultSummary:  req.ResultSummary,
		ResponseTimeMs: req.ResponseTimeMs,
		ErrorMessage:   req.ErrorMessage,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(w, "Query not found")
		case errors.Is(err, ErrAlreadyCompleted):
			response.Conflict(w, "Query is already completed")
		case errors.Is(err, ledger.ErrInsufficientBalance):
			// The query is now Failed; report both the outcome and the cause
			errorhandler.HandleErrorWithDetails(r.Context(), w, http.StatusConflict,
				"INSUFFICIENT_BALANCE", "Query failed: insufficient credit balance",
				map[string]string{"query_id": id.String(), "status": string(q.Status)}, err)
		default:
			errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError,
				"QUERY_COMPLETE_FAILED", "Failed to complete query", err)
		}
		return
	}

	response.OK(w, q)
}

// GetByID handles GET /queries/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid query ID")
		return
	}

	q, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "Query not found")
			return
		}
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError,
			"QUERY_GET_FAILED", "Failed to load query", err)
		return
	}

	response.OK(w, q)
}

// List handles GET /queries
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := listFilterFromQuery(r)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	queries, err := h.svc.List(r.Context(), filter)
	if err != nil {
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError,
			"QUERY_LIST_FAILED", "Failed to list queries", err)
		return
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	response.WithMeta(w, queries, response.Meta{
		Count:  len(queries),
		Limit:  limit,
		Offset: filter.Offset,
	})
}

func listFilterFromQuery(r *http.Request) (ListFilter, error) {
	var filter ListFilter
	q := r.URL.Query()

	if v := q.Get("officer_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, errors.New("invalid officer_id")
		}
		filter.OfficerID = &id
	}
	if v := q.Get("type"); v != "" {
		t := Type(v)
		if !t.Valid() {
			return filter, errors.New("invalid type")
		}
		filter.Type = &t
	}
	if v := q.Get("status"); v != "" {
		s := Status(v)
		if !s.Valid() {
			return filter, errors.New("invalid status")
		}
		filter.Status = &s
	}
	if v := q.Get("date_from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, errors.New("invalid date_from: want RFC3339")
		}
		filter.DateFrom = &t
	}
	if v := q.Get("date_to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, errors.New("invalid date_to: want RFC3339")
		}
		filter.DateTo = &t
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, errors.New("invalid limit")
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, errors.New("invalid offset")
		}
		filter.Offset = n
	}

	return filter, nil
}

// Routes returns the query audit-log routes
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Post("/", h.Record)
	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)
	r.Post("/{id}/complete", h.Complete)
	return r
}
