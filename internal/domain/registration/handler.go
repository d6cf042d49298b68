package registration

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/osintdesk/console-api/internal/domain/officer"
	"github.com/osintdesk/console-api/internal/middleware"
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

// SubmitRequest is the request body for an officer signup
type SubmitRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=200"`
	Mobile      string `json:"mobile" validate:"required,min=5,max=20"`
	Email       string `json:"email" validate:"omitempty,email"`
	Department  string `json:"department" validate:"omitempty,max=200"`
	Rank        string `json:"rank" validate:"omitempty,max=100"`
	BadgeNumber string `json:"badge_number" validate:"omitempty,max=50"`
	Notes       string `json:"notes" validate:"omitempty,max=1000"`
}

// ApproveRequest is the request body for approving a signup
type ApproveRequest struct {
	ProAccessEnabled bool `json:"pro_access_enabled"`
	RateLimitPerHour int  `json:"rate_limit_per_hour" validate:"omitempty,min=1,max=10000"`
}

// RejectRequest is the request body for rejecting a signup
type RejectRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// Submit handles POST /registrations. It is the one unauthenticated
// endpoint: applicants have no account yet.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	reg := &Request{
		Name:        req.Name,
		Mobile:      req.Mobile,
		Email:       optional(req.Email),
		Department:  optional(req.Department),
		Rank:        optional(req.Rank),
		BadgeNumber: optional(req.BadgeNumber),
		Notes:       optional(req.Notes),
	}

	if err := h.svc.Submit(r.Context(), reg); err != nil {
		if errors.Is(err, ErrDuplicateMobile) {
			response.Conflict(w, "A request with this mobile number already exists")
			return
		}
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError,
			"REGISTRATION_SUBMIT_FAILED", "Failed to submit request", err)
		return
	}

	response.Created(w, reg)
}

// List handles GET /registrations
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var filter ListFilter
	q := r.URL.Query()

	if v := q.Get("status"); v != "" {
		s := Status(v)
		if !s.Valid() {
			response.BadRequest(w, "Invalid status")
			return
		}
		filter.Status = &s
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			response.BadRequest(w, "Invalid limit")
			return
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			response.BadRequest(w, "Invalid offset")
			return
		}
		filter.Offset = n
	}

	requests, err := h.svc.List(r.Context(), filter)
	if err != nil {
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError,
			"REGISTRATION_LIST_FAILED", "Failed to list requests", err)
		return
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	response.WithMeta(w, requests, response.Meta{
		Count:  len(requests),
		Limit:  limit,
		Offset: filter.Offset,
	})
}

// GetByID handles GET /registrations/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid request ID")
		return
	}

	req, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "Request not found")
			return
		}
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError,
			"REGISTRATION_GET_FAILED", "Failed to load request", err)
		return
	}

	response.OK(w, req)
}

// Approve handles POST /registrations/{id}/approve
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid request ID")
		return
	}

	var req ApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	approved, err := h.svc.Approve(r.Context(), id, ApproveInput{
		ReviewerID:       middleware.GetAdminID(r.Context()),
		ProAccessEnabled: req.ProAccessEnabled,
		RateLimitPerHour: req.RateLimitPerHour,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(w, "Request not found")
		case errors.Is(err, ErrAlreadyProcessed):
			response.Conflict(w, "Request is already processed")
		case errors.Is(err, officer.ErrDuplicateMobile):
			response.Conflict(w, "An officer with this mobile number already exists")
		default:
			errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError,
				"REGISTRATION_APPROVE_FAILED", "Failed to approve request", err)
		}
		return
	}

	response.OK(w, approved)
}

// Reject handles POST /registrations/{id}/reject
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid request ID")
		return
	}

	var req RejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	rejected, err := h.svc.Reject(r.Context(), id, middleware.GetAdminID(r.Context()), req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(w, "Request not found")
		case errors.Is(err, ErrAlreadyProcessed):
			response.Conflict(w, "Request is already processed")
		default:
			errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError,
				"REGISTRATION_REJECT_FAILED", "Failed to reject request", err)
		}
		return
	}

	response.OK(w, rejected)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Routes returns the registration routes. Submit is public; review
// operations require an authenticated admin.
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Submit)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.List)
		r.Get("/{id}", h.GetByID)
		r.Post("/{id}/approve", h.Approve)
		r.Post("/{id}/reject", h.Reject)
	})

	return r
}
