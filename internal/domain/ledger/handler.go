package ledger

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

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

// AppendRequest is the request body for recording a credit transaction
type AppendRequest struct {
	OfficerID        string `json:"officer_id" validate:"required,uuid"`
	Action           string `json:"action" validate:"required,credit_action"`
	Credits          int    `json:"credits" validate:"required"`
	PaymentMode      string `json:"payment_mode" validate:"omitempty,max=100"`
	PaymentReference string `json:"payment_reference" validate:"omitempty,max=200"`
	Remarks          string `json:"remarks" validate:"omitempty,max=500"`
}

// Append handles POST /credits/transactions
func (h *Handler) Append(w http.ResponseWriter, r *http.Request) {
	var req AppendRequest
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

	meta := Meta{
		PaymentMode:      req.PaymentMode,
		PaymentReference: req.PaymentReference,
		Remarks:          req.Remarks,
	}
	if adminID := middleware.GetAdminID(r.Context()); adminID != uuid.Nil {
		meta.ProcessedBy = &adminID
	}

	txn, err := h.svc.Append(r.Context(), officerID, Action(req.Action), req.Credits, meta)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownOfficer):
			response.NotFound(w, "Officer not found")
		case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvalidAction):
			response.BadRequest(w, err.Error())
		case errors.Is(err, ErrInsufficientBalance):
			response.Conflict(w, "Insufficient credit balance")
		default:
			errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError,
				"LEDGER_APPEND_FAILED", "Failed to record transaction", err)
		}
		return
	}

	response.Created(w, txn)
}

// History handles GET /credits/transactions
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	transactions, err := h.svc.History(r.Context(), filter)
	if err != nil {
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError,
			"LEDGER_HISTORY_FAILED", "Failed to list transactions", err)
		return
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	response.WithMeta(w, transactions, response.Meta{
		Count:  len(transactions),
		Limit:  limit,
		Offset: filter.Offset,
	})
}

// Balance handles GET /credits/balance/{officerID}
func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	officerID, err := uuid.Parse(chi.URLParam(r, "officerID"))
	if err != nil {
		response.BadRequest(w, "Invalid officer ID")
		return
	}

	balance, err := h.svc.BalanceOf(r.Context(), officerID)
	if err != nil {
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError,
			"LEDGER_BALANCE_FAILED", "Failed to read balance", err)
		return
	}

	response.OK(w, map[string]interface{}{"officer_id": officerID, "balance": balance})
}

func filterFromQuery(r *http.Request) (Filter, error) {
	var filter Filter
	q := r.URL.Query()

	if v := q.Get("officer_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, errors.New("invalid officer_id")
		}
		filter.OfficerID = &id
	}
	if v := q.Get("action"); v != "" {
		action := Action(v)
		if !action.Valid() {
			return filter, errors.New("invalid action")
		}
		filter.Action = &action
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

// Routes returns the credit ledger routes
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Post("/transactions", h.Append)
	r.Get("/transactions", h.History)
	r.Get("/balance/{officerID}", h.Balance)
	return r
}
