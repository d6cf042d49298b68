package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

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

// LoginRequest is the request body for admin login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// RefreshRequest carries a refresh token for rotation or logout
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LoginResponse pairs the admin profile with fresh tokens
type LoginResponse struct {
	Admin  *Admin     `json:"admin"`
	Tokens *TokenPair `json:"tokens"`
}

// Login handles POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	admin, tokens, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			response.Unauthorized(w, "Invalid email or password")
		case errors.Is(err, ErrAccountDisabled):
			response.Forbidden(w, "Account is disabled")
		default:
			errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError,
				"AUTH_LOGIN_FAILED", "Login failed", err)
		}
		return
	}

	response.OK(w, LoginResponse{Admin: admin, Tokens: tokens})
}

// Refresh handles POST /auth/refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	tokens, err := h.svc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRefresh):
			response.Unauthorized(w, "Invalid or expired refresh token")
		case errors.Is(err, ErrAccountDisabled):
			response.Forbidden(w, "Account is disabled")
		default:
			errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError,
				"AUTH_REFRESH_FAILED", "Token refresh failed", err)
		}
		return
	}

	response.OK(w, tokens)
}

// Logout handles POST /auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if err := h.svc.Logout(r.Context(), req.RefreshToken); err != nil {
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError,
			"AUTH_LOGOUT_FAILED", "Logout failed", err)
		return
	}

	response.NoContent(w)
}

// Routes returns the auth routes. None require a token: this is where
// tokens come from.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.Login)
	r.Post("/refresh", h.Refresh)
	r.Post("/logout", h.Logout)
	return r
}
