package officer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image/jpeg"
	"net/http"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/osintdesk/console-api/internal/pkg/errorhandler"
	"github.com/osintdesk/console-api/internal/pkg/response"
	"github.com/osintdesk/console-api/internal/pkg/storage"
	"github.com/osintdesk/console-api/internal/pkg/validator"
)

const (
	maxAvatarBytes = 5 << 20 // 5 MB
	avatarSize     = 300
)

type Handler struct {
	svc     Service
	storage storage.Storage // nil when object storage is not configured
}

func NewHandler(svc Service, store storage.Storage) *Handler {
	return &Handler{svc: svc, storage: store}
}

// Create handles POST /officers
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	o := req.toOfficer()
	if err := h.svc.Create(r.Context(), o); err != nil {
		if errors.Is(err, ErrDuplicateMobile) {
			response.Conflict(w, "Mobile number already registered")
			return
		}
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError,
			"OFFICER_CREATE_FAILED", "Failed to create officer", err)
		return
	}

	response.Created(w, o)
}

// Get handles GET /officers/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid officer ID")
		return
	}

	o, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "Officer not found")
			return
		}
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError,
			"OFFICER_GET_FAILED", "Failed to get officer", err)
		return
	}

	response.OK(w, o)
}

// List handles GET /officers
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var filter ListFilter
	q := r.URL.Query()

	if v := q.Get("status"); v != "" {
		status := Status(v)
		if !status.Valid() {
			response.BadRequest(w, "Invalid status filter")
			return
		}
		filter.Status = &status
	}
	filter.Search = q.Get("search")
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			filter.Offset = n
		}
	}

	officers, err := h.svc.List(r.Context(), filter)
	if err != nil {
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError,
			"OFFICER_LIST_FAILED", "Failed to list officers", err)
		return
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	response.WithMeta(w, officers, response.Meta{
		Count:  len(officers),
		Limit:  limit,
		Offset: filter.Offset,
	})
}

// Update handles PUT /officers/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid officer ID")
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	rateLimit := req.RateLimitPerHour
	if rateLimit <= 0 {
		rateLimit = 100
	}

	o := &Officer{
		ID:               id,
		Name:             req.Name,
		Mobile:           req.Mobile,
		TelegramID:       optional(req.TelegramID),
		WhatsappID:       optional(req.WhatsappID),
		Email:            optional(req.Email),
		Department:       optional(req.Department),
		Rank:             optional(req.Rank),
		BadgeNumber:      optional(req.BadgeNumber),
		ProAccessEnabled: req.ProAccessEnabled,
		RateLimitPerHour: rateLimit,
	}

	if err := h.svc.Update(r.Context(), o); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(w, "Officer not found")
		case errors.Is(err, ErrDuplicateMobile):
			response.Conflict(w, "Mobile number already registered")
		default:
			errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError,
				"OFFICER_UPDATE_FAILED", "Failed to update officer", err)
		}
		return
	}

	updated, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError,
			"OFFICER_GET_FAILED", "Failed to reload officer", err)
		return
	}

	response.OK(w, updated)
}

// SetStatus handles PATCH /officers/{id}/status
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid officer ID")
		return
	}

	var req SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if err := h.svc.SetStatus(r.Context(), id, Status(req.Status)); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(w, "Officer not found")
		case errors.Is(err, ErrInvalidStatus):
			response.BadRequest(w, "Invalid officer status")
		default:
			errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError,
				"OFFICER_STATUS_FAILED", "Failed to set status", err)
		}
		return
	}

	response.OK(w, map[string]interface{}{"id": id, "status": req.Status})
}

// Delete handles DELETE /officers/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid officer ID")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "Officer not found")
			return
		}
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError,
			"OFFICER_DELETE_FAILED", "Failed to delete officer", err)
		return
	}

	response.NoContent(w)
}

// Stats handles GET /officers/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError,
			"OFFICER_STATS_FAILED", "Failed to get stats", err)
		return
	}

	response.OK(w, stats)
}

// UploadAvatar handles POST /officers/{id}/avatar.
// The image is squared and resized before upload.
func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		response.Error(w, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "Object storage is not configured")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid officer ID")
		return
	}

	if _, err := h.svc.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "Officer not found")
			return
		}
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError,
			"OFFICER_GET_FAILED", "Failed to get officer", err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarBytes)
	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		response.BadRequest(w, "Invalid multipart form or file too large")
		return
	}

	file, _, err := r.FormFile("avatar")
	if err != nil {
		response.BadRequest(w, "Missing avatar file")
		return
	}
	defer file.Close()

	img, err := imaging.Decode(file, imaging.AutoOrientation(true))
	if err != nil {
		response.BadRequest(w, "Unsupported image format")
		return
	}

	thumb := imaging.Fill(img, avatarSize, avatarSize, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 85}); err != nil {
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError,
			"AVATAR_ENCODE_FAILED", "Failed to encode avatar", err)
		return
	}

	key := fmt.Sprintf("avatars/%s.jpg", id)
	if err := h.storage.Put(r.Context(), key, &buf, "image/jpeg"); err != nil {
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError,
			"AVATAR_UPLOAD_FAILED", "Failed to store avatar", err)
		return
	}

	url := h.storage.GetURL(key)
	if err := h.svc.SetAvatarURL(r.Context(), id, url); err != nil {
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError,
			"AVATAR_SAVE_FAILED", "Failed to save avatar URL", err)
		return
	}

	response.OK(w, map[string]interface{}{"avatar_url": url})
}

// Routes returns the officer directory routes
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/stats", h.Stats)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Patch("/{id}/status", h.SetStatus)
	r.Post("/{id}/avatar", h.UploadAvatar)
	return r
}
