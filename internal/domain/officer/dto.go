package officer

// CreateRequest is the request body for registering an officer
type CreateRequest struct {
	Name             string `json:"name" validate:"required,min=2,max=200"`
	Mobile           string `json:"mobile" validate:"required,min=5,max=20"`
	TelegramID       string `json:"telegram_id" validate:"omitempty,max=100"`
	WhatsappID       string `json:"whatsapp_id" validate:"omitempty,max=100"`
	Email            string `json:"email" validate:"omitempty,email"`
	Department       string `json:"department" validate:"omitempty,max=200"`
	Rank             string `json:"rank" validate:"omitempty,max=100"`
	BadgeNumber      string `json:"badge_number" validate:"omitempty,max=50"`
	ProAccessEnabled bool   `json:"pro_access_enabled"`
	RateLimitPerHour int    `json:"rate_limit_per_hour" validate:"omitempty,min=1,max=10000"`
}

// UpdateRequest is the request body for editing an officer
type UpdateRequest struct {
	Name             string `json:"name" validate:"required,min=2,max=200"`
	Mobile           string `json:"mobile" validate:"required,min=5,max=20"`
	TelegramID       string `json:"telegram_id" validate:"omitempty,max=100"`
	WhatsappID       string `json:"whatsapp_id" validate:"omitempty,max=100"`
	Email            string `json:"email" validate:"omitempty,email"`
	Department       string `json:"department" validate:"omitempty,max=200"`
	Rank             string `json:"rank" validate:"omitempty,max=100"`
	BadgeNumber      string `json:"badge_number" validate:"omitempty,max=50"`
	ProAccessEnabled bool   `json:"pro_access_enabled"`
	RateLimitPerHour int    `json:"rate_limit_per_hour" validate:"omitempty,min=1,max=10000"`
}

// SetStatusRequest is the request body for a status transition
type SetStatusRequest struct {
	Status string `json:"status" validate:"required,officer_status"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (req *CreateRequest) toOfficer() *Officer {
	rateLimit := req.RateLimitPerHour
	if rateLimit <= 0 {
		rateLimit = 100
	}
	return &Officer{
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
}
