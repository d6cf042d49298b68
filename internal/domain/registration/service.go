package registration

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/osintdesk/console-api/internal/domain/officer"
)

// ApproveInput carries approval parameters alongside the reviewer identity
type ApproveInput struct {
	ReviewerID       uuid.UUID
	ProAccessEnabled bool
	RateLimitPerHour int
}

// Service handles the officer signup review workflow.
type Service interface {
	Submit(ctx context.Context, req *Request) error
	GetByID(ctx context.Context, id uuid.UUID) (*Request, error)
	List(ctx context.Context, filter ListFilter) ([]Request, error)

	// Approve creates the officer from the request's applicant fields,
	// then stamps the request Approved with a link to the new officer.
	Approve(ctx context.Context, id uuid.UUID, in ApproveInput) (*Request, error)

	Reject(ctx context.Context, id, reviewerID uuid.UUID, reason string) (*Request, error)
}

type service struct {
	repo     Repository
	officers officer.Service

	// defaultRateLimit applies when approval specifies no hourly limit
	defaultRateLimit int
}

// NewService creates a registration service
func NewService(db *sqlx.DB, officers officer.Service, defaultRateLimit int) Service {
	return &service{
		repo:             NewRepository(db),
		officers:         officers,
		defaultRateLimit: defaultRateLimit,
	}
}

func (s *service) Submit(ctx context.Context, req *Request) error {
	return s.repo.Insert(ctx, req)
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Request, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]Request, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Approve(ctx context.Context, id uuid.UUID, in ApproveInput) (*Request, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != StatusPending {
		return nil, ErrAlreadyProcessed
	}

	rateLimit := in.RateLimitPerHour
	if rateLimit <= 0 {
		rateLimit = s.defaultRateLimit
	}

	o := &officer.Officer{
		Name:             req.Name,
		Mobile:           req.Mobile,
		Email:            req.Email,
		Department:       req.Department,
		Rank:             req.Rank,
		BadgeNumber:      req.BadgeNumber,
		ProAccessEnabled: in.ProAccessEnabled,
		RateLimitPerHour: rateLimit,
	}
	if err := s.officers.Create(ctx, o); err != nil {
		return nil, err
	}

	approved, err := s.repo.MarkApproved(ctx, id, in.ReviewerID, o.ID)
	if err != nil {
		// A concurrent reviewer won the transition after our status
		// read; clean up the officer we created.
		if derr := s.officers.Delete(ctx, o.ID); derr != nil {
			return nil, derr
		}
		return nil, err
	}

	return approved, nil
}

func (s *service) Reject(ctx context.Context, id, reviewerID uuid.UUID, reason string) (*Request, error) {
	return s.repo.MarkRejected(ctx, id, reviewerID, reason)
}
