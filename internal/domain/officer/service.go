package officer

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Service defines directory operations over officers.
type Service interface {
	Create(ctx context.Context, o *Officer) error
	GetByID(ctx context.Context, id uuid.UUID) (*Officer, error)
	List(ctx context.Context, filter ListFilter) ([]Officer, error)
	Update(ctx context.Context, o *Officer) error

	// SetStatus transitions the lifecycle status. Transitions are
	// unrestricted among the three states and idempotent.
	SetStatus(ctx context.Context, id uuid.UUID, status Status) error

	SetAvatarURL(ctx context.Context, id uuid.UUID, url string) error
	TouchLastActive(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Stats(ctx context.Context) (*Stats, error)
}

type service struct {
	repo Repository
}

// NewService creates a directory service backed by PostgreSQL
func NewService(db *sqlx.DB) Service {
	return &service{repo: NewRepository(db)}
}

func (s *service) Create(ctx context.Context, o *Officer) error {
	if o.Status != "" && !o.Status.Valid() {
		return ErrInvalidStatus
	}
	return s.repo.Create(ctx, o)
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Officer, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]Officer, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, o *Officer) error {
	return s.repo.Update(ctx, o)
}

func (s *service) SetStatus(ctx context.Context, id uuid.UUID, status Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	return s.repo.SetStatus(ctx, id, status)
}

func (s *service) SetAvatarURL(ctx context.Context, id uuid.UUID, url string) error {
	return s.repo.SetAvatarURL(ctx, id, url)
}

func (s *service) TouchLastActive(ctx context.Context, id uuid.UUID) error {
	return s.repo.TouchLastActive(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.repo.Exists(ctx, id)
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.Stats(ctx)
}
