package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/osintdesk/console-api/internal/domain/ledger"
	"github.com/osintdesk/console-api/internal/domain/officer"
	"github.com/osintdesk/console-api/internal/pkg/ratelimit"
)

// RecordInput carries the fields of an incoming lookup
type RecordInput struct {
	OfficerID   uuid.UUID
	Type        Type
	Input       string
	Source      string
	CreditsUsed int
	SessionID   string
	Platform    string
}

// CompleteInput carries the completion outcome of a lookup
type CompleteInput struct {
	Success        bool
	ResultSummary  string
	ResponseTimeMs int
	ErrorMessage   string
}

// Service records and completes query audit-log events.
type Service interface {
	// Record registers an incoming query as Pending after checking the
	// officer's status, PRO access and hourly rate limit.
	Record(ctx context.Context, in RecordInput) (*Query, error)

	// Complete moves a query to a terminal status. A successful
	// completion settles exactly one ledger Deduction; queries whose
	// deduction is rejected for insufficient balance are marked Failed.
	Complete(ctx context.Context, id uuid.UUID, in CompleteInput) (*Query, error)

	GetByID(ctx context.Context, id uuid.UUID) (*Query, error)
	List(ctx context.Context, filter ListFilter) ([]Query, error)
}

type service struct {
	repo     Repository
	officers officer.Service
	credits  ledger.Service
	limiter  *ratelimit.Limiter
	hub      *Hub // nil disables the live feed
}

// NewService creates a query service
func NewService(db *sqlx.DB, officers officer.Service, credits ledger.Service, limiter *ratelimit.Limiter, hub *Hub) Service {
	return &service{
		repo:     NewRepository(db),
		officers: officers,
		credits:  credits,
		limiter:  limiter,
		hub:      hub,
	}
}

func (s *service) Record(ctx context.Context, in RecordInput) (*Query, error) {
	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown query type %q", ErrInternal, in.Type)
	}
	if in.CreditsUsed < 0 {
		return nil, fmt.Errorf("%w: negative credits_used", ErrInternal)
	}

	o, err := s.officers.GetByID(ctx, in.OfficerID)
	if err != nil {
		if errors.Is(err, officer.ErrNotFound) {
			return nil, officer.ErrNotFound
		}
		return nil, err
	}

	if !o.IsActive() {
		return nil, ErrOfficerNotActive
	}
	if in.Type == TypePRO && !o.ProAccessEnabled {
		return nil, ErrProAccessDisabled
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, o.ID.String(), o.RateLimitPerHour)
		if err != nil {
			// Redis trouble must not block queries; log and continue
			log.Warn().Err(err).Str("officer_id", o.ID.String()).Msg("rate limit check failed")
		} else if !allowed {
			return nil, ErrRateLimited
		}
	}

	q := &Query{
		OfficerID:   in.OfficerID,
		Type:        in.Type,
		Input:       in.Input,
		Source:      in.Source,
		CreditsUsed: in.CreditsUsed,
	}
	if in.SessionID != "" {
		q.SessionID = &in.SessionID
	}
	if in.Platform != "" {
		q.Platform = &in.Platform
	}

	if err := s.repo.Insert(ctx, q); err != nil {
		return nil, err
	}

	if err := s.officers.TouchLastActive(ctx, in.OfficerID); err != nil {
		log.Warn().Err(err).Str("officer_id", in.OfficerID.String()).Msg("failed to touch last_active")
	}

	if s.limiter != nil {
		if remaining, err := s.limiter.Remaining(ctx, o.ID.String(), o.RateLimitPerHour); err == nil {
			q.RateLimitRemaining = &remaining
		}
	}

	s.broadcast(EventQueryRecorded, q)
	return q, nil
}

func (s *service) Complete(ctx context.Context, id uuid.UUID, in CompleteInput) (*Query, error) {
	// Winning the Pending -> Processing transition guarantees the
	// deduction below runs at most once per query.
	q, err := s.repo.Claim(ctx, id)
	if err != nil {
		return nil, err
	}

	if !in.Success {
		finished, err := s.repo.Finish(ctx, id, StatusFailed, in.ResultSummary, in.ResponseTimeMs, in.ErrorMessage)
		if err != nil {
			return nil, err
		}
		s.broadcast(EventQueryCompleted, finished)
		return finished, nil
	}

	if q.CreditsUsed > 0 {
		_, err = s.credits.Append(ctx, q.OfficerID, ledger.ActionDeduction, q.CreditsUsed, ledger.Meta{
			QueryID: &q.ID,
			Remarks: fmt.Sprintf("%s query %s", q.Type, q.ID),
		})
		if err != nil {
			if errors.Is(err, ledger.ErrInsufficientBalance) {
				finished, ferr := s.repo.Finish(ctx, id, StatusFailed, "", in.ResponseTimeMs, "insufficient credit balance")
				if ferr != nil {
					return nil, ferr
				}
				s.broadcast(EventQueryCompleted, finished)
				return finished, ledger.ErrInsufficientBalance
			}
			// The append did not commit. The query must not stay in
			// Processing, so it fails too.
			if finished, ferr := s.repo.Finish(ctx, id, StatusFailed, "", in.ResponseTimeMs, "credit deduction failed"); ferr == nil {
				s.broadcast(EventQueryCompleted, finished)
			} else {
				log.Error().Err(ferr).Str("query_id", id.String()).Msg("failed to fail query after deduction error")
			}
			return nil, err
		}
	}

	finished, err := s.repo.Finish(ctx, id, StatusSuccess, in.ResultSummary, in.ResponseTimeMs, "")
	if err != nil {
		// The deduction is already durable; surface the inconsistency loudly
		log.Error().Err(err).Str("query_id", id.String()).Msg("deducted but failed to finish query")
		return nil, err
	}

	s.broadcast(EventQueryCompleted, finished)
	return finished, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Query, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]Query, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) broadcast(event EventType, q *Query) {
	if s.hub != nil {
		s.hub.Broadcast(event, q)
	}
}
