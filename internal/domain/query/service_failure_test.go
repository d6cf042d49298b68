package query

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/osintdesk/console-api/internal/domain/ledger"
)

type stubRepository struct {
	claimed *Query

	finishedStatus  Status
	finishedMessage string
}

func (s *stubRepository) Insert(ctx context.Context, q *Query) error { return nil }

func (s *stubRepository) GetByID(ctx context.Context, id uuid.UUID) (*Query, error) {
	return s.claimed, nil
}

func (s *stubRepository) List(ctx context.Context, filter ListFilter) ([]Query, error) {
	return nil, nil
}

func (s *stubRepository) Claim(ctx context.Context, id uuid.UUID) (*Query, error) {
	return s.claimed, nil
}

func (s *stubRepository) Finish(ctx context.Context, id uuid.UUID, status Status, resultSummary string, responseTimeMs int, errorMessage string) (*Query, error) {
	s.finishedStatus = status
	s.finishedMessage = errorMessage
	finished := *s.claimed
	finished.Status = status
	return &finished, nil
}

type failingLedger struct {
	err error
}

func (f *failingLedger) Append(ctx context.Context, officerID uuid.UUID, action ledger.Action, amount int, meta ledger.Meta) (*ledger.Transaction, error) {
	return nil, f.err
}

func (f *failingLedger) BalanceOf(ctx context.Context, officerID uuid.UUID) (int, error) {
	return 0, nil
}

func (f *failingLedger) History(ctx context.Context, filter ledger.Filter) ([]ledger.Transaction, error) {
	return nil, nil
}

// A deduction rejected for any reason other than balance must still move
// the query out of Processing.
func TestCompleteDeductionErrorFailsQuery(t *testing.T) {
	appendErr := errors.New("connection reset")
	repo := &stubRepository{
		claimed: &Query{
			ID:          uuid.New(),
			OfficerID:   uuid.New(),
			Type:        TypeOSINT,
			CreditsUsed: 10,
			Status:      StatusProcessing,
		},
	}
	svc := &service{repo: repo, credits: &failingLedger{err: appendErr}}

	_, err := svc.Complete(context.Background(), repo.claimed.ID, CompleteInput{Success: true})
	if !errors.Is(err, appendErr) {
		t.Fatalf("expected the deduction error to surface, got %v", err)
	}
	if repo.finishedStatus != StatusFailed {
		t.Fatalf("expected query to be marked Failed, got %q", repo.finishedStatus)
	}
	if repo.finishedMessage != "credit deduction failed" {
		t.Fatalf("unexpected failure message %q", repo.finishedMessage)
	}
}

// Insufficient balance keeps its dedicated error and message.
func TestCompleteInsufficientBalanceMessage(t *testing.T) {
	repo := &stubRepository{
		claimed: &Query{
			ID:          uuid.New(),
			OfficerID:   uuid.New(),
			Type:        TypePRO,
			CreditsUsed: 25,
			Status:      StatusProcessing,
		},
	}
	svc := &service{repo: repo, credits: &failingLedger{err: ledger.ErrInsufficientBalance}}

	finished, err := svc.Complete(context.Background(), repo.claimed.ID, CompleteInput{Success: true})
	if !errors.Is(err, ledger.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if finished == nil || finished.Status != StatusFailed {
		t.Fatal("expected the failed query back")
	}
	if repo.finishedMessage != "insufficient credit balance" {
		t.Fatalf("unexpected failure message %q", repo.finishedMessage)
	}
}
