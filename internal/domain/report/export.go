package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/osintdesk/console-api/internal/domain/ledger"
	"github.com/osintdesk/console-api/internal/domain/query"
	"github.com/osintdesk/console-api/internal/pkg/storage"
)

const exportURLTTL = 15 * time.Minute

// exporter archives CSV files to object storage and hands out presigned
// download links.
type exporter struct {
	store storage.Storage
}

// NewExporter wraps object storage for report archiving. Returns nil for
// a nil store so the service falls back to inline CSV responses.
func NewExporter(store storage.Storage) *exporter {
	if store == nil {
		return nil
	}
	return &exporter{store: store}
}

func (e *exporter) archive(ctx context.Context, prefix string, data []byte) (string, error) {
	key := fmt.Sprintf("reports/%s-%s.csv", prefix, time.Now().UTC().Format("20060102-150405"))
	if err := e.store.Put(ctx, key, bytes.NewReader(data), "text/csv"); err != nil {
		return "", fmt.Errorf("archive %s: %w", key, err)
	}
	return e.store.PresignGet(ctx, key, exportURLTTL)
}

func (s *service) ExportTransactions(ctx context.Context, p Period) (string, []byte, error) {
	txs, err := s.allTransactions(ctx, p)
	if err != nil {
		return "", nil, err
	}

	data, err := transactionsCSV(txs)
	if err != nil {
		return "", nil, err
	}

	if s.exporter == nil {
		return "", data, nil
	}
	url, err := s.exporter.archive(ctx, "transactions", data)
	if err != nil {
		return "", nil, err
	}
	return url, nil, nil
}

func (s *service) ExportQueries(ctx context.Context, p Period) (string, []byte, error) {
	list, err := s.allQueries(ctx, p)
	if err != nil {
		return "", nil, err
	}

	data, err := queriesCSV(list)
	if err != nil {
		return "", nil, err
	}

	if s.exporter == nil {
		return "", data, nil
	}
	url, err := s.exporter.archive(ctx, "queries", data)
	if err != nil {
		return "", nil, err
	}
	return url, nil, nil
}

func transactionsCSV(txs []ledger.Transaction) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"id", "officer_id", "action", "credits", "previous_balance",
		"new_balance", "payment_mode", "payment_reference", "remarks",
		"created_at",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, tx := range txs {
		row := []string{
			tx.ID.String(),
			tx.OfficerID.String(),
			string(tx.Action),
			strconv.Itoa(tx.Credits),
			strconv.Itoa(tx.PreviousBalance),
			strconv.Itoa(tx.NewBalance),
			deref(tx.PaymentMode),
			deref(tx.PaymentReference),
			tx.Remarks,
			tx.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

func queriesCSV(list []query.Query) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"id", "officer_id", "type", "input", "source", "status",
		"credits_used", "response_time_ms", "error_message", "created_at",
		"completed_at",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, q := range list {
		completedAt := ""
		if q.CompletedAt != nil {
			completedAt = q.CompletedAt.UTC().Format(time.RFC3339)
		}
		responseTime := ""
		if q.ResponseTimeMs != nil {
			responseTime = strconv.Itoa(*q.ResponseTimeMs)
		}
		row := []string{
			q.ID.String(),
			q.OfficerID.String(),
			string(q.Type),
			q.Input,
			q.Source,
			string(q.Status),
			strconv.Itoa(q.CreditsUsed),
			responseTime,
			deref(q.ErrorMessage),
			q.CreatedAt.UTC().Format(time.RFC3339),
			completedAt,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
