package report

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/osintdesk/console-api/internal/domain/ledger"
	"github.com/osintdesk/console-api/internal/domain/query"
)

const pageSize = 500

// CreditSummary aggregates the ledger for a reporting period
type CreditSummary struct {
	TotalIssued     int      `json:"total_issued"`
	TotalUsed       int      `json:"total_used"`
	UtilizationRate *float64 `json:"utilization_rate"`
	Revenue         int      `json:"revenue"`
	TransactionCnt  int      `json:"transaction_count"`
}

// QuerySummary aggregates the query log for a reporting period
type QuerySummary struct {
	Total           int                  `json:"total"`
	SuccessRate     *float64             `json:"success_rate"`
	CountByType     map[query.Type]int   `json:"count_by_type"`
	CountByStatus   map[query.Status]int `json:"count_by_status"`
	CreditsConsumed int                  `json:"credits_consumed"`
}

// Period bounds a report; either side may be open
type Period struct {
	OfficerID *uuid.UUID
	DateFrom  *time.Time
	DateTo    *time.Time
}

// Service computes console reports and exports raw data.
type Service interface {
	Credits(ctx context.Context, p Period) (*CreditSummary, error)
	Queries(ctx context.Context, p Period) (*QuerySummary, error)

	// ExportTransactions and ExportQueries render CSV. With object
	// storage configured the file is archived and a presigned download
	// URL returned; otherwise url is empty and data holds the CSV.
	ExportTransactions(ctx context.Context, p Period) (url string, data []byte, err error)
	ExportQueries(ctx context.Context, p Period) (url string, data []byte, err error)
}

type service struct {
	credits ledger.Service
	queries query.Service

	ratePerCredit int
	exporter      *exporter // nil without object storage
}

// NewService creates a report service. storage may be nil.
func NewService(credits ledger.Service, queries query.Service, ratePerCredit int, exporter *exporter) Service {
	return &service{
		credits:       credits,
		queries:       queries,
		ratePerCredit: ratePerCredit,
		exporter:      exporter,
	}
}

func (s *service) Credits(ctx context.Context, p Period) (*CreditSummary, error) {
	txs, err := s.allTransactions(ctx, p)
	if err != nil {
		return nil, err
	}

	summary := &CreditSummary{
		TotalIssued:    TotalIssued(txs),
		TotalUsed:      TotalUsed(txs),
		Revenue:        Revenue(txs, s.ratePerCredit),
		TransactionCnt: len(txs),
	}
	if rate, ok := UtilizationRate(txs); ok {
		summary.UtilizationRate = &rate
	}
	return summary, nil
}

func (s *service) Queries(ctx context.Context, p Period) (*QuerySummary, error) {
	list, err := s.allQueries(ctx, p)
	if err != nil {
		return nil, err
	}

	summary := &QuerySummary{
		Total:         len(list),
		CountByType:   make(map[query.Type]int),
		CountByStatus: make(map[query.Status]int),
	}
	for _, q := range list {
		summary.CountByType[q.Type]++
		summary.CountByStatus[q.Status]++
		if q.Status == query.StatusSuccess {
			summary.CreditsConsumed += q.CreditsUsed
		}
	}
	if rate, ok := SuccessRate(list); ok {
		summary.SuccessRate = &rate
	}
	return summary, nil
}

func (s *service) allTransactions(ctx context.Context, p Period) ([]ledger.Transaction, error) {
	var all []ledger.Transaction
	offset := 0
	for {
		page, err := s.credits.History(ctx, ledger.Filter{
			OfficerID: p.OfficerID,
			DateFrom:  p.DateFrom,
			DateTo:    p.DateTo,
			Limit:     pageSize,
			Offset:    offset,
		})
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < pageSize {
			return all, nil
		}
		offset += pageSize
	}
}

func (s *service) allQueries(ctx context.Context, p Period) ([]query.Query, error) {
	var all []query.Query
	offset := 0
	for {
		page, err := s.queries.List(ctx, query.ListFilter{
			OfficerID: p.OfficerID,
			DateFrom:  p.DateFrom,
			DateTo:    p.DateTo,
			Limit:     pageSize,
			Offset:    offset,
		})
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < pageSize {
			return all, nil
		}
		offset += pageSize
	}
}
