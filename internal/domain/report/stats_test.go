package report_test

import (
	"math"
	"testing"

	"github.com/osintdesk/console-api/internal/domain/ledger"
	"github.com/osintdesk/console-api/internal/domain/query"
	"github.com/osintdesk/console-api/internal/domain/report"
)

func tx(action ledger.Action, credits int) ledger.Transaction {
	return ledger.Transaction{Action: action, Credits: credits}
}

func TestCreditAggregates(t *testing.T) {
	txs := []ledger.Transaction{
		tx(ledger.ActionTopUp, 50),
		tx(ledger.ActionDeduction, -12),
		tx(ledger.ActionRenewal, 10),
		tx(ledger.ActionRefund, 5),
		tx(ledger.ActionAdjustment, -3),
	}

	if got := report.TotalIssued(txs); got != 60 {
		t.Fatalf("TotalIssued: expected 60, got %d", got)
	}
	if got := report.TotalUsed(txs); got != 12 {
		t.Fatalf("TotalUsed: expected 12, got %d", got)
	}

	rate, ok := report.UtilizationRate(txs)
	if !ok {
		t.Fatal("UtilizationRate: expected ok")
	}
	if math.Abs(rate-0.2) > 1e-9 {
		t.Fatalf("UtilizationRate: expected 0.2, got %f", rate)
	}

	if got := report.Revenue(txs, 2); got != 24 {
		t.Fatalf("Revenue: expected 24 at rate 2, got %d", got)
	}
}

func TestUtilizationRateNothingIssued(t *testing.T) {
	txs := []ledger.Transaction{
		tx(ledger.ActionRefund, 5),
		tx(ledger.ActionDeduction, -2),
	}

	if _, ok := report.UtilizationRate(txs); ok {
		t.Fatal("expected ok=false when nothing issued")
	}
	if _, ok := report.UtilizationRate(nil); ok {
		t.Fatal("expected ok=false on empty slice")
	}
}

func TestSuccessRate(t *testing.T) {
	queries := []query.Query{
		{Status: query.StatusSuccess},
		{Status: query.StatusSuccess},
		{Status: query.StatusFailed},
		{Status: query.StatusPending},
	}

	rate, ok := report.SuccessRate(queries)
	if !ok {
		t.Fatal("expected ok")
	}
	if math.Abs(rate-0.5) > 1e-9 {
		t.Fatalf("expected 0.5, got %f", rate)
	}

	if _, ok := report.SuccessRate(nil); ok {
		t.Fatal("expected ok=false on empty slice")
	}
}

func TestRefundsDoNotCountAsIssued(t *testing.T) {
	txs := []ledger.Transaction{
		tx(ledger.ActionTopUp, 100),
		tx(ledger.ActionDeduction, -40),
		tx(ledger.ActionRefund, 40),
		tx(ledger.ActionDeduction, -40),
	}

	if got := report.TotalIssued(txs); got != 100 {
		t.Fatalf("refund must not raise issued total: expected 100, got %d", got)
	}
	if got := report.TotalUsed(txs); got != 80 {
		t.Fatalf("expected used 80, got %d", got)
	}
}
