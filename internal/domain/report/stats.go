package report

import (
	"github.com/osintdesk/console-api/internal/domain/ledger"
	"github.com/osintdesk/console-api/internal/domain/query"
)

// TotalIssued sums the credits granted by issuing transactions
// (Renewal and Top-up).
func TotalIssued(txs []ledger.Transaction) int {
	total := 0
	for _, tx := range txs {
		if tx.Action.Issues() {
			total += tx.Credits
		}
	}
	return total
}

// TotalUsed sums the credits consumed by deductions.
func TotalUsed(txs []ledger.Transaction) int {
	total := 0
	for _, tx := range txs {
		if tx.Action == ledger.ActionDeduction {
			total += -tx.Credits
		}
	}
	return total
}

// UtilizationRate is TotalUsed over TotalIssued. ok is false when nothing
// has been issued; callers must not divide by zero themselves.
func UtilizationRate(txs []ledger.Transaction) (float64, bool) {
	issued := TotalIssued(txs)
	if issued == 0 {
		return 0, false
	}
	return float64(TotalUsed(txs)) / float64(issued), true
}

// SuccessRate is the share of queries that completed successfully. ok is
// false for an empty slice.
func SuccessRate(queries []query.Query) (float64, bool) {
	if len(queries) == 0 {
		return 0, false
	}
	success := 0
	for _, q := range queries {
		if q.Status == query.StatusSuccess {
			success++
		}
	}
	return float64(success) / float64(len(queries)), true
}

// Revenue values consumed credits at ratePerCredit currency units.
func Revenue(txs []ledger.Transaction, ratePerCredit int) int {
	return TotalUsed(txs) * ratePerCredit
}
