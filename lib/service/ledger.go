package service

import (
	"context"
	"sort"
	"time"

	"github.com/classfund/classfund.go/common"
	"github.com/classfund/classfund.go/db/models"
	"github.com/uptrace/bun"
)

// LedgerEntry is one chronological line of the class ledger. Amount is
// always positive; Type decides whether it adds to or subtracts from the
// running balance.
type LedgerEntry struct {
	Type       string    `json:"type"`
	RecordID   int64     `json:"record_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Amount     int64     `json:"amount"`
	Title      string    `json:"title,omitempty"`
	Balance    int64     `json:"balance"`
}

// Ledger is the reconstructed financial history of a class: every line
// with its running balance, plus the aggregate totals.
type Ledger struct {
	Entries        []LedgerEntry `json:"entries"`
	TotalIncome    int64         `json:"total_income"`
	TotalExpense   int64         `json:"total_expense"`
	InvalidTotal   int64         `json:"invalid_total"`
	ClosingBalance int64         `json:"closing_balance"`
}

// ledger line types sort income before reversal before expense when they
// share a timestamp
var ledgerTypeRank = map[string]int{
	common.LedgerTypePayment:        0,
	common.LedgerTypeInvalidPayment: 1,
	common.LedgerTypeExpense:        2,
}

// BuildLedger merges the three record streams into one chronological,
// running-balance view. An invalidated payment contributes BOTH its
// original income line (at its verification moment) and a reversal line
// (at its invalidation moment): history is appended to, never rewritten.
func BuildLedger(payments []models.Payment, expenses []models.Expense) *Ledger {
	ledger := &Ledger{Entries: []LedgerEntry{}}

	for _, payment := range payments {
		if payment.Status != common.PaymentStatusVerified && payment.Status != common.PaymentStatusInvalid {
			continue
		}
		if !payment.VerifiedAt.IsZero() {
			ledger.Entries = append(ledger.Entries, LedgerEntry{
				Type:       common.LedgerTypePayment,
				RecordID:   payment.ID,
				OccurredAt: payment.VerifiedAt.Time,
				Amount:     payment.Amount,
			})
		}
		if payment.Status == common.PaymentStatusInvalid && !payment.InvalidatedAt.IsZero() {
			ledger.Entries = append(ledger.Entries, LedgerEntry{
				Type:       common.LedgerTypeInvalidPayment,
				RecordID:   payment.ID,
				OccurredAt: payment.InvalidatedAt.Time,
				Amount:     payment.Amount,
				Title:      payment.InvalidReason,
			})
		}
	}
	for _, expense := range expenses {
		ledger.Entries = append(ledger.Entries, LedgerEntry{
			Type:       common.LedgerTypeExpense,
			RecordID:   expense.ID,
			OccurredAt: expense.OccurredAt(),
			Amount:     expense.Amount,
			Title:      expense.Title,
		})
	}

	sort.SliceStable(ledger.Entries, func(i, j int) bool {
		a, b := ledger.Entries[i], ledger.Entries[j]
		if !a.OccurredAt.Equal(b.OccurredAt) {
			return a.OccurredAt.Before(b.OccurredAt)
		}
		if ledgerTypeRank[a.Type] != ledgerTypeRank[b.Type] {
			return ledgerTypeRank[a.Type] < ledgerTypeRank[b.Type]
		}
		return a.RecordID < b.RecordID
	})

	balance := int64(0)
	for i := range ledger.Entries {
		entry := &ledger.Entries[i]
		switch entry.Type {
		case common.LedgerTypePayment:
			balance += entry.Amount
			ledger.TotalIncome += entry.Amount
		case common.LedgerTypeInvalidPayment:
			balance -= entry.Amount
			ledger.InvalidTotal += entry.Amount
			ledger.TotalExpense += entry.Amount
		case common.LedgerTypeExpense:
			balance -= entry.Amount
			ledger.TotalExpense += entry.Amount
		}
		entry.Balance = balance
	}
	ledger.ClosingBalance = balance
	return ledger
}

// LedgerFilter narrows the ledger to one cycle or a date range. The date
// range applies to the occurrence timestamp of each line.
type LedgerFilter struct {
	FeeCycleID int64
	From       time.Time
	To         time.Time
}

// ClassLedger loads the payment and expense streams for a class and
// reconstructs the ledger.
func (svc *ClassFundService) ClassLedger(ctx context.Context, classId int64, filter LedgerFilter) (*Ledger, error) {
	payments := []models.Payment{}
	pq := svc.DB.NewSelect().Model(&payments).
		Relation("Invoice").
		Join("JOIN fee_cycles AS cycle ON cycle.id = invoice.fee_cycle_id").
		Where("cycle.class_id = ?", classId).
		Where("payment.status IN (?)", bun.In([]string{common.PaymentStatusVerified, common.PaymentStatusInvalid}))
	if filter.FeeCycleID != 0 {
		pq = pq.Where("invoice.fee_cycle_id = ?", filter.FeeCycleID)
	}
	if err := pq.Scan(ctx); err != nil {
		return nil, err
	}

	expenses := []models.Expense{}
	eq := svc.DB.NewSelect().Model(&expenses).Where("class_id = ?", classId)
	if filter.FeeCycleID != 0 {
		eq = eq.Where("fee_cycle_id = ?", filter.FeeCycleID)
	}
	if err := eq.Scan(ctx); err != nil {
		return nil, err
	}

	ledger := BuildLedger(payments, expenses)
	if !filter.From.IsZero() || !filter.To.IsZero() {
		ledger = filterLedger(ledger, filter.From, filter.To)
	}
	return ledger, nil
}

// filterLedger rebuilds the ledger keeping only lines inside the range,
// so per-line balances and totals stay consistent with what is shown.
func filterLedger(ledger *Ledger, from, to time.Time) *Ledger {
	out := &Ledger{Entries: []LedgerEntry{}}
	balance := int64(0)
	for _, entry := range ledger.Entries {
		if !from.IsZero() && entry.OccurredAt.Before(from) {
			continue
		}
		if !to.IsZero() && entry.OccurredAt.After(to) {
			continue
		}
		switch entry.Type {
		case common.LedgerTypePayment:
			balance += entry.Amount
			out.TotalIncome += entry.Amount
		case common.LedgerTypeInvalidPayment:
			balance -= entry.Amount
			out.InvalidTotal += entry.Amount
			out.TotalExpense += entry.Amount
		case common.LedgerTypeExpense:
			balance -= entry.Amount
			out.TotalExpense += entry.Amount
		}
		entry.Balance = balance
		out.Entries = append(out.Entries, entry)
	}
	out.ClosingBalance = balance
	return out
}
