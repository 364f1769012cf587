package service

import (
	"testing"
	"time"

	"github.com/classfund/classfund.go/common"
	"github.com/classfund/classfund.go/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
)

func verifiedPayment(id, amount int64, verifiedAt time.Time) models.Payment {
	return models.Payment{
		ID:         id,
		Amount:     amount,
		Status:     common.PaymentStatusVerified,
		VerifiedAt: bun.NullTime{Time: verifiedAt},
	}
}

func TestLedgerIncomeAndExpense(t *testing.T) {
	t0 := time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)
	payments := []models.Payment{verifiedPayment(1, 200000, t0)}
	expenses := []models.Expense{{
		ID:      1,
		Amount:  50000,
		Title:   "Water bottles",
		SpentAt: bun.NullTime{Time: t0.Add(24 * time.Hour)},
	}}

	ledger := BuildLedger(payments, expenses)

	assert.Equal(t, int64(200000), ledger.TotalIncome)
	assert.Equal(t, int64(50000), ledger.TotalExpense)
	assert.Equal(t, int64(0), ledger.InvalidTotal)
	assert.Equal(t, int64(150000), ledger.ClosingBalance)
	assert.Len(t, ledger.Entries, 2)
	assert.Equal(t, int64(200000), ledger.Entries[0].Balance)
	assert.Equal(t, int64(150000), ledger.Entries[1].Balance)
}

func TestLedgerKeepsIncomeLineAfterInvalidation(t *testing.T) {
	t0 := time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)
	invalidated := verifiedPayment(1, 200000, t0)
	invalidated.Status = common.PaymentStatusInvalid
	invalidated.InvalidatedAt = bun.NullTime{Time: t0.Add(48 * time.Hour)}
	invalidated.InvalidReason = "wrong_invoice"
	expenses := []models.Expense{{
		ID:      1,
		Amount:  50000,
		SpentAt: bun.NullTime{Time: t0.Add(24 * time.Hour)},
	}}

	ledger := BuildLedger([]models.Payment{invalidated}, expenses)

	// the income line survives for audit, the reversal is appended
	assert.Len(t, ledger.Entries, 3)
	assert.Equal(t, common.LedgerTypePayment, ledger.Entries[0].Type)
	assert.Equal(t, common.LedgerTypeExpense, ledger.Entries[1].Type)
	assert.Equal(t, common.LedgerTypeInvalidPayment, ledger.Entries[2].Type)
	assert.Equal(t, int64(200000), ledger.TotalIncome)
	assert.Equal(t, int64(200000), ledger.InvalidTotal)
	assert.Equal(t, int64(250000), ledger.TotalExpense)
	assert.Equal(t, int64(-50000), ledger.ClosingBalance)
}

func TestLedgerTieBreakOrder(t *testing.T) {
	t0 := time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)
	income := verifiedPayment(7, 10000, t0)
	reversed := verifiedPayment(3, 5000, t0.Add(-time.Hour))
	reversed.Status = common.PaymentStatusInvalid
	reversed.InvalidatedAt = bun.NullTime{Time: t0}
	expenses := []models.Expense{{ID: 2, Amount: 1000, SpentAt: bun.NullTime{Time: t0}}}

	ledger := BuildLedger([]models.Payment{income, reversed}, expenses)

	// at the shared timestamp: income, then reversal, then expense
	types := []string{}
	for _, entry := range ledger.Entries[1:] {
		types = append(types, entry.Type)
	}
	assert.Equal(t, []string{
		common.LedgerTypePayment,
		common.LedgerTypeInvalidPayment,
		common.LedgerTypeExpense,
	}, types)
}

func TestLedgerSkipsUnverifiedPayments(t *testing.T) {
	t0 := time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)
	submitted := models.Payment{ID: 1, Amount: 99999, Status: common.PaymentStatusSubmitted}
	rejected := models.Payment{
		ID:         2,
		Amount:     88888,
		Status:     common.PaymentStatusRejected,
		VerifiedAt: bun.NullTime{Time: t0},
	}

	ledger := BuildLedger([]models.Payment{submitted, rejected}, nil)

	assert.Empty(t, ledger.Entries)
	assert.Equal(t, int64(0), ledger.ClosingBalance)
}

func TestLedgerSameTypeTieBreaksById(t *testing.T) {
	t0 := time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)
	a := verifiedPayment(9, 100, t0)
	b := verifiedPayment(4, 200, t0)

	ledger := BuildLedger([]models.Payment{a, b}, nil)

	assert.Equal(t, int64(4), ledger.Entries[0].RecordID)
	assert.Equal(t, int64(9), ledger.Entries[1].RecordID)
	assert.Equal(t, int64(300), ledger.ClosingBalance)
}

func TestLedgerExpenseFallsBackToCreatedAt(t *testing.T) {
	created := time.Date(2025, 9, 3, 0, 0, 0, 0, time.UTC)
	expenses := []models.Expense{{ID: 1, Amount: 1000, CreatedAt: created}}

	ledger := BuildLedger(nil, expenses)

	assert.Equal(t, created, ledger.Entries[0].OccurredAt)
}
