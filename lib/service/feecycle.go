package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/classfund/classfund.go/common"
	"github.com/classfund/classfund.go/db/models"
	"github.com/uptrace/bun"
)

func (svc *ClassFundService) FindFeeCycle(ctx context.Context, cycleId int64) (*models.FeeCycle, error) {
	var cycle models.FeeCycle
	err := svc.DB.NewSelect().Model(&cycle).Where("fee_cycle.id = ?", cycleId).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cycle, nil
}

func (svc *ClassFundService) ListFeeCycles(ctx context.Context, classId int64) ([]models.FeeCycle, error) {
	cycles := []models.FeeCycle{}
	err := svc.DB.NewSelect().Model(&cycles).
		Where("class_id = ?", classId).
		Order("id DESC").
		Scan(ctx)
	return cycles, err
}

func (svc *ClassFundService) CreateFeeCycle(ctx context.Context, cycle *models.FeeCycle) (*models.FeeCycle, error) {
	cycle.Status = common.CycleStatusDraft
	if _, err := svc.DB.NewInsert().Model(cycle).Exec(ctx); err != nil {
		return nil, err
	}
	return cycle, nil
}

// UpdateFeeCycle edits a cycle's descriptive fields. The per-member amount
// is frozen once the cycle has been activated, because invoices carry a
// copy of it.
func (svc *ClassFundService) UpdateFeeCycle(ctx context.Context, cycle *models.FeeCycle, name, term string, amount int64, dueDate bun.NullTime, allowLate bool) (*models.FeeCycle, error) {
	if cycle.Status != common.CycleStatusDraft && amount != cycle.AmountPerMember {
		return nil, ErrConflict
	}
	cycle.Name = name
	cycle.Term = term
	cycle.AmountPerMember = amount
	cycle.DueDate = dueDate
	cycle.AllowLate = allowLate
	_, err := svc.DB.NewUpdate().Model(cycle).
		Column("name", "term", "amount_per_member", "due_date", "allow_late", "updated_at").
		WherePK().Exec(ctx)
	if err != nil {
		return nil, err
	}
	return cycle, nil
}

// ActivateFeeCycle transitions a draft cycle to active and creates one
// unpaid invoice per active member. Members who already hold an invoice
// for this cycle are skipped, so re-activation is idempotent.
func (svc *ClassFundService) ActivateFeeCycle(ctx context.Context, cycle *models.FeeCycle) (*models.FeeCycle, error) {
	if cycle.Status == common.CycleStatusClosed {
		return nil, ErrConflict
	}

	members, err := svc.ListMembers(ctx, cycle.ClassID)
	if err != nil {
		return nil, err
	}

	err = svc.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, member := range members {
			if member.Status != common.MemberStatusActive {
				continue
			}
			invoice := &models.Invoice{
				FeeCycleID: cycle.ID,
				MemberID:   member.ID,
				Amount:     cycle.AmountPerMember,
				Status:     common.InvoiceStatusUnpaid,
			}
			_, err := tx.NewInsert().Model(invoice).
				On("CONFLICT (fee_cycle_id, member_id) DO NOTHING").
				Exec(ctx)
			if err != nil {
				return err
			}
		}
		cycle.Status = common.CycleStatusActive
		_, err := tx.NewUpdate().Model(cycle).Column("status", "updated_at").WherePK().Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cycle, nil
}

// CloseFeeCycle marks a cycle closed. Closed cycles accept no further
// payment submissions but remain on the ledger.
func (svc *ClassFundService) CloseFeeCycle(ctx context.Context, cycle *models.FeeCycle) (*models.FeeCycle, error) {
	if cycle.Status != common.CycleStatusActive {
		return nil, ErrConflict
	}
	cycle.Status = common.CycleStatusClosed
	_, err := svc.DB.NewUpdate().Model(cycle).Column("status", "updated_at").WherePK().Exec(ctx)
	if err != nil {
		return nil, err
	}
	return cycle, nil
}

// FeeCycleProgress summarizes collection progress for one cycle.
type FeeCycleProgress struct {
	Cycle         *models.FeeCycle `json:"cycle"`
	InvoiceCount  int              `json:"invoice_count"`
	PaidCount     int              `json:"paid_count"`
	StatusCounts  map[string]int   `json:"status_counts"`
	ExpectedTotal int64            `json:"expected_total"`
	VerifiedTotal int64            `json:"verified_total"`
	TotalExpense  int64            `json:"total_expense"`
	Balance       int64            `json:"balance"`
}

func (svc *ClassFundService) FeeCycleProgress(ctx context.Context, cycle *models.FeeCycle) (*FeeCycleProgress, error) {
	progress := &FeeCycleProgress{Cycle: cycle, StatusCounts: map[string]int{}}

	invoices := []models.Invoice{}
	err := svc.DB.NewSelect().Model(&invoices).Where("fee_cycle_id = ?", cycle.ID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	progress.InvoiceCount = len(invoices)
	for _, invoice := range invoices {
		progress.ExpectedTotal += invoice.Amount
		progress.StatusCounts[invoice.Status]++
		if invoice.Status == common.InvoiceStatusPaid {
			progress.PaidCount++
		}
	}

	err = svc.DB.NewSelect().Model((*models.Payment)(nil)).
		ColumnExpr("COALESCE(SUM(payment.amount), 0)").
		Join("JOIN invoices AS invoice ON invoice.id = payment.invoice_id").
		Where("invoice.fee_cycle_id = ? AND payment.status = ?", cycle.ID, common.PaymentStatusVerified).
		Scan(ctx, &progress.VerifiedTotal)
	if err != nil {
		return nil, err
	}

	err = svc.DB.NewSelect().Model((*models.Expense)(nil)).
		ColumnExpr("COALESCE(SUM(amount), 0)").
		Where("fee_cycle_id = ?", cycle.ID).
		Scan(ctx, &progress.TotalExpense)
	if err != nil {
		return nil, err
	}
	progress.Balance = progress.VerifiedTotal - progress.TotalExpense
	return progress, nil
}
