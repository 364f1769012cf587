package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/classfund/classfund.go/common"
	"github.com/classfund/classfund.go/db/models"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

func (svc *ClassFundService) FindInvoice(ctx context.Context, invoiceId int64) (*models.Invoice, error) {
	var invoice models.Invoice
	err := svc.DB.NewSelect().Model(&invoice).
		Relation("FeeCycle").
		Relation("Member").
		Where("invoice.id = ?", invoiceId).
		Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// MyInvoices lists the caller's invoices across all cycles of one class.
func (svc *ClassFundService) MyInvoices(ctx context.Context, classId, userId int64) ([]models.Invoice, error) {
	member, err := svc.FindMember(ctx, classId, userId)
	if err != nil {
		return nil, err
	}
	invoices := []models.Invoice{}
	err = svc.DB.NewSelect().Model(&invoices).
		Relation("FeeCycle").
		Where("invoice.member_id = ?", member.ID).
		Order("invoice.id DESC").
		Scan(ctx)
	return invoices, err
}

func (svc *ClassFundService) ListCycleInvoices(ctx context.Context, cycleId int64) ([]models.Invoice, error) {
	invoices := []models.Invoice{}
	err := svc.DB.NewSelect().Model(&invoices).
		Relation("Member").
		Relation("Member.User").
		Where("invoice.fee_cycle_id = ?", cycleId).
		Order("invoice.id ASC").
		Scan(ctx)
	return invoices, err
}

// InvoiceDetail is the invoice plus the figures a payer or treasurer needs
// to act on it.
type InvoiceDetail struct {
	Invoice        *models.Invoice  `json:"invoice"`
	Payments       []models.Payment `json:"payments"`
	VerifiedTotal  int64            `json:"verified_total"`
	SubmittedTotal int64            `json:"submitted_total"`
	CanSubmit      bool             `json:"can_submit"`
}

func (svc *ClassFundService) InvoiceDetail(ctx context.Context, invoice *models.Invoice) (*InvoiceDetail, error) {
	payments := []models.Payment{}
	err := svc.DB.NewSelect().Model(&payments).
		Where("invoice_id = ?", invoice.ID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	detail := &InvoiceDetail{Invoice: invoice, Payments: payments}
	for _, payment := range payments {
		switch payment.Status {
		case common.PaymentStatusVerified:
			detail.VerifiedTotal += payment.Amount
		case common.PaymentStatusSubmitted:
			detail.SubmittedTotal += payment.Amount
		}
	}
	detail.CanSubmit = invoice.Submittable(invoice.FeeCycle, time.Now())
	return detail, nil
}

// UnpaidInvoices lists the invoices of one cycle that are not yet fully
// collected, for the treasurers' follow-up view.
func (svc *ClassFundService) UnpaidInvoices(ctx context.Context, cycleId int64) ([]models.Invoice, error) {
	invoices := []models.Invoice{}
	err := svc.DB.NewSelect().Model(&invoices).
		Relation("Member").
		Relation("Member.User").
		Where("invoice.fee_cycle_id = ? AND invoice.status IN (?)",
			cycleId, bun.In([]string{common.InvoiceStatusUnpaid, common.InvoiceStatusSubmitted})).
		Order("invoice.id ASC").
		Scan(ctx)
	return invoices, err
}

// MarkInvoicePaid is the treasurer's confirmation that an invoice is
// settled. When verified payments do not yet cover the amount it records
// a verified cash payment for the remainder first; either way the invoice
// is promoted verified -> paid in the same transaction.
func (svc *ClassFundService) MarkInvoicePaid(ctx context.Context, invoice *models.Invoice, verifierUserId int64) (*models.Invoice, error) {
	if invoice.Status == common.InvoiceStatusPaid {
		return nil, ErrConflict
	}

	err := svc.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		verified, err := svc.verifiedTotal(ctx, tx, invoice.ID)
		if err != nil {
			return err
		}
		if remaining := invoice.Amount - verified; remaining > 0 {
			payment := &models.Payment{
				InvoiceID:    invoice.ID,
				PayerID:      invoice.MemberID,
				Amount:       remaining,
				Method:       common.PaymentMethodCash,
				Status:       common.PaymentStatusVerified,
				VerifiedByID: verifierUserId,
				VerifiedAt:   bun.NullTime{Time: time.Now()},
			}
			if _, err := tx.NewInsert().Model(payment).Exec(ctx); err != nil {
				return err
			}
		}
		if err := svc.recomputeInvoiceStatus(ctx, tx, invoice.ID); err != nil {
			return err
		}
		res, err := tx.NewUpdate().Model((*models.Invoice)(nil)).
			Set("status = ?", common.InvoiceStatusPaid).
			Set("paid_at = ?", time.Now()).
			Where("id = ? AND status = ?", invoice.ID, common.InvoiceStatusVerified).
			Exec(ctx)
		if err != nil {
			return err
		}
		if rows, _ := res.RowsAffected(); rows == 0 {
			return ErrConflict
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return svc.FindInvoice(ctx, invoice.ID)
}

// verifiedTotal sums the verified payments of one invoice inside the
// caller's transaction.
func (svc *ClassFundService) verifiedTotal(ctx context.Context, tx bun.Tx, invoiceId int64) (int64, error) {
	var total int64
	err := tx.NewSelect().Model((*models.Payment)(nil)).
		ColumnExpr("COALESCE(SUM(amount), 0)").
		Where("invoice_id = ? AND status = ?", invoiceId, common.PaymentStatusVerified).
		Scan(ctx, &total)
	return total, err
}

// recomputeInvoiceStatus re-derives an invoice's status from its payment
// rows. It locks the invoice row first so concurrent verifications and
// invalidations of sibling payments serialize on it.
func (svc *ClassFundService) recomputeInvoiceStatus(ctx context.Context, tx bun.Tx, invoiceId int64) error {
	var invoice models.Invoice
	q := tx.NewSelect().Model(&invoice).
		Where("invoice.id = ?", invoiceId).
		Limit(1)
	if svc.DB.Dialect().Name() == dialect.PG {
		// SQLite (the in-memory test database) has no SELECT ... FOR
		// UPDATE; its single-writer model serializes recomputes anyway.
		q = q.For("UPDATE")
	}
	if err := q.Scan(ctx); err != nil {
		return err
	}

	verified, err := svc.verifiedTotal(ctx, tx, invoiceId)
	if err != nil {
		return err
	}
	var submitted int
	submitted, err = tx.NewSelect().Model((*models.Payment)(nil)).
		Where("invoice_id = ? AND status = ?", invoiceId, common.PaymentStatusSubmitted).
		Count(ctx)
	if err != nil {
		return err
	}

	next := invoice.Status
	paidAt := invoice.PaidAt
	switch {
	case verified >= invoice.Amount && invoice.Amount > 0:
		// fully covered: promote to verified, but never demote paid
		if invoice.Status != common.InvoiceStatusPaid {
			next = common.InvoiceStatusVerified
		}
	case submitted > 0:
		next = common.InvoiceStatusSubmitted
		paidAt = bun.NullTime{}
	default:
		next = common.InvoiceStatusUnpaid
		paidAt = bun.NullTime{}
	}

	if next == invoice.Status {
		return nil
	}
	if common.CanInvoiceTransition(invoice.Status, next) {
		invoice.Status = next
	} else {
		// promotions advance through the intermediate states
		for invoice.Status != next {
			step, ok := common.NextInvoicePromotion(invoice.Status)
			if !ok {
				return common.CheckInvoiceTransition(invoice.Status, next)
			}
			invoice.Status = step
		}
	}
	invoice.PaidAt = paidAt
	_, err = tx.NewUpdate().Model(&invoice).Column("status", "paid_at", "updated_at").WherePK().Exec(ctx)
	return err
}
