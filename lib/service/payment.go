package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/classfund/classfund.go/common"
	"github.com/classfund/classfund.go/db/models"
	"github.com/classfund/classfund.go/storage"
	"github.com/uptrace/bun"
)

func (svc *ClassFundService) FindPayment(ctx context.Context, paymentId int64) (*models.Payment, error) {
	var payment models.Payment
	err := svc.DB.NewSelect().Model(&payment).
		Relation("Invoice").
		Relation("Invoice.FeeCycle").
		Relation("Payer").
		Relation("Payer.User").
		Where("payment.id = ?", paymentId).
		Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// SubmitPaymentRequest carries the member-supplied fields of a proof
// submission. The proof image arrives as raw bytes and is persisted
// through the proof store before the payment row is written.
type SubmitPaymentRequest struct {
	Amount    int64  `validate:"required,gt=0"`
	Method    string `validate:"required,oneof=bank momo zalopay cash"`
	TxnRef    string
	Proof     []byte
	ProofName string
}

// SubmitPayment records a member's proof-of-payment against their own
// invoice, moves the invoice to submitted and enqueues the proof for
// asynchronous auto-verification. The caller must already be resolved to
// a class member.
func (svc *ClassFundService) SubmitPayment(ctx context.Context, invoice *models.Invoice, member *models.ClassMember, req *SubmitPaymentRequest) (*models.Payment, error) {
	if invoice.MemberID != member.ID {
		return nil, ErrNotInvoiceOwner
	}
	cycle := invoice.FeeCycle
	if cycle == nil {
		found, err := svc.FindFeeCycle(ctx, invoice.FeeCycleID)
		if err != nil {
			return nil, err
		}
		cycle = found
	}
	if cycle.Status != common.CycleStatusActive {
		return nil, ErrNotSubmittable
	}
	if cycle.PastDue(time.Now()) && !cycle.AllowLate {
		return nil, ErrPastDue
	}
	if !invoice.Submittable(cycle, time.Now()) {
		return nil, ErrNotSubmittable
	}

	proofPath := ""
	if len(req.Proof) > 0 {
		stored, err := svc.Storage.Store(req.Proof, common.StorageCategoryProofs, req.ProofName)
		if err != nil {
			return nil, err
		}
		proofPath = stored
	}

	payment := &models.Payment{
		InvoiceID: invoice.ID,
		PayerID:   member.ID,
		Amount:    req.Amount,
		Method:    req.Method,
		TxnRef:    req.TxnRef,
		ProofPath: proofPath,
		Status:    common.PaymentStatusSubmitted,
	}

	err := svc.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(payment).Exec(ctx); err != nil {
			return err
		}
		return svc.recomputeInvoiceStatus(ctx, tx, invoice.ID)
	})
	if err != nil {
		return nil, err
	}

	if proofPath != "" {
		svc.EnqueueProofJob(ctx, ProofJob{PaymentID: payment.ID})
	}
	return payment, nil
}

// UploadProof attaches a new proof image to a still-submitted payment,
// replacing any previous one, and re-enqueues auto-verification.
func (svc *ClassFundService) UploadProof(ctx context.Context, payment *models.Payment, userId int64, data []byte, originalName string) (*models.Payment, error) {
	payer, err := svc.FindMemberByID(ctx, payment.PayerID)
	if err != nil {
		return nil, err
	}
	if payer.UserID != userId {
		return nil, ErrNotInvoiceOwner
	}
	if payment.Status != common.PaymentStatusSubmitted {
		return nil, ErrConflict
	}

	stored, err := svc.Storage.Store(data, common.StorageCategoryProofs, originalName)
	if err != nil {
		return nil, err
	}
	payment.ProofPath = stored
	_, err = svc.DB.NewUpdate().Model(payment).Column("proof_path", "updated_at").WherePK().Exec(ctx)
	if err != nil {
		return nil, err
	}

	svc.EnqueueProofJob(ctx, ProofJob{PaymentID: payment.ID})
	return payment, nil
}

func (svc *ClassFundService) FindMemberByID(ctx context.Context, memberId int64) (*models.ClassMember, error) {
	var member models.ClassMember
	err := svc.DB.NewSelect().Model(&member).
		Relation("User").
		Where("class_member.id = ?", memberId).
		Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// PaymentFilter narrows the treasurer review queue.
type PaymentFilter struct {
	Status     string
	AutoFailed bool // submitted payments the auto-verifier already declined
	Limit      int
}

func (svc *ClassFundService) ListClassPayments(ctx context.Context, classId int64, filter PaymentFilter) ([]models.Payment, error) {
	payments := []models.Payment{}
	q := svc.DB.NewSelect().Model(&payments).
		Relation("Invoice").
		Relation("Payer").
		Relation("Payer.User").
		Join("JOIN fee_cycles AS cycle ON cycle.id = invoice.fee_cycle_id").
		Where("cycle.class_id = ?", classId).
		Order("payment.id DESC")
	if filter.Status != "" {
		q = q.Where("payment.status = ?", filter.Status)
	}
	if filter.AutoFailed {
		q = q.Where("payment.status = ?", common.PaymentStatusSubmitted).
			Where("payment.auto_verified = TRUE").
			Where("payment.verify_reason_code IS DISTINCT FROM ?", common.ReasonMatchOK)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	err := q.Scan(ctx)
	return payments, err
}

// VerifyPayment is the treasurer's manual approval of a submitted payment.
func (svc *ClassFundService) VerifyPayment(ctx context.Context, payment *models.Payment, verifierUserId int64) (*models.Payment, error) {
	if err := common.CheckPaymentTransition(payment.Status, common.PaymentStatusVerified); err != nil {
		return nil, ErrConflict
	}

	payment.Status = common.PaymentStatusVerified
	payment.VerifiedByID = verifierUserId
	payment.VerifiedAt = bun.NullTime{Time: time.Now()}
	err := svc.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().Model(payment).
			Column("status", "verified_by", "verified_at", "updated_at").
			Where("id = ? AND status = ?", payment.ID, common.PaymentStatusSubmitted).
			Exec(ctx)
		if err != nil {
			return err
		}
		if rows, _ := res.RowsAffected(); rows == 0 {
			return ErrConflict
		}
		return svc.recomputeInvoiceStatus(ctx, tx, payment.InvoiceID)
	})
	if err != nil {
		return nil, err
	}

	svc.notifyPaymentOutcome(ctx, payment, common.NotificationPaymentVerified)
	return payment, nil
}

// RejectPayment is the treasurer's manual rejection. Rejected is terminal.
func (svc *ClassFundService) RejectPayment(ctx context.Context, payment *models.Payment, verifierUserId int64, reason string) (*models.Payment, error) {
	if err := common.CheckPaymentTransition(payment.Status, common.PaymentStatusRejected); err != nil {
		return nil, ErrConflict
	}

	payment.Status = common.PaymentStatusRejected
	payment.VerifiedByID = verifierUserId
	payment.VerifiedAt = bun.NullTime{Time: time.Now()}
	if reason != "" {
		payment.VerifyReasonDetail = reason
	}
	err := svc.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().Model(payment).
			Column("status", "verified_by", "verified_at", "verify_reason_detail", "updated_at").
			Where("id = ? AND status = ?", payment.ID, common.PaymentStatusSubmitted).
			Exec(ctx)
		if err != nil {
			return err
		}
		if rows, _ := res.RowsAffected(); rows == 0 {
			return ErrConflict
		}
		return svc.recomputeInvoiceStatus(ctx, tx, payment.InvoiceID)
	})
	if err != nil {
		return nil, err
	}

	svc.notifyPaymentOutcome(ctx, payment, common.NotificationPaymentRejected)
	return payment, nil
}

// InvalidatePayment reverses a previously verified payment. The payment
// row is never deleted: it keeps its verification history and gains the
// invalidation metadata, and the owning invoice's status is re-derived
// from the remaining verified payments inside the same transaction.
func (svc *ClassFundService) InvalidatePayment(ctx context.Context, payment *models.Payment, actorUserId int64, reason, note string) (*models.Payment, error) {
	if err := common.CheckPaymentTransition(payment.Status, common.PaymentStatusInvalid); err != nil {
		return nil, ErrConflict
	}

	payment.Status = common.PaymentStatusInvalid
	payment.InvalidatedAt = bun.NullTime{Time: time.Now()}
	payment.InvalidatedByID = actorUserId
	payment.InvalidReason = reason
	payment.InvalidNote = note
	err := svc.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().Model(payment).
			Column("status", "invalidated_at", "invalidated_by", "invalid_reason", "invalid_note", "updated_at").
			Where("id = ? AND status = ?", payment.ID, common.PaymentStatusVerified).
			Exec(ctx)
		if err != nil {
			return err
		}
		if rows, _ := res.RowsAffected(); rows == 0 {
			return ErrConflict
		}
		return svc.recomputeInvoiceStatus(ctx, tx, payment.InvoiceID)
	})
	if err != nil {
		return nil, err
	}

	svc.notifyPaymentOutcome(ctx, payment, common.NotificationPaymentInvalid)
	return payment, nil
}

// ResolveProofPath maps a payment's stored proof reference to an absolute
// path on disk for the OCR run.
func (svc *ClassFundService) ResolveProofPath(payment *models.Payment) (string, error) {
	if payment.ProofPath == "" {
		return "", storage.ErrNotFound
	}
	return svc.Storage.Resolve(payment.ProofPath)
}

// paymentClassId walks payment -> invoice -> fee cycle to find the class,
// loading the missing links when the caller did not preload them.
func (svc *ClassFundService) paymentClassId(ctx context.Context, payment *models.Payment) (int64, error) {
	invoice := payment.Invoice
	if invoice == nil {
		found, err := svc.FindInvoice(ctx, payment.InvoiceID)
		if err != nil {
			return 0, err
		}
		invoice = found
	}
	if invoice.FeeCycle != nil {
		return invoice.FeeCycle.ClassID, nil
	}
	cycle, err := svc.FindFeeCycle(ctx, invoice.FeeCycleID)
	if err != nil {
		return 0, err
	}
	return cycle.ClassID, nil
}
