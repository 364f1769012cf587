package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/classfund/classfund.go/common"
	"github.com/classfund/classfund.go/db/models"
	"github.com/classfund/classfund.go/lib/autoverify"
	"github.com/classfund/classfund.go/ocr"
	"github.com/classfund/classfund.go/rabbitmq"
	"github.com/getsentry/sentry-go"
	"github.com/uptrace/bun"
)

// ProofJob identifies one pending auto-verification run.
type ProofJob = rabbitmq.ProofJob

// EnqueueProofJob hands a payment to the asynchronous verification
// pipeline. With rabbitmq configured the job goes through the broker so
// any instance can pick it up; otherwise it goes to the in-process
// worker. Enqueue failures are logged and swallowed: the submission
// itself already succeeded, and the payment stays in the manual review
// queue either way.
func (svc *ClassFundService) EnqueueProofJob(ctx context.Context, job ProofJob) {
	if svc.RabbitMQClient != nil {
		if err := svc.RabbitMQClient.PublishProofJob(ctx, &job); err != nil {
			svc.Logger.Errorf("Failed to publish proof job: payment_id %v error %v", job.PaymentID, err)
			sentry.CaptureException(err)
		}
		return
	}
	select {
	case svc.proofJobs <- job:
	case <-ctx.Done():
		svc.Logger.Errorf("Proof job enqueue cancelled: payment_id %v error %v", job.PaymentID, ctx.Err())
	case <-time.After(proofEnqueueWait):
		svc.Logger.Errorf("Proof job queue full, dropping job: payment_id %v", job.PaymentID)
	}
}

// proofEnqueueWait bounds how long a submission waits for room in the
// in-process job queue before the job is dropped to manual review.
const proofEnqueueWait = 2 * time.Second

// StartProofRoutine consumes proof jobs until the context is cancelled.
// It is the single background worker of the server process.
func (svc *ClassFundService) StartProofRoutine(ctx context.Context) error {
	if svc.RabbitMQClient != nil {
		return svc.RabbitMQClient.SubscribeToProofJobs(ctx, func(ctx context.Context, job *ProofJob) error {
			return svc.ProcessPaymentProof(ctx, *job)
		})
	}
	for {
		select {
		case <-ctx.Done():
			return context.Canceled
		case job := <-svc.proofJobs:
			if err := svc.ProcessPaymentProof(ctx, job); err != nil {
				svc.Logger.Errorf("Proof pipeline failed: payment_id %v error %v", job.PaymentID, err)
			}
		}
	}
}

// ProcessPaymentProof runs the auto-verification pipeline for one
// payment: OCR the proof image, persist whatever was extracted, run the
// decision engine and either verify the payment or leave it in the
// manual review queue with a reason code. Every collaborator failure is
// converted into a recorded outcome; only unexpected errors propagate to
// the job queue for tracking.
func (svc *ClassFundService) ProcessPaymentProof(ctx context.Context, job ProofJob) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("proof pipeline panic: %v", r)
			svc.Logger.Errorf("Proof pipeline panic: payment_id %v error %v", job.PaymentID, r)
			sentry.CaptureException(err)
		}
	}()

	payment, err := svc.FindPayment(ctx, job.PaymentID)
	if errors.Is(err, ErrNotFound) {
		// the submission may have been deleted concurrently
		svc.Logger.Infof("Proof pipeline: payment not found, skipping: payment_id %v", job.PaymentID)
		return nil
	}
	if err != nil {
		return err
	}

	// Idempotence guard: terminal payments are never reprocessed.
	if payment.Status != common.PaymentStatusSubmitted {
		svc.Logger.Infof("Proof pipeline: payment not pending, skipping: payment_id %v status %v", payment.ID, payment.Status)
		return nil
	}

	classId, err := svc.paymentClassId(ctx, payment)
	if err != nil {
		return err
	}

	// The fund account is optional; the decision engine tolerates its
	// absence by skipping the payee rule.
	var fund *autoverify.FundAccount
	fundAccount, err := svc.FindFundAccount(ctx, classId)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if fundAccount != nil {
		fund = &autoverify.FundAccount{AccountNo: fundAccount.AccountNo}
	}

	imagePath, pathErr := svc.ResolveProofPath(payment)
	if pathErr != nil {
		svc.Logger.Infof("Proof pipeline: proof image unresolvable: payment_id %v error %v", payment.ID, pathErr)
		return svc.recordAutoVerifyFailure(ctx, payment, autoverify.Decision{
			Code:   common.ReasonProofNotFound,
			Detail: pathErr.Error(),
		})
	}

	extracted, ocrErr := svc.runOcr(ctx, imagePath)
	if ocrErr != nil {
		svc.Logger.Errorf("Proof pipeline: OCR failed: payment_id %v error %v", payment.ID, ocrErr)
		sentry.CaptureException(ocrErr)
		return svc.recordAutoVerifyFailure(ctx, payment, autoverify.Decision{
			Code:   common.ReasonOcrError,
			Detail: ocrErr.Error(),
		})
	}

	// OCR fields are persisted regardless of the eventual decision, so a
	// treasurer reviewing a failed match sees what the machine saw.
	svc.applyOcrFields(payment, extracted)

	if !extracted.Ok {
		return svc.recordAutoVerifyFailure(ctx, payment, autoverify.Decision{
			Code:   common.ReasonOcrEmpty,
			Detail: "no usable text extracted from proof image",
		})
	}

	payerName := ""
	if payer, err := svc.FindMemberByID(ctx, payment.PayerID); err == nil && payer.User != nil {
		payerName = payer.User.Name
	}

	decision := autoverify.Decide(autoverify.Input{
		ExpectedAmount: payment.Amount,
		PayerName:      payerName,
		InvoiceID:      payment.InvoiceID,
		Extracted: autoverify.Extracted{
			Amount:       extracted.Amount,
			TxnRef:       extracted.TxnRef,
			Method:       extracted.Method,
			PayeeAccount: extracted.PayeeAccount,
			Note:         extracted.Note,
		},
		Fund: fund,
	}, svc.Config.VerifierConfig())

	if !decision.Pass {
		return svc.recordAutoVerifyFailure(ctx, payment, decision)
	}
	return svc.recordAutoVerifySuccess(ctx, payment, decision)
}

func (svc *ClassFundService) runOcr(ctx context.Context, imagePath string) (result ocr.Result, err error) {
	// A misbehaving extractor must not take the worker down with it.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("ocr panic: %v", r)
		}
	}()
	return svc.Ocr.Extract(ctx, imagePath)
}

func (svc *ClassFundService) applyOcrFields(payment *models.Payment, result ocr.Result) {
	payment.OcrRaw = result.RawText
	payment.OcrAmount = result.Amount
	payment.OcrMethod = result.Method
	payment.OcrTxnRef = result.TxnRef
	payment.OcrConfidence = result.Confidence
}

// recordAutoVerifySuccess flips the payment to verified and re-derives
// the invoice status, both inside one transaction. The status update is
// guarded by re-checking submitted inside the transaction so a racing
// manual action wins cleanly.
func (svc *ClassFundService) recordAutoVerifySuccess(ctx context.Context, payment *models.Payment, decision autoverify.Decision) error {
	payment.Status = common.PaymentStatusVerified
	payment.VerifiedByID = 0 // null: automatic approval
	payment.VerifiedAt = bun.NullTime{Time: time.Now()}
	payment.AutoVerified = true
	payment.VerifyReasonCode = decision.Code
	payment.VerifyReasonDetail = decision.Detail

	err := svc.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().Model(payment).
			Column("status", "verified_by", "verified_at", "auto_verified",
				"verify_reason_code", "verify_reason_detail",
				"ocr_raw", "ocr_amount", "ocr_method", "ocr_txn_ref", "ocr_confidence",
				"updated_at").
			Where("id = ? AND status = ?", payment.ID, common.PaymentStatusSubmitted).
			Exec(ctx)
		if err != nil {
			return err
		}
		if rows, _ := res.RowsAffected(); rows == 0 {
			// a concurrent manual action already settled this payment
			return nil
		}
		return svc.recomputeInvoiceStatus(ctx, tx, payment.InvoiceID)
	})
	if err != nil {
		return err
	}

	svc.Logger.Infof("Proof pipeline: payment auto-verified: payment_id %v", payment.ID)
	svc.notifyPaymentOutcome(ctx, payment, common.NotificationPaymentVerified)
	return nil
}

// recordAutoVerifyFailure stores the reason code and detail but leaves
// the payment submitted: a declined auto-verification is a hand-off to
// manual treasurer review, not a rejection.
func (svc *ClassFundService) recordAutoVerifyFailure(ctx context.Context, payment *models.Payment, decision autoverify.Decision) error {
	payment.AutoVerified = true
	payment.VerifyReasonCode = decision.Code
	payment.VerifyReasonDetail = decision.Detail

	_, err := svc.DB.NewUpdate().Model(payment).
		Column("auto_verified", "verify_reason_code", "verify_reason_detail",
			"ocr_raw", "ocr_amount", "ocr_method", "ocr_txn_ref", "ocr_confidence",
			"updated_at").
		Where("id = ? AND status = ?", payment.ID, common.PaymentStatusSubmitted).
		Exec(ctx)
	if err != nil {
		return err
	}

	svc.Logger.Infof("Proof pipeline: auto-verification declined: payment_id %v code %v", payment.ID, decision.Code)
	svc.notifyPaymentOutcome(ctx, payment, common.NotificationPaymentReview)
	return nil
}
