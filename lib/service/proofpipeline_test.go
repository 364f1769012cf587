package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/classfund/classfund.go/common"
	"github.com/classfund/classfund.go/db/models"
	"github.com/classfund/classfund.go/lib/autoverify"
	"github.com/classfund/classfund.go/ocr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reloadPayment(t *testing.T, svc *ClassFundService, paymentId int64) *models.Payment {
	t.Helper()
	var payment models.Payment
	err := svc.DB.NewSelect().Model(&payment).Where("id = ?", paymentId).Limit(1).Scan(context.Background())
	require.NoError(t, err)
	return &payment
}

// A re-delivered job for a payment that is no longer submitted is a
// no-op: the pipeline never re-runs OCR or touches the row.
func TestProofPipelineSkipsSettledPayment(t *testing.T) {
	extractor := &stubExtractor{result: ocr.Result{Ok: true, Amount: 200000}}
	svc := newTestService(t, extractor, &stubStore{})
	fx := seedClassFixture(t, svc, 200000)

	payment := fx.seedPayment(t, svc, 200000, common.PaymentStatusVerified, "proofs/a.jpg")

	err := svc.ProcessPaymentProof(context.Background(), ProofJob{PaymentID: payment.ID})
	require.NoError(t, err)
	assert.Equal(t, 0, extractor.calls)

	got := reloadPayment(t, svc, payment.ID)
	assert.Equal(t, common.PaymentStatusVerified, got.Status)
	assert.False(t, got.AutoVerified)
}

// A payment without a resolvable proof image stays submitted with the
// failure reason recorded, and the treasurers are asked to review.
func TestProofPipelineRecordsMissingProof(t *testing.T) {
	extractor := &stubExtractor{}
	svc := newTestService(t, extractor, &stubStore{})
	fx := seedClassFixture(t, svc, 200000)

	payment := fx.seedPayment(t, svc, 200000, common.PaymentStatusSubmitted, "")

	err := svc.ProcessPaymentProof(context.Background(), ProofJob{PaymentID: payment.ID})
	require.NoError(t, err)
	assert.Equal(t, 0, extractor.calls)

	got := reloadPayment(t, svc, payment.ID)
	assert.Equal(t, common.PaymentStatusSubmitted, got.Status)
	assert.True(t, got.AutoVerified)
	assert.Equal(t, common.ReasonProofNotFound, got.VerifyReasonCode)

	notifications := []models.Notification{}
	err = svc.DB.NewSelect().Model(&notifications).Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, notifications, 2)
	for _, n := range notifications {
		assert.Equal(t, common.NotificationPaymentReview, n.Type)
	}
}

// An extractor error is recorded as OCR_ERROR without failing the job.
func TestProofPipelineRecordsOcrError(t *testing.T) {
	extractor := &stubExtractor{err: errors.New("tesseract exited with status 1")}
	svc := newTestService(t, extractor, &stubStore{})
	fx := seedClassFixture(t, svc, 200000)

	payment := fx.seedPayment(t, svc, 200000, common.PaymentStatusSubmitted, "proofs/a.jpg")

	err := svc.ProcessPaymentProof(context.Background(), ProofJob{PaymentID: payment.ID})
	require.NoError(t, err)

	got := reloadPayment(t, svc, payment.ID)
	assert.Equal(t, common.PaymentStatusSubmitted, got.Status)
	assert.Equal(t, common.ReasonOcrError, got.VerifyReasonCode)
	assert.True(t, got.VerifiedAt.IsZero())
}

// Extracted fields are persisted even when the decision fails, so a
// reviewing treasurer sees what the machine saw.
func TestProofPipelinePersistsOcrFieldsOnEmptyRead(t *testing.T) {
	extractor := &stubExtractor{result: ocr.Result{Ok: false, RawText: "mot anh rat mo"}}
	svc := newTestService(t, extractor, &stubStore{})
	fx := seedClassFixture(t, svc, 200000)

	payment := fx.seedPayment(t, svc, 200000, common.PaymentStatusSubmitted, "proofs/a.jpg")

	err := svc.ProcessPaymentProof(context.Background(), ProofJob{PaymentID: payment.ID})
	require.NoError(t, err)

	got := reloadPayment(t, svc, payment.ID)
	assert.Equal(t, common.PaymentStatusSubmitted, got.Status)
	assert.Equal(t, common.ReasonOcrEmpty, got.VerifyReasonCode)
	assert.Equal(t, "mot anh rat mo", got.OcrRaw)
}

// A matching proof verifies the payment automatically (verified_by stays
// null) and promotes the invoice.
func TestProofPipelineAutoVerifiesMatchingProof(t *testing.T) {
	svc := newTestService(t, &stubExtractor{}, &stubStore{})
	fx := seedClassFixture(t, svc, 200000)

	payment := fx.seedPayment(t, svc, 200000, common.PaymentStatusSubmitted, "proofs/a.jpg")
	extractor := svc.Ocr.(*stubExtractor)
	extractor.result = ocr.Result{
		Ok:      true,
		RawText: "CHUYEN KHOAN THANH CONG",
		Amount:  200000,
		Note:    fmt.Sprintf("Chuyen khoan lop %d hoc phi", payment.InvoiceID),
	}

	err := svc.ProcessPaymentProof(context.Background(), ProofJob{PaymentID: payment.ID})
	require.NoError(t, err)

	got := reloadPayment(t, svc, payment.ID)
	assert.Equal(t, common.PaymentStatusVerified, got.Status)
	assert.True(t, got.AutoVerified)
	assert.Equal(t, common.ReasonMatchOK, got.VerifyReasonCode)
	assert.Zero(t, got.VerifiedByID)
	assert.False(t, got.VerifiedAt.IsZero())

	invoice, err := svc.FindInvoice(context.Background(), fx.invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, common.InvoiceStatusVerified, invoice.Status)
}

// When a manual action settles the payment between the pipeline's read
// and its write, the guarded update matches nothing and the manual
// outcome stands.
func TestProofPipelineConcedesToManualSettlement(t *testing.T) {
	svc := newTestService(t, &stubExtractor{}, &stubStore{})
	fx := seedClassFixture(t, svc, 200000)

	seeded := fx.seedPayment(t, svc, 200000, common.PaymentStatusSubmitted, "proofs/a.jpg")
	stale, err := svc.FindPayment(context.Background(), seeded.ID)
	require.NoError(t, err)

	_, err = svc.DB.NewUpdate().Model((*models.Payment)(nil)).
		Set("status = ?", common.PaymentStatusRejected).
		Where("id = ?", seeded.ID).
		Exec(context.Background())
	require.NoError(t, err)

	err = svc.recordAutoVerifySuccess(context.Background(), stale, autoverify.Decision{
		Pass: true,
		Code: common.ReasonMatchOK,
	})
	require.NoError(t, err)

	got := reloadPayment(t, svc, seeded.ID)
	assert.Equal(t, common.PaymentStatusRejected, got.Status)
	assert.Empty(t, got.VerifyReasonCode)
}

// The in-process fallback drops a job only after its wait is cancelled,
// never losing jobs while the queue has room.
func TestEnqueueProofJobFallback(t *testing.T) {
	svc := newTestService(t, &stubExtractor{}, &stubStore{})
	svc.proofJobs = make(chan ProofJob, 1)

	svc.EnqueueProofJob(context.Background(), ProofJob{PaymentID: 1})

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	svc.EnqueueProofJob(cancelled, ProofJob{PaymentID: 2})

	require.Len(t, svc.proofJobs, 1)
	job := <-svc.proofJobs
	assert.Equal(t, int64(1), job.PaymentID)
}
