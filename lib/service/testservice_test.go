package service

import (
	"context"
	"database/sql"
	"io"
	"testing"
	"time"

	"github.com/classfund/classfund.go/common"
	"github.com/classfund/classfund.go/db/models"
	"github.com/classfund/classfund.go/ocr"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/ziflex/lecho/v3"
)

// stubExtractor scripts the OCR collaborator.
type stubExtractor struct {
	result ocr.Result
	err    error
	calls  int
}

func (s *stubExtractor) Extract(ctx context.Context, absoluteImagePath string) (ocr.Result, error) {
	s.calls++
	return s.result, s.err
}

// stubStore resolves every stored reference to a fixed path.
type stubStore struct {
	resolveErr error
}

func (s *stubStore) Store(data []byte, category string, originalName string) (string, error) {
	return category + "/stub.jpg", nil
}

func (s *stubStore) Resolve(reference string) (string, error) {
	if s.resolveErr != nil {
		return "", s.resolveErr
	}
	return "/tmp/" + reference, nil
}

// newTestService wires the service onto a private in-memory sqlite
// database with the full schema created. A single pooled connection keeps
// the database alive for the duration of the test.
func newTestService(t *testing.T, extractor *stubExtractor, store *stubStore) *ClassFundService {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	for _, model := range []interface{}{
		(*models.User)(nil),
		(*models.Class)(nil),
		(*models.ClassMember)(nil),
		(*models.FundAccount)(nil),
		(*models.FeeCycle)(nil),
		(*models.Invoice)(nil),
		(*models.Payment)(nil),
		(*models.Expense)(nil),
		(*models.Notification)(nil),
	} {
		_, err := db.NewCreateTable().Model(model).Exec(ctx)
		require.NoError(t, err)
	}

	return &ClassFundService{
		Config: &Config{
			AmountToleranceAbs: 1000,
			RequireNote:        true,
		},
		DB:            db,
		Logger:        lecho.New(io.Discard),
		Ocr:           extractor,
		Storage:       store,
		PaymentPubSub: NewPubsub(),
		proofJobs:     make(chan ProofJob, 4),
	}
}

// classFixture is one class with an owner, one enrolled payer and one
// active cycle holding a single invoice.
type classFixture struct {
	owner   *models.User
	payer   *models.User
	member  *models.ClassMember
	class   *models.Class
	cycle   *models.FeeCycle
	invoice *models.Invoice
}

func seedClassFixture(t *testing.T, svc *ClassFundService, amount int64) *classFixture {
	t.Helper()
	ctx := context.Background()

	owner := &models.User{Login: "owner", Name: "Tran Thi Chu Nhiem"}
	payer := &models.User{Login: "payer", Name: "Nguyen Van An"}
	for _, user := range []*models.User{owner, payer} {
		_, err := svc.DB.NewInsert().Model(user).Exec(ctx)
		require.NoError(t, err)
	}

	class, err := svc.CreateClass(ctx, "10A1", owner.ID)
	require.NoError(t, err)
	member, err := svc.JoinClass(ctx, class.Code, payer.ID)
	require.NoError(t, err)

	cycle := &models.FeeCycle{
		ClassID:         class.ID,
		Name:            "Quy 1",
		AmountPerMember: amount,
		Status:          common.CycleStatusActive,
	}
	_, err = svc.DB.NewInsert().Model(cycle).Exec(ctx)
	require.NoError(t, err)

	invoice := &models.Invoice{
		FeeCycleID: cycle.ID,
		MemberID:   member.ID,
		Amount:     amount,
		Status:     common.InvoiceStatusUnpaid,
	}
	_, err = svc.DB.NewInsert().Model(invoice).Exec(ctx)
	require.NoError(t, err)

	return &classFixture{
		owner:   owner,
		payer:   payer,
		member:  member,
		class:   class,
		cycle:   cycle,
		invoice: invoice,
	}
}

func (fx *classFixture) seedPayment(t *testing.T, svc *ClassFundService, amount int64, status, proofPath string) *models.Payment {
	t.Helper()
	payment := &models.Payment{
		InvoiceID: fx.invoice.ID,
		PayerID:   fx.member.ID,
		Amount:    amount,
		Method:    common.PaymentMethodBank,
		ProofPath: proofPath,
		Status:    status,
	}
	if status == common.PaymentStatusVerified {
		payment.VerifiedAt = bun.NullTime{Time: time.Now()}
	}
	_, err := svc.DB.NewInsert().Model(payment).Exec(context.Background())
	require.NoError(t, err)
	return payment
}

func (fx *classFixture) setInvoiceStatus(t *testing.T, svc *ClassFundService, status string) {
	t.Helper()
	fx.invoice.Status = status
	_, err := svc.DB.NewUpdate().Model(fx.invoice).Column("status").WherePK().Exec(context.Background())
	require.NoError(t, err)
}
