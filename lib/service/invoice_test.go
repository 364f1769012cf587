package service

import (
	"context"
	"testing"

	"github.com/classfund/classfund.go/common"
	"github.com/classfund/classfund.go/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// An invoice already fully covered by verified transfers is confirmed
// paid without creating another payment.
func TestMarkInvoicePaidFullyCoveredInvoice(t *testing.T) {
	svc := newTestService(t, &stubExtractor{}, &stubStore{})
	fx := seedClassFixture(t, svc, 200000)
	ctx := context.Background()

	fx.seedPayment(t, svc, 200000, common.PaymentStatusVerified, "")
	fx.setInvoiceStatus(t, svc, common.InvoiceStatusVerified)

	paid, err := svc.MarkInvoicePaid(ctx, fx.invoice, fx.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, common.InvoiceStatusPaid, paid.Status)
	assert.False(t, paid.PaidAt.IsZero())

	count, err := svc.DB.NewSelect().Model((*models.Payment)(nil)).
		Where("invoice_id = ?", fx.invoice.ID).
		Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

// A partially covered invoice gets a verified cash payment for the
// remainder and is then promoted to paid.
func TestMarkInvoicePaidRecordsCashRemainder(t *testing.T) {
	svc := newTestService(t, &stubExtractor{}, &stubStore{})
	fx := seedClassFixture(t, svc, 200000)
	ctx := context.Background()

	fx.seedPayment(t, svc, 150000, common.PaymentStatusVerified, "")

	paid, err := svc.MarkInvoicePaid(ctx, fx.invoice, fx.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, common.InvoiceStatusPaid, paid.Status)

	payments := []models.Payment{}
	err = svc.DB.NewSelect().Model(&payments).
		Where("invoice_id = ?", fx.invoice.ID).
		Order("id ASC").
		Scan(ctx)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	cash := payments[1]
	assert.Equal(t, common.PaymentMethodCash, cash.Method)
	assert.Equal(t, int64(50000), cash.Amount)
	assert.Equal(t, common.PaymentStatusVerified, cash.Status)
	assert.Equal(t, fx.owner.ID, cash.VerifiedByID)
}

func TestMarkInvoicePaidAlreadyPaid(t *testing.T) {
	svc := newTestService(t, &stubExtractor{}, &stubStore{})
	fx := seedClassFixture(t, svc, 200000)

	fx.setInvoiceStatus(t, svc, common.InvoiceStatusPaid)

	_, err := svc.MarkInvoicePaid(context.Background(), fx.invoice, fx.owner.ID)
	assert.ErrorIs(t, err, ErrConflict)
}
