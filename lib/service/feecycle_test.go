package service

import (
	"context"
	"testing"

	"github.com/classfund/classfund.go/common"
	"github.com/classfund/classfund.go/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The cycle report carries collection and spend figures side by side:
// expected vs verified income, cycle expenses and the resulting balance.
func TestFeeCycleProgressIncludesExpenses(t *testing.T) {
	svc := newTestService(t, &stubExtractor{}, &stubStore{})
	fx := seedClassFixture(t, svc, 200000)
	ctx := context.Background()

	fx.seedPayment(t, svc, 200000, common.PaymentStatusVerified, "")
	fx.setInvoiceStatus(t, svc, common.InvoiceStatusVerified)

	expense := &models.Expense{
		ClassID:    fx.class.ID,
		FeeCycleID: fx.cycle.ID,
		Title:      "Nuoc uong lien hoan",
		Amount:     50000,
	}
	_, err := svc.DB.NewInsert().Model(expense).Exec(ctx)
	require.NoError(t, err)

	progress, err := svc.FeeCycleProgress(ctx, fx.cycle)
	require.NoError(t, err)
	assert.Equal(t, 1, progress.InvoiceCount)
	assert.Equal(t, int64(200000), progress.ExpectedTotal)
	assert.Equal(t, int64(200000), progress.VerifiedTotal)
	assert.Equal(t, int64(50000), progress.TotalExpense)
	assert.Equal(t, int64(150000), progress.Balance)
	assert.Equal(t, map[string]int{common.InvoiceStatusVerified: 1}, progress.StatusCounts)
}
