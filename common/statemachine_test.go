package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentInvalidOnlyFromVerified(t *testing.T) {
	assert.True(t, CanPaymentTransition(PaymentStatusVerified, PaymentStatusInvalid))
	assert.False(t, CanPaymentTransition(PaymentStatusSubmitted, PaymentStatusInvalid))
	assert.False(t, CanPaymentTransition(PaymentStatusRejected, PaymentStatusInvalid))
}

func TestPaymentInvalidIsTerminal(t *testing.T) {
	assert.True(t, IsTerminalPaymentStatus(PaymentStatusInvalid))
	assert.False(t, CanPaymentTransition(PaymentStatusInvalid, PaymentStatusVerified))
	assert.False(t, CanPaymentTransition(PaymentStatusInvalid, PaymentStatusSubmitted))
}

func TestInvoiceRegressesAfterInvalidation(t *testing.T) {
	assert.True(t, CanInvoiceTransition(InvoiceStatusVerified, InvoiceStatusSubmitted))
	assert.True(t, CanInvoiceTransition(InvoiceStatusVerified, InvoiceStatusUnpaid))
	assert.True(t, CanInvoiceTransition(InvoiceStatusPaid, InvoiceStatusUnpaid))
}

func TestInvoiceCannotSkipToPaid(t *testing.T) {
	assert.False(t, CanInvoiceTransition(InvoiceStatusUnpaid, InvoiceStatusPaid))
	assert.False(t, CanInvoiceTransition(InvoiceStatusSubmitted, InvoiceStatusPaid))
	assert.True(t, CanInvoiceTransition(InvoiceStatusVerified, InvoiceStatusPaid))
}

func TestSelfTransitionAllowed(t *testing.T) {
	assert.NoError(t, CheckPaymentTransition(PaymentStatusSubmitted, PaymentStatusSubmitted))
	assert.NoError(t, CheckInvoiceTransition(InvoiceStatusVerified, InvoiceStatusVerified))
}

func TestNextInvoicePromotion(t *testing.T) {
	next, ok := NextInvoicePromotion(InvoiceStatusUnpaid)
	assert.True(t, ok)
	assert.Equal(t, InvoiceStatusSubmitted, next)

	next, ok = NextInvoicePromotion(InvoiceStatusSubmitted)
	assert.True(t, ok)
	assert.Equal(t, InvoiceStatusVerified, next)

	next, ok = NextInvoicePromotion(InvoiceStatusVerified)
	assert.True(t, ok)
	assert.Equal(t, InvoiceStatusPaid, next)

	_, ok = NextInvoicePromotion(InvoiceStatusPaid)
	assert.False(t, ok)
}

func TestCheckPaymentTransitionError(t *testing.T) {
	err := CheckPaymentTransition(PaymentStatusRejected, PaymentStatusVerified)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "rejected -> verified")
}
