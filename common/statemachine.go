package common

import "fmt"

// The allowed status transitions for invoices and payments, as data.
// Handlers and the proof pipeline go through CanTransition instead of
// flipping status strings ad hoc.
//
// Invoice status is a cached summary of its verified payments and is NOT
// monotonic: invalidating a verified payment regresses the invoice from
// verified (or paid) back to submitted or unpaid.
var invoiceTransitions = map[string][]string{
	InvoiceStatusUnpaid:    {InvoiceStatusSubmitted},
	InvoiceStatusSubmitted: {InvoiceStatusVerified, InvoiceStatusUnpaid},
	InvoiceStatusVerified:  {InvoiceStatusPaid, InvoiceStatusSubmitted, InvoiceStatusUnpaid},
	InvoiceStatusPaid:      {InvoiceStatusSubmitted, InvoiceStatusUnpaid},
}

// Payment status is terminal once rejected or invalid. `invalid` is only
// reachable from `verified`; there is no un-invalidate.
var paymentTransitions = map[string][]string{
	PaymentStatusSubmitted: {PaymentStatusVerified, PaymentStatusRejected},
	PaymentStatusVerified:  {PaymentStatusInvalid},
	PaymentStatusRejected:  {},
	PaymentStatusInvalid:   {},
}

func canTransition(table map[string][]string, from, to string) bool {
	if from == to {
		return true
	}
	for _, next := range table[from] {
		if next == to {
			return true
		}
	}
	return false
}

func CanInvoiceTransition(from, to string) bool {
	return canTransition(invoiceTransitions, from, to)
}

func CanPaymentTransition(from, to string) bool {
	return canTransition(paymentTransitions, from, to)
}

// CheckPaymentTransition returns a descriptive error for transitions that
// are not in the table, suitable for surfacing as a conflict to the caller.
func CheckPaymentTransition(from, to string) error {
	if !CanPaymentTransition(from, to) {
		return fmt.Errorf("payment status transition %s -> %s not allowed", from, to)
	}
	return nil
}

func CheckInvoiceTransition(from, to string) error {
	if !CanInvoiceTransition(from, to) {
		return fmt.Errorf("invoice status transition %s -> %s not allowed", from, to)
	}
	return nil
}

// NextInvoicePromotion returns the next status up the promotion ladder.
// Invoices never skip a rung upward; recomputation advances them one
// step at a time until the derived status is reached.
func NextInvoicePromotion(from string) (string, bool) {
	switch from {
	case InvoiceStatusUnpaid:
		return InvoiceStatusSubmitted, true
	case InvoiceStatusSubmitted:
		return InvoiceStatusVerified, true
	case InvoiceStatusVerified:
		return InvoiceStatusPaid, true
	}
	return "", false
}

func IsTerminalPaymentStatus(status string) bool {
	return len(paymentTransitions[status]) == 0
}
