package common

const (
	RoleOwner     = "owner"
	RoleTreasurer = "treasurer"
	RoleMember    = "member"

	MemberStatusActive = "active"
	MemberStatusLeft   = "left"

	CycleStatusDraft  = "draft"
	CycleStatusActive = "active"
	CycleStatusClosed = "closed"

	InvoiceStatusUnpaid    = "unpaid"
	InvoiceStatusSubmitted = "submitted"
	InvoiceStatusVerified  = "verified"
	InvoiceStatusPaid      = "paid"

	PaymentStatusSubmitted = "submitted"
	PaymentStatusVerified  = "verified"
	PaymentStatusRejected  = "rejected"
	PaymentStatusInvalid   = "invalid"

	PaymentMethodBank    = "bank"
	PaymentMethodMomo    = "momo"
	PaymentMethodZalopay = "zalopay"
	PaymentMethodCash    = "cash"

	// Reason codes recorded on payments by the auto-verification pipeline.
	ReasonMatchOK        = "MATCH_OK"
	ReasonAmountMismatch = "AMOUNT_MISMATCH"
	ReasonPayeeMismatch  = "PAYEE_MISMATCH"
	ReasonNoTxnRef       = "NO_TXN_REF"
	ReasonNoNote         = "NO_NOTE"
	ReasonNoteMismatch   = "NOTE_MISMATCH"
	ReasonNoteWeak       = "NOTE_WEAK"
	ReasonProofNotFound  = "PROOF_NOT_FOUND"
	ReasonOcrError       = "OCR_ERROR"
	ReasonOcrEmpty       = "OCR_EMPTY"

	// Ledger line types. Same-timestamp lines sort in this order.
	LedgerTypePayment        = "payment"
	LedgerTypeInvalidPayment = "invalid_payment"
	LedgerTypeExpense        = "expense"

	NotificationPaymentVerified = "payment_verified"
	NotificationPaymentReview   = "payment_needs_review"
	NotificationPaymentRejected = "payment_rejected"
	NotificationPaymentInvalid  = "payment_invalidated"

	StorageCategoryProofs   = "proofs"
	StorageCategoryReceipts = "receipts"
)
