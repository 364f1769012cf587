package models

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Payment : one proof-of-payment against an invoice. The submitted fields,
// the OCR-derived fields, the auto-verification outcome and the
// invalidation metadata all live on the same row so the full audit history
// of a payment is reconstructable from a single record.
type Payment struct {
	ID        int64        `json:"id" bun:",pk,autoincrement"`
	InvoiceID int64        `json:"invoice_id" bun:",notnull"`
	Invoice   *Invoice     `json:"-" bun:"rel:belongs-to,join:invoice_id=id"`
	PayerID   int64        `json:"payer_id" bun:",notnull"`
	Payer     *ClassMember `json:"-" bun:"rel:belongs-to,join:payer_id=id"`
	Amount    int64        `json:"amount" bun:",notnull" validate:"gte=0"`
	Method    string       `json:"method" bun:",notnull,default:'bank'"`
	TxnRef    string       `json:"txn_ref" bun:",nullzero"`
	ProofPath string       `json:"proof_path" bun:",nullzero"`
	Status    string       `json:"status" bun:",notnull,default:'submitted'"`

	// Verification metadata. VerifiedByID stays zero (null) for automatic
	// approval, distinguishing it from manual treasurer approval.
	VerifiedByID int64        `json:"verified_by" bun:"verified_by,nullzero"`
	VerifiedAt   bun.NullTime `json:"verified_at"`

	// OCR layer, persisted regardless of the decision outcome.
	OcrRaw        string `json:"ocr_raw" bun:",nullzero"`
	OcrAmount     int64  `json:"ocr_amount" bun:",nullzero"`
	OcrMethod     string `json:"ocr_method" bun:",nullzero"`
	OcrTxnRef     string `json:"ocr_txn_ref" bun:",nullzero"`
	OcrConfidence int64  `json:"ocr_confidence" bun:",nullzero"`

	// Auto-verification outcome layer.
	AutoVerified       bool   `json:"auto_verified" bun:",nullzero"`
	VerifyReasonCode   string `json:"verify_reason_code" bun:",nullzero"`
	VerifyReasonDetail string `json:"verify_reason_detail" bun:",nullzero"`

	// Invalidation layer. Terminal; set once, never cleared.
	InvalidatedAt   bun.NullTime `json:"invalidated_at"`
	InvalidatedByID int64        `json:"invalidated_by" bun:"invalidated_by,nullzero"`
	InvalidReason   string       `json:"invalid_reason" bun:",nullzero"`
	InvalidNote     string       `json:"invalid_note" bun:",nullzero"`

	CreatedAt time.Time    `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt bun.NullTime `json:"updated_at"`
}

func (p *Payment) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.UpdateQuery:
		p.UpdatedAt = bun.NullTime{Time: time.Now()}
	}
	return nil
}

var _ bun.BeforeAppendModelHook = (*Payment)(nil)
