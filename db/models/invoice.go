package models

import (
	"context"
	"time"

	"github.com/classfund/classfund.go/common"
	"github.com/uptrace/bun"
)

// Invoice : one member's obligation for one fee cycle. Unique per
// (fee_cycle, member). Status caches the verified payment sum versus the
// invoice amount and regresses when a payment is invalidated.
type Invoice struct {
	ID         int64        `json:"id" bun:",pk,autoincrement"`
	FeeCycleID int64        `json:"fee_cycle_id" bun:",notnull"`
	FeeCycle   *FeeCycle    `json:"-" bun:"rel:belongs-to,join:fee_cycle_id=id"`
	MemberID   int64        `json:"member_id" bun:",notnull"`
	Member     *ClassMember `json:"-" bun:"rel:belongs-to,join:member_id=id"`
	Amount     int64        `json:"amount" bun:",notnull" validate:"gte=0"`
	Status     string       `json:"status" bun:",notnull,default:'unpaid'"`
	PaidAt     bun.NullTime `json:"paid_at"`
	Payments   []Payment    `json:"-" bun:"rel:has-many,join:id=invoice_id"`
	CreatedAt  time.Time    `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt  bun.NullTime `json:"updated_at"`
}

func (i *Invoice) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.UpdateQuery:
		i.UpdatedAt = bun.NullTime{Time: time.Now()}
	}
	return nil
}

// Submittable reports whether a member may submit a payment against this
// invoice given its status and the owning cycle's due-date policy.
func (i *Invoice) Submittable(cycle *FeeCycle, now time.Time) bool {
	if i.Status != common.InvoiceStatusUnpaid && i.Status != common.InvoiceStatusSubmitted {
		return false
	}
	if cycle != nil && cycle.PastDue(now) && !cycle.AllowLate {
		return false
	}
	return true
}

var _ bun.BeforeAppendModelHook = (*Invoice)(nil)
