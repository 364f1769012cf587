package models

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Expense : money spent from the class fund, optionally tied to a cycle.
type Expense struct {
	ID          int64        `json:"id" bun:",pk,autoincrement"`
	ClassID     int64        `json:"class_id" bun:",notnull"`
	Class       *Class       `json:"-" bun:"rel:belongs-to,join:class_id=id"`
	FeeCycleID  int64        `json:"fee_cycle_id" bun:",nullzero"`
	FeeCycle    *FeeCycle    `json:"-" bun:"rel:belongs-to,join:fee_cycle_id=id"`
	Title       string       `json:"title" bun:",notnull" validate:"required"`
	Amount      int64        `json:"amount" bun:",notnull" validate:"gte=0"`
	Note        string       `json:"note" bun:",nullzero"`
	ReceiptPath string       `json:"receipt_path" bun:",nullzero"`
	CreatedByID int64        `json:"created_by" bun:"created_by,nullzero"`
	SpentAt     bun.NullTime `json:"spent_at"`
	CreatedAt   time.Time    `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt   bun.NullTime `json:"updated_at"`
}

func (e *Expense) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.UpdateQuery:
		e.UpdatedAt = bun.NullTime{Time: time.Now()}
	}
	return nil
}

// OccurredAt is the ledger timestamp of an expense line: the spend date
// when recorded, otherwise the creation date.
func (e *Expense) OccurredAt() time.Time {
	if !e.SpentAt.IsZero() {
		return e.SpentAt.Time
	}
	return e.CreatedAt
}

// Notification : DB-backed notification sink. Delivery is fire-and-forget;
// writers log and swallow failures.
type Notification struct {
	ID        int64        `json:"id" bun:",pk,autoincrement"`
	UserID    int64        `json:"user_id" bun:",notnull"`
	ClassID   int64        `json:"class_id" bun:",nullzero"`
	Type      string       `json:"type" bun:",notnull"`
	Title     string       `json:"title" bun:",notnull"`
	Body      string       `json:"body" bun:",nullzero"`
	IsRead    bool         `json:"is_read" bun:",nullzero"`
	SentAt    bun.NullTime `json:"sent_at"`
	CreatedAt time.Time    `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt bun.NullTime `json:"updated_at"`
}

func (n *Notification) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.UpdateQuery:
		n.UpdatedAt = bun.NullTime{Time: time.Now()}
	}
	return nil
}

var _ bun.BeforeAppendModelHook = (*Expense)(nil)
var _ bun.BeforeAppendModelHook = (*Notification)(nil)
