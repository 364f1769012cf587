package models

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// FeeCycle : one collection period with a per-member amount and due date.
type FeeCycle struct {
	ID              int64        `json:"id" bun:",pk,autoincrement"`
	ClassID         int64        `json:"class_id" bun:",notnull"`
	Class           *Class       `json:"-" bun:"rel:belongs-to,join:class_id=id"`
	Name            string       `json:"name" bun:",notnull" validate:"required"`
	Term            string       `json:"term" bun:",nullzero"`
	AmountPerMember int64        `json:"amount_per_member" bun:",notnull" validate:"gt=0"`
	DueDate         bun.NullTime `json:"due_date" bun:",nullzero"`
	Status          string       `json:"status" bun:",notnull,default:'draft'"`
	AllowLate       bool         `json:"allow_late" bun:",nullzero"`
	CreatedAt       time.Time    `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt       bun.NullTime `json:"updated_at"`
}

func (fc *FeeCycle) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.UpdateQuery:
		fc.UpdatedAt = bun.NullTime{Time: time.Now()}
	}
	return nil
}

// PastDue reports whether submissions for this cycle are past the due date.
// Cycles without a due date never become past due.
func (fc *FeeCycle) PastDue(now time.Time) bool {
	if fc.DueDate.IsZero() {
		return false
	}
	y1, m1, d1 := now.Date()
	y2, m2, d2 := fc.DueDate.Time.Date()
	today := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	due := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return today.After(due)
}

var _ bun.BeforeAppendModelHook = (*FeeCycle)(nil)
