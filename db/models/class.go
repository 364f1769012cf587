package models

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Class : the fund-sharing group owning members, cycles and expenses.
type Class struct {
	ID        int64        `json:"id" bun:",pk,autoincrement"`
	Name      string       `json:"name" bun:",notnull" validate:"required"`
	Code      string       `json:"code" bun:",unique,notnull"`
	OwnerID   int64        `json:"owner_id" bun:",notnull"`
	Owner     *User        `json:"-" bun:"rel:belongs-to,join:owner_id=id"`
	CreatedAt time.Time    `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt bun.NullTime `json:"updated_at"`
}

func (c *Class) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.UpdateQuery:
		c.UpdatedAt = bun.NullTime{Time: time.Now()}
	}
	return nil
}

// ClassMember : a user's membership record in one class. Role and status
// are scoped to the class, not the user.
type ClassMember struct {
	ID        int64        `json:"id" bun:",pk,autoincrement"`
	ClassID   int64        `json:"class_id" bun:",notnull"`
	Class     *Class       `json:"-" bun:"rel:belongs-to,join:class_id=id"`
	UserID    int64        `json:"user_id" bun:",notnull"`
	User      *User        `json:"user,omitempty" bun:"rel:belongs-to,join:user_id=id"`
	Role      string       `json:"role" bun:",notnull,default:'member'"`
	Status    string       `json:"status" bun:",notnull,default:'active'"`
	JoinedAt  bun.NullTime `json:"joined_at"`
	CreatedAt time.Time    `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt bun.NullTime `json:"updated_at"`
}

func (m *ClassMember) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.UpdateQuery:
		m.UpdatedAt = bun.NullTime{Time: time.Now()}
	}
	return nil
}

// FundAccount : at most one per class, bank routing details used for payee
// matching by the auto-verifier.
type FundAccount struct {
	ID            int64        `json:"id" bun:",pk,autoincrement"`
	ClassID       int64        `json:"class_id" bun:",unique,notnull"`
	Class         *Class       `json:"-" bun:"rel:belongs-to,join:class_id=id"`
	Name          string       `json:"name" bun:",notnull"`
	BankName      string       `json:"bank_name" bun:",nullzero"`
	AccountNo     string       `json:"account_no" bun:",nullzero"`
	AccountHolder string       `json:"account_holder" bun:",nullzero"`
	QrImagePath   string       `json:"qr_image_path" bun:",nullzero"`
	CreatedAt     time.Time    `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt     bun.NullTime `json:"updated_at"`
}

func (f *FundAccount) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.UpdateQuery:
		f.UpdatedAt = bun.NullTime{Time: time.Now()}
	}
	return nil
}

var _ bun.BeforeAppendModelHook = (*Class)(nil)
var _ bun.BeforeAppendModelHook = (*ClassMember)(nil)
var _ bun.BeforeAppendModelHook = (*FundAccount)(nil)
