package migrations

import (
	"context"

	"github.com/classfund/classfund.go/db/models"
	"github.com/uptrace/bun"
)

/* The init migration reflects the latest model fields when run on a fresh
db. Subsequent migrations must use IfNotExists/IfExists for columns they
add or remove. */
func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		for _, model := range []interface{}{
			(*models.User)(nil),
			(*models.Class)(nil),
			(*models.ClassMember)(nil),
			(*models.FundAccount)(nil),
			(*models.FeeCycle)(nil),
			(*models.Invoice)(nil),
			(*models.Payment)(nil),
			(*models.Expense)(nil),
			(*models.Notification)(nil),
		} {
			if _, err := db.NewCreateTable().Model(model).Exec(ctx); err != nil {
				return err
			}
		}

		if _, err := db.NewCreateIndex().
			Model((*models.ClassMember)(nil)).
			Index("class_members_class_user_idx").
			Column("class_id", "user_id").
			Unique().
			Exec(ctx); err != nil {
			return err
		}

		// At most one invoice per member per cycle.
		if _, err := db.NewCreateIndex().
			Model((*models.Invoice)(nil)).
			Index("invoices_cycle_member_idx").
			Column("fee_cycle_id", "member_id").
			Unique().
			Exec(ctx); err != nil {
			return err
		}

		if _, err := db.NewCreateIndex().
			Model((*models.Payment)(nil)).
			Index("payments_invoice_status_idx").
			Column("invoice_id", "status").
			Exec(ctx); err != nil {
			return err
		}

		return nil
	}, nil)
}
