package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/classfund/classfund.go/common"
	"github.com/classfund/classfund.go/db/models"
)

func (svc *ClassFundService) FindExpense(ctx context.Context, expenseId int64) (*models.Expense, error) {
	var expense models.Expense
	err := svc.DB.NewSelect().Model(&expense).Where("expense.id = ?", expenseId).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

func (svc *ClassFundService) ListExpenses(ctx context.Context, classId int64) ([]models.Expense, error) {
	expenses := []models.Expense{}
	err := svc.DB.NewSelect().Model(&expenses).
		Where("class_id = ?", classId).
		Order("id DESC").
		Scan(ctx)
	return expenses, err
}

// CreateExpense records money spent from the class fund, storing the
// receipt image when one is attached.
func (svc *ClassFundService) CreateExpense(ctx context.Context, expense *models.Expense, receipt []byte, receiptName string) (*models.Expense, error) {
	if len(receipt) > 0 {
		stored, err := svc.Storage.Store(receipt, common.StorageCategoryReceipts, receiptName)
		if err != nil {
			return nil, err
		}
		expense.ReceiptPath = stored
	}
	if _, err := svc.DB.NewInsert().Model(expense).Exec(ctx); err != nil {
		return nil, err
	}
	return expense, nil
}

func (svc *ClassFundService) UpdateExpense(ctx context.Context, expense *models.Expense) (*models.Expense, error) {
	_, err := svc.DB.NewUpdate().Model(expense).
		Column("title", "amount", "note", "fee_cycle_id", "spent_at", "updated_at").
		WherePK().Exec(ctx)
	if err != nil {
		return nil, err
	}
	return expense, nil
}

func (svc *ClassFundService) DeleteExpense(ctx context.Context, expenseId, classId int64) error {
	res, err := svc.DB.NewDelete().Model((*models.Expense)(nil)).
		Where("id = ? AND class_id = ?", expenseId, classId).
		Exec(ctx)
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}
