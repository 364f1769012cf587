package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/classfund/classfund.go/db/models"
)

func (svc *ClassFundService) FindFundAccount(ctx context.Context, classId int64) (*models.FundAccount, error) {
	var fund models.FundAccount
	err := svc.DB.NewSelect().Model(&fund).Where("class_id = ?", classId).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &fund, nil
}

// UpsertFundAccount creates or replaces the single fund account of a class.
func (svc *ClassFundService) UpsertFundAccount(ctx context.Context, fund *models.FundAccount) (*models.FundAccount, error) {
	existing, err := svc.FindFundAccount(ctx, fund.ClassID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if existing == nil {
		if _, err := svc.DB.NewInsert().Model(fund).Exec(ctx); err != nil {
			return nil, err
		}
		return fund, nil
	}

	existing.Name = fund.Name
	existing.BankName = fund.BankName
	existing.AccountNo = fund.AccountNo
	existing.AccountHolder = fund.AccountHolder
	if fund.QrImagePath != "" {
		existing.QrImagePath = fund.QrImagePath
	}
	_, err = svc.DB.NewUpdate().Model(existing).
		Column("name", "bank_name", "account_no", "account_holder", "qr_image_path", "updated_at").
		WherePK().Exec(ctx)
	if err != nil {
		return nil, err
	}
	return existing, nil
}
