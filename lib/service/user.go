package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/classfund/classfund.go/common"
	"github.com/classfund/classfund.go/db/models"
)

func (svc *ClassFundService) FindUser(ctx context.Context, userId int64) (*models.User, error) {
	var user models.User
	err := svc.DB.NewSelect().Model(&user).Where("id = ?", userId).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (svc *ClassFundService) FindUserByLogin(ctx context.Context, login string) (*models.User, error) {
	var user models.User
	err := svc.DB.NewSelect().Model(&user).Where("login = ?", login).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser provisions an account record. Logins are unique; a second
// provision call for the same login returns the existing record.
func (svc *ClassFundService) CreateUser(ctx context.Context, login, name, email, phone string) (*models.User, error) {
	existing, err := svc.FindUserByLogin(ctx, login)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	user := &models.User{
		Login: login,
		Name:  name,
		Email: email,
		Phone: phone,
	}
	if _, err := svc.DB.NewInsert().Model(user).Exec(ctx); err != nil {
		return nil, err
	}
	return user, nil
}

// MyClasses lists every class the user is an active member of, with the
// membership role attached.
func (svc *ClassFundService) MyClasses(ctx context.Context, userId int64) ([]models.ClassMember, error) {
	memberships := []models.ClassMember{}
	err := svc.DB.NewSelect().Model(&memberships).
		Relation("Class").
		Where("class_member.user_id = ? AND class_member.status = ?", userId, common.MemberStatusActive).
		Order("class_member.id ASC").
		Scan(ctx)
	return memberships, err
}
