package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/classfund/classfund.go/common"
	"github.com/classfund/classfund.go/db/models"
	"github.com/labstack/gommon/random"
	"github.com/uptrace/bun"
)

func (svc *ClassFundService) FindClass(ctx context.Context, classId int64) (*models.Class, error) {
	var class models.Class
	err := svc.DB.NewSelect().Model(&class).Where("class.id = ?", classId).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &class, nil
}

// CreateClass creates the class and enrolls the creator as its owner
// member in one transaction.
func (svc *ClassFundService) CreateClass(ctx context.Context, name string, ownerId int64) (*models.Class, error) {
	class := &models.Class{
		Name:    name,
		Code:    random.String(8, random.Alphanumeric),
		OwnerID: ownerId,
	}
	err := svc.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(class).Exec(ctx); err != nil {
			return err
		}
		member := &models.ClassMember{
			ClassID:  class.ID,
			UserID:   ownerId,
			Role:     common.RoleOwner,
			Status:   common.MemberStatusActive,
			JoinedAt: bun.NullTime{Time: time.Now()},
		}
		_, err := tx.NewInsert().Model(member).Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return class, nil
}

// JoinClass enrolls a user via the class join code.
func (svc *ClassFundService) JoinClass(ctx context.Context, code string, userId int64) (*models.ClassMember, error) {
	var class models.Class
	err := svc.DB.NewSelect().Model(&class).Where("code = ?", code).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	existing, err := svc.FindMember(ctx, class.ID, userId)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotMember) {
		return nil, err
	}

	member := &models.ClassMember{
		ClassID:  class.ID,
		UserID:   userId,
		Role:     common.RoleMember,
		Status:   common.MemberStatusActive,
		JoinedAt: bun.NullTime{Time: time.Now()},
	}
	if _, err := svc.DB.NewInsert().Model(member).Exec(ctx); err != nil {
		return nil, err
	}
	return member, nil
}

func (svc *ClassFundService) FindMember(ctx context.Context, classId, userId int64) (*models.ClassMember, error) {
	var member models.ClassMember
	err := svc.DB.NewSelect().Model(&member).
		Relation("User").
		Where("class_member.class_id = ? AND class_member.user_id = ?", classId, userId).
		Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotMember
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (svc *ClassFundService) ListMembers(ctx context.Context, classId int64) ([]models.ClassMember, error) {
	members := []models.ClassMember{}
	err := svc.DB.NewSelect().Model(&members).
		Relation("User").
		Where("class_member.class_id = ?", classId).
		Order("class_member.id ASC").
		Scan(ctx)
	return members, err
}

// RoleInClass is the single capability-resolution point: it maps a
// (user, class) pair to a Role, the empty role meaning non-member.
func (svc *ClassFundService) RoleInClass(ctx context.Context, classId, userId int64) (common.Role, error) {
	member, err := svc.FindMember(ctx, classId, userId)
	if errors.Is(err, ErrNotMember) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return common.Role(member.Role), nil
}

// EnsureMember authorizes any class member. Authorization runs before all
// other validations and never mutates state.
func (svc *ClassFundService) EnsureMember(ctx context.Context, classId, userId int64) (*models.ClassMember, error) {
	return svc.FindMember(ctx, classId, userId)
}

// EnsureTreasurerLike authorizes owners and treasurers.
func (svc *ClassFundService) EnsureTreasurerLike(ctx context.Context, classId, userId int64) (*models.ClassMember, error) {
	member, err := svc.FindMember(ctx, classId, userId)
	if err != nil {
		return nil, err
	}
	if !common.Role(member.Role).IsTreasurerLike() {
		return nil, ErrTreasurerRequired
	}
	return member, nil
}

// EnsureOwner authorizes the class owner only.
func (svc *ClassFundService) EnsureOwner(ctx context.Context, classId, userId int64) (*models.ClassMember, error) {
	member, err := svc.FindMember(ctx, classId, userId)
	if err != nil {
		return nil, err
	}
	if !common.Role(member.Role).IsOwner() {
		return nil, ErrOwnerRequired
	}
	return member, nil
}

// SetMemberRole lets the owner grant or revoke the treasurer role.
func (svc *ClassFundService) SetMemberRole(ctx context.Context, classId, actorId, memberId int64, role string) (*models.ClassMember, error) {
	if _, err := svc.EnsureOwner(ctx, classId, actorId); err != nil {
		return nil, err
	}
	if role != common.RoleTreasurer && role != common.RoleMember {
		return nil, ErrConflict
	}

	var member models.ClassMember
	err := svc.DB.NewSelect().Model(&member).
		Where("class_member.id = ? AND class_member.class_id = ?", memberId, classId).
		Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if member.Role == common.RoleOwner {
		// ownership is not reassignable through role edits
		return nil, ErrConflict
	}

	member.Role = role
	if _, err := svc.DB.NewUpdate().Model(&member).Column("role", "updated_at").WherePK().Exec(ctx); err != nil {
		return nil, err
	}
	return &member, nil
}

// TreasurerLikeUserIds returns the user ids of the active owners and
// treasurers of a class, the audience for payment outcome notifications.
func (svc *ClassFundService) TreasurerLikeUserIds(ctx context.Context, classId int64) ([]int64, error) {
	var ids []int64
	err := svc.DB.NewSelect().Model((*models.ClassMember)(nil)).
		Column("user_id").
		Where("class_id = ? AND status = ? AND role IN (?)",
			classId, common.MemberStatusActive, bun.In([]string{common.RoleOwner, common.RoleTreasurer})).
		Scan(ctx, &ids)
	return ids, err
}
