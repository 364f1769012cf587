package service

import (
	"context"
	"testing"

	"github.com/classfund/classfund.go/common"
	"github.com/classfund/classfund.go/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Members who left the class are no longer part of the treasurer
// notification audience, whatever role they held.
func TestTreasurerLikeUserIdsSkipsInactiveMembers(t *testing.T) {
	svc := newTestService(t, &stubExtractor{}, &stubStore{})
	fx := seedClassFixture(t, svc, 200000)
	ctx := context.Background()

	former := &models.User{Login: "former", Name: "Le Thi Cu"}
	active := &models.User{Login: "active", Name: "Pham Van Moi"}
	for _, user := range []*models.User{former, active} {
		_, err := svc.DB.NewInsert().Model(user).Exec(ctx)
		require.NoError(t, err)
	}
	for _, member := range []*models.ClassMember{
		{ClassID: fx.class.ID, UserID: former.ID, Role: common.RoleTreasurer, Status: common.MemberStatusLeft},
		{ClassID: fx.class.ID, UserID: active.ID, Role: common.RoleTreasurer, Status: common.MemberStatusActive},
	} {
		_, err := svc.DB.NewInsert().Model(member).Exec(ctx)
		require.NoError(t, err)
	}

	ids, err := svc.TreasurerLikeUserIds(ctx, fx.class.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{fx.owner.ID, active.ID}, ids)
}
