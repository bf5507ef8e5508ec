package service_test

import (
	"testing"

	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"
	"go-pos-backend/internal/service"
	"go-pos-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedGrantedPosition(t *testing.T, db *gorm.DB, businessID, userID uint, keys ...string) uint {
	t.Helper()
	permRepo := repository.NewPermissionRepo(db)
	posRepo := repository.NewPositionRepo(db)

	pos := model.Position{PositionName: "Granted-" + keys[0]}
	require.NoError(t, posRepo.Create(&pos))
	require.NoError(t, db.Create(&model.BusinessUserPosition{
		UserID: userID, BusinessID: businessID, BusPosID: pos.ID,
	}).Error)

	pairs, err := permRepo.ListFeatureActions()
	require.NoError(t, err)
	var ids []uint
	for _, pair := range pairs {
		for _, key := range keys {
			if pair.Key == key {
				ids = append(ids, pair.FeatureActionID)
			}
		}
	}
	require.Len(t, ids, len(keys))
	_, err = permRepo.BulkAssignPositionPermissions(pos.ID, ids)
	require.NoError(t, err)
	return pos.ID
}

func TestPermissionServiceCachesResolutions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedRBAC(t, db)
	owner := testutil.SeedUser(t, db, "owner", model.SystemRoleUser)
	business := testutil.SeedBusiness(t, db, owner.ID, "Cafe", "CF1")

	worker := testutil.SeedUser(t, db, "worker", model.SystemRoleUser)
	seedGrantedPosition(t, db, business.ID, worker.ID, "order:create")

	svc := service.NewPermissionService(repository.NewPermissionRepo(db))

	ok, err := svc.HasPermission(model.SystemRoleUser, worker.ID, business.ID, "order:create")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.HasPermission(model.SystemRoleUser, worker.ID, business.ID, "inventory:update")
	require.NoError(t, err)
	assert.False(t, ok)

	stats := svc.Stats()
	assert.Equal(t, 1, stats.Entries)
	assert.EqualValues(t, 1, stats.Misses)
	assert.EqualValues(t, 1, stats.Hits)
}

func TestPermissionServiceServesStaleUntilInvalidated(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedRBAC(t, db)
	owner := testutil.SeedUser(t, db, "owner", model.SystemRoleUser)
	business := testutil.SeedBusiness(t, db, owner.ID, "Cafe", "CF1")

	worker := testutil.SeedUser(t, db, "worker", model.SystemRoleUser)
	posID := seedGrantedPosition(t, db, business.ID, worker.ID, "order:create")

	permRepo := repository.NewPermissionRepo(db)
	svc := service.NewPermissionService(permRepo)

	ok, err := svc.HasPermission(model.SystemRoleUser, worker.ID, business.ID, "order:create")
	require.NoError(t, err)
	require.True(t, ok)

	// Revoke in the database; the cached set still grants.
	_, _, err = permRepo.SyncPositionPermissions(posID, nil)
	require.NoError(t, err)

	ok, err = svc.HasPermission(model.SystemRoleUser, worker.ID, business.ID, "order:create")
	require.NoError(t, err)
	assert.True(t, ok, "stale grant served within the TTL window")

	svc.InvalidateBusiness(business.ID)
	ok, err = svc.HasPermission(model.SystemRoleUser, worker.ID, business.ID, "order:create")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInvalidateUserDropsOnlyThatUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedRBAC(t, db)
	owner := testutil.SeedUser(t, db, "owner", model.SystemRoleUser)
	business := testutil.SeedBusiness(t, db, owner.ID, "Cafe", "CF1")

	first := testutil.SeedUser(t, db, "first", model.SystemRoleUser)
	second := testutil.SeedUser(t, db, "second", model.SystemRoleUser)
	seedGrantedPosition(t, db, business.ID, first.ID, "order:create")
	seedGrantedPosition(t, db, business.ID, second.ID, "order:read")

	svc := service.NewPermissionService(repository.NewPermissionRepo(db))
	_, err := svc.GetEffectivePermissions(model.SystemRoleUser, first.ID, business.ID)
	require.NoError(t, err)
	_, err = svc.GetEffectivePermissions(model.SystemRoleUser, second.ID, business.ID)
	require.NoError(t, err)
	require.Equal(t, 2, svc.Stats().Entries)

	svc.InvalidateUser(first.ID)
	assert.Equal(t, 1, svc.Stats().Entries)

	svc.InvalidateAll()
	assert.Zero(t, svc.Stats().Entries)
}

func TestHasAnyAndAllPermissions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedRBAC(t, db)
	owner := testutil.SeedUser(t, db, "owner", model.SystemRoleUser)
	business := testutil.SeedBusiness(t, db, owner.ID, "Cafe", "CF1")

	worker := testutil.SeedUser(t, db, "worker", model.SystemRoleUser)
	seedGrantedPosition(t, db, business.ID, worker.ID, "order:create", "order:read")

	svc := service.NewPermissionService(repository.NewPermissionRepo(db))

	ok, err := svc.HasAnyPermission(model.SystemRoleUser, worker.ID, business.ID, "inventory:update", "order:read")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.HasAllPermissions(model.SystemRoleUser, worker.ID, business.ID, "order:create", "order:read")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.HasAllPermissions(model.SystemRoleUser, worker.ID, business.ID, "order:create", "inventory:update")
	require.NoError(t, err)
	assert.False(t, ok)
}
