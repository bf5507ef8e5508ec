package repository_test

import (
	"testing"

	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"
	"go-pos-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func featureActionID(t *testing.T, repo repository.PermissionRepository, key string) uint {
	t.Helper()
	pairs, err := repo.ListFeatureActions()
	require.NoError(t, err)
	for _, pair := range pairs {
		if pair.Key == key {
			return pair.FeatureActionID
		}
	}
	t.Fatalf("feature action %q not seeded", key)
	return 0
}

func TestSuperadminGetsAllSystemPermissions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedRBAC(t, db)
	repo := repository.NewPermissionRepo(db)

	all, err := repo.GetAllSystemPermissions()
	require.NoError(t, err)
	require.NotEmpty(t, all)

	effective, err := repo.GetEffectivePermissions(model.SystemRoleSuperAdmin, 999, 999)
	require.NoError(t, err)
	assert.ElementsMatch(t, all, effective)
}

func TestUnknownRoleYieldsEmptySet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedRBAC(t, db)
	repo := repository.NewPermissionRepo(db)

	perms, err := repo.GetSystemPermissionsByRole("no-such-role")
	require.NoError(t, err)
	assert.Empty(t, perms)

	effective, err := repo.GetEffectivePermissions("no-such-role", 1, 0)
	require.NoError(t, err)
	assert.Empty(t, effective)
}

func TestBusinessPermissionsApplyOverrides(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedRBAC(t, db)
	repo := repository.NewPermissionRepo(db)

	owner := testutil.SeedUser(t, db, "owner", model.SystemRoleUser)
	business := testutil.SeedBusiness(t, db, owner.ID, "Cafe X", "CX1")

	cashier := testutil.SeedUser(t, db, "cashier", model.SystemRoleUser)
	positions := repository.NewPositionRepo(db)
	cashierPos := model.Position{PositionName: "Till"}
	require.NoError(t, positions.Create(&cashierPos))
	require.NoError(t, db.Create(&model.BusinessUserPosition{
		UserID: cashier.ID, BusinessID: business.ID, BusPosID: cashierPos.ID,
	}).Error)

	orderCreate := featureActionID(t, repo, "order:create")
	orderRead := featureActionID(t, repo, "order:read")
	inventoryUpdate := featureActionID(t, repo, "inventory:update")
	_, err := repo.BulkAssignPositionPermissions(cashierPos.ID, []uint{orderCreate, orderRead})
	require.NoError(t, err)

	perms, err := repo.GetBusinessPermissionsByUser(cashier.ID, business.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"order:create", "order:read"}, perms)

	// REMOVE strips a preset grant, ADD layers a new one on top.
	require.NoError(t, positions.SetOverride(&model.BusinessPermissionOverride{
		BusinessID: business.ID, BusPosID: cashierPos.ID,
		FeatureActionID: orderCreate, OverrideType: model.OverrideRemove,
	}))
	require.NoError(t, positions.SetOverride(&model.BusinessPermissionOverride{
		BusinessID: business.ID, BusPosID: cashierPos.ID,
		FeatureActionID: inventoryUpdate, OverrideType: model.OverrideAdd,
	}))

	perms, err = repo.GetBusinessPermissionsByUser(cashier.ID, business.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"order:read", "inventory:update"}, perms)

	// Resetting restores the plain preset.
	require.NoError(t, positions.ResetOverrides(business.ID, cashierPos.ID))
	perms, err = repo.GetBusinessPermissionsByUser(cashier.ID, business.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"order:create", "order:read"}, perms)
}

func TestOverridesAreScopedToBusiness(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedRBAC(t, db)
	repo := repository.NewPermissionRepo(db)
	positions := repository.NewPositionRepo(db)

	owner := testutil.SeedUser(t, db, "owner", model.SystemRoleUser)
	first := testutil.SeedBusiness(t, db, owner.ID, "First", "FST")
	second := testutil.SeedBusiness(t, db, owner.ID, "Second", "SND")

	worker := testutil.SeedUser(t, db, "worker", model.SystemRoleUser)
	pos := model.Position{PositionName: "Floor"}
	require.NoError(t, positions.Create(&pos))
	for _, b := range []uint{first.ID, second.ID} {
		require.NoError(t, db.Create(&model.BusinessUserPosition{
			UserID: worker.ID, BusinessID: b, BusPosID: pos.ID,
		}).Error)
	}

	productRead := featureActionID(t, repo, "product:read")
	_, err := repo.BulkAssignPositionPermissions(pos.ID, []uint{productRead})
	require.NoError(t, err)

	// Remove product:read only in the first business.
	require.NoError(t, positions.SetOverride(&model.BusinessPermissionOverride{
		BusinessID: first.ID, BusPosID: pos.ID,
		FeatureActionID: productRead, OverrideType: model.OverrideRemove,
	}))

	perms, err := repo.GetBusinessPermissionsByUser(worker.ID, first.ID)
	require.NoError(t, err)
	assert.Empty(t, perms)

	perms, err = repo.GetBusinessPermissionsByUser(worker.ID, second.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"product:read"}, perms)
}

func TestEffectivePermissionsUnionDeduplicates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedRBAC(t, db)
	repo := repository.NewPermissionRepo(db)

	admin := testutil.SeedUser(t, db, "admin", model.SystemRoleAdmin)
	business := testutil.SeedBusiness(t, db, admin.ID, "Duplicated", "DUP")

	effective, err := repo.GetEffectivePermissions(model.SystemRoleAdmin, admin.ID, business.ID)
	require.NoError(t, err)

	seen := make(map[string]int)
	for _, key := range effective {
		seen[key]++
	}
	for key, count := range seen {
		assert.Equalf(t, 1, count, "key %s appeared %d times", key, count)
	}
}

func TestSyncPositionPermissions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedRBAC(t, db)
	repo := repository.NewPermissionRepo(db)
	positions := repository.NewPositionRepo(db)

	pos := model.Position{PositionName: "Synced"}
	require.NoError(t, positions.Create(&pos))

	a := featureActionID(t, repo, "order:create")
	b := featureActionID(t, repo, "order:read")
	c := featureActionID(t, repo, "order:cancel")

	added, removed, err := repo.SyncPositionPermissions(pos.ID, []uint{a, b})
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Equal(t, 0, removed)

	added, removed, err = repo.SyncPositionPermissions(pos.ID, []uint{b, c})
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, removed)

	keys, err := positions.ListPositionPermissions(pos.ID)
	require.NoError(t, err)
	got := make([]string, 0, len(keys))
	for _, k := range keys {
		got = append(got, k.Key)
	}
	assert.ElementsMatch(t, []string{"order:read", "order:cancel"}, got)
}
