package repository_test

import (
	"testing"

	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"
	"go-pos-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProductAddsInventoryRow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedRBAC(t, db)
	owner := testutil.SeedUser(t, db, "owner", model.SystemRoleUser)
	business := testutil.SeedBusiness(t, db, owner.ID, "Cafe", "CF1")

	repo := repository.NewProductRepo(db)
	product := model.Product{BusinessID: business.ID, Name: "Espresso", Price: 2.5, ProductType: model.ProductSimple, IsActive: true}
	require.NoError(t, repo.Create(&product))

	var inv model.Inventory
	require.NoError(t, db.First(&inv, "product_id = ?", product.ID).Error)
	assert.Zero(t, inv.Quantity)
}

func TestFindAllByBusinessJoinsQuantityAndFiltersInactive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedRBAC(t, db)
	owner := testutil.SeedUser(t, db, "owner", model.SystemRoleUser)
	business := testutil.SeedBusiness(t, db, owner.ID, "Cafe", "CF1")

	active := testutil.SeedProduct(t, db, business.ID, "Active", 1, 7)
	archived := testutil.SeedProduct(t, db, business.ID, "Archived", 1, 3)

	repo := repository.NewProductRepo(db)
	require.NoError(t, repo.SetActive(archived.ID, false))

	rows, err := repo.FindAllByBusiness(business.ID, false)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, active.ID, rows[0].ID)
	assert.InDelta(t, 7, rows[0].Quantity, 0.001)

	rows, err = repo.FindAllByBusiness(business.ID, true)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestDeleteProductCascadesDefinitionsButKeepsLedger(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedRBAC(t, db)
	owner := testutil.SeedUser(t, db, "owner", model.SystemRoleUser)
	business := testutil.SeedBusiness(t, db, owner.ID, "Cafe", "CF1")

	beans := testutil.SeedProduct(t, db, business.ID, "Beans", 1, 5)
	latte := model.Product{BusinessID: business.ID, Name: "Latte", Price: 4, ProductType: model.ProductRecipe, IsActive: true}
	require.NoError(t, db.Create(&latte).Error)
	require.NoError(t, db.Create(&model.RecipeIngredient{
		ProductID: latte.ID, IngredientProductID: beans.ID, ConsumptionAmount: 2,
	}).Error)
	require.NoError(t, db.Create(&model.InventoryTransaction{
		BusinessID: business.ID, ProductID: latte.ID, ChangeQty: 1,
		Reason: model.ReasonProduction, UserID: owner.ID,
	}).Error)

	repo := repository.NewProductRepo(db)
	require.NoError(t, repo.Delete(latte.ID))

	var count int64
	require.NoError(t, db.Model(&model.RecipeIngredient{}).Where("product_id = ?", latte.ID).Count(&count).Error)
	assert.Zero(t, count)

	// The movement ledger is append-only and survives the product.
	require.NoError(t, db.Model(&model.InventoryTransaction{}).Where("product_id = ?", latte.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestReplaceIngredientsSwapsDefinition(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedRBAC(t, db)
	owner := testutil.SeedUser(t, db, "owner", model.SystemRoleUser)
	business := testutil.SeedBusiness(t, db, owner.ID, "Cafe", "CF1")

	beans := testutil.SeedProduct(t, db, business.ID, "Beans", 1, 5)
	milk := testutil.SeedProduct(t, db, business.ID, "Milk", 1, 5)
	latte := model.Product{BusinessID: business.ID, Name: "Latte", Price: 4, ProductType: model.ProductRecipe, IsActive: true}
	require.NoError(t, db.Create(&latte).Error)

	repo := repository.NewProductRepo(db)
	require.NoError(t, repo.ReplaceIngredients(latte.ID, []model.RecipeIngredient{
		{IngredientProductID: beans.ID, ConsumptionAmount: 2},
	}))
	require.NoError(t, repo.ReplaceIngredients(latte.ID, []model.RecipeIngredient{
		{IngredientProductID: beans.ID, ConsumptionAmount: 1},
		{IngredientProductID: milk.ID, ConsumptionAmount: 3},
	}))

	ingredients, err := repo.GetIngredientsByProduct(latte.ID)
	require.NoError(t, err)
	require.Len(t, ingredients, 2)
	for _, ing := range ingredients {
		assert.Equal(t, latte.ID, ing.ProductID)
	}
}

func TestDeleteCategoryOrphansProducts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedRBAC(t, db)
	owner := testutil.SeedUser(t, db, "owner", model.SystemRoleUser)
	business := testutil.SeedBusiness(t, db, owner.ID, "Cafe", "CF1")

	repo := repository.NewProductRepo(db)
	category := model.ProductCategory{BusinessID: business.ID, Name: "Drinks"}
	require.NoError(t, repo.CreateCategory(&category))

	product := model.Product{BusinessID: business.ID, Name: "Tea", Price: 2, CategoryID: &category.ID, ProductType: model.ProductSimple, IsActive: true}
	require.NoError(t, repo.Create(&product))

	require.NoError(t, repo.DeleteCategory(category.ID))

	var reloaded model.Product
	require.NoError(t, db.First(&reloaded, "product_id = ?", product.ID).Error)
	assert.Nil(t, reloaded.CategoryID)
}
