package service_test

import (
	"fmt"
	"sync"
	"testing"

	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"
	"go-pos-backend/internal/service"
	"go-pos-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newInventoryService(t *testing.T, db *gorm.DB) service.InventoryService {
	t.Helper()
	return service.NewInventoryService(
		db,
		repository.NewInventoryRepo(db),
		repository.NewProductRepo(db),
		service.NewLogService(repository.NewLogRepo(db)),
		nil,
	)
}

func TestAdjustCreditsAndDebits(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedRBAC(t, db)
	owner := testutil.SeedUser(t, db, "owner", model.SystemRoleUser)
	business := testutil.SeedBusiness(t, db, owner.ID, "Cafe", "CF1")
	product := testutil.SeedProduct(t, db, business.ID, "Beans", 5, 10)

	svc := newInventoryService(t, db)

	inv, err := svc.Adjust(business.ID, owner.ID, service.AdjustRequest{
		ProductID: product.ID, Quantity: 5, Reason: model.ReasonWaste,
	}, service.Entry{})
	require.NoError(t, err)
	assert.InDelta(t, 5, inv.Quantity, 0.001)

	// Waste debits even when sent with a positive quantity.
	var txn model.InventoryTransaction
	require.NoError(t, db.Where("product_id = ? AND reason = ?", product.ID, model.ReasonWaste).First(&txn).Error)
	assert.InDelta(t, -5, txn.ChangeQty, 0.001)
	assert.Equal(t, owner.ID, txn.UserID)

	inv, err = svc.Adjust(business.ID, owner.ID, service.AdjustRequest{
		ProductID: product.ID, Quantity: 3, Reason: model.ReasonPurchase,
	}, service.Entry{})
	require.NoError(t, err)
	assert.InDelta(t, 8, inv.Quantity, 0.001)
}

func TestAdjustAllowsNegativeStock(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedRBAC(t, db)
	owner := testutil.SeedUser(t, db, "owner", model.SystemRoleUser)
	business := testutil.SeedBusiness(t, db, owner.ID, "Cafe", "CF1")
	product := testutil.SeedProduct(t, db, business.ID, "Milk", 2, 1)

	svc := newInventoryService(t, db)
	inv, err := svc.Adjust(business.ID, owner.ID, service.AdjustRequest{
		ProductID: product.ID, Quantity: 4, Reason: model.ReasonSpoilage,
	}, service.Entry{})
	require.NoError(t, err)
	assert.InDelta(t, -3, inv.Quantity, 0.001)
}

func TestAdjustRejectsForeignProduct(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedRBAC(t, db)
	owner := testutil.SeedUser(t, db, "owner", model.SystemRoleUser)
	mine := testutil.SeedBusiness(t, db, owner.ID, "Mine", "MN1")
	other := testutil.SeedBusiness(t, db, owner.ID, "Other", "OT1")
	product := testutil.SeedProduct(t, db, other.ID, "Sugar", 1, 10)

	svc := newInventoryService(t, db)
	_, err := svc.Adjust(mine.ID, owner.ID, service.AdjustRequest{
		ProductID: product.ID, Quantity: 1, Reason: model.ReasonCorrection,
	}, service.Entry{})
	require.Error(t, err)
	assert.InDelta(t, 10, testutil.Quantity(t, db, product.ID), 0.001)
}

func TestAdjustBatchKeepsEarlierItemsOnFailure(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedRBAC(t, db)
	owner := testutil.SeedUser(t, db, "owner", model.SystemRoleUser)
	business := testutil.SeedBusiness(t, db, owner.ID, "Cafe", "CF1")
	product := testutil.SeedProduct(t, db, business.ID, "Flour", 1, 20)

	svc := newInventoryService(t, db)
	results := svc.AdjustBatch(business.ID, owner.ID, []service.AdjustRequest{
		{ProductID: product.ID, Quantity: 5, Reason: model.ReasonWaste},
		{ProductID: 99999, Quantity: 1, Reason: model.ReasonWaste},
		{ProductID: product.ID, Quantity: 2, Reason: model.ReasonWaste},
	}, service.Entry{})

	require.Len(t, results, 3)
	assert.True(t, results[0].Applied)
	assert.False(t, results[1].Applied)
	assert.NotEmpty(t, results[1].Error)
	assert.True(t, results[2].Applied)

	// The failing middle item does not roll back its neighbours.
	assert.InDelta(t, 13, testutil.Quantity(t, db, product.ID), 0.001)
}

func TestCreateStockInCreditsEachItem(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedRBAC(t, db)
	owner := testutil.SeedUser(t, db, "owner", model.SystemRoleUser)
	business := testutil.SeedBusiness(t, db, owner.ID, "Cafe", "CF1")
	beans := testutil.SeedProduct(t, db, business.ID, "Beans", 5, 10)
	milk := testutil.SeedProduct(t, db, business.ID, "Milk", 2, 0)

	svc := newInventoryService(t, db)
	header, err := svc.CreateStockIn(business.ID, owner.ID, service.StockInRequest{
		Items: []service.StockInItemRequest{
			{ProductID: beans.ID, Quantity: 10, UnitPrice: 3},
			{ProductID: milk.ID, Quantity: 6, UnitPrice: 1.5},
		},
	}, service.Entry{})
	require.NoError(t, err)
	assert.InDelta(t, 39, header.TotalAmount, 0.001)

	assert.InDelta(t, 20, testutil.Quantity(t, db, beans.ID), 0.001)
	assert.InDelta(t, 6, testutil.Quantity(t, db, milk.ID), 0.001)

	reference := fmt.Sprintf("stockin:%d", header.ID)
	var count int64
	require.NoError(t, db.Model(&model.InventoryTransaction{}).
		Where("reference = ? AND reason = ?", reference, model.ReasonPurchase).
		Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestCreateStockInRejectsRecipeProducts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedRBAC(t, db)
	owner := testutil.SeedUser(t, db, "owner", model.SystemRoleUser)
	business := testutil.SeedBusiness(t, db, owner.ID, "Cafe", "CF1")

	latte := model.Product{BusinessID: business.ID, Name: "Latte", Price: 4, ProductType: model.ProductRecipe, IsActive: true}
	require.NoError(t, db.Create(&latte).Error)

	svc := newInventoryService(t, db)
	_, err := svc.CreateStockIn(business.ID, owner.ID, service.StockInRequest{
		Items: []service.StockInItemRequest{{ProductID: latte.ID, Quantity: 1, UnitPrice: 1}},
	}, service.Entry{})
	require.Error(t, err)
}

func TestProductionConsumesRecipeIngredients(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedRBAC(t, db)
	owner := testutil.SeedUser(t, db, "owner", model.SystemRoleUser)
	business := testutil.SeedBusiness(t, db, owner.ID, "Cafe", "CF1")

	beans := testutil.SeedProduct(t, db, business.ID, "Beans", 1, 100)
	milk := testutil.SeedProduct(t, db, business.ID, "Milk", 1, 50)

	latte := model.Product{BusinessID: business.ID, Name: "Latte", Price: 4, ProductType: model.ProductRecipe, IsActive: true}
	require.NoError(t, db.Create(&latte).Error)
	require.NoError(t, db.Create(&[]model.RecipeIngredient{
		{ProductID: latte.ID, IngredientProductID: beans.ID, ConsumptionAmount: 2},
		{ProductID: latte.ID, IngredientProductID: milk.ID, ConsumptionAmount: 1.5},
	}).Error)

	svc := newInventoryService(t, db)
	inv, err := svc.ProcessProduction(business.ID, owner.ID, service.ProductionRequest{
		ProductID: latte.ID, Quantity: 10,
	}, service.Entry{})
	require.NoError(t, err)

	assert.InDelta(t, 10, inv.Quantity, 0.001)
	assert.InDelta(t, 80, testutil.Quantity(t, db, beans.ID), 0.001)
	assert.InDelta(t, 35, testutil.Quantity(t, db, milk.ID), 0.001)

	reference := fmt.Sprintf("production:%d", latte.ID)
	var count int64
	require.NoError(t, db.Model(&model.InventoryTransaction{}).
		Where("reference = ?", reference).Count(&count).Error)
	assert.EqualValues(t, 3, count)
}

func TestProductionConsumesComboComponents(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedRBAC(t, db)
	owner := testutil.SeedUser(t, db, "owner", model.SystemRoleUser)
	business := testutil.SeedBusiness(t, db, owner.ID, "Cafe", "CF1")

	sandwich := testutil.SeedProduct(t, db, business.ID, "Sandwich", 3, 8)
	juice := testutil.SeedProduct(t, db, business.ID, "Juice", 2, 12)

	bundle := model.Product{BusinessID: business.ID, Name: "Lunch Box", Price: 6, ProductType: model.ProductComposite, IsActive: true}
	require.NoError(t, db.Create(&bundle).Error)
	require.NoError(t, db.Create(&[]model.ComboItem{
		{ParentProductID: bundle.ID, ComponentProductID: sandwich.ID, Quantity: 1},
		{ParentProductID: bundle.ID, ComponentProductID: juice.ID, Quantity: 2},
	}).Error)

	svc := newInventoryService(t, db)
	inv, err := svc.ProcessProduction(business.ID, owner.ID, service.ProductionRequest{
		ProductID: bundle.ID, Quantity: 4,
	}, service.Entry{})
	require.NoError(t, err)

	assert.InDelta(t, 4, inv.Quantity, 0.001)
	assert.InDelta(t, 4, testutil.Quantity(t, db, sandwich.ID), 0.001)
	assert.InDelta(t, 4, testutil.Quantity(t, db, juice.ID), 0.001)
}

func TestProductionWithoutRecipeFails(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedRBAC(t, db)
	owner := testutil.SeedUser(t, db, "owner", model.SystemRoleUser)
	business := testutil.SeedBusiness(t, db, owner.ID, "Cafe", "CF1")

	latte := model.Product{BusinessID: business.ID, Name: "Latte", Price: 4, ProductType: model.ProductRecipe, IsActive: true}
	require.NoError(t, db.Create(&latte).Error)

	svc := newInventoryService(t, db)
	_, err := svc.ProcessProduction(business.ID, owner.ID, service.ProductionRequest{
		ProductID: latte.ID, Quantity: 1,
	}, service.Entry{})
	require.Error(t, err)
}

func TestConcurrentAdjustmentsLoseNoUpdates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedRBAC(t, db)
	owner := testutil.SeedUser(t, db, "owner", model.SystemRoleUser)
	business := testutil.SeedBusiness(t, db, owner.ID, "Cafe", "CF1")
	product := testutil.SeedProduct(t, db, business.ID, "Beans", 1, 0)

	svc := newInventoryService(t, db)

	const workers = 10
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.Adjust(business.ID, owner.ID, service.AdjustRequest{
				ProductID: product.ID, Quantity: 1, Reason: model.ReasonPurchase,
			}, service.Entry{})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.InDelta(t, workers, testutil.Quantity(t, db, product.ID), 0.001)

	var count int64
	require.NoError(t, db.Model(&model.InventoryTransaction{}).
		Where("product_id = ?", product.ID).Count(&count).Error)
	assert.EqualValues(t, workers, count)
}
