package repository_test

import (
	"testing"
	"time"

	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"
	"go-pos-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedSale(t *testing.T, db *gorm.DB, businessID, userID, productID uint, qty, price float64, statID int) {
	t.Helper()
	purchase := model.Purchase{UserID: userID, TotalAmount: qty * price, StatusID: statID}
	require.NoError(t, db.Create(&purchase).Error)
	require.NoError(t, db.Create(&model.SaleTransaction{
		PurchaseID: purchase.ID, BusinessID: businessID, StatID: statID, UserID: userID,
		PaymentMethod: "cash",
	}).Error)
	require.NoError(t, db.Create(&model.PurchaseItem{
		PurchaseID: purchase.ID, ProductID: productID, Quantity: qty, Price: price,
	}).Error)
}

func TestSalesSummaryCountsOnlyCompleted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedRBAC(t, db)
	owner := testutil.SeedUser(t, db, "owner", model.SystemRoleUser)
	business := testutil.SeedBusiness(t, db, owner.ID, "Cafe", "CF1")
	coffee := testutil.SeedProduct(t, db, business.ID, "Coffee", 3, 50)

	seedSale(t, db, business.ID, owner.ID, coffee.ID, 2, 3, model.PurchaseStatusCompleted)
	seedSale(t, db, business.ID, owner.ID, coffee.ID, 1, 3, model.PurchaseStatusCompleted)
	seedSale(t, db, business.ID, owner.ID, coffee.ID, 5, 3, model.PurchaseStatusCancelled)

	repo := repository.NewAnalysisRepo(db)
	from := time.Now().AddDate(0, 0, -1)
	to := time.Now().AddDate(0, 0, 1)

	summary, err := repo.SalesSummary(business.ID, from, to)
	require.NoError(t, err)
	assert.InDelta(t, 9, summary.TotalRevenue, 0.001)
	assert.EqualValues(t, 2, summary.TransactionCount)
	assert.InDelta(t, 3, summary.ItemsSold, 0.001)
	assert.InDelta(t, 4.5, summary.AverageTicket, 0.001)
}

func TestTopProductsRanksByQuantity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedRBAC(t, db)
	owner := testutil.SeedUser(t, db, "owner", model.SystemRoleUser)
	business := testutil.SeedBusiness(t, db, owner.ID, "Cafe", "CF1")
	coffee := testutil.SeedProduct(t, db, business.ID, "Coffee", 3, 50)
	cake := testutil.SeedProduct(t, db, business.ID, "Cake", 5, 50)

	seedSale(t, db, business.ID, owner.ID, coffee.ID, 10, 3, model.PurchaseStatusCompleted)
	seedSale(t, db, business.ID, owner.ID, cake.ID, 4, 5, model.PurchaseStatusCompleted)

	repo := repository.NewAnalysisRepo(db)
	rows, err := repo.TopProducts(business.ID, time.Now().AddDate(0, 0, -1), time.Now().AddDate(0, 0, 1), 5)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Coffee", rows[0].ProductName)
	assert.InDelta(t, 10, rows[0].QtySold, 0.001)
	assert.InDelta(t, 30, rows[0].Revenue, 0.001)
}

func TestStockAlertsAndValuation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedRBAC(t, db)
	owner := testutil.SeedUser(t, db, "owner", model.SystemRoleUser)
	business := testutil.SeedBusiness(t, db, owner.ID, "Cafe", "CF1")

	low := testutil.SeedProduct(t, db, business.ID, "Low", 2, 3)
	testutil.SeedProduct(t, db, business.ID, "Plenty", 4, 100)
	negative := testutil.SeedProduct(t, db, business.ID, "Negative", 1, -2)

	repo := repository.NewAnalysisRepo(db)
	alerts, err := repo.StockAlerts(business.ID, 10)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, negative.ID, alerts[0].ProductID)
	assert.Equal(t, low.ID, alerts[1].ProductID)

	// Valuation ignores negative stock.
	valuation, err := repo.InventoryValuation(business.ID)
	require.NoError(t, err)
	assert.InDelta(t, 3*2+100*4, valuation, 0.001)
}
