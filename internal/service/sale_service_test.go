package service_test

import (
	"fmt"
	"testing"
	"time"

	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"
	"go-pos-backend/internal/service"
	"go-pos-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newSaleService(t *testing.T, db *gorm.DB) service.SaleService {
	t.Helper()
	return service.NewSaleService(
		db,
		repository.NewSaleRepo(db),
		repository.NewProductRepo(db),
		repository.NewInventoryRepo(db),
		service.NewLogService(repository.NewLogRepo(db)),
		nil,
	)
}

func TestCreateSaleDeductsStockAndNumbersReceipt(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedRBAC(t, db)
	owner := testutil.SeedUser(t, db, "owner", model.SystemRoleUser)
	business := testutil.SeedBusiness(t, db, owner.ID, "Cafe", "CFE1")
	coffee := testutil.SeedProduct(t, db, business.ID, "Coffee", 3.5, 10)
	cake := testutil.SeedProduct(t, db, business.ID, "Cake", 5, 4)

	svc := newSaleService(t, db)
	result, err := svc.CreateSale(business.ID, owner.ID, service.CreateSaleRequest{
		PaymentMethod: "cash",
		Items: []service.SaleItemRequest{
			{ProductID: coffee.ID, Quantity: 2},
			{ProductID: cake.ID, Quantity: 1},
		},
	}, service.Entry{})
	require.NoError(t, err)

	assert.InDelta(t, 12, result.Purchase.TotalAmount, 0.001)
	assert.Len(t, result.Items, 2)
	assert.InDelta(t, 8, testutil.Quantity(t, db, coffee.ID), 0.001)
	assert.InDelta(t, 3, testutil.Quantity(t, db, cake.ID), 0.001)

	now := time.Now()
	expected := fmt.Sprintf("CFE1-%02d%02d1", int(now.Month()), now.Day())
	assert.Equal(t, expected, result.Transaction.CustomReceiptNo)

	// Second sale on the same day takes the next sequence.
	second, err := svc.CreateSale(business.ID, owner.ID, service.CreateSaleRequest{
		PaymentMethod: "card",
		Items:         []service.SaleItemRequest{{ProductID: coffee.ID, Quantity: 1}},
	}, service.Entry{})
	require.NoError(t, err)
	expected = fmt.Sprintf("CFE1-%02d%02d2", int(now.Month()), now.Day())
	assert.Equal(t, expected, second.Transaction.CustomReceiptNo)
}

func TestCreateSaleFailsOnInsufficientStock(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedRBAC(t, db)
	owner := testutil.SeedUser(t, db, "owner", model.SystemRoleUser)
	business := testutil.SeedBusiness(t, db, owner.ID, "Cafe", "CFE1")
	coffee := testutil.SeedProduct(t, db, business.ID, "Coffee", 3.5, 10)
	cake := testutil.SeedProduct(t, db, business.ID, "Cake", 5, 1)

	svc := newSaleService(t, db)
	_, err := svc.CreateSale(business.ID, owner.ID, service.CreateSaleRequest{
		PaymentMethod: "cash",
		Items: []service.SaleItemRequest{
			{ProductID: coffee.ID, Quantity: 2},
			{ProductID: cake.ID, Quantity: 3},
		},
	}, service.Entry{})
	require.Error(t, err)

	// The whole sale rolls back, including the coffee deduction.
	assert.InDelta(t, 10, testutil.Quantity(t, db, coffee.ID), 0.001)
	assert.InDelta(t, 1, testutil.Quantity(t, db, cake.ID), 0.001)

	var count int64
	require.NoError(t, db.Model(&model.SaleTransaction{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateSaleRejectsInactiveProduct(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedRBAC(t, db)
	owner := testutil.SeedUser(t, db, "owner", model.SystemRoleUser)
	business := testutil.SeedBusiness(t, db, owner.ID, "Cafe", "CFE1")
	coffee := testutil.SeedProduct(t, db, business.ID, "Coffee", 3.5, 10)
	require.NoError(t, repository.NewProductRepo(db).SetActive(coffee.ID, false))

	svc := newSaleService(t, db)
	_, err := svc.CreateSale(business.ID, owner.ID, service.CreateSaleRequest{
		PaymentMethod: "cash",
		Items:         []service.SaleItemRequest{{ProductID: coffee.ID, Quantity: 1}},
	}, service.Entry{})
	require.Error(t, err)
}

func TestCancelSaleRestocks(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedRBAC(t, db)
	owner := testutil.SeedUser(t, db, "owner", model.SystemRoleUser)
	business := testutil.SeedBusiness(t, db, owner.ID, "Cafe", "CFE1")
	coffee := testutil.SeedProduct(t, db, business.ID, "Coffee", 3.5, 10)

	svc := newSaleService(t, db)
	result, err := svc.CreateSale(business.ID, owner.ID, service.CreateSaleRequest{
		PaymentMethod: "cash",
		Items:         []service.SaleItemRequest{{ProductID: coffee.ID, Quantity: 4}},
	}, service.Entry{})
	require.NoError(t, err)
	assert.InDelta(t, 6, testutil.Quantity(t, db, coffee.ID), 0.001)

	require.NoError(t, svc.CancelSale(business.ID, owner.ID, result.Transaction.ID, service.Entry{}))
	assert.InDelta(t, 10, testutil.Quantity(t, db, coffee.ID), 0.001)

	var txn model.SaleTransaction
	require.NoError(t, db.First(&txn, "transaction_id = ?", result.Transaction.ID).Error)
	assert.Equal(t, model.PurchaseStatusCancelled, txn.StatID)

	// Cancelling twice is a conflict.
	require.Error(t, svc.CancelSale(business.ID, owner.ID, result.Transaction.ID, service.Entry{}))
}

func TestListOrdersScopedToBusiness(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedRBAC(t, db)
	owner := testutil.SeedUser(t, db, "owner", model.SystemRoleUser)
	first := testutil.SeedBusiness(t, db, owner.ID, "First", "FST")
	second := testutil.SeedBusiness(t, db, owner.ID, "Second", "SND")
	coffee := testutil.SeedProduct(t, db, first.ID, "Coffee", 3, 10)

	svc := newSaleService(t, db)
	_, err := svc.CreateSale(first.ID, owner.ID, service.CreateSaleRequest{
		PaymentMethod: "cash",
		Items:         []service.SaleItemRequest{{ProductID: coffee.ID, Quantity: 1}},
	}, service.Entry{})
	require.NoError(t, err)

	orders, total, err := svc.ListOrders(first.ID, 0, 20, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, orders, 1)
	assert.Equal(t, "owner", orders[0].CashierName)

	_, total, err = svc.ListOrders(second.ID, 0, 20, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
}
