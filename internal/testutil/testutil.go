package testutil

import (
	"testing"

	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens an in-memory sqlite database with the full schema.
// The pool is capped at one connection so :memory: stays a single database
// and concurrent transactions serialize.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{}, &model.UserDetail{}, &model.UserSystemRole{},
		&model.SystemRole{}, &model.SystemPermission{}, &model.SystemRolePermission{},
		&model.BusinessCategory{}, &model.Business{}, &model.BusinessUserPosition{},
		&model.Position{}, &model.Feature{}, &model.Action{}, &model.FeatureAction{},
		&model.BusinessPermission{}, &model.BusinessPermissionOverride{},
		&model.Unit{}, &model.ProductCategory{}, &model.Product{},
		&model.RecipeIngredient{}, &model.ComboItem{},
		&model.Inventory{}, &model.InventoryTransaction{},
		&model.StockIn{}, &model.StockInItem{},
		&model.Purchase{}, &model.SaleTransaction{}, &model.PurchaseItem{},
		&model.AuditLog{}, &model.BusinessLog{},
	))
	return db
}

// SeedRBAC loads the default permission vocabulary and position presets.
func SeedRBAC(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, repository.NewPermissionRepo(db).SeedDefaults())
	require.NoError(t, repository.NewPositionRepo(db).SeedDefaults())
}

// SeedUser creates an account with the given system role.
func SeedUser(t *testing.T, db *gorm.DB, username, role string) *model.User {
	t.Helper()
	user := model.User{Username: username, Email: username + "@test.local"}
	require.NoError(t, user.SetPassword("Passw0rd!"))
	users := repository.NewUserRepo(db)
	require.NoError(t, users.Create(&user))
	require.NoError(t, users.AssignSystemRole(user.ID, role))
	return &user
}

// SeedBusiness creates a business with the owner joined at the Owner preset.
func SeedBusiness(t *testing.T, db *gorm.DB, ownerID uint, name, code string) *model.Business {
	t.Helper()
	category := model.BusinessCategory{Name: "Cafe " + code}
	require.NoError(t, db.Create(&category).Error)

	business := model.Business{
		BusinessName:  name,
		BusinessCatID: category.ID,
		OwnerID:       ownerID,
		BusinessCode:  code,
	}
	require.NoError(t, db.Create(&business).Error)
	require.NoError(t, db.Create(&model.BusinessUserPosition{
		UserID:     ownerID,
		BusinessID: business.ID,
		BusPosID:   model.OwnerPositionID,
	}).Error)
	return &business
}

// SeedProduct creates a product with an inventory row at the given quantity.
func SeedProduct(t *testing.T, db *gorm.DB, businessID uint, name string, price, qty float64) *model.Product {
	t.Helper()
	product := model.Product{
		BusinessID:  businessID,
		Name:        name,
		Price:       price,
		ProductType: model.ProductSimple,
		IsActive:    true,
	}
	require.NoError(t, db.Create(&product).Error)
	require.NoError(t, db.Create(&model.Inventory{ProductID: product.ID, Quantity: qty}).Error)
	return &product
}

// Quantity reads the current stock of a product.
func Quantity(t *testing.T, db *gorm.DB, productID uint) float64 {
	t.Helper()
	var inv model.Inventory
	require.NoError(t, db.First(&inv, "product_id = ?", productID).Error)
	return inv.Quantity
}
