package repository

import (
	"errors"

	"go-pos-backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InventoryTxnFilter narrows the movement ledger listing.
type InventoryTxnFilter struct {
	ProductID uint
	Reason    model.AdjustReason
	Limit     int
	Offset    int
}

type InventoryRepository interface {
	// LockInventory reads the product's inventory row under a row lock inside
	// tx. Returns gorm.ErrRecordNotFound when no row exists yet.
	LockInventory(tx *gorm.DB, productID uint) (*model.Inventory, error)
	CreateRow(tx *gorm.DB, inv *model.Inventory) error
	AddQuantity(tx *gorm.DB, inventoryID uint, delta float64) error
	// DeductGuarded decrements only when enough stock remains. Zero rows
	// affected reports ErrInsufficientStock.
	DeductGuarded(tx *gorm.DB, productID uint, qty float64) error
	InsertTransaction(tx *gorm.DB, txn *model.InventoryTransaction) error

	GetByProduct(productID uint) (*model.Inventory, error)
	ListByBusiness(businessID uint) ([]InventoryRow, error)
	ListTransactions(businessID uint, filter InventoryTxnFilter) ([]model.InventoryTransaction, int64, error)

	CreateStockIn(tx *gorm.DB, header *model.StockIn) error
	CreateStockInItems(tx *gorm.DB, items []model.StockInItem) error
	FindStockIn(id uint) (*model.StockIn, []model.StockInItem, error)
	ListStockIns(businessID uint, limit, offset int) ([]model.StockIn, int64, error)
}

// InventoryRow is the stock list view: inventory joined to its product.
type InventoryRow struct {
	InventoryID uint    `json:"inventory_id"`
	ProductID   uint    `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    float64 `json:"quantity"`
	UnitName    string  `json:"unit_name"`
	IsActive    bool    `json:"is_active"`
}

type inventoryRepo struct {
	db *gorm.DB
}

func NewInventoryRepo(db *gorm.DB) InventoryRepository {
	return &inventoryRepo{db}
}

func (r *inventoryRepo) LockInventory(tx *gorm.DB, productID uint) (*model.Inventory, error) {
	var inv model.Inventory
	q := tx
	// sqlite has no FOR UPDATE; its single writer already serializes.
	if tx.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.First(&inv, "product_id = ?", productID).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *inventoryRepo) CreateRow(tx *gorm.DB, inv *model.Inventory) error {
	return tx.Create(inv).Error
}

func (r *inventoryRepo) AddQuantity(tx *gorm.DB, inventoryID uint, delta float64) error {
	res := tx.Model(&model.Inventory{}).Where("inventory_id = ?", inventoryID).
		Update("quantity", gorm.Expr("quantity + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ErrInsufficientStock is returned when a guarded deduction would take the
// quantity below zero.
var ErrInsufficientStock = errors.New("insufficient stock")

func (r *inventoryRepo) DeductGuarded(tx *gorm.DB, productID uint, qty float64) error {
	res := tx.Model(&model.Inventory{}).
		Where("product_id = ? AND quantity >= ?", productID, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func (r *inventoryRepo) InsertTransaction(tx *gorm.DB, txn *model.InventoryTransaction) error {
	return tx.Create(txn).Error
}

func (r *inventoryRepo) GetByProduct(productID uint) (*model.Inventory, error) {
	var inv model.Inventory
	if err := r.db.First(&inv, "product_id = ?", productID).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *inventoryRepo) ListByBusiness(businessID uint) ([]InventoryRow, error) {
	var rows []InventoryRow
	err := r.db.Table("inventory_table AS inv").
		Select("inv.inventory_id, inv.product_id, p.name AS product_name, inv.quantity, COALESCE(u.name, '') AS unit_name, p.is_active").
		Joins("JOIN product_table p ON p.product_id = inv.product_id").
		Joins("LEFT JOIN unit_table u ON u.unit_id = inv.unit_id").
		Where("p.business_id = ?", businessID).
		Order("p.name ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *inventoryRepo) ListTransactions(businessID uint, filter InventoryTxnFilter) ([]model.InventoryTransaction, int64, error) {
	q := r.db.Model(&model.InventoryTransaction{}).Where("business_id = ?", businessID)
	if filter.ProductID != 0 {
		q = q.Where("product_id = ?", filter.ProductID)
	}
	if filter.Reason != "" {
		q = q.Where("reason = ?", filter.Reason)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	var txns []model.InventoryTransaction
	err := q.Order("inventory_txn_id DESC").Limit(filter.Limit).Offset(filter.Offset).Find(&txns).Error
	return txns, total, err
}

func (r *inventoryRepo) CreateStockIn(tx *gorm.DB, header *model.StockIn) error {
	return tx.Create(header).Error
}

func (r *inventoryRepo) CreateStockInItems(tx *gorm.DB, items []model.StockInItem) error {
	if len(items) == 0 {
		return errors.New("stock-in requires at least one item")
	}
	return tx.Create(&items).Error
}

func (r *inventoryRepo) FindStockIn(id uint) (*model.StockIn, []model.StockInItem, error) {
	var header model.StockIn
	if err := r.db.First(&header, "stockin_id = ?", id).Error; err != nil {
		return nil, nil, err
	}
	var items []model.StockInItem
	if err := r.db.Where("stockin_id = ?", id).Find(&items).Error; err != nil {
		return nil, nil, err
	}
	return &header, items, nil
}

func (r *inventoryRepo) ListStockIns(businessID uint, limit, offset int) ([]model.StockIn, int64, error) {
	q := r.db.Model(&model.StockIn{}).Where("business_id = ?", businessID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		limit = 20
	}
	var headers []model.StockIn
	err := q.Order("stockin_id DESC").Limit(limit).Offset(offset).Find(&headers).Error
	return headers, total, err
}
