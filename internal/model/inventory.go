package model

import "time"

// Inventory holds the current quantity of one product. Rows are created lazily
// on the first stock movement; nothing prevents a negative quantity when the
// first movement is a debit.
type Inventory struct {
	ID        uint      `gorm:"column:inventory_id;primaryKey" json:"inventory_id"`
	ProductID uint      `gorm:"column:product_id;uniqueIndex;not null" json:"product_id"`
	Quantity  float64   `gorm:"not null" json:"quantity"`
	UnitID    *uint     `gorm:"column:unit_id" json:"unit_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Inventory) TableName() string { return "inventory_table" }

type AdjustReason string

const (
	ReasonPurchase   AdjustReason = "purchase"
	ReasonSpoilage   AdjustReason = "spoilage"
	ReasonWaste      AdjustReason = "waste"
	ReasonCorrection AdjustReason = "correction"
	ReasonProduction AdjustReason = "production"
	ReasonSale       AdjustReason = "sale"
)

// InventoryTransaction is the append-only movement ledger. Rows are never
// updated or deleted.
type InventoryTransaction struct {
	ID         uint         `gorm:"column:inventory_txn_id;primaryKey" json:"inventory_txn_id"`
	BusinessID uint         `gorm:"column:business_id;index;not null" json:"business_id"`
	ProductID  uint         `gorm:"column:product_id;index;not null" json:"product_id"`
	ChangeQty  float64      `gorm:"column:change_qty;not null" json:"change_qty"`
	Reason     AdjustReason `gorm:"type:varchar(20);not null" json:"reason"`
	Reference  string       `gorm:"type:varchar(100)" json:"reference,omitempty"`
	UserID     uint         `gorm:"column:user_id;not null" json:"user_id"`
	CreatedAt  time.Time    `json:"created_at"`
}

func (InventoryTransaction) TableName() string { return "inventory_transactions_table" }

// StockIn groups purchase line items under one header.
type StockIn struct {
	ID          uint      `gorm:"column:stockin_id;primaryKey" json:"stockin_id"`
	BusinessID  uint      `gorm:"column:business_id;index;not null" json:"business_id"`
	UserID      uint      `gorm:"column:user_id;not null" json:"user_id"`
	TotalAmount float64   `gorm:"column:total_amount;not null" json:"total_amount"`
	CreatedAt   time.Time `json:"created_at"`
}

func (StockIn) TableName() string { return "stockin_table" }

type StockInItem struct {
	ID         uint    `gorm:"column:stockin_item_id;primaryKey" json:"stockin_item_id"`
	StockinID  uint    `gorm:"column:stockin_id;index;not null" json:"stockin_id"`
	ProductID  uint    `gorm:"column:product_id;not null" json:"product_id"`
	Quantity   float64 `gorm:"not null" json:"quantity"`
	UnitPrice  float64 `gorm:"column:unit_price;not null" json:"unit_price"`
	TotalPrice float64 `gorm:"column:total_price;not null" json:"total_price"`
}

func (StockInItem) TableName() string { return "stockin_item_table" }
