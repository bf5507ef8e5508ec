package model

import "time"

// Purchase status ids follow the original schema's status table.
const (
	PurchaseStatusPending   = 1
	PurchaseStatusCompleted = 2
	PurchaseStatusCancelled = 5
)

type Purchase struct {
	ID           uint      `gorm:"column:purchase_id;primaryKey" json:"purchase_id"`
	UserID       uint      `gorm:"column:user_id;not null" json:"user_id"`
	TotalAmount  float64   `gorm:"column:total_amount;not null" json:"total_amount"`
	StatusID     int       `gorm:"column:status_id;default:2" json:"status_id"`
	PurchaseDate time.Time `gorm:"column:purchase_date;autoCreateTime" json:"purchase_date"`
}

func (Purchase) TableName() string { return "purchases_table" }

// SaleTransaction is the business-facing sale record carrying the receipt
// number CODE-MMDD<seq>, where seq restarts daily per business.
type SaleTransaction struct {
	ID              uint      `gorm:"column:transaction_id;primaryKey" json:"transaction_id"`
	PurchaseID      uint      `gorm:"column:purchase_id;index;not null" json:"purchase_id"`
	CustomReceiptNo string    `gorm:"column:custom_receipt_no;type:varchar(30)" json:"custom_receipt_no"`
	PaymentMethod   string    `gorm:"column:payment_method;type:varchar(20)" json:"payment_method"`
	BusinessID      uint      `gorm:"column:business_id;index;not null" json:"business_id"`
	StatID          int       `gorm:"column:stat_id;default:2" json:"stat_id"`
	UserID          uint      `gorm:"column:user_id;not null" json:"user_id"`
	CreatedAt       time.Time `json:"created_at"`
}

func (SaleTransaction) TableName() string { return "transaction_table" }

type PurchaseItem struct {
	ID         uint    `gorm:"column:purchase_item_id;primaryKey" json:"purchase_item_id"`
	PurchaseID uint    `gorm:"column:purchase_id;index;not null" json:"purchase_id"`
	ProductID  uint    `gorm:"column:product_id;not null" json:"product_id"`
	Quantity   float64 `gorm:"not null" json:"quantity"`
	Price      float64 `gorm:"not null" json:"price"`
}

func (PurchaseItem) TableName() string { return "purchase_items_table" }
