package repository

import (
	"time"

	"go-pos-backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRow flattens a sale for list views: transaction joined to its purchase
// header and cashier.
type OrderRow struct {
	TransactionID   uint      `json:"transaction_id"`
	PurchaseID      uint      `json:"purchase_id"`
	CustomReceiptNo string    `json:"custom_receipt_no"`
	PaymentMethod   string    `json:"payment_method"`
	TotalAmount     float64   `json:"total_amount"`
	StatID          int       `json:"stat_id"`
	CashierName     string    `json:"cashier_name"`
	PurchaseDate    time.Time `json:"purchase_date"`
}

type SaleRepository interface {
	// LockBusiness reads the business row under a row lock inside tx so the
	// daily receipt sequence cannot be handed out twice.
	LockBusiness(tx *gorm.DB, businessID uint) (*model.Business, error)
	CountReceiptsForDay(tx *gorm.DB, businessID uint, day time.Time) (int64, error)
	UpdateLastReceiptNo(tx *gorm.DB, businessID uint, seq int) error

	CreatePurchase(tx *gorm.DB, purchase *model.Purchase) error
	CreateTransaction(tx *gorm.DB, txn *model.SaleTransaction) error
	CreatePurchaseItems(tx *gorm.DB, items []model.PurchaseItem) error

	FindTransaction(businessID, transactionID uint) (*model.SaleTransaction, error)
	UpdateTransactionStatus(tx *gorm.DB, transactionID uint, statID int) error
	UpdatePurchaseStatus(tx *gorm.DB, purchaseID uint, statusID int) error

	ListOrders(businessID uint, statID, limit, offset int) ([]OrderRow, int64, error)
	ListItems(purchaseID uint) ([]model.PurchaseItem, error)

	DB() *gorm.DB
}

type saleRepo struct {
	db *gorm.DB
}

func NewSaleRepo(db *gorm.DB) SaleRepository {
	return &saleRepo{db}
}

func (r *saleRepo) DB() *gorm.DB { return r.db }

func (r *saleRepo) LockBusiness(tx *gorm.DB, businessID uint) (*model.Business, error) {
	var business model.Business
	q := tx
	if tx.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.First(&business, "business_id = ?", businessID).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

func (r *saleRepo) CountReceiptsForDay(tx *gorm.DB, businessID uint, day time.Time) (int64, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)
	var count int64
	err := tx.Model(&model.SaleTransaction{}).
		Where("business_id = ? AND created_at >= ? AND created_at < ?", businessID, start, end).
		Count(&count).Error
	return count, err
}

func (r *saleRepo) UpdateLastReceiptNo(tx *gorm.DB, businessID uint, seq int) error {
	return tx.Model(&model.Business{}).Where("business_id = ?", businessID).
		Update("last_receipt_no", seq).Error
}

func (r *saleRepo) CreatePurchase(tx *gorm.DB, purchase *model.Purchase) error {
	return tx.Create(purchase).Error
}

func (r *saleRepo) CreateTransaction(tx *gorm.DB, txn *model.SaleTransaction) error {
	return tx.Create(txn).Error
}

func (r *saleRepo) CreatePurchaseItems(tx *gorm.DB, items []model.PurchaseItem) error {
	return tx.Create(&items).Error
}

func (r *saleRepo) FindTransaction(businessID, transactionID uint) (*model.SaleTransaction, error) {
	var txn model.SaleTransaction
	err := r.db.Where("transaction_id = ? AND business_id = ?", transactionID, businessID).
		First(&txn).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *saleRepo) UpdateTransactionStatus(tx *gorm.DB, transactionID uint, statID int) error {
	res := tx.Model(&model.SaleTransaction{}).Where("transaction_id = ?", transactionID).
		Update("stat_id", statID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *saleRepo) UpdatePurchaseStatus(tx *gorm.DB, purchaseID uint, statusID int) error {
	return tx.Model(&model.Purchase{}).Where("purchase_id = ?", purchaseID).
		Update("status_id", statusID).Error
}

func (r *saleRepo) ListOrders(businessID uint, statID, limit, offset int) ([]OrderRow, int64, error) {
	q := r.db.Table("transaction_table AS t").
		Joins("JOIN purchases_table p ON p.purchase_id = t.purchase_id").
		Joins("LEFT JOIN user_table u ON u.user_id = t.user_id").
		Where("t.business_id = ?", businessID)
	if statID != 0 {
		q = q.Where("t.stat_id = ?", statID)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		limit = 20
	}
	var rows []OrderRow
	err := q.Select("t.transaction_id, t.purchase_id, t.custom_receipt_no, t.payment_method, p.total_amount, t.stat_id, COALESCE(u.username, '') AS cashier_name, p.purchase_date").
		Order("t.transaction_id DESC").
		Limit(limit).Offset(offset).
		Scan(&rows).Error
	return rows, total, err
}

func (r *saleRepo) ListItems(purchaseID uint) ([]model.PurchaseItem, error) {
	var items []model.PurchaseItem
	err := r.db.Where("purchase_id = ?", purchaseID).Find(&items).Error
	return items, err
}
