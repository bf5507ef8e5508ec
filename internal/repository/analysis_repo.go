package repository

import (
	"time"

	"go-pos-backend/internal/model"

	"gorm.io/gorm"
)

type SalesSummary struct {
	TotalRevenue     float64 `json:"total_revenue"`
	TransactionCount int64   `json:"transaction_count"`
	ItemsSold        float64 `json:"items_sold"`
	AverageTicket    float64 `json:"average_ticket"`
}

type TopProduct struct {
	ProductID   uint    `json:"product_id"`
	ProductName string  `json:"product_name"`
	QtySold     float64 `json:"qty_sold"`
	Revenue     float64 `json:"revenue"`
}

type DailySales struct {
	Day              string  `json:"day"`
	Revenue          float64 `json:"revenue"`
	TransactionCount int64   `json:"transaction_count"`
}

type StockAlert struct {
	ProductID   uint    `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    float64 `json:"quantity"`
}

type AnalysisRepository interface {
	SalesSummary(businessID uint, from, to time.Time) (*SalesSummary, error)
	TopProducts(businessID uint, from, to time.Time, limit int) ([]TopProduct, error)
	SalesByDate(businessID uint, from, to time.Time) ([]DailySales, error)
	StockAlerts(businessID uint, threshold float64) ([]StockAlert, error)
	InventoryValuation(businessID uint) (float64, error)
}

type analysisRepo struct {
	db *gorm.DB
}

func NewAnalysisRepo(db *gorm.DB) AnalysisRepository {
	return &analysisRepo{db}
}

// completedSales scopes to completed transactions in [from, to).
func (r *analysisRepo) completedSales(businessID uint, from, to time.Time) *gorm.DB {
	return r.db.Table("transaction_table AS t").
		Joins("JOIN purchases_table p ON p.purchase_id = t.purchase_id").
		Where("t.business_id = ? AND t.stat_id = ?", businessID, model.PurchaseStatusCompleted).
		Where("t.created_at >= ? AND t.created_at < ?", from, to)
}

func (r *analysisRepo) SalesSummary(businessID uint, from, to time.Time) (*SalesSummary, error) {
	var summary SalesSummary
	err := r.completedSales(businessID, from, to).
		Select("COALESCE(SUM(p.total_amount), 0) AS total_revenue, COUNT(*) AS transaction_count").
		Scan(&summary).Error
	if err != nil {
		return nil, err
	}
	err = r.completedSales(businessID, from, to).
		Joins("JOIN purchase_items_table pi ON pi.purchase_id = t.purchase_id").
		Select("COALESCE(SUM(pi.quantity), 0) AS items_sold").
		Scan(&summary.ItemsSold).Error
	if err != nil {
		return nil, err
	}
	if summary.TransactionCount > 0 {
		summary.AverageTicket = summary.TotalRevenue / float64(summary.TransactionCount)
	}
	return &summary, nil
}

func (r *analysisRepo) TopProducts(businessID uint, from, to time.Time, limit int) ([]TopProduct, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []TopProduct
	err := r.completedSales(businessID, from, to).
		Joins("JOIN purchase_items_table pi ON pi.purchase_id = t.purchase_id").
		Joins("JOIN product_table pr ON pr.product_id = pi.product_id").
		Select("pi.product_id, pr.name AS product_name, SUM(pi.quantity) AS qty_sold, SUM(pi.quantity * pi.price) AS revenue").
		Group("pi.product_id, pr.name").
		Order("qty_sold DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// SalesByDate groups by DATE(created_at), which both postgres and sqlite accept.
func (r *analysisRepo) SalesByDate(businessID uint, from, to time.Time) ([]DailySales, error) {
	var rows []DailySales
	err := r.completedSales(businessID, from, to).
		Select("DATE(t.created_at) AS day, COALESCE(SUM(p.total_amount), 0) AS revenue, COUNT(*) AS transaction_count").
		Group("DATE(t.created_at)").
		Order("day ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *analysisRepo) StockAlerts(businessID uint, threshold float64) ([]StockAlert, error) {
	var rows []StockAlert
	err := r.db.Table("inventory_table AS inv").
		Joins("JOIN product_table p ON p.product_id = inv.product_id").
		Where("p.business_id = ? AND p.is_active = ? AND inv.quantity <= ?", businessID, true, threshold).
		Select("inv.product_id, p.name AS product_name, inv.quantity").
		Order("inv.quantity ASC").
		Scan(&rows).Error
	return rows, err
}

// InventoryValuation prices stock at the product sell price.
func (r *analysisRepo) InventoryValuation(businessID uint) (float64, error) {
	var total float64
	err := r.db.Table("inventory_table AS inv").
		Joins("JOIN product_table p ON p.product_id = inv.product_id").
		Where("p.business_id = ? AND inv.quantity > 0", businessID).
		Select("COALESCE(SUM(inv.quantity * p.price), 0)").
		Scan(&total).Error
	return total, err
}
