package handler

import (
	"time"

	"go-pos-backend/internal/middleware"
	"go-pos-backend/internal/repository"
	"go-pos-backend/pkg/apperr"

	"github.com/gofiber/fiber/v2"
)

type AnalysisHandler struct {
	analysis repository.AnalysisRepository
}

func NewAnalysisHandler(analysis repository.AnalysisRepository) *AnalysisHandler {
	return &AnalysisHandler{analysis: analysis}
}

// dateRange parses from/to query params, defaulting to the last 30 days.
func dateRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	to := time.Now()
	from := to.AddDate(0, 0, -30)
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return from, to, apperr.Validationf("invalid from date %q", raw)
		}
		from = t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return from, to, apperr.Validationf("invalid to date %q", raw)
		}
		// Inclusive end day.
		to = t.AddDate(0, 0, 1)
	}
	return from, to, nil
}

// Dashboard returns the KPI block for the date range
// GET /api/businesses/:businessId/analysis/dashboard
func (h *AnalysisHandler) Dashboard(c *fiber.Ctx) error {
	from, to, err := dateRange(c)
	if err != nil {
		return err
	}
	businessID := middleware.BusinessID(c)

	summary, err := h.analysis.SalesSummary(businessID, from, to)
	if err != nil {
		return err
	}
	valuation, err := h.analysis.InventoryValuation(businessID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"summary": summary, "inventory_valuation": valuation})
}

// TopProducts ranks products by quantity sold
// GET /api/businesses/:businessId/analysis/top-products
func (h *AnalysisHandler) TopProducts(c *fiber.Ctx) error {
	from, to, err := dateRange(c)
	if err != nil {
		return err
	}
	rows, err := h.analysis.TopProducts(middleware.BusinessID(c), from, to, queryInt(c, "limit", 10))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"top_products": rows})
}

// SalesByDate returns the daily revenue series
// GET /api/businesses/:businessId/analysis/sales-by-date
func (h *AnalysisHandler) SalesByDate(c *fiber.Ctx) error {
	from, to, err := dateRange(c)
	if err != nil {
		return err
	}
	rows, err := h.analysis.SalesByDate(middleware.BusinessID(c), from, to)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"sales": rows})
}

// StockAlerts lists active products at or below the threshold
// GET /api/businesses/:businessId/analysis/stock-alerts
func (h *AnalysisHandler) StockAlerts(c *fiber.Ctx) error {
	threshold := 10.0
	if raw := c.Query("threshold"); raw != "" {
		if v := queryInt(c, "threshold", 10); v >= 0 {
			threshold = float64(v)
		}
	}
	rows, err := h.analysis.StockAlerts(middleware.BusinessID(c), threshold)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"alerts": rows})
}
