package handler

import (
	"go-pos-backend/internal/middleware"
	"go-pos-backend/internal/service"
	"go-pos-backend/pkg/apperr"
	"go-pos-backend/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

type SaleHandler struct {
	saleService service.SaleService
}

func NewSaleHandler(saleService service.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// CreateSale records a sale with receipt numbering and stock deduction
// POST /api/businesses/:businessId/sales
func (h *SaleHandler) CreateSale(c *fiber.Ctx) error {
	var req service.CreateSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.New(apperr.KindValidation, "invalid JSON body")
	}
	if errs := validator.ValidateStruct(req); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}

	result, err := h.saleService.CreateSale(middleware.BusinessID(c), middleware.UserID(c), req, middleware.RequestEntry(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// ListOrders pages through orders, optionally by status
// GET /api/businesses/:businessId/orders
func (h *SaleHandler) ListOrders(c *fiber.Ctx) error {
	orders, total, err := h.saleService.ListOrders(
		middleware.BusinessID(c),
		queryInt(c, "status", 0),
		queryInt(c, "limit", 20),
		queryInt(c, "offset", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"orders": orders, "total": total})
}

// GetOrder returns one order with its line items
// GET /api/businesses/:businessId/orders/:transactionId
func (h *SaleHandler) GetOrder(c *fiber.Ctx) error {
	transactionID, err := paramUint(c, "transactionId")
	if err != nil {
		return err
	}
	result, err := h.saleService.GetOrder(middleware.BusinessID(c), transactionID)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// CancelOrder cancels a sale and restocks its items
// POST /api/businesses/:businessId/orders/:transactionId/cancel
func (h *SaleHandler) CancelOrder(c *fiber.Ctx) error {
	transactionID, err := paramUint(c, "transactionId")
	if err != nil {
		return err
	}
	if err := h.saleService.CancelSale(middleware.BusinessID(c), middleware.UserID(c), transactionID, middleware.RequestEntry(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "sale cancelled"})
}

// FinishOrder completes a pending order
// POST /api/businesses/:businessId/orders/:transactionId/finish
func (h *SaleHandler) FinishOrder(c *fiber.Ctx) error {
	transactionID, err := paramUint(c, "transactionId")
	if err != nil {
		return err
	}
	if err := h.saleService.FinishOrder(middleware.BusinessID(c), middleware.UserID(c), transactionID, middleware.RequestEntry(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "order completed"})
}
