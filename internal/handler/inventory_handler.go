package handler

import (
	"strconv"

	"go-pos-backend/internal/middleware"
	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"
	"go-pos-backend/internal/service"
	"go-pos-backend/pkg/apperr"
	"go-pos-backend/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

type InventoryHandler struct {
	inventoryService service.InventoryService
}

func NewInventoryHandler(inventoryService service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

func queryInt(c *fiber.Ctx, name string, fallback int) int {
	if raw := c.Query(name); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}

// ListStock lists current quantities for the business
// GET /api/businesses/:businessId/inventory
func (h *InventoryHandler) ListStock(c *fiber.Ctx) error {
	rows, err := h.inventoryService.ListStock(middleware.BusinessID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"inventory": rows})
}

// Adjust applies one stock movement
// POST /api/businesses/:businessId/inventory/adjust
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var req service.AdjustRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.New(apperr.KindValidation, "invalid JSON body")
	}
	if errs := validator.ValidateStruct(req); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}

	inv, err := h.inventoryService.Adjust(middleware.BusinessID(c), middleware.UserID(c), req, middleware.RequestEntry(c))
	if err != nil {
		return err
	}
	return c.JSON(inv)
}

type batchAdjustRequest struct {
	Items []service.AdjustRequest `json:"items" validate:"required,min=1,dive"`
}

// AdjustBatch applies movements item by item; the response reports each
// item's outcome and the status is 207 when any item failed
// POST /api/businesses/:businessId/inventory/adjust-batch
func (h *InventoryHandler) AdjustBatch(c *fiber.Ctx) error {
	var req batchAdjustRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.New(apperr.KindValidation, "invalid JSON body")
	}
	if errs := validator.ValidateStruct(req); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}

	results := h.inventoryService.AdjustBatch(middleware.BusinessID(c), middleware.UserID(c), req.Items, middleware.RequestEntry(c))
	status := fiber.StatusOK
	for _, res := range results {
		if !res.Applied {
			status = fiber.StatusMultiStatus
			break
		}
	}
	return c.Status(status).JSON(fiber.Map{"results": results})
}

// ListTransactions pages through the movement ledger
// GET /api/businesses/:businessId/inventory/transactions
func (h *InventoryHandler) ListTransactions(c *fiber.Ctx) error {
	filter := repository.InventoryTxnFilter{
		Reason: model.AdjustReason(c.Query("reason")),
		Limit:  queryInt(c, "limit", 50),
		Offset: queryInt(c, "offset", 0),
	}
	if productID := queryInt(c, "product_id", 0); productID > 0 {
		filter.ProductID = uint(productID)
	}

	txns, total, err := h.inventoryService.ListTransactions(middleware.BusinessID(c), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"transactions": txns, "total": total})
}

// CreateStockIn records a supplier delivery
// POST /api/businesses/:businessId/stockins
func (h *InventoryHandler) CreateStockIn(c *fiber.Ctx) error {
	var req service.StockInRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.New(apperr.KindValidation, "invalid JSON body")
	}
	if errs := validator.ValidateStruct(req); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}

	header, err := h.inventoryService.CreateStockIn(middleware.BusinessID(c), middleware.UserID(c), req, middleware.RequestEntry(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(header)
}

// GetStockIn returns one delivery with its items
// GET /api/businesses/:businessId/stockins/:stockinId
func (h *InventoryHandler) GetStockIn(c *fiber.Ctx) error {
	stockinID, err := paramUint(c, "stockinId")
	if err != nil {
		return err
	}
	header, items, err := h.inventoryService.GetStockIn(middleware.BusinessID(c), stockinID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"stockin": header, "items": items})
}

// ListStockIns pages through deliveries
// GET /api/businesses/:businessId/stockins
func (h *InventoryHandler) ListStockIns(c *fiber.Ctx) error {
	headers, total, err := h.inventoryService.ListStockIns(
		middleware.BusinessID(c), queryInt(c, "limit", 20), queryInt(c, "offset", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"stockins": headers, "total": total})
}

// Produce converts ingredients or components into finished stock
// POST /api/businesses/:businessId/production
func (h *InventoryHandler) Produce(c *fiber.Ctx) error {
	var req service.ProductionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.New(apperr.KindValidation, "invalid JSON body")
	}
	if errs := validator.ValidateStruct(req); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}

	inv, err := h.inventoryService.ProcessProduction(middleware.BusinessID(c), middleware.UserID(c), req, middleware.RequestEntry(c))
	if err != nil {
		return err
	}
	return c.JSON(inv)
}
