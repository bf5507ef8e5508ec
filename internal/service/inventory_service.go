package service

import (
	"errors"
	"fmt"

	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"
	"go-pos-backend/pkg/apperr"

	"gorm.io/gorm"
)

// Notifier pushes inventory events to connected dashboard clients.
type Notifier interface {
	BroadcastJSON(v interface{})
}

type AdjustRequest struct {
	ProductID uint               `json:"product_id" validate:"required"`
	Quantity  float64            `json:"quantity" validate:"required"`
	Reason    model.AdjustReason `json:"reason" validate:"required,oneof=purchase spoilage waste correction production sale"`
	Reference string             `json:"reference"`
}

// BatchItemResult reports one item of a batch adjustment. Items are applied
// independently, so a failing item leaves the earlier ones committed.
type BatchItemResult struct {
	ProductID uint    `json:"product_id"`
	Quantity  float64 `json:"quantity"`
	Applied   bool    `json:"applied"`
	Error     string  `json:"error,omitempty"`
}

type StockInItemRequest struct {
	ProductID uint    `json:"product_id" validate:"required"`
	Quantity  float64 `json:"quantity" validate:"required,gt=0"`
	UnitPrice float64 `json:"unit_price" validate:"gte=0"`
}

type StockInRequest struct {
	Items []StockInItemRequest `json:"items" validate:"required,min=1,dive"`
}

type ProductionRequest struct {
	ProductID uint    `json:"product_id" validate:"required"`
	Quantity  float64 `json:"quantity" validate:"required,gt=0"`
}

type InventoryService interface {
	Adjust(businessID, userID uint, req AdjustRequest, logCtx Entry) (*model.Inventory, error)
	AdjustBatch(businessID, userID uint, items []AdjustRequest, logCtx Entry) []BatchItemResult
	CreateStockIn(businessID, userID uint, req StockInRequest, logCtx Entry) (*model.StockIn, error)
	ProcessProduction(businessID, userID uint, req ProductionRequest, logCtx Entry) (*model.Inventory, error)

	ListStock(businessID uint) ([]repository.InventoryRow, error)
	ListTransactions(businessID uint, filter repository.InventoryTxnFilter) ([]model.InventoryTransaction, int64, error)
	GetStockIn(businessID, stockinID uint) (*model.StockIn, []model.StockInItem, error)
	ListStockIns(businessID uint, limit, offset int) ([]model.StockIn, int64, error)
}

type inventoryService struct {
	db        *gorm.DB
	inventory repository.InventoryRepository
	products  repository.ProductRepository
	logs      LogService
	notifier  Notifier
}

func NewInventoryService(db *gorm.DB, inventory repository.InventoryRepository, products repository.ProductRepository, logs LogService, notifier Notifier) InventoryService {
	return &inventoryService{db, inventory, products, logs, notifier}
}

// applyMovement locks the product's inventory row, creating it on first
// movement, applies the delta and appends the ledger row. Must run inside tx.
func (s *inventoryService) applyMovement(tx *gorm.DB, businessID, userID, productID uint, delta float64, reason model.AdjustReason, reference string) (*model.Inventory, error) {
	inv, err := s.inventory.LockInventory(tx, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		inv = &model.Inventory{ProductID: productID, Quantity: 0}
		if err := s.inventory.CreateRow(tx, inv); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	if err := s.inventory.AddQuantity(tx, inv.ID, delta); err != nil {
		return nil, err
	}
	inv.Quantity += delta

	txn := model.InventoryTransaction{
		BusinessID: businessID,
		ProductID:  productID,
		ChangeQty:  delta,
		Reason:     reason,
		Reference:  reference,
		UserID:     userID,
	}
	if err := s.inventory.InsertTransaction(tx, &txn); err != nil {
		return nil, err
	}
	return inv, nil
}

// normalizedDelta gives each reason its sign: losses always debit, purchases
// always credit, corrections keep the caller's sign.
func normalizedDelta(reason model.AdjustReason, qty float64) float64 {
	abs := qty
	if abs < 0 {
		abs = -abs
	}
	switch reason {
	case model.ReasonSpoilage, model.ReasonWaste, model.ReasonSale:
		return -abs
	case model.ReasonPurchase, model.ReasonProduction:
		return abs
	default:
		return qty
	}
}

func (s *inventoryService) Adjust(businessID, userID uint, req AdjustRequest, logCtx Entry) (*model.Inventory, error) {
	if req.Quantity == 0 {
		return nil, apperr.New(apperr.KindValidation, "quantity must be non-zero")
	}
	product, err := s.products.FindByID(req.ProductID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("product not found")
	}
	if err != nil {
		return nil, err
	}
	if product.BusinessID != businessID {
		return nil, apperr.Forbidden("product belongs to another business")
	}

	delta := normalizedDelta(req.Reason, req.Quantity)
	var inv *model.Inventory
	err = s.db.Transaction(func(tx *gorm.DB) error {
		inv, err = s.applyMovement(tx, businessID, userID, req.ProductID, delta, req.Reason, req.Reference)
		return err
	})
	if err != nil {
		return nil, err
	}

	logCtx.BusinessID = businessID
	logCtx.UserID = userID
	logCtx.ModuleID = model.ModuleInventory
	logCtx.ActionID = model.ActionUpdate
	logCtx.Table = "inventory_table"
	logCtx.RecordID = inv.ID
	logCtx.NewData = map[string]interface{}{"product_id": req.ProductID, "change_qty": delta, "reason": req.Reason}
	s.logs.Record(logCtx)

	s.notify(businessID, req.ProductID, inv.Quantity)
	return inv, nil
}

// AdjustBatch applies each item in its own transaction. A failure stops
// nothing; the result slice tells the caller which items landed.
func (s *inventoryService) AdjustBatch(businessID, userID uint, items []AdjustRequest, logCtx Entry) []BatchItemResult {
	results := make([]BatchItemResult, 0, len(items))
	for _, item := range items {
		res := BatchItemResult{ProductID: item.ProductID, Quantity: item.Quantity}
		if _, err := s.Adjust(businessID, userID, item, logCtx); err != nil {
			res.Error = err.Error()
		} else {
			res.Applied = true
		}
		results = append(results, res)
	}
	return results
}

// CreateStockIn records a supplier delivery: one header, its items and a
// purchase credit per item, all in one transaction.
func (s *inventoryService) CreateStockIn(businessID, userID uint, req StockInRequest, logCtx Entry) (*model.StockIn, error) {
	if len(req.Items) == 0 {
		return nil, apperr.New(apperr.KindValidation, "stock-in requires at least one item")
	}
	for _, item := range req.Items {
		product, err := s.products.FindByID(item.ProductID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(fmt.Sprintf("product %d not found", item.ProductID))
		}
		if err != nil {
			return nil, err
		}
		if product.BusinessID != businessID {
			return nil, apperr.Forbidden("product belongs to another business")
		}
		if product.ProductType != model.ProductSimple {
			return nil, apperr.New(apperr.KindValidation,
				fmt.Sprintf("product %d is not stockable, only simple products accept stock-in", item.ProductID))
		}
	}

	header := model.StockIn{BusinessID: businessID, UserID: userID}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var total float64
		for _, item := range req.Items {
			total += item.UnitPrice * item.Quantity
		}
		header.TotalAmount = total
		if err := s.inventory.CreateStockIn(tx, &header); err != nil {
			return err
		}

		items := make([]model.StockInItem, 0, len(req.Items))
		for _, item := range req.Items {
			items = append(items, model.StockInItem{
				StockinID:  header.ID,
				ProductID:  item.ProductID,
				Quantity:   item.Quantity,
				UnitPrice:  item.UnitPrice,
				TotalPrice: item.UnitPrice * item.Quantity,
			})
		}
		if err := s.inventory.CreateStockInItems(tx, items); err != nil {
			return err
		}

		reference := fmt.Sprintf("stockin:%d", header.ID)
		for _, item := range req.Items {
			if _, err := s.applyMovement(tx, businessID, userID, item.ProductID, item.Quantity, model.ReasonPurchase, reference); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx.BusinessID = businessID
	logCtx.UserID = userID
	logCtx.ModuleID = model.ModuleInventory
	logCtx.ActionID = model.ActionCreate
	logCtx.Table = "stockin_table"
	logCtx.RecordID = header.ID
	logCtx.NewData = header
	s.logs.Record(logCtx)

	for _, item := range req.Items {
		if inv, err := s.inventory.GetByProduct(item.ProductID); err == nil {
			s.notify(businessID, item.ProductID, inv.Quantity)
		}
	}
	return &header, nil
}

// ProcessProduction converts ingredients or components into finished product:
// recipe products consume consumption_amount*qty of each ingredient, composite
// products consume quantity*qty of each component, then the finished product
// is credited. One transaction, so a failed deduction rolls everything back.
func (s *inventoryService) ProcessProduction(businessID, userID uint, req ProductionRequest, logCtx Entry) (*model.Inventory, error) {
	product, err := s.products.FindByID(req.ProductID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("product not found")
	}
	if err != nil {
		return nil, err
	}
	if product.BusinessID != businessID {
		return nil, apperr.Forbidden("product belongs to another business")
	}

	type consumption struct {
		productID uint
		amount    float64
	}
	var consumptions []consumption
	switch product.ProductType {
	case model.ProductRecipe:
		ingredients, err := s.products.GetIngredientsByProduct(req.ProductID)
		if err != nil {
			return nil, err
		}
		if len(ingredients) == 0 {
			return nil, apperr.New(apperr.KindValidation, "product has no recipe defined")
		}
		for _, ing := range ingredients {
			consumptions = append(consumptions, consumption{ing.IngredientProductID, ing.ConsumptionAmount * req.Quantity})
		}
	case model.ProductComposite:
		components, err := s.products.GetComboByParent(req.ProductID)
		if err != nil {
			return nil, err
		}
		if len(components) == 0 {
			return nil, apperr.New(apperr.KindValidation, "product has no components defined")
		}
		for _, comp := range components {
			consumptions = append(consumptions, consumption{comp.ComponentProductID, comp.Quantity * req.Quantity})
		}
	default:
		return nil, apperr.New(apperr.KindValidation, "only recipe and composite products can be produced")
	}

	reference := fmt.Sprintf("production:%d", req.ProductID)
	var inv *model.Inventory
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, c := range consumptions {
			if _, err := s.applyMovement(tx, businessID, userID, c.productID, -c.amount, model.ReasonProduction, reference); err != nil {
				return err
			}
		}
		inv, err = s.applyMovement(tx, businessID, userID, req.ProductID, req.Quantity, model.ReasonProduction, reference)
		return err
	})
	if err != nil {
		return nil, err
	}

	logCtx.BusinessID = businessID
	logCtx.UserID = userID
	logCtx.ModuleID = model.ModuleInventory
	logCtx.ActionID = model.ActionCreate
	logCtx.Table = "inventory_transactions_table"
	logCtx.RecordID = req.ProductID
	logCtx.NewData = map[string]interface{}{"product_id": req.ProductID, "produced_qty": req.Quantity}
	s.logs.Record(logCtx)

	s.notify(businessID, req.ProductID, inv.Quantity)
	return inv, nil
}

func (s *inventoryService) notify(businessID, productID uint, quantity float64) {
	if s.notifier == nil {
		return
	}
	s.notifier.BroadcastJSON(map[string]interface{}{
		"event":       "inventory.updated",
		"business_id": businessID,
		"product_id":  productID,
		"quantity":    quantity,
	})
}

func (s *inventoryService) ListStock(businessID uint) ([]repository.InventoryRow, error) {
	return s.inventory.ListByBusiness(businessID)
}

func (s *inventoryService) ListTransactions(businessID uint, filter repository.InventoryTxnFilter) ([]model.InventoryTransaction, int64, error) {
	return s.inventory.ListTransactions(businessID, filter)
}

func (s *inventoryService) GetStockIn(businessID, stockinID uint) (*model.StockIn, []model.StockInItem, error) {
	header, items, err := s.inventory.FindStockIn(stockinID)
	if err != nil {
		return nil, nil, err
	}
	if header.BusinessID != businessID {
		return nil, nil, apperr.NotFound("stock-in not found")
	}
	return header, items, nil
}

func (s *inventoryService) ListStockIns(businessID uint, limit, offset int) ([]model.StockIn, int64, error) {
	return s.inventory.ListStockIns(businessID, limit, offset)
}
