package service

import (
	"errors"
	"fmt"
	"time"

	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"
	"go-pos-backend/pkg/apperr"

	"gorm.io/gorm"
)

type SaleItemRequest struct {
	ProductID uint    `json:"product_id" validate:"required"`
	Quantity  float64 `json:"quantity" validate:"required,gt=0"`
}

type CreateSaleRequest struct {
	PaymentMethod string            `json:"payment_method" validate:"required,oneof=cash card qris transfer"`
	Items         []SaleItemRequest `json:"items" validate:"required,min=1,dive"`
}

type SaleResult struct {
	Transaction model.SaleTransaction `json:"transaction"`
	Purchase    model.Purchase        `json:"purchase"`
	Items       []model.PurchaseItem  `json:"items"`
}

type SaleService interface {
	CreateSale(businessID, userID uint, req CreateSaleRequest, logCtx Entry) (*SaleResult, error)
	CancelSale(businessID, userID, transactionID uint, logCtx Entry) error
	FinishOrder(businessID, userID, transactionID uint, logCtx Entry) error
	ListOrders(businessID uint, statID, limit, offset int) ([]repository.OrderRow, int64, error)
	GetOrder(businessID, transactionID uint) (*SaleResult, error)
}

type saleService struct {
	db        *gorm.DB
	sales     repository.SaleRepository
	products  repository.ProductRepository
	inventory repository.InventoryRepository
	logs      LogService
	notifier  Notifier
}

func NewSaleService(db *gorm.DB, sales repository.SaleRepository, products repository.ProductRepository, inventory repository.InventoryRepository, logs LogService, notifier Notifier) SaleService {
	return &saleService{db, sales, products, inventory, logs, notifier}
}

// receiptNumber builds CODE-MMDD<seq>. The caller must hold the business row
// lock so the per-day sequence is race free.
func receiptNumber(code string, day time.Time, seq int64) string {
	return fmt.Sprintf("%s-%02d%02d%d", code, int(day.Month()), day.Day(), seq)
}

// CreateSale writes the purchase header, the receipt-numbered transaction, the
// line items and the guarded stock deductions in one transaction. Any item
// without enough stock aborts the whole sale.
func (s *saleService) CreateSale(businessID, userID uint, req CreateSaleRequest, logCtx Entry) (*SaleResult, error) {
	if len(req.Items) == 0 {
		return nil, apperr.New(apperr.KindValidation, "sale requires at least one item")
	}

	type line struct {
		product *model.Product
		qty     float64
	}
	lines := make([]line, 0, len(req.Items))
	var total float64
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
		if !product.IsActive {
			return nil, apperr.New(apperr.KindValidation, fmt.Sprintf("product %q is inactive", product.Name))
		}
		lines = append(lines, line{product, item.Quantity})
		total += product.Price * item.Quantity
	}

	result := &SaleResult{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		business, err := s.sales.LockBusiness(tx, businessID)
		if err != nil {
			return err
		}
		now := time.Now()
		count, err := s.sales.CountReceiptsForDay(tx, businessID, now)
		if err != nil {
			return err
		}
		seq := count + 1

		purchase := model.Purchase{
			UserID:      userID,
			TotalAmount: total,
			StatusID:    model.PurchaseStatusCompleted,
		}
		if err := s.sales.CreatePurchase(tx, &purchase); err != nil {
			return err
		}

		txn := model.SaleTransaction{
			PurchaseID:      purchase.ID,
			CustomReceiptNo: receiptNumber(business.BusinessCode, now, seq),
			PaymentMethod:   req.PaymentMethod,
			BusinessID:      businessID,
			StatID:          model.PurchaseStatusCompleted,
			UserID:          userID,
		}
		if err := s.sales.CreateTransaction(tx, &txn); err != nil {
			return err
		}
		if err := s.sales.UpdateLastReceiptNo(tx, businessID, int(seq)); err != nil {
			return err
		}

		items := make([]model.PurchaseItem, 0, len(lines))
		for _, l := range lines {
			items = append(items, model.PurchaseItem{
				PurchaseID: purchase.ID,
				ProductID:  l.product.ID,
				Quantity:   l.qty,
				Price:      l.product.Price,
			})
		}
		if err := s.sales.CreatePurchaseItems(tx, items); err != nil {
			return err
		}

		reference := fmt.Sprintf("sale:%s", txn.CustomReceiptNo)
		for _, l := range lines {
			if err := s.inventory.DeductGuarded(tx, l.product.ID, l.qty); err != nil {
				if errors.Is(err, repository.ErrInsufficientStock) {
					return apperr.Conflict(fmt.Sprintf("not enough stock for %q", l.product.Name))
				}
				return err
			}
			movement := model.InventoryTransaction{
				BusinessID: businessID,
				ProductID:  l.product.ID,
				ChangeQty:  -l.qty,
				Reason:     model.ReasonSale,
				Reference:  reference,
				UserID:     userID,
			}
			if err := s.inventory.InsertTransaction(tx, &movement); err != nil {
				return err
			}
		}

		result.Transaction = txn
		result.Purchase = purchase
		result.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx.BusinessID = businessID
	logCtx.UserID = userID
	logCtx.ModuleID = model.ModuleSales
	logCtx.ActionID = model.ActionCreate
	logCtx.Table = "transaction_table"
	logCtx.RecordID = result.Transaction.ID
	logCtx.NewData = result.Transaction
	s.logs.Record(logCtx)

	if s.notifier != nil {
		s.notifier.BroadcastJSON(map[string]interface{}{
			"event":          "sale.created",
			"business_id":    businessID,
			"transaction_id": result.Transaction.ID,
			"receipt_no":     result.Transaction.CustomReceiptNo,
			"total_amount":   result.Purchase.TotalAmount,
		})
	}
	return result, nil
}

// CancelSale flips the transaction to cancelled and restocks every item.
func (s *saleService) CancelSale(businessID, userID, transactionID uint, logCtx Entry) error {
	txn, err := s.sales.FindTransaction(businessID, transactionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("sale not found")
	}
	if err != nil {
		return err
	}
	if txn.StatID == model.PurchaseStatusCancelled {
		return apperr.Conflict("sale is already cancelled")
	}

	items, err := s.sales.ListItems(txn.PurchaseID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.sales.UpdateTransactionStatus(tx, transactionID, model.PurchaseStatusCancelled); err != nil {
			return err
		}
		if err := s.sales.UpdatePurchaseStatus(tx, txn.PurchaseID, model.PurchaseStatusCancelled); err != nil {
			return err
		}
		reference := fmt.Sprintf("cancel:%s", txn.CustomReceiptNo)
		for _, item := range items {
			inv, err := s.inventory.LockInventory(tx, item.ProductID)
			if err != nil {
				return err
			}
			if err := s.inventory.AddQuantity(tx, inv.ID, item.Quantity); err != nil {
				return err
			}
			movement := model.InventoryTransaction{
				BusinessID: businessID,
				ProductID:  item.ProductID,
				ChangeQty:  item.Quantity,
				Reason:     model.ReasonCorrection,
				Reference:  reference,
				UserID:     userID,
			}
			if err := s.inventory.InsertTransaction(tx, &movement); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logCtx.BusinessID = businessID
	logCtx.UserID = userID
	logCtx.ModuleID = model.ModuleSales
	logCtx.ActionID = model.ActionCancel
	logCtx.Table = "transaction_table"
	logCtx.RecordID = transactionID
	logCtx.OldData = txn
	s.logs.Record(logCtx)
	return nil
}

// FinishOrder completes a pending order without touching stock; the deduction
// happened at creation.
func (s *saleService) FinishOrder(businessID, userID, transactionID uint, logCtx Entry) error {
	txn, err := s.sales.FindTransaction(businessID, transactionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("order not found")
	}
	if err != nil {
		return err
	}
	if txn.StatID != model.PurchaseStatusPending {
		return apperr.Conflict("order is not pending")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.sales.UpdateTransactionStatus(tx, transactionID, model.PurchaseStatusCompleted); err != nil {
			return err
		}
		return s.sales.UpdatePurchaseStatus(tx, txn.PurchaseID, model.PurchaseStatusCompleted)
	})
	if err != nil {
		return err
	}

	logCtx.BusinessID = businessID
	logCtx.UserID = userID
	logCtx.ModuleID = model.ModuleSales
	logCtx.ActionID = model.ActionUpdate
	logCtx.Table = "transaction_table"
	logCtx.RecordID = transactionID
	s.logs.Record(logCtx)
	return nil
}

func (s *saleService) ListOrders(businessID uint, statID, limit, offset int) ([]repository.OrderRow, int64, error) {
	return s.sales.ListOrders(businessID, statID, limit, offset)
}

func (s *saleService) GetOrder(businessID, transactionID uint) (*SaleResult, error) {
	txn, err := s.sales.FindTransaction(businessID, transactionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("sale not found")
	}
	if err != nil {
		return nil, err
	}
	items, err := s.sales.ListItems(txn.PurchaseID)
	if err != nil {
		return nil, err
	}
	var purchase model.Purchase
	if err := s.sales.DB().First(&purchase, "purchase_id = ?", txn.PurchaseID).Error; err != nil {
		return nil, err
	}
	return &SaleResult{Transaction: *txn, Purchase: purchase, Items: items}, nil
}
