package handler

import (
	"go-pos-backend/internal/middleware"
	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"
	"go-pos-backend/pkg/apperr"
	"go-pos-backend/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	products repository.ProductRepository
}

func NewProductHandler(products repository.ProductRepository) *ProductHandler {
	return &ProductHandler{products: products}
}

// ownedProduct loads the product and checks it belongs to the request scope.
func (h *ProductHandler) ownedProduct(c *fiber.Ctx, id uint) (*model.Product, error) {
	product, err := h.products.FindByID(id)
	if err != nil {
		return nil, err
	}
	if product.BusinessID != middleware.BusinessID(c) {
		return nil, apperr.NotFound("product not found")
	}
	return product, nil
}

// CreateProduct adds a product with a zeroed inventory row
// POST /api/businesses/:businessId/products
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return apperr.New(apperr.KindValidation, "invalid JSON body")
	}
	product.BusinessID = middleware.BusinessID(c)
	product.IsActive = true
	if errs := validator.ValidateStruct(product); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}

	if err := h.products.Create(&product); err != nil {
		return err
	}
	c.Locals(middleware.LocalAuditRecordID, product.ID)
	c.Locals(middleware.LocalAuditNewData, product)
	return c.Status(fiber.StatusCreated).JSON(product)
}

// ListProducts lists products with current stock
// GET /api/businesses/:businessId/products
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	includeInactive := c.Query("include_inactive") == "true"
	products, err := h.products.FindAllByBusiness(middleware.BusinessID(c), includeInactive)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"products": products})
}

// GetProduct returns one product
// GET /api/businesses/:businessId/products/:productId
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	productID, err := paramUint(c, "productId")
	if err != nil {
		return err
	}
	product, err := h.ownedProduct(c, productID)
	if err != nil {
		return err
	}
	return c.JSON(product)
}

// UpdateProduct edits a product's fields
// PUT /api/businesses/:businessId/products/:productId
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	productID, err := paramUint(c, "productId")
	if err != nil {
		return err
	}
	before, err := h.ownedProduct(c, productID)
	if err != nil {
		return err
	}

	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return apperr.New(apperr.KindValidation, "invalid JSON body")
	}
	product.ID = productID
	product.BusinessID = before.BusinessID
	if errs := validator.ValidateStruct(product); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}

	if err := h.products.Update(&product); err != nil {
		return err
	}
	c.Locals(middleware.LocalAuditRecordID, productID)
	c.Locals(middleware.LocalAuditOldData, before)
	c.Locals(middleware.LocalAuditNewData, product)
	return c.JSON(product)
}

// ArchiveProduct deactivates without deleting
// POST /api/businesses/:businessId/products/:productId/archive
func (h *ProductHandler) ArchiveProduct(c *fiber.Ctx) error {
	productID, err := paramUint(c, "productId")
	if err != nil {
		return err
	}
	if _, err := h.ownedProduct(c, productID); err != nil {
		return err
	}
	if err := h.products.SetActive(productID, false); err != nil {
		return err
	}
	c.Locals(middleware.LocalAuditRecordID, productID)
	return c.JSON(fiber.Map{"message": "product archived"})
}

// RestoreProduct reactivates an archived product
// POST /api/businesses/:businessId/products/:productId/restore
func (h *ProductHandler) RestoreProduct(c *fiber.Ctx) error {
	productID, err := paramUint(c, "productId")
	if err != nil {
		return err
	}
	if _, err := h.ownedProduct(c, productID); err != nil {
		return err
	}
	if err := h.products.SetActive(productID, true); err != nil {
		return err
	}
	c.Locals(middleware.LocalAuditRecordID, productID)
	return c.JSON(fiber.Map{"message": "product restored"})
}

// DeleteProduct removes a product and its definitions
// DELETE /api/businesses/:businessId/products/:productId
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	productID, err := paramUint(c, "productId")
	if err != nil {
		return err
	}
	before, err := h.ownedProduct(c, productID)
	if err != nil {
		return err
	}
	if err := h.products.Delete(productID); err != nil {
		return err
	}
	c.Locals(middleware.LocalAuditRecordID, productID)
	c.Locals(middleware.LocalAuditOldData, before)
	return c.JSON(fiber.Map{"message": "product deleted"})
}

// ListCategories lists the business's product categories
// GET /api/businesses/:businessId/categories
func (h *ProductHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.products.ListCategories(middleware.BusinessID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"categories": categories})
}

// CreateCategory adds a product category
// POST /api/businesses/:businessId/categories
func (h *ProductHandler) CreateCategory(c *fiber.Ctx) error {
	var category model.ProductCategory
	if err := c.BodyParser(&category); err != nil {
		return apperr.New(apperr.KindValidation, "invalid JSON body")
	}
	category.BusinessID = middleware.BusinessID(c)
	if errs := validator.ValidateStruct(category); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}
	if err := h.products.CreateCategory(&category); err != nil {
		return err
	}
	c.Locals(middleware.LocalAuditRecordID, category.ID)
	c.Locals(middleware.LocalAuditNewData, category)
	return c.Status(fiber.StatusCreated).JSON(category)
}

// UpdateCategory renames a product category
// PUT /api/businesses/:businessId/categories/:categoryId
func (h *ProductHandler) UpdateCategory(c *fiber.Ctx) error {
	categoryID, err := paramUint(c, "categoryId")
	if err != nil {
		return err
	}
	var category model.ProductCategory
	if err := c.BodyParser(&category); err != nil {
		return apperr.New(apperr.KindValidation, "invalid JSON body")
	}
	category.ID = categoryID
	category.BusinessID = middleware.BusinessID(c)
	if errs := validator.ValidateStruct(category); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}
	if err := h.products.UpdateCategory(&category); err != nil {
		return err
	}
	c.Locals(middleware.LocalAuditRecordID, categoryID)
	return c.JSON(category)
}

// DeleteCategory removes a category; its products become uncategorized
// DELETE /api/businesses/:businessId/categories/:categoryId
func (h *ProductHandler) DeleteCategory(c *fiber.Ctx) error {
	categoryID, err := paramUint(c, "categoryId")
	if err != nil {
		return err
	}
	if err := h.products.DeleteCategory(categoryID); err != nil {
		return err
	}
	c.Locals(middleware.LocalAuditRecordID, categoryID)
	return c.JSON(fiber.Map{"message": "category deleted"})
}

// ListUnits lists the measurement units
// GET /api/units
func (h *ProductHandler) ListUnits(c *fiber.Ctx) error {
	units, err := h.products.ListUnits()
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"units": units})
}

type recipeRequest struct {
	Ingredients []model.RecipeIngredient `json:"ingredients" validate:"required,dive"`
}

// SetRecipe replaces the product's ingredient list
// PUT /api/businesses/:businessId/products/:productId/recipe
func (h *ProductHandler) SetRecipe(c *fiber.Ctx) error {
	productID, err := paramUint(c, "productId")
	if err != nil {
		return err
	}
	product, err := h.ownedProduct(c, productID)
	if err != nil {
		return err
	}
	if product.ProductType != model.ProductRecipe {
		return apperr.New(apperr.KindValidation, "only recipe products take ingredients")
	}

	var req recipeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.New(apperr.KindValidation, "invalid JSON body")
	}
	if errs := validator.ValidateStruct(req); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}
	for _, ing := range req.Ingredients {
		if ing.IngredientProductID == productID {
			return apperr.New(apperr.KindValidation, "a product cannot be its own ingredient")
		}
	}

	if err := h.products.ReplaceIngredients(productID, req.Ingredients); err != nil {
		return err
	}
	c.Locals(middleware.LocalAuditRecordID, productID)
	c.Locals(middleware.LocalAuditNewData, req.Ingredients)
	return c.JSON(fiber.Map{"ingredients": req.Ingredients})
}

// GetRecipe returns the product's ingredient list
// GET /api/businesses/:businessId/products/:productId/recipe
func (h *ProductHandler) GetRecipe(c *fiber.Ctx) error {
	productID, err := paramUint(c, "productId")
	if err != nil {
		return err
	}
	if _, err := h.ownedProduct(c, productID); err != nil {
		return err
	}
	ingredients, err := h.products.GetIngredientsByProduct(productID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ingredients": ingredients})
}

type comboRequest struct {
	Components []model.ComboItem `json:"components" validate:"required,dive"`
}

// SetCombo replaces the composite product's component list
// PUT /api/businesses/:businessId/products/:productId/combo
func (h *ProductHandler) SetCombo(c *fiber.Ctx) error {
	productID, err := paramUint(c, "productId")
	if err != nil {
		return err
	}
	product, err := h.ownedProduct(c, productID)
	if err != nil {
		return err
	}
	if product.ProductType != model.ProductComposite {
		return apperr.New(apperr.KindValidation, "only composite products take components")
	}

	var req comboRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.New(apperr.KindValidation, "invalid JSON body")
	}
	if errs := validator.ValidateStruct(req); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}
	for _, comp := range req.Components {
		if comp.ComponentProductID == productID {
			return apperr.New(apperr.KindValidation, "a product cannot be its own component")
		}
	}

	if err := h.products.ReplaceComboItems(productID, req.Components); err != nil {
		return err
	}
	c.Locals(middleware.LocalAuditRecordID, productID)
	c.Locals(middleware.LocalAuditNewData, req.Components)
	return c.JSON(fiber.Map{"components": req.Components})
}

// GetCombo returns the composite product's components
// GET /api/businesses/:businessId/products/:productId/combo
func (h *ProductHandler) GetCombo(c *fiber.Ctx) error {
	productID, err := paramUint(c, "productId")
	if err != nil {
		return err
	}
	if _, err := h.ownedProduct(c, productID); err != nil {
		return err
	}
	components, err := h.products.GetComboByParent(productID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"components": components})
}
