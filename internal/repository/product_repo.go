package repository

import (
	"errors"

	"go-pos-backend/internal/model"

	"gorm.io/gorm"
)

// ProductWithStock is the list-view shape: product columns plus the current
// inventory quantity (zero when no inventory row exists yet).
type ProductWithStock struct {
	model.Product
	Quantity float64 `json:"quantity"`
}

type ProductRepository interface {
	Create(product *model.Product) error
	FindByID(id uint) (*model.Product, error)
	FindAllByBusiness(businessID uint, includeInactive bool) ([]ProductWithStock, error)
	Update(product *model.Product) error
	Delete(id uint) error
	SetActive(id uint, active bool) error

	ListCategories(businessID uint) ([]model.ProductCategory, error)
	CreateCategory(category *model.ProductCategory) error
	UpdateCategory(category *model.ProductCategory) error
	DeleteCategory(id uint) error

	ListUnits() ([]model.Unit, error)

	ReplaceIngredients(productID uint, ingredients []model.RecipeIngredient) error
	GetIngredientsByProduct(productID uint) ([]model.RecipeIngredient, error)
	ReplaceComboItems(parentProductID uint, items []model.ComboItem) error
	GetComboByParent(parentProductID uint) ([]model.ComboItem, error)

	SeedDefaults() error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

// Create inserts the product and its inventory row at zero quantity so later
// stock movements never race on first insert.
func (r *productRepo) Create(product *model.Product) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(product).Error; err != nil {
			return err
		}
		unitID := product.UnitID
		inv := model.Inventory{ProductID: product.ID, Quantity: 0, UnitID: &unitID}
		return tx.Create(&inv).Error
	})
}

func (r *productRepo) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.First(&product, "product_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindAllByBusiness(businessID uint, includeInactive bool) ([]ProductWithStock, error) {
	var products []ProductWithStock
	q := r.db.Table("product_table").
		Select("product_table.*, COALESCE(inv.quantity, 0) AS quantity").
		Joins("LEFT JOIN inventory_table inv ON inv.product_id = product_table.product_id").
		Where("product_table.business_id = ?", businessID)
	if !includeInactive {
		q = q.Where("product_table.is_active = ?", true)
	}
	err := q.Order("product_table.name ASC").Scan(&products).Error
	return products, err
}

func (r *productRepo) Update(product *model.Product) error {
	return r.db.Model(&model.Product{}).Where("product_id = ?", product.ID).
		Updates(map[string]interface{}{
			"name":         product.Name,
			"price":        product.Price,
			"unit_id":      product.UnitID,
			"category_id":  product.CategoryID,
			"picture":      product.Picture,
			"product_type": product.ProductType,
		}).Error
}

// Delete removes the product with its inventory row, recipe and combo
// definitions. The movement ledger stays untouched.
func (r *productRepo) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&model.Inventory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&model.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("parent_product_id = ?", id).Delete(&model.ComboItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Product{}, "product_id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *productRepo) SetActive(id uint, active bool) error {
	res := r.db.Model(&model.Product{}).Where("product_id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepo) ListCategories(businessID uint) ([]model.ProductCategory, error) {
	var categories []model.ProductCategory
	err := r.db.Where("business_id = ?", businessID).Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *productRepo) CreateCategory(category *model.ProductCategory) error {
	return r.db.Create(category).Error
}

func (r *productRepo) UpdateCategory(category *model.ProductCategory) error {
	res := r.db.Model(&model.ProductCategory{}).
		Where("category_id = ? AND business_id = ?", category.ID, category.BusinessID).
		Update("name", category.Name)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepo) DeleteCategory(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		// Orphaned products fall back to uncategorized.
		if err := tx.Model(&model.Product{}).Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&model.ProductCategory{}, "category_id = ?", id).Error
	})
}

func (r *productRepo) ListUnits() ([]model.Unit, error) {
	var units []model.Unit
	err := r.db.Order("unit_id ASC").Find(&units).Error
	return units, err
}

// ReplaceIngredients swaps the whole recipe definition in one transaction.
func (r *productRepo) ReplaceIngredients(productID uint, ingredients []model.RecipeIngredient) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&model.RecipeIngredient{}).Error; err != nil {
			return err
		}
		for i := range ingredients {
			ingredients[i].ID = 0
			ingredients[i].ProductID = productID
		}
		if len(ingredients) == 0 {
			return nil
		}
		return tx.Create(&ingredients).Error
	})
}

func (r *productRepo) GetIngredientsByProduct(productID uint) ([]model.RecipeIngredient, error) {
	var ingredients []model.RecipeIngredient
	err := r.db.Where("product_id = ?", productID).Find(&ingredients).Error
	return ingredients, err
}

func (r *productRepo) ReplaceComboItems(parentProductID uint, items []model.ComboItem) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parent_product_id = ?", parentProductID).Delete(&model.ComboItem{}).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].ID = 0
			items[i].ParentProductID = parentProductID
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

func (r *productRepo) GetComboByParent(parentProductID uint) ([]model.ComboItem, error) {
	var items []model.ComboItem
	err := r.db.Where("parent_product_id = ?", parentProductID).Find(&items).Error
	return items, err
}

func (r *productRepo) SeedDefaults() error {
	for _, u := range model.DefaultUnits {
		var existing model.Unit
		if err := r.db.Where("name = ?", u.Name).First(&existing).Error; errors.Is(err, gorm.ErrRecordNotFound) {
			if err := r.db.Create(&u).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
