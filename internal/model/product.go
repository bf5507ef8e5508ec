package model

type ProductType string

const (
	ProductSimple    ProductType = "simple"
	ProductRecipe    ProductType = "recipe"
	ProductComposite ProductType = "composite"
)

type Unit struct {
	ID   uint   `gorm:"column:unit_id;primaryKey" json:"unit_id"`
	Name string `gorm:"type:varchar(20);uniqueIndex;not null" json:"name"`
}

func (Unit) TableName() string { return "unit_table" }

var DefaultUnits = []Unit{
	{Name: "pcs"},
	{Name: "g"},
	{Name: "kg"},
	{Name: "ml"},
	{Name: "l"},
}

type ProductCategory struct {
	ID         uint   `gorm:"column:category_id;primaryKey" json:"category_id"`
	BusinessID uint   `gorm:"column:business_id;index;not null" json:"business_id"`
	Name       string `gorm:"type:varchar(100);not null" json:"name" validate:"required"`
}

func (ProductCategory) TableName() string { return "product_category_table" }

// Product belongs to one business. Recipe products consume ingredients on
// production; composite products bundle components; simple products are the
// only ones accepted on stock-in.
type Product struct {
	ID          uint        `gorm:"column:product_id;primaryKey" json:"product_id"`
	BusinessID  uint        `gorm:"column:business_id;index;not null" json:"business_id" validate:"required"`
	Name        string      `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Price       float64     `gorm:"default:0" json:"price"`
	UnitID      uint        `gorm:"column:unit_id" json:"unit_id"`
	CategoryID  *uint       `gorm:"column:category_id" json:"category_id,omitempty"`
	Picture     string      `gorm:"type:varchar(255)" json:"picture,omitempty"`
	ProductType ProductType `gorm:"column:product_type;type:varchar(20);default:'simple'" json:"product_type" validate:"required,oneof=simple recipe composite"`
	IsActive    bool        `gorm:"column:is_active;default:true" json:"is_active"`
	Timestamps
}

func (Product) TableName() string { return "product_table" }

// RecipeIngredient declares that making one unit of Product consumes
// ConsumptionAmount of the ingredient product.
type RecipeIngredient struct {
	ID                  uint    `gorm:"column:recipe_ingredient_id;primaryKey" json:"recipe_ingredient_id"`
	ProductID           uint    `gorm:"column:product_id;index;not null" json:"product_id"`
	IngredientProductID uint    `gorm:"column:ingredient_product_id;not null" json:"ingredient_product_id" validate:"required"`
	ConsumptionAmount   float64 `gorm:"column:consumption_amount;not null" json:"consumption_amount" validate:"required,gt=0"`
	IngredientUnitID    uint    `gorm:"column:ingredient_unit_id" json:"ingredient_unit_id"`
}

func (RecipeIngredient) TableName() string { return "recipe_ingredients_table" }

// ComboItem declares that one unit of the parent bundles Quantity of the component.
type ComboItem struct {
	ID                 uint    `gorm:"column:component_id;primaryKey" json:"component_id"`
	ParentProductID    uint    `gorm:"column:parent_product_id;index;not null" json:"parent_product_id"`
	ComponentProductID uint    `gorm:"column:component_product_id;not null" json:"component_product_id" validate:"required"`
	Quantity           float64 `gorm:"not null" json:"quantity" validate:"required,gt=0"`
}

func (ComboItem) TableName() string { return "combo_items_table" }
