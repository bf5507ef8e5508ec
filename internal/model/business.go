package model

import "time"

type BusinessCategory struct {
	ID   uint   `gorm:"column:business_cat_id;primaryKey" json:"business_cat_id"`
	Name string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
}

func (BusinessCategory) TableName() string { return "business_category_table" }

var DefaultBusinessCategories = []BusinessCategory{
	{Name: "Cafe"},
	{Name: "Restaurant"},
	{Name: "Bakery"},
	{Name: "Grocery"},
	{Name: "Retail"},
}

// Business is the tenant unit. BusinessCode prefixes receipt numbers;
// LastReceiptNo is a denormalized per-day counter snapshot.
type Business struct {
	ID            uint   `gorm:"column:business_id;primaryKey" json:"business_id"`
	BusinessName  string `gorm:"column:business_name;type:varchar(255);not null" json:"business_name" validate:"required"`
	BusinessCatID uint   `gorm:"column:business_cat_id;index;not null" json:"business_cat_id" validate:"required"`
	OwnerID       uint   `gorm:"column:owner_id;index;not null" json:"owner_id"`
	BusinessCode  string `gorm:"column:business_code;type:varchar(10)" json:"business_code"`
	LogoPath      string `gorm:"column:logo_path;type:varchar(255)" json:"logo_path,omitempty"`
	LastReceiptNo int    `gorm:"column:last_receipt_no;default:0" json:"last_receipt_no"`
	Timestamps

	Category *BusinessCategory `gorm:"foreignKey:BusinessCatID" json:"category,omitempty"`
}

func (Business) TableName() string { return "business_table" }

// BusinessUserPosition is a membership row: user X holds position Y in business Z.
// The business owner gets one at OwnerPositionID on registration.
type BusinessUserPosition struct {
	ID         uint      `gorm:"column:bus_user_pos_id;primaryKey" json:"bus_user_pos_id"`
	UserID     uint      `gorm:"column:user_id;index:idx_bup_user_business;not null" json:"user_id"`
	BusinessID uint      `gorm:"column:business_id;index:idx_bup_user_business;not null" json:"business_id"`
	BusPosID   uint      `gorm:"column:bus_pos_id;not null" json:"bus_pos_id"`
	DateJoined time.Time `gorm:"column:date_joined;autoCreateTime" json:"date_joined"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (BusinessUserPosition) TableName() string { return "business_user_position_table" }
