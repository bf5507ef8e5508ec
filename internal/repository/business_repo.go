package repository

import (
	"errors"

	"go-pos-backend/internal/model"

	"gorm.io/gorm"
)

// EmployeeRow is one member of a business with profile and position joined in.
type EmployeeRow struct {
	UserID       uint   `json:"user_id"`
	BusinessID   uint   `json:"business_id"`
	BusPosID     uint   `json:"bus_pos_id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	ContactNo    string `json:"contact_no"`
	PositionName string `json:"position_name"`
}

type BusinessRepository interface {
	Create(tx *gorm.DB, business *model.Business) error
	FindByID(id uint) (*model.Business, error)
	FindByOwner(ownerID uint) ([]model.Business, error)
	FindByUser(userID uint) ([]model.Business, error)
	UserHasAccess(userID, businessID uint) (bool, error)
	UpdateSettings(businessID uint, name, logoPath string) error

	ListCategories() ([]model.BusinessCategory, error)

	// Membership
	AddMember(tx *gorm.DB, member *model.BusinessUserPosition) error
	ListEmployees(businessID uint) ([]EmployeeRow, error)
	UpdateMemberPosition(userID, businessID, positionID uint) error
	RemoveMember(userID, businessID uint) error

	SeedDefaults() error
}

type businessRepo struct {
	db *gorm.DB
}

func NewBusinessRepo(db *gorm.DB) BusinessRepository {
	return &businessRepo{db}
}

func (r *businessRepo) Create(tx *gorm.DB, business *model.Business) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(business).Error
}

func (r *businessRepo) FindByID(id uint) (*model.Business, error) {
	var business model.Business
	if err := r.db.Preload("Category").First(&business, "business_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

func (r *businessRepo) FindByOwner(ownerID uint) ([]model.Business, error) {
	var businesses []model.Business
	err := r.db.Where("owner_id = ?", ownerID).Find(&businesses).Error
	return businesses, err
}

// FindByUser returns businesses the user owns or is employed in.
func (r *businessRepo) FindByUser(userID uint) ([]model.Business, error) {
	var businesses []model.Business
	err := r.db.
		Distinct("business_table.*").
		Joins("LEFT JOIN business_user_position_table bup ON bup.business_id = business_table.business_id").
		Where("business_table.owner_id = ? OR bup.user_id = ?", userID, userID).
		Find(&businesses).Error
	return businesses, err
}

func (r *businessRepo) UserHasAccess(userID, businessID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.Business{}).
		Where("business_id = ? AND owner_id = ?", businessID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}
	err = r.db.Model(&model.BusinessUserPosition{}).
		Where("business_id = ? AND user_id = ?", businessID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *businessRepo) UpdateSettings(businessID uint, name, logoPath string) error {
	updates := map[string]interface{}{}
	if name != "" {
		updates["business_name"] = name
	}
	if logoPath != "" {
		updates["logo_path"] = logoPath
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&model.Business{}).Where("business_id = ?", businessID).Updates(updates).Error
}

func (r *businessRepo) ListCategories() ([]model.BusinessCategory, error) {
	var categories []model.BusinessCategory
	err := r.db.Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *businessRepo) AddMember(tx *gorm.DB, member *model.BusinessUserPosition) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(member).Error
}

func (r *businessRepo) ListEmployees(businessID uint) ([]EmployeeRow, error) {
	var rows []EmployeeRow
	err := r.db.Table("business_user_position_table AS bup").
		Select("bup.user_id, bup.business_id, bup.bus_pos_id, u.username, "+
			"ud.first_name, ud.last_name, ud.contact_no, bp.position_name").
		Joins("LEFT JOIN user_table u ON bup.user_id = u.user_id").
		Joins("LEFT JOIN user_details_table ud ON u.user_id = ud.user_id").
		Joins("LEFT JOIN business_position_table bp ON bp.business_pos_id = bup.bus_pos_id").
		Where("bup.business_id = ?", businessID).
		Scan(&rows).Error
	return rows, err
}

func (r *businessRepo) UpdateMemberPosition(userID, businessID, positionID uint) error {
	res := r.db.Model(&model.BusinessUserPosition{}).
		Where("user_id = ? AND business_id = ?", userID, businessID).
		Update("bus_pos_id", positionID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *businessRepo) RemoveMember(userID, businessID uint) error {
	return r.db.Where("user_id = ? AND business_id = ?", userID, businessID).
		Delete(&model.BusinessUserPosition{}).Error
}

func (r *businessRepo) SeedDefaults() error {
	for _, c := range model.DefaultBusinessCategories {
		var existing model.BusinessCategory
		if err := r.db.Where("name = ?", c.Name).First(&existing).Error; errors.Is(err, gorm.ErrRecordNotFound) {
			if err := r.db.Create(&c).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
