package repository

import (
	"errors"

	"go-pos-backend/internal/model"

	"gorm.io/gorm"
)

type PositionRepository interface {
	FindAll() ([]model.Position, error)
	FindByID(id uint) (*model.Position, error)
	FindByBusiness(businessID uint) ([]model.Position, error)
	Create(position *model.Position) error
	Rename(id uint, name string) error
	Delete(id uint) error

	ListPositionPermissions(positionID uint) ([]FeatureActionKey, error)

	// Per-business overrides on a position preset
	SetOverride(override *model.BusinessPermissionOverride) error
	RemoveOverride(businessID, positionID, featureActionID uint) error
	ResetOverrides(businessID, positionID uint) error
	ListOverrides(businessID, positionID uint) ([]model.BusinessPermissionOverride, error)

	SeedDefaults() error
}

type positionRepo struct {
	db *gorm.DB
}

func NewPositionRepo(db *gorm.DB) PositionRepository {
	return &positionRepo{db}
}

func (r *positionRepo) FindAll() ([]model.Position, error) {
	var positions []model.Position
	err := r.db.Order("position_name ASC").Find(&positions).Error
	return positions, err
}

func (r *positionRepo) FindByID(id uint) (*model.Position, error) {
	var position model.Position
	if err := r.db.First(&position, "business_pos_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &position, nil
}

// FindByBusiness returns the position presets actually in use in a business.
func (r *positionRepo) FindByBusiness(businessID uint) ([]model.Position, error) {
	var positions []model.Position
	err := r.db.
		Distinct("business_position_table.*").
		Joins("JOIN business_user_position_table bup ON bup.bus_pos_id = business_position_table.business_pos_id").
		Where("bup.business_id = ?", businessID).
		Order("business_position_table.position_name ASC").
		Find(&positions).Error
	return positions, err
}

func (r *positionRepo) Create(position *model.Position) error {
	return r.db.Create(position).Error
}

func (r *positionRepo) Rename(id uint, name string) error {
	res := r.db.Model(&model.Position{}).Where("business_pos_id = ?", id).Update("position_name", name)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete refuses to remove a position that is still assigned to members.
func (r *positionRepo) Delete(id uint) error {
	var inUse int64
	if err := r.db.Model(&model.BusinessUserPosition{}).Where("bus_pos_id = ?", id).Count(&inUse).Error; err != nil {
		return err
	}
	if inUse > 0 {
		return gorm.ErrForeignKeyViolated
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bus_pos_id = ?", id).Delete(&model.BusinessPermission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("bus_pos_id = ?", id).Delete(&model.BusinessPermissionOverride{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Position{}, "business_pos_id = ?", id).Error
	})
}

func (r *positionRepo) ListPositionPermissions(positionID uint) ([]FeatureActionKey, error) {
	var rows []permRow
	err := r.db.Table("business_permission_table AS bp").
		Select("bp.feature_action_id, f.feature_name, a.action_name").
		Joins("JOIN feature_action_table fa ON fa.feature_action_id = bp.feature_action_id").
		Joins("JOIN features_table f ON f.feature_id = fa.feature_id").
		Joins("JOIN action_table a ON a.action_id = fa.action_id").
		Where("bp.bus_pos_id = ?", positionID).
		Order("f.feature_name, a.action_name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]FeatureActionKey, 0, len(rows))
	for _, row := range rows {
		out = append(out, FeatureActionKey{
			FeatureActionID: row.FeatureActionID,
			FeatureName:     row.FeatureName,
			ActionName:      row.ActionName,
			Key:             model.PermissionKey(row.FeatureName, row.ActionName),
		})
	}
	return out, nil
}

// SetOverride upserts on (business, position, feature-action); the latest
// override type wins.
func (r *positionRepo) SetOverride(override *model.BusinessPermissionOverride) error {
	var existing model.BusinessPermissionOverride
	err := r.db.Where("business_id = ? AND bus_pos_id = ? AND feature_action_id = ?",
		override.BusinessID, override.BusPosID, override.FeatureActionID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(override).Error
	}
	if err != nil {
		return err
	}
	override.ID = existing.ID
	return r.db.Model(&existing).Update("override_type", override.OverrideType).Error
}

func (r *positionRepo) RemoveOverride(businessID, positionID, featureActionID uint) error {
	return r.db.Where("business_id = ? AND bus_pos_id = ? AND feature_action_id = ?",
		businessID, positionID, featureActionID).
		Delete(&model.BusinessPermissionOverride{}).Error
}

func (r *positionRepo) ResetOverrides(businessID, positionID uint) error {
	return r.db.Where("business_id = ? AND bus_pos_id = ?", businessID, positionID).
		Delete(&model.BusinessPermissionOverride{}).Error
}

func (r *positionRepo) ListOverrides(businessID, positionID uint) ([]model.BusinessPermissionOverride, error) {
	var overrides []model.BusinessPermissionOverride
	err := r.db.Where("business_id = ? AND bus_pos_id = ?", businessID, positionID).Find(&overrides).Error
	return overrides, err
}

func (r *positionRepo) SeedDefaults() error {
	for _, p := range model.DefaultPositions {
		var existing model.Position
		if err := r.db.Where("position_name = ?", p.PositionName).First(&existing).Error; errors.Is(err, gorm.ErrRecordNotFound) {
			if err := r.db.Create(&p).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
