package repository

import (
	"errors"

	"go-pos-backend/internal/model"

	"gorm.io/gorm"
)

type UserRepository interface {
	FindByUsername(username string) (*model.User, error)
	FindByID(id uint) (*model.User, error)
	Create(user *model.User) error
	Update(user *model.User) error
	Delete(id uint) error
	FindAll() ([]model.User, error)
	UpdatePassword(userID uint, hashedPassword string) error
	UpdateTokenVersion(userID uint, version string) error

	// System role link (one per user)
	GetSystemRoleName(userID uint) (string, error)
	AssignSystemRole(userID uint, roleName string) error

	// Profile details
	FindDetail(userID uint) (*model.UserDetail, error)
	UpsertDetail(detail *model.UserDetail) error
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db}
}

func (r *userRepo) FindByUsername(username string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindByID(id uint) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, "user_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *userRepo) Update(user *model.User) error {
	return r.db.Save(user).Error
}

func (r *userRepo) Delete(id uint) error {
	return r.db.Delete(&model.User{}, "user_id = ?", id).Error
}

func (r *userRepo) FindAll() ([]model.User, error) {
	var users []model.User
	if err := r.db.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepo) UpdatePassword(userID uint, hashedPassword string) error {
	return r.db.Model(&model.User{}).Where("user_id = ?", userID).Update("password", hashedPassword).Error
}

func (r *userRepo) UpdateTokenVersion(userID uint, version string) error {
	return r.db.Model(&model.User{}).Where("user_id = ?", userID).Update("token_version", version).Error
}

// GetSystemRoleName returns the user's system role, or "" when none assigned.
func (r *userRepo) GetSystemRoleName(userID uint) (string, error) {
	var roles []string
	err := r.db.Table("user_sys_role_table AS ur").
		Joins("JOIN system_role_table r ON r.system_role_id = ur.system_role_id").
		Where("ur.user_id = ?", userID).
		Limit(1).
		Pluck("r.role", &roles).Error
	if err != nil {
		return "", err
	}
	if len(roles) == 0 {
		return "", nil
	}
	return roles[0], nil
}

func (r *userRepo) AssignSystemRole(userID uint, roleName string) error {
	var role model.SystemRole
	if err := r.db.Where("role = ?", roleName).First(&role).Error; err != nil {
		return err
	}
	var link model.UserSystemRole
	err := r.db.Where("user_id = ?", userID).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(&model.UserSystemRole{UserID: userID, SystemRoleID: role.ID}).Error
	}
	if err != nil {
		return err
	}
	return r.db.Model(&link).Update("system_role_id", role.ID).Error
}

func (r *userRepo) FindDetail(userID uint) (*model.UserDetail, error) {
	var detail model.UserDetail
	if err := r.db.Where("user_id = ?", userID).First(&detail).Error; err != nil {
		return nil, err
	}
	return &detail, nil
}

func (r *userRepo) UpsertDetail(detail *model.UserDetail) error {
	var existing model.UserDetail
	err := r.db.Where("user_id = ?", detail.UserID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(detail).Error
	}
	if err != nil {
		return err
	}
	detail.ID = existing.ID
	return r.db.Save(detail).Error
}
