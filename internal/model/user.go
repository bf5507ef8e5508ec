package model

import (
	"golang.org/x/crypto/bcrypt"
)

// User is a platform account. A user holds exactly one system role (via
// UserSystemRole) and any number of business memberships.
type User struct {
	ID           uint   `gorm:"column:user_id;primaryKey" json:"user_id"`
	Username     string `gorm:"type:varchar(100);uniqueIndex;not null" json:"username" validate:"required,handle"`
	Email        string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" validate:"required,email"`
	Password     string `gorm:"type:varchar(255);not null" json:"-"`
	TokenVersion string `gorm:"type:varchar(64);default:''" json:"-"` // single session enforcement
	Timestamps
}

func (User) TableName() string { return "user_table" }

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// UserDetail is the optional profile completion record.
type UserDetail struct {
	ID        uint   `gorm:"column:user_details_id;primaryKey" json:"user_details_id"`
	UserID    uint   `gorm:"column:user_id;uniqueIndex;not null" json:"user_id"`
	FirstName string `gorm:"type:varchar(100)" json:"first_name" validate:"required"`
	LastName  string `gorm:"type:varchar(100)" json:"last_name" validate:"required"`
	ContactNo string `gorm:"type:varchar(30)" json:"contact_no"`
	Timestamps
}

func (UserDetail) TableName() string { return "user_details_table" }

// UserSystemRole links a user to a single system role.
type UserSystemRole struct {
	ID           uint `gorm:"column:user_sys_role_id;primaryKey" json:"user_sys_role_id"`
	UserID       uint `gorm:"column:user_id;uniqueIndex;not null" json:"user_id"`
	SystemRoleID uint `gorm:"column:system_role_id;not null" json:"system_role_id"`
}

func (UserSystemRole) TableName() string { return "user_sys_role_table" }

// UserResponse is used for API responses (without sensitive data)
type UserResponse struct {
	ID                   uint   `json:"user_id"`
	Username             string `json:"username"`
	Email                string `json:"email"`
	SystemRole           string `json:"system_role,omitempty"`
	UserDetailsCompleted bool   `json:"user_details_completed"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse(systemRole string, detailsCompleted bool) UserResponse {
	return UserResponse{
		ID:                   u.ID,
		Username:             u.Username,
		Email:                u.Email,
		SystemRole:           systemRole,
		UserDetailsCompleted: detailsCompleted,
	}
}
