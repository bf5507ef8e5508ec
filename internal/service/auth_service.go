package service

import (
	"errors"
	"unicode"

	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"
	"go-pos-backend/pkg/apperr"
	"go-pos-backend/pkg/jwt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Username string `json:"username" validate:"required,handle"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string             `json:"token"`
	User  model.UserResponse `json:"user"`
}

type AuthService interface {
	Register(req RegisterRequest) (*model.UserResponse, error)
	Login(req LoginRequest) (*LoginResponse, error)
	Logout(userID uint) error
	ChangePassword(userID uint, oldPassword, newPassword string) error
	ResetPassword(username, newPassword string) error
	GetProfile(userID uint) (*model.UserResponse, error)
	UpdateDetail(userID uint, detail *model.UserDetail) error
}

type authService struct {
	users repository.UserRepository
}

func NewAuthService(users repository.UserRepository) AuthService {
	return &authService{users}
}

// CheckPasswordPolicy enforces at least 8 characters with an upper, a lower, a
// digit and a special character.
func CheckPasswordPolicy(password string) error {
	if len(password) < 8 {
		return apperr.New(apperr.KindValidation, "password must be at least 8 characters")
	}
	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit || !hasSpecial {
		return apperr.New(apperr.KindValidation,
			"password must contain an uppercase letter, a lowercase letter, a digit and a special character")
	}
	return nil
}

func (s *authService) Register(req RegisterRequest) (*model.UserResponse, error) {
	if err := CheckPasswordPolicy(req.Password); err != nil {
		return nil, err
	}
	if _, err := s.users.FindByUsername(req.Username); err == nil {
		return nil, apperr.Conflict("username already taken")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user := model.User{
		Username: req.Username,
		Email:    req.Email,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, err
	}
	if err := s.users.Create(&user); err != nil {
		return nil, err
	}
	if err := s.users.AssignSystemRole(user.ID, model.SystemRoleUser); err != nil {
		return nil, err
	}
	resp := user.ToResponse(model.SystemRoleUser, false)
	return &resp, nil
}

// Login issues a fresh token version so any earlier session token stops
// validating.
func (s *authService) Login(req LoginRequest) (*LoginResponse, error) {
	user, err := s.users.FindByUsername(req.Username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if err != nil {
		return nil, err
	}
	if !user.CheckPassword(req.Password) {
		return nil, apperr.Unauthorized("invalid credentials")
	}

	version := uuid.NewString()
	if err := s.users.UpdateTokenVersion(user.ID, version); err != nil {
		return nil, err
	}

	role, err := s.users.GetSystemRoleName(user.ID)
	if err != nil {
		return nil, err
	}
	token, err := jwt.GenerateToken(user.ID, user.Username, role, version)
	if err != nil {
		return nil, err
	}

	detailsCompleted := false
	if _, err := s.users.FindDetail(user.ID); err == nil {
		detailsCompleted = true
	}
	return &LoginResponse{Token: token, User: user.ToResponse(role, detailsCompleted)}, nil
}

func (s *authService) Logout(userID uint) error {
	return s.users.UpdateTokenVersion(userID, uuid.NewString())
}

func (s *authService) ChangePassword(userID uint, oldPassword, newPassword string) error {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return err
	}
	if !user.CheckPassword(oldPassword) {
		return apperr.Unauthorized("current password is incorrect")
	}
	if err := CheckPasswordPolicy(newPassword); err != nil {
		return err
	}
	if err := user.SetPassword(newPassword); err != nil {
		return err
	}
	if err := s.users.UpdatePassword(userID, user.Password); err != nil {
		return err
	}
	// Force re-login everywhere.
	return s.users.UpdateTokenVersion(userID, uuid.NewString())
}

// ResetPassword is the operator escape hatch used by the reset-password tool.
func (s *authService) ResetPassword(username, newPassword string) error {
	user, err := s.users.FindByUsername(username)
	if err != nil {
		return err
	}
	if err := CheckPasswordPolicy(newPassword); err != nil {
		return err
	}
	if err := user.SetPassword(newPassword); err != nil {
		return err
	}
	if err := s.users.UpdatePassword(user.ID, user.Password); err != nil {
		return err
	}
	return s.users.UpdateTokenVersion(user.ID, uuid.NewString())
}

func (s *authService) GetProfile(userID uint) (*model.UserResponse, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return nil, err
	}
	role, err := s.users.GetSystemRoleName(userID)
	if err != nil {
		return nil, err
	}
	detailsCompleted := false
	if _, err := s.users.FindDetail(userID); err == nil {
		detailsCompleted = true
	}
	resp := user.ToResponse(role, detailsCompleted)
	return &resp, nil
}

func (s *authService) UpdateDetail(userID uint, detail *model.UserDetail) error {
	detail.UserID = userID
	return s.users.UpsertDetail(detail)
}
