package handler

import (
	"go-pos-backend/internal/middleware"
	"go-pos-backend/internal/model"
	"go-pos-backend/internal/service"
	"go-pos-backend/pkg/apperr"
	"go-pos-backend/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new account with the default "user" system role
// POST /api/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req service.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.New(apperr.KindValidation, "invalid JSON body")
	}
	if errs := validator.ValidateStruct(req); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}

	user, err := h.authService.Register(req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// Login authenticates and issues a fresh session token
// POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req service.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.New(apperr.KindValidation, "invalid JSON body")
	}
	if errs := validator.ValidateStruct(req); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}

	resp, err := h.authService.Login(req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Logout rotates the token version so the current token stops validating
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.authService.Logout(middleware.UserID(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "logged out"})
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// ChangePassword verifies the current password before setting the new one
// POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.New(apperr.KindValidation, "invalid JSON body")
	}
	if errs := validator.ValidateStruct(req); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}

	if err := h.authService.ChangePassword(middleware.UserID(c), req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "password updated, please log in again"})
}

type resetPasswordRequest struct {
	Username    string `json:"username" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// ResetPassword sets a new password for any account, superadmin only
// POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.New(apperr.KindValidation, "invalid JSON body")
	}
	if errs := validator.ValidateStruct(req); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}

	if err := h.authService.ResetPassword(req.Username, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "password reset"})
}

// GetProfile returns the authenticated user's account
// GET /api/users/me
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	profile, err := h.authService.GetProfile(middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(profile)
}

// UpdateDetail completes or edits the profile record
// PUT /api/users/me/details
func (h *AuthHandler) UpdateDetail(c *fiber.Ctx) error {
	var detail model.UserDetail
	if err := c.BodyParser(&detail); err != nil {
		return apperr.New(apperr.KindValidation, "invalid JSON body")
	}
	if errs := validator.ValidateStruct(detail); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}

	if err := h.authService.UpdateDetail(middleware.UserID(c), &detail); err != nil {
		return err
	}
	return c.JSON(detail)
}
