package handler

import (
	"strconv"

	"go-pos-backend/internal/middleware"
	"go-pos-backend/internal/service"
	"go-pos-backend/pkg/apperr"
	"go-pos-backend/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

type BusinessHandler struct {
	businessService service.BusinessService
}

func NewBusinessHandler(businessService service.BusinessService) *BusinessHandler {
	return &BusinessHandler{businessService: businessService}
}

func paramUint(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, apperr.Validationf("invalid %s", name)
	}
	return uint(id), nil
}

// RegisterBusiness creates a business owned by the caller
// POST /api/businesses
func (h *BusinessHandler) RegisterBusiness(c *fiber.Ctx) error {
	var req service.RegisterBusinessRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.New(apperr.KindValidation, "invalid JSON body")
	}
	if errs := validator.ValidateStruct(req); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}

	business, err := h.businessService.RegisterBusiness(middleware.UserID(c), req, middleware.RequestEntry(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(business)
}

// ListMyBusinesses lists businesses the caller owns or works in
// GET /api/businesses
func (h *BusinessHandler) ListMyBusinesses(c *fiber.Ctx) error {
	businesses, err := h.businessService.ListMyBusinesses(middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"businesses": businesses})
}

// GetBusiness returns one business in the resolved scope
// GET /api/businesses/:businessId
func (h *BusinessHandler) GetBusiness(c *fiber.Ctx) error {
	business, err := h.businessService.GetBusiness(middleware.BusinessID(c))
	if err != nil {
		return err
	}
	return c.JSON(business)
}

type updateSettingsRequest struct {
	BusinessName string `json:"business_name" validate:"required"`
	LogoPath     string `json:"logo_path"`
}

// UpdateSettings edits the business name and logo
// PUT /api/businesses/:businessId/settings
func (h *BusinessHandler) UpdateSettings(c *fiber.Ctx) error {
	var req updateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.New(apperr.KindValidation, "invalid JSON body")
	}
	if errs := validator.ValidateStruct(req); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}

	business, err := h.businessService.UpdateSettings(middleware.BusinessID(c), req.BusinessName, req.LogoPath, middleware.RequestEntry(c))
	if err != nil {
		return err
	}
	return c.JSON(business)
}

// ListCategories lists the selectable business categories
// GET /api/business-categories
func (h *BusinessHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.businessService.ListCategories()
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"categories": categories})
}

// ListEmployees lists members with their profile and position
// GET /api/businesses/:businessId/employees
func (h *BusinessHandler) ListEmployees(c *fiber.Ctx) error {
	employees, err := h.businessService.ListEmployees(middleware.BusinessID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"employees": employees})
}

// AddEmployee adds an existing account to the business at a position
// POST /api/businesses/:businessId/employees
func (h *BusinessHandler) AddEmployee(c *fiber.Ctx) error {
	var req service.AddEmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.New(apperr.KindValidation, "invalid JSON body")
	}
	if errs := validator.ValidateStruct(req); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}
	req.BusinessID = middleware.BusinessID(c)

	if err := h.businessService.AddEmployee(req, middleware.RequestEntry(c)); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "employee added"})
}

type updatePositionRequest struct {
	BusPosID uint `json:"bus_pos_id" validate:"required"`
}

// UpdateEmployeePosition moves a member to another position
// PUT /api/businesses/:businessId/employees/:userId
func (h *BusinessHandler) UpdateEmployeePosition(c *fiber.Ctx) error {
	userID, err := paramUint(c, "userId")
	if err != nil {
		return err
	}
	var req updatePositionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.New(apperr.KindValidation, "invalid JSON body")
	}
	if errs := validator.ValidateStruct(req); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}

	if err := h.businessService.UpdateEmployeePosition(middleware.BusinessID(c), userID, req.BusPosID, middleware.RequestEntry(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "position updated"})
}

// RemoveEmployee removes a member; the owner cannot be removed
// DELETE /api/businesses/:businessId/employees/:userId
func (h *BusinessHandler) RemoveEmployee(c *fiber.Ctx) error {
	userID, err := paramUint(c, "userId")
	if err != nil {
		return err
	}
	if err := h.businessService.RemoveEmployee(middleware.BusinessID(c), userID, middleware.RequestEntry(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "employee removed"})
}
