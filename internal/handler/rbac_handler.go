package handler

import (
	"go-pos-backend/internal/middleware"
	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"
	"go-pos-backend/internal/service"
	"go-pos-backend/pkg/apperr"
	"go-pos-backend/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

type RBACHandler struct {
	permissions repository.PermissionRepository
	positions   repository.PositionRepository
	users       repository.UserRepository
	permService service.PermissionService
}

func NewRBACHandler(permissions repository.PermissionRepository, positions repository.PositionRepository, users repository.UserRepository, permService service.PermissionService) *RBACHandler {
	return &RBACHandler{permissions: permissions, positions: positions, users: users, permService: permService}
}

// GetMyPermissions resolves the caller's effective permission keys
// GET /api/permissions/me
func (h *RBACHandler) GetMyPermissions(c *fiber.Ctx) error {
	keys, err := h.permService.GetEffectivePermissions(
		middleware.SystemRole(c), middleware.UserID(c), middleware.BusinessID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"permissions": keys})
}

// ListFeatureActions lists the whole permission vocabulary
// GET /api/rbac/feature-actions
func (h *RBACHandler) ListFeatureActions(c *fiber.Ctx) error {
	pairs, err := h.permissions.ListFeatureActions()
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"feature_actions": pairs})
}

// ListSystemRoles lists the system roles with their permission keys
// GET /api/rbac/system-roles
func (h *RBACHandler) ListSystemRoles(c *fiber.Ctx) error {
	out := make([]fiber.Map, 0, len(model.DefaultSystemRoles))
	for _, role := range model.DefaultSystemRoles {
		keys, err := h.permissions.GetSystemPermissionsByRole(role.Role)
		if err != nil {
			return err
		}
		out = append(out, fiber.Map{"role": role.Role, "permissions": keys})
	}
	return c.JSON(fiber.Map{"system_roles": out})
}

type assignSystemRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// AssignSystemRole changes a user's system role
// PUT /api/users/:userId/system-role
func (h *RBACHandler) AssignSystemRole(c *fiber.Ctx) error {
	userID, err := paramUint(c, "userId")
	if err != nil {
		return err
	}
	var req assignSystemRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.New(apperr.KindValidation, "invalid JSON body")
	}
	if errs := validator.ValidateStruct(req); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}

	if err := h.users.AssignSystemRole(userID, req.Role); err != nil {
		return err
	}
	h.permService.InvalidateUser(userID)
	return c.JSON(fiber.Map{"message": "system role updated"})
}

// ListPositions lists the position presets
// GET /api/positions
func (h *RBACHandler) ListPositions(c *fiber.Ctx) error {
	positions, err := h.positions.FindAll()
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"positions": positions})
}

// CreatePosition adds a preset
// POST /api/positions
func (h *RBACHandler) CreatePosition(c *fiber.Ctx) error {
	var position model.Position
	if err := c.BodyParser(&position); err != nil {
		return apperr.New(apperr.KindValidation, "invalid JSON body")
	}
	if errs := validator.ValidateStruct(position); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}
	if err := h.positions.Create(&position); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(position)
}

type renamePositionRequest struct {
	PositionName string `json:"position_name" validate:"required"`
}

// RenamePosition renames a preset
// PUT /api/positions/:positionId
func (h *RBACHandler) RenamePosition(c *fiber.Ctx) error {
	positionID, err := paramUint(c, "positionId")
	if err != nil {
		return err
	}
	var req renamePositionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.New(apperr.KindValidation, "invalid JSON body")
	}
	if errs := validator.ValidateStruct(req); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}
	if err := h.positions.Rename(positionID, req.PositionName); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "position renamed"})
}

// DeletePosition removes an unused preset
// DELETE /api/positions/:positionId
func (h *RBACHandler) DeletePosition(c *fiber.Ctx) error {
	positionID, err := paramUint(c, "positionId")
	if err != nil {
		return err
	}
	if err := h.positions.Delete(positionID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "position deleted"})
}

// GetPositionMatrix returns every feature-action with its assignment flag
// GET /api/positions/:positionId/matrix
func (h *RBACHandler) GetPositionMatrix(c *fiber.Ctx) error {
	positionID, err := paramUint(c, "positionId")
	if err != nil {
		return err
	}
	matrix, err := h.permissions.GetPositionMatrix(positionID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"matrix": matrix})
}

type syncPermissionsRequest struct {
	FeatureActionIDs []uint `json:"feature_action_ids"`
}

// SyncPositionPermissions replaces the preset's grant set
// PUT /api/positions/:positionId/permissions
func (h *RBACHandler) SyncPositionPermissions(c *fiber.Ctx) error {
	positionID, err := paramUint(c, "positionId")
	if err != nil {
		return err
	}
	var req syncPermissionsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.New(apperr.KindValidation, "invalid JSON body")
	}
	added, removed, err := h.permissions.SyncPositionPermissions(positionID, req.FeatureActionIDs)
	if err != nil {
		return err
	}
	// Presets are global, so every cached scope is stale now.
	h.permService.InvalidateAll()
	return c.JSON(fiber.Map{"added": added, "removed": removed})
}

type overrideRequest struct {
	FeatureActionID uint               `json:"feature_action_id" validate:"required"`
	OverrideType    model.OverrideType `json:"override_type" validate:"required,oneof=ADD REMOVE"`
}

// SetOverride adds or replaces a per-business override on a position
// PUT /api/businesses/:businessId/positions/:positionId/overrides
func (h *RBACHandler) SetOverride(c *fiber.Ctx) error {
	positionID, err := paramUint(c, "positionId")
	if err != nil {
		return err
	}
	var req overrideRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.New(apperr.KindValidation, "invalid JSON body")
	}
	if errs := validator.ValidateStruct(req); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}

	override := model.BusinessPermissionOverride{
		BusinessID:      middleware.BusinessID(c),
		BusPosID:        positionID,
		FeatureActionID: req.FeatureActionID,
		OverrideType:    req.OverrideType,
	}
	if err := h.positions.SetOverride(&override); err != nil {
		return err
	}
	h.permService.InvalidateBusiness(override.BusinessID)
	return c.JSON(override)
}

// ListOverrides lists a position's overrides in this business
// GET /api/businesses/:businessId/positions/:positionId/overrides
func (h *RBACHandler) ListOverrides(c *fiber.Ctx) error {
	positionID, err := paramUint(c, "positionId")
	if err != nil {
		return err
	}
	overrides, err := h.positions.ListOverrides(middleware.BusinessID(c), positionID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"overrides": overrides})
}

// RemoveOverride deletes one override
// DELETE /api/businesses/:businessId/positions/:positionId/overrides/:featureActionId
func (h *RBACHandler) RemoveOverride(c *fiber.Ctx) error {
	positionID, err := paramUint(c, "positionId")
	if err != nil {
		return err
	}
	featureActionID, err := paramUint(c, "featureActionId")
	if err != nil {
		return err
	}
	businessID := middleware.BusinessID(c)
	if err := h.positions.RemoveOverride(businessID, positionID, featureActionID); err != nil {
		return err
	}
	h.permService.InvalidateBusiness(businessID)
	return c.JSON(fiber.Map{"message": "override removed"})
}

// ResetOverrides restores a position to its preset in this business
// DELETE /api/businesses/:businessId/positions/:positionId/overrides
func (h *RBACHandler) ResetOverrides(c *fiber.Ctx) error {
	positionID, err := paramUint(c, "positionId")
	if err != nil {
		return err
	}
	businessID := middleware.BusinessID(c)
	if err := h.positions.ResetOverrides(businessID, positionID); err != nil {
		return err
	}
	h.permService.InvalidateBusiness(businessID)
	return c.JSON(fiber.Map{"message": "overrides reset"})
}

// CacheStats reports permission cache counters
// GET /api/rbac/cache-stats
func (h *RBACHandler) CacheStats(c *fiber.Ctx) error {
	return c.JSON(h.permService.Stats())
}
