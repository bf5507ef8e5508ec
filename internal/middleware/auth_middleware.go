package middleware

import (
	"strconv"
	"strings"

	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"
	"go-pos-backend/internal/service"
	"go-pos-backend/pkg/apperr"
	"go-pos-backend/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by the middleware chain.
const (
	LocalUserID     = "userID"
	LocalUsername   = "username"
	LocalSystemRole = "systemRole"
	LocalBusinessID = "businessID"
)

// RequireAuth validates the bearer token and rejects tokens from superseded
// sessions by comparing the token version against the stored one.
func RequireAuth(users repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return apperr.Unauthorized("missing authorization header")
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return apperr.Unauthorized("malformed authorization header")
		}

		claims, err := jwt.ValidateToken(parts[1])
		if err != nil {
			return apperr.Unauthorized("invalid or expired token")
		}

		user, err := users.FindByID(claims.UserID)
		if err != nil {
			return apperr.Unauthorized("account no longer exists")
		}
		if user.TokenVersion != claims.TokenVersion {
			return apperr.Unauthorized("session superseded by a newer login")
		}

		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalUsername, claims.Username)
		c.Locals(LocalSystemRole, claims.SystemRole)
		return c.Next()
	}
}

// UserID reads the authenticated user id from locals.
func UserID(c *fiber.Ctx) uint {
	if id, ok := c.Locals(LocalUserID).(uint); ok {
		return id
	}
	return 0
}

func SystemRole(c *fiber.Ctx) string {
	if role, ok := c.Locals(LocalSystemRole).(string); ok {
		return role
	}
	return ""
}

// BusinessID reads the resolved business scope from locals.
func BusinessID(c *fiber.Ctx) uint {
	if id, ok := c.Locals(LocalBusinessID).(uint); ok {
		return id
	}
	return 0
}

func businessIDFromRequest(c *fiber.Ctx) uint {
	// Header wins over the path param, the path param over the query.
	candidates := []string{
		c.Get("X-Business-ID"),
		c.Params("businessId"),
		c.Query("business_id"),
	}
	for _, raw := range candidates {
		if raw == "" {
			continue
		}
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil && id > 0 {
			return uint(id)
		}
	}
	return 0
}

// RequireBusinessAccess resolves the business scope and verifies the user is
// the owner or a member. Superadmin passes any business.
func RequireBusinessAccess(businesses repository.BusinessRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		businessID := businessIDFromRequest(c)
		if businessID == 0 {
			return apperr.Validationf("business scope is required")
		}

		if strings.EqualFold(SystemRole(c), model.SystemRoleSuperAdmin) {
			c.Locals(LocalBusinessID, businessID)
			return c.Next()
		}

		ok, err := businesses.UserHasAccess(UserID(c), businessID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Forbidden("no access to this business")
		}
		c.Locals(LocalBusinessID, businessID)
		return c.Next()
	}
}

// RequirePermission gates the route behind one permission key such as
// "inventory:update". Superadmin bypasses the check.
func RequirePermission(perms service.PermissionService, key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := SystemRole(c)
		if strings.EqualFold(role, model.SystemRoleSuperAdmin) {
			return c.Next()
		}
		ok, err := perms.HasPermission(role, UserID(c), BusinessID(c), key)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Forbidden("missing permission " + key)
		}
		return c.Next()
	}
}

// RequireAnyPermission passes when the user holds at least one of the keys.
func RequireAnyPermission(perms service.PermissionService, keys ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := SystemRole(c)
		if strings.EqualFold(role, model.SystemRoleSuperAdmin) {
			return c.Next()
		}
		ok, err := perms.HasAnyPermission(role, UserID(c), BusinessID(c), keys...)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Forbidden("insufficient permissions")
		}
		return c.Next()
	}
}

// RequireSystemRole restricts a route to the named global roles.
func RequireSystemRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		current := SystemRole(c)
		for _, role := range roles {
			if strings.EqualFold(current, role) {
				return c.Next()
			}
		}
		return apperr.Forbidden("insufficient system role")
	}
}
