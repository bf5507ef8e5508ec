package model

// SystemRole is a global role ("user", "admin", "superadmin"). Business-scoped
// roles are Positions, a separate concept.
type SystemRole struct {
	ID          uint   `gorm:"column:system_role_id;primaryKey" json:"system_role_id"`
	Role        string `gorm:"column:role;type:varchar(50);uniqueIndex;not null" json:"role"`
	Description string `gorm:"type:text" json:"description"`
}

func (SystemRole) TableName() string { return "system_role_table" }

// System role names as constants. Comparison is case-insensitive; superadmin
// bypasses every permission check unconditionally.
const (
	SystemRoleUser       = "user"
	SystemRoleAdmin      = "admin"
	SystemRoleSuperAdmin = "superadmin"
)

var DefaultSystemRoles = []SystemRole{
	{Role: SystemRoleUser, Description: "Regular account, permissions come from business positions"},
	{Role: SystemRoleAdmin, Description: "Platform administration"},
	{Role: SystemRoleSuperAdmin, Description: "Full access, bypasses all permission checks"},
}

// SystemPermission is a named capability attachable to a system role.
type SystemPermission struct {
	ID             uint   `gorm:"column:system_permission_id;primaryKey" json:"system_permission_id"`
	PermissionName string `gorm:"column:permission_name;type:varchar(100);uniqueIndex;not null" json:"permission_name"`
	Description    string `gorm:"type:text" json:"description"`
}

func (SystemPermission) TableName() string { return "system_permissions_table" }

var DefaultSystemPermissions = []SystemPermission{
	{PermissionName: "users:manage", Description: "Manage platform accounts"},
	{PermissionName: "business:manage", Description: "Manage any business"},
	{PermissionName: "rbac:manage", Description: "Manage features, actions and presets"},
	{PermissionName: "audit_logs:read", Description: "Read the unified audit log"},
	{PermissionName: "audit_logs:export", Description: "Export the unified audit log"},
}

// DefaultAdminPermissions are granted to the "admin" role on seed. Superadmin
// needs no grants, it short-circuits to the full set.
var DefaultAdminPermissions = []string{
	"users:manage",
	"audit_logs:read",
	"audit_logs:export",
}

// SystemRolePermission joins a system role to a system permission.
type SystemRolePermission struct {
	ID              uint `gorm:"column:system_role_permission_id;primaryKey" json:"system_role_permission_id"`
	SysRoleID       uint `gorm:"column:sys_role_id;index;not null" json:"sys_role_id"`
	SysPermissionID uint `gorm:"column:sys_permission_id;index;not null" json:"sys_permission_id"`
}

func (SystemRolePermission) TableName() string { return "system_role_permission_table" }
