package model

// Position is a named role template. Positions are global presets; a business
// uses them through membership rows and can tailor them with overrides.
type Position struct {
	ID           uint   `gorm:"column:business_pos_id;primaryKey" json:"business_pos_id"`
	PositionName string `gorm:"column:position_name;type:varchar(100);uniqueIndex;not null" json:"position_name" validate:"required"`
}

func (Position) TableName() string { return "business_position_table" }

// OwnerPositionID is the seeded "Owner" preset; business registration assigns it.
const OwnerPositionID uint = 1

var DefaultPositions = []Position{
	{PositionName: "Owner"},
	{PositionName: "Manager"},
	{PositionName: "Cashier"},
	{PositionName: "Kitchen"},
}

// Feature and Action form the permission vocabulary; a capability is the pair.
type Feature struct {
	ID          uint   `gorm:"column:feature_id;primaryKey" json:"feature_id"`
	FeatureName string `gorm:"column:feature_name;type:varchar(100);uniqueIndex;not null" json:"feature_name"`
	Description string `gorm:"type:text" json:"description"`
	ModuleID    int    `gorm:"column:module_id" json:"module_id"`
}

func (Feature) TableName() string { return "features_table" }

type Action struct {
	ID          uint   `gorm:"column:action_id;primaryKey" json:"action_id"`
	ActionName  string `gorm:"column:action_name;type:varchar(50);uniqueIndex;not null" json:"action_name"`
	Description string `gorm:"type:text" json:"description"`
}

func (Action) TableName() string { return "action_table" }

var DefaultActions = []Action{
	{ActionName: "create"},
	{ActionName: "read"},
	{ActionName: "update"},
	{ActionName: "delete"},
	{ActionName: "cancel"},
	{ActionName: "archive"},
	{ActionName: "export"},
}

var DefaultFeatures = []Feature{
	{FeatureName: "product", ModuleID: ModuleMenuProducts},
	{FeatureName: "category", ModuleID: ModuleMenuProducts},
	{FeatureName: "recipe", ModuleID: ModuleMenuProducts},
	{FeatureName: "combo", ModuleID: ModuleMenuProducts},
	{FeatureName: "inventory", ModuleID: ModuleInventory},
	{FeatureName: "stockin", ModuleID: ModuleInventory},
	{FeatureName: "production", ModuleID: ModuleInventory},
	{FeatureName: "order", ModuleID: ModuleSales},
	{FeatureName: "dashboard", ModuleID: ModuleSales},
	{FeatureName: "business_settings", ModuleID: ModuleBusiness},
	{FeatureName: "employee", ModuleID: ModuleBusiness},
	{FeatureName: "position", ModuleID: ModuleBusiness},
	{FeatureName: "business_logs", ModuleID: ModuleBusiness},
}

// FeatureAction is the atomic permission unit, keyed "feature:action".
type FeatureAction struct {
	ID       uint `gorm:"column:feature_action_id;primaryKey" json:"feature_action_id"`
	FeatureID uint `gorm:"column:feature_id;index;not null" json:"feature_id"`
	ActionID  uint `gorm:"column:action_id;index;not null" json:"action_id"`

	Feature *Feature `gorm:"foreignKey:FeatureID" json:"feature,omitempty"`
	Action  *Action  `gorm:"foreignKey:ActionID" json:"action,omitempty"`
}

func (FeatureAction) TableName() string { return "feature_action_table" }

// PermissionKey builds the canonical, case-sensitive permission key.
func PermissionKey(feature, action string) string { return feature + ":" + action }

// BusinessPermission grants a feature-action to a position preset.
type BusinessPermission struct {
	ID              uint `gorm:"column:bus_permission_id;primaryKey" json:"bus_permission_id"`
	BusPosID        uint `gorm:"column:bus_pos_id;index;not null" json:"bus_pos_id"`
	FeatureActionID uint `gorm:"column:feature_action_id;index;not null" json:"feature_action_id"`
}

func (BusinessPermission) TableName() string { return "business_permission_table" }

type OverrideType string

const (
	OverrideAdd    OverrideType = "ADD"
	OverrideRemove OverrideType = "REMOVE"
)

// BusinessPermissionOverride tailors a position preset inside one business:
// effective = (preset - REMOVEs) + ADDs.
type BusinessPermissionOverride struct {
	ID              uint         `gorm:"column:override_id;primaryKey" json:"override_id"`
	BusinessID      uint         `gorm:"column:business_id;index;not null" json:"business_id"`
	BusPosID        uint         `gorm:"column:bus_pos_id;index;not null" json:"bus_pos_id"`
	FeatureActionID uint         `gorm:"column:feature_action_id;not null" json:"feature_action_id"`
	OverrideType    OverrideType `gorm:"column:override_type;type:varchar(10);not null" json:"override_type" validate:"required,oneof=ADD REMOVE"`
}

func (BusinessPermissionOverride) TableName() string { return "business_permission_override_table" }
