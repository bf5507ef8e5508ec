package repository

import (
	"errors"
	"strings"

	"go-pos-backend/internal/model"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// FeatureActionKey is a feature-action pair with its canonical "feature:action" key.
type FeatureActionKey struct {
	FeatureActionID uint   `json:"feature_action_id"`
	FeatureName     string `json:"feature_name"`
	ActionName      string `json:"action_name"`
	Key             string `json:"key"`
}

// MatrixRow is one cell group of a position's permission matrix.
type MatrixRow struct {
	FeatureActionID uint   `json:"feature_action_id"`
	FeatureName     string `json:"feature_name"`
	ActionName      string `json:"action_name"`
	ModuleID        int    `json:"module_id"`
	IsAssigned      bool   `json:"is_assigned"`
}

type PermissionRepository interface {
	// Resolution
	GetSystemPermissionsByRole(roleName string) ([]string, error)
	GetAllSystemPermissions() ([]string, error)
	GetBusinessPermissionsByUser(userID, businessID uint) ([]string, error)
	GetEffectivePermissions(roleName string, userID, businessID uint) ([]string, error)

	// Admin tooling
	ListFeatureActions() ([]FeatureActionKey, error)
	GetPositionMatrix(positionID uint) ([]MatrixRow, error)
	BulkAssignPositionPermissions(positionID uint, featureActionIDs []uint) (int, error)
	BulkRemovePositionPermissions(positionID uint, featureActionIDs []uint) (int, error)
	SyncPositionPermissions(positionID uint, featureActionIDs []uint) (added, removed int, err error)

	SeedDefaults() error
}

type permissionRepo struct {
	db *gorm.DB
}

func NewPermissionRepo(db *gorm.DB) PermissionRepository {
	return &permissionRepo{db}
}

// GetSystemPermissionsByRole returns the permission names attached to a system
// role. An unknown role name yields an empty set, not an error.
func (r *permissionRepo) GetSystemPermissionsByRole(roleName string) ([]string, error) {
	var perms []string
	err := r.db.Table("system_permissions_table AS p").
		Joins("JOIN system_role_permission_table rp ON rp.sys_permission_id = p.system_permission_id").
		Joins("JOIN system_role_table r ON r.system_role_id = rp.sys_role_id").
		Where("r.role = ?", roleName).
		Pluck("p.permission_name", &perms).Error
	if err != nil {
		return nil, err
	}
	return perms, nil
}

func (r *permissionRepo) GetAllSystemPermissions() ([]string, error) {
	var perms []string
	err := r.db.Model(&model.SystemPermission{}).Pluck("permission_name", &perms).Error
	if err != nil {
		return nil, err
	}
	return perms, nil
}

type permRow struct {
	FeatureActionID uint
	FeatureName     string
	ActionName      string
}

type overrideRow struct {
	FeatureActionID uint
	OverrideType    string
	FeatureName     string
	ActionName      string
}

// GetBusinessPermissionsByUser computes the business-scoped permission keys for
// a user's position in one business: (position preset - REMOVE overrides) + ADD
// overrides.
func (r *permissionRepo) GetBusinessPermissionsByUser(userID, businessID uint) ([]string, error) {
	var preset []permRow
	err := r.db.Table("business_user_position_table AS up").
		Select("DISTINCT fa.feature_action_id, f.feature_name, a.action_name").
		Joins("JOIN business_permission_table bp ON bp.bus_pos_id = up.bus_pos_id").
		Joins("JOIN feature_action_table fa ON fa.feature_action_id = bp.feature_action_id").
		Joins("JOIN features_table f ON f.feature_id = fa.feature_id").
		Joins("JOIN action_table a ON a.action_id = fa.action_id").
		Where("up.user_id = ? AND up.business_id = ?", userID, businessID).
		Scan(&preset).Error
	if err != nil {
		return nil, err
	}

	var membership model.BusinessUserPosition
	err = r.db.Where("user_id = ? AND business_id = ?", userID, businessID).First(&membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// No position in this business, overrides cannot apply.
		keys := make([]string, 0, len(preset))
		for _, p := range preset {
			keys = append(keys, model.PermissionKey(p.FeatureName, p.ActionName))
		}
		return keys, nil
	}
	if err != nil {
		return nil, err
	}

	var overrides []overrideRow
	err = r.db.Table("business_permission_override_table AS o").
		Select("o.feature_action_id, o.override_type, f.feature_name, a.action_name").
		Joins("JOIN feature_action_table fa ON fa.feature_action_id = o.feature_action_id").
		Joins("JOIN features_table f ON f.feature_id = fa.feature_id").
		Joins("JOIN action_table a ON a.action_id = fa.action_id").
		Where("o.business_id = ? AND o.bus_pos_id = ?", businessID, membership.BusPosID).
		Scan(&overrides).Error
	if err != nil {
		return nil, err
	}

	removed := make(map[uint]struct{})
	for _, o := range overrides {
		if model.OverrideType(o.OverrideType) == model.OverrideRemove {
			removed[o.FeatureActionID] = struct{}{}
		}
	}

	seen := make(map[string]struct{})
	keys := make([]string, 0, len(preset))
	for _, p := range preset {
		if _, gone := removed[p.FeatureActionID]; gone {
			continue
		}
		key := model.PermissionKey(p.FeatureName, p.ActionName)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	for _, o := range overrides {
		if model.OverrideType(o.OverrideType) != model.OverrideAdd {
			continue
		}
		key := model.PermissionKey(o.FeatureName, o.ActionName)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys, nil
}

// GetEffectivePermissions is the union of system-role permissions and
// business-position permissions. Superadmin short-circuits to the full system
// set. The two sets are fetched concurrently.
func (r *permissionRepo) GetEffectivePermissions(roleName string, userID, businessID uint) ([]string, error) {
	if strings.EqualFold(roleName, model.SystemRoleSuperAdmin) {
		return r.GetAllSystemPermissions()
	}

	var sysPerms, bizPerms []string
	var g errgroup.Group
	g.Go(func() error {
		p, err := r.GetSystemPermissionsByRole(roleName)
		sysPerms = p
		return err
	})
	if businessID != 0 {
		g.Go(func() error {
			p, err := r.GetBusinessPermissionsByUser(userID, businessID)
			bizPerms = p
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(sysPerms)+len(bizPerms))
	union := make([]string, 0, len(sysPerms)+len(bizPerms))
	for _, key := range append(sysPerms, bizPerms...) {
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		union = append(union, key)
	}
	return union, nil
}

func (r *permissionRepo) ListFeatureActions() ([]FeatureActionKey, error) {
	var rows []permRow
	err := r.db.Table("feature_action_table AS fa").
		Select("fa.feature_action_id, f.feature_name, a.action_name").
		Joins("JOIN features_table f ON f.feature_id = fa.feature_id").
		Joins("JOIN action_table a ON a.action_id = fa.action_id").
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

func (r *permissionRepo) GetPositionMatrix(positionID uint) ([]MatrixRow, error) {
	var rows []MatrixRow
	err := r.db.Table("feature_action_table AS fa").
		Select("fa.feature_action_id, f.feature_name, a.action_name, f.module_id, "+
			"CASE WHEN bp.bus_permission_id IS NOT NULL THEN 1 ELSE 0 END AS is_assigned").
		Joins("JOIN features_table f ON f.feature_id = fa.feature_id").
		Joins("JOIN action_table a ON a.action_id = fa.action_id").
		Joins("LEFT JOIN business_permission_table bp ON bp.feature_action_id = fa.feature_action_id AND bp.bus_pos_id = ?", positionID).
		Order("f.feature_name, a.action_name").
		Scan(&rows).Error
	return rows, err
}

func (r *permissionRepo) BulkAssignPositionPermissions(positionID uint, featureActionIDs []uint) (int, error) {
	if len(featureActionIDs) == 0 {
		return 0, nil
	}
	var existing []uint
	if err := r.db.Model(&model.BusinessPermission{}).
		Where("bus_pos_id = ? AND feature_action_id IN ?", positionID, featureActionIDs).
		Pluck("feature_action_id", &existing).Error; err != nil {
		return 0, err
	}
	have := make(map[uint]struct{}, len(existing))
	for _, id := range existing {
		have[id] = struct{}{}
	}
	var grants []model.BusinessPermission
	for _, id := range featureActionIDs {
		if _, ok := have[id]; ok {
			continue
		}
		grants = append(grants, model.BusinessPermission{BusPosID: positionID, FeatureActionID: id})
	}
	if len(grants) == 0 {
		return 0, nil
	}
	if err := r.db.Create(&grants).Error; err != nil {
		return 0, err
	}
	return len(grants), nil
}

func (r *permissionRepo) BulkRemovePositionPermissions(positionID uint, featureActionIDs []uint) (int, error) {
	if len(featureActionIDs) == 0 {
		return 0, nil
	}
	res := r.db.Where("bus_pos_id = ? AND feature_action_id IN ?", positionID, featureActionIDs).
		Delete(&model.BusinessPermission{})
	return int(res.RowsAffected), res.Error
}

// SyncPositionPermissions makes the position's grant set exactly
// featureActionIDs: missing grants are added, extra ones removed, atomically.
func (r *permissionRepo) SyncPositionPermissions(positionID uint, featureActionIDs []uint) (int, int, error) {
	var added, removed int
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var current []uint
		if err := tx.Model(&model.BusinessPermission{}).
			Where("bus_pos_id = ?", positionID).
			Pluck("feature_action_id", &current).Error; err != nil {
			return err
		}

		want := make(map[uint]struct{}, len(featureActionIDs))
		for _, id := range featureActionIDs {
			want[id] = struct{}{}
		}
		have := make(map[uint]struct{}, len(current))
		for _, id := range current {
			have[id] = struct{}{}
		}

		var toAdd []model.BusinessPermission
		for id := range want {
			if _, ok := have[id]; !ok {
				toAdd = append(toAdd, model.BusinessPermission{BusPosID: positionID, FeatureActionID: id})
			}
		}
		var toRemove []uint
		for id := range have {
			if _, ok := want[id]; !ok {
				toRemove = append(toRemove, id)
			}
		}

		if len(toAdd) > 0 {
			if err := tx.Create(&toAdd).Error; err != nil {
				return err
			}
		}
		if len(toRemove) > 0 {
			if err := tx.Where("bus_pos_id = ? AND feature_action_id IN ?", positionID, toRemove).
				Delete(&model.BusinessPermission{}).Error; err != nil {
				return err
			}
		}
		added, removed = len(toAdd), len(toRemove)
		return nil
	})
	return added, removed, err
}

// SeedDefaults creates the RBAC vocabulary: actions, features, every
// feature-action pair, system roles, system permissions and the admin grants.
func (r *permissionRepo) SeedDefaults() error {
	for _, a := range model.DefaultActions {
		var existing model.Action
		if err := r.db.Where("action_name = ?", a.ActionName).First(&existing).Error; errors.Is(err, gorm.ErrRecordNotFound) {
			if err := r.db.Create(&a).Error; err != nil {
				return err
			}
		}
	}
	for _, f := range model.DefaultFeatures {
		var existing model.Feature
		if err := r.db.Where("feature_name = ?", f.FeatureName).First(&existing).Error; errors.Is(err, gorm.ErrRecordNotFound) {
			if err := r.db.Create(&f).Error; err != nil {
				return err
			}
		}
	}

	var features []model.Feature
	if err := r.db.Find(&features).Error; err != nil {
		return err
	}
	var actions []model.Action
	if err := r.db.Find(&actions).Error; err != nil {
		return err
	}
	for _, f := range features {
		for _, a := range actions {
			var existing model.FeatureAction
			err := r.db.Where("feature_id = ? AND action_id = ?", f.ID, a.ID).First(&existing).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				pair := model.FeatureAction{FeatureID: f.ID, ActionID: a.ID}
				if err := r.db.Create(&pair).Error; err != nil {
					return err
				}
			} else if err != nil {
				return err
			}
		}
	}

	for _, role := range model.DefaultSystemRoles {
		var existing model.SystemRole
		if err := r.db.Where("role = ?", role.Role).First(&existing).Error; errors.Is(err, gorm.ErrRecordNotFound) {
			if err := r.db.Create(&role).Error; err != nil {
				return err
			}
		}
	}
	for _, p := range model.DefaultSystemPermissions {
		var existing model.SystemPermission
		if err := r.db.Where("permission_name = ?", p.PermissionName).First(&existing).Error; errors.Is(err, gorm.ErrRecordNotFound) {
			if err := r.db.Create(&p).Error; err != nil {
				return err
			}
		}
	}

	var adminRole model.SystemRole
	if err := r.db.Where("role = ?", model.SystemRoleAdmin).First(&adminRole).Error; err != nil {
		return err
	}
	for _, name := range model.DefaultAdminPermissions {
		var perm model.SystemPermission
		if err := r.db.Where("permission_name = ?", name).First(&perm).Error; err != nil {
			return err
		}
		var existing model.SystemRolePermission
		err := r.db.Where("sys_role_id = ? AND sys_permission_id = ?", adminRole.ID, perm.ID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			grant := model.SystemRolePermission{SysRoleID: adminRole.ID, SysPermissionID: perm.ID}
			if err := r.db.Create(&grant).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
	}
	return nil
}
