package repository

import (
	"time"

	"go-pos-backend/internal/model"

	"gorm.io/gorm"
)

// LogFilter narrows business log listings for the activity screen and exports.
type LogFilter struct {
	ModuleID int
	ActionID int
	UserID   uint
	From     time.Time
	To       time.Time
	Limit    int
	Offset   int
}

// BusinessLogRow is a business log joined with the acting user's name.
type BusinessLogRow struct {
	model.BusinessLog
	Username string `json:"username"`
}

// AuditLogRow is an audit log joined with the acting user's name.
type AuditLogRow struct {
	model.AuditLog
	Username string `json:"username"`
}

type LogRepository interface {
	InsertAudit(log *model.AuditLog) error
	InsertBusiness(log *model.BusinessLog) error
	ListBusinessLogs(businessID uint, filter LogFilter) ([]BusinessLogRow, int64, error)
	ListAuditLogs(businessID uint, filter LogFilter) ([]model.AuditLog, int64, error)
	ListAllAuditLogs(filter LogFilter) ([]AuditLogRow, int64, error)
}

type logRepo struct {
	db *gorm.DB
}

func NewLogRepo(db *gorm.DB) LogRepository {
	return &logRepo{db}
}

func (r *logRepo) InsertAudit(log *model.AuditLog) error {
	return r.db.Create(log).Error
}

func (r *logRepo) InsertBusiness(log *model.BusinessLog) error {
	return r.db.Create(log).Error
}

// applyLogFilter qualifies every column with the log table name so the
// user_table join stays unambiguous.
func applyLogFilter(q *gorm.DB, table string, filter LogFilter) *gorm.DB {
	if filter.ModuleID != 0 {
		q = q.Where(table+".module_id = ?", filter.ModuleID)
	}
	if filter.ActionID != 0 {
		q = q.Where(table+".action_id = ?", filter.ActionID)
	}
	if filter.UserID != 0 {
		q = q.Where(table+".user_id = ?", filter.UserID)
	}
	if !filter.From.IsZero() {
		q = q.Where(table+".created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where(table+".created_at < ?", filter.To)
	}
	return q
}

func (r *logRepo) ListBusinessLogs(businessID uint, filter LogFilter) ([]BusinessLogRow, int64, error) {
	q := r.db.Table("business_logs_table").Where("business_logs_table.business_id = ?", businessID)
	q = applyLogFilter(q, "business_logs_table", filter)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	var rows []BusinessLogRow
	err := q.Select("business_logs_table.*, COALESCE(u.username, '') AS username").
		Joins("LEFT JOIN user_table u ON u.user_id = business_logs_table.user_id").
		Order("business_logs_table.business_log_id DESC").
		Limit(filter.Limit).Offset(filter.Offset).
		Scan(&rows).Error
	return rows, total, err
}

func (r *logRepo) ListAuditLogs(businessID uint, filter LogFilter) ([]model.AuditLog, int64, error) {
	q := r.db.Model(&model.AuditLog{}).Where("business_id = ?", businessID)
	q = applyLogFilter(q, "audit_logs_table", filter)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	var logs []model.AuditLog
	err := q.Order("audit_log_id DESC").Limit(filter.Limit).Offset(filter.Offset).Find(&logs).Error
	return logs, total, err
}

// ListAllAuditLogs lists the trail across every business for the platform admins.
func (r *logRepo) ListAllAuditLogs(filter LogFilter) ([]AuditLogRow, int64, error) {
	q := r.db.Table("audit_logs_table")
	q = applyLogFilter(q, "audit_logs_table", filter)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	var rows []AuditLogRow
	err := q.Select("audit_logs_table.*, COALESCE(u.username, '') AS username").
		Joins("LEFT JOIN user_table u ON u.user_id = audit_logs_table.user_id").
		Order("audit_logs_table.audit_log_id DESC").
		Limit(filter.Limit).Offset(filter.Offset).
		Scan(&rows).Error
	return rows, total, err
}
