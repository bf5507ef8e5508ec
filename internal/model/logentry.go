package model

import "time"

// Modules and actions identify what a log row describes. Values match the
// original seed data, so exported logs stay comparable.
const (
	ModuleBusiness     = 1
	ModuleInventory    = 2
	ModuleMenuProducts = 3
	ModuleSales        = 4
	ModuleSystem       = 5
)

const (
	ActionCreate  = 1
	ActionRead    = 2
	ActionUpdate  = 3
	ActionDelete  = 4
	ActionCancel  = 5
	ActionArchive = 6
	ActionExport  = 7
)

// AuditLog is the system-wide log table; BusinessLog is its per-business
// mirror. Both are write-once.
type AuditLog struct {
	ID         uint      `gorm:"column:audit_log_id;primaryKey" json:"audit_log_id"`
	BusinessID uint      `gorm:"column:business_id;index;not null" json:"business_id"`
	UserID     uint      `gorm:"column:user_id;not null" json:"user_id"`
	ModuleID   int       `gorm:"column:module_id;not null" json:"module_id"`
	ActionID   int       `gorm:"column:action_id;not null" json:"action_id"`
	Table      string    `gorm:"column:table_name;type:varchar(100);not null" json:"table_name"`
	RecordID   uint      `gorm:"column:record_id;not null" json:"record_id"`
	OldData    string    `gorm:"column:old_data;type:text" json:"old_data"`
	NewData    string    `gorm:"column:new_data;type:text" json:"new_data"`
	IPAddress  string    `gorm:"column:ip_address;type:varchar(64)" json:"ip_address"`
	UserAgent  string    `gorm:"column:user_agent;type:varchar(255)" json:"user_agent"`
	CreatedAt  time.Time `json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_logs_table" }

type BusinessLog struct {
	ID         uint      `gorm:"column:business_log_id;primaryKey" json:"business_log_id"`
	BusinessID uint      `gorm:"column:business_id;index;not null" json:"business_id"`
	UserID     uint      `gorm:"column:user_id;not null" json:"user_id"`
	ModuleID   int       `gorm:"column:module_id;not null" json:"module_id"`
	ActionID   int       `gorm:"column:action_id;not null" json:"action_id"`
	Table      string    `gorm:"column:table_name;type:varchar(100);not null" json:"table_name"`
	RecordID   uint      `gorm:"column:record_id;not null" json:"record_id"`
	OldData    string    `gorm:"column:old_data;type:text" json:"old_data"`
	NewData    string    `gorm:"column:new_data;type:text" json:"new_data"`
	IPAddress  string    `gorm:"column:ip_address;type:varchar(64)" json:"ip_address"`
	UserAgent  string    `gorm:"column:user_agent;type:varchar(255)" json:"user_agent"`
	CreatedAt  time.Time `json:"created_at"`
}

func (BusinessLog) TableName() string { return "business_logs_table" }
