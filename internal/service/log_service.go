package service

import (
	"encoding/json"
	"log"

	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"
)

// Entry is one activity event. It is written to both the audit trail and the
// business activity log.
type Entry struct {
	BusinessID uint
	UserID     uint
	ModuleID   int
	ActionID   int
	Table      string
	RecordID   uint
	OldData    interface{}
	NewData    interface{}
	IPAddress  string
	UserAgent  string
}

type LogService interface {
	// Record writes the entry to both log tables. Read events are dropped and
	// write failures never propagate to the caller.
	Record(entry Entry)
	ListBusinessLogs(businessID uint, filter repository.LogFilter) ([]repository.BusinessLogRow, int64, error)
	ListAuditLogs(businessID uint, filter repository.LogFilter) ([]model.AuditLog, int64, error)
	ListAllAuditLogs(filter repository.LogFilter) ([]repository.AuditLogRow, int64, error)
}

type logService struct {
	repo repository.LogRepository
}

func NewLogService(repo repository.LogRepository) LogService {
	return &logService{repo}
}

func toJSON(v interface{}) string {
	if v == nil {
		return "{}"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func (s *logService) Record(entry Entry) {
	if entry.ActionID == model.ActionRead {
		return
	}
	oldData := toJSON(entry.OldData)
	newData := toJSON(entry.NewData)

	audit := model.AuditLog{
		BusinessID: entry.BusinessID,
		UserID:     entry.UserID,
		ModuleID:   entry.ModuleID,
		ActionID:   entry.ActionID,
		Table:      entry.Table,
		RecordID:   entry.RecordID,
		OldData:    oldData,
		NewData:    newData,
		IPAddress:  entry.IPAddress,
		UserAgent:  entry.UserAgent,
	}
	if err := s.repo.InsertAudit(&audit); err != nil {
		log.Printf("audit log write failed: %v", err)
	}

	business := model.BusinessLog{
		BusinessID: entry.BusinessID,
		UserID:     entry.UserID,
		ModuleID:   entry.ModuleID,
		ActionID:   entry.ActionID,
		Table:      entry.Table,
		RecordID:   entry.RecordID,
		OldData:    oldData,
		NewData:    newData,
		IPAddress:  entry.IPAddress,
		UserAgent:  entry.UserAgent,
	}
	if err := s.repo.InsertBusiness(&business); err != nil {
		log.Printf("business log write failed: %v", err)
	}
}

func (s *logService) ListBusinessLogs(businessID uint, filter repository.LogFilter) ([]repository.BusinessLogRow, int64, error) {
	return s.repo.ListBusinessLogs(businessID, filter)
}

func (s *logService) ListAuditLogs(businessID uint, filter repository.LogFilter) ([]model.AuditLog, int64, error) {
	return s.repo.ListAuditLogs(businessID, filter)
}

func (s *logService) ListAllAuditLogs(filter repository.LogFilter) ([]repository.AuditLogRow, int64, error) {
	return s.repo.ListAllAuditLogs(filter)
}
