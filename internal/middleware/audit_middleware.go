package middleware

import (
	"go-pos-backend/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Locals keys a handler can set to enrich the audit entry for its route.
const (
	LocalAuditRecordID = "auditRecordID"
	LocalAuditOldData  = "auditOldData"
	LocalAuditNewData  = "auditNewData"
	LocalAuditSkip     = "auditSkip"
)

// Audit records the declared module/action/table after the handler succeeds.
// Each mutating route declares what it audits instead of the logger guessing
// from the URL. Non-2xx responses, routes that set LocalAuditSkip and
// mutations that never resolved a record id are not recorded.
func Audit(logs service.LogService, moduleID, actionID int, table string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			return err
		}
		status := c.Response().StatusCode()
		if status < 200 || status >= 300 {
			return nil
		}
		if skip, ok := c.Locals(LocalAuditSkip).(bool); ok && skip {
			return nil
		}

		// A mutation with no record id has nothing to anchor the entry to.
		recordID, ok := c.Locals(LocalAuditRecordID).(uint)
		if !ok || recordID == 0 {
			return nil
		}

		entry := service.Entry{
			BusinessID: BusinessID(c),
			UserID:     UserID(c),
			ModuleID:   moduleID,
			ActionID:   actionID,
			Table:      table,
			RecordID:   recordID,
			IPAddress:  c.IP(),
			UserAgent:  c.Get("User-Agent"),
		}
		if old := c.Locals(LocalAuditOldData); old != nil {
			entry.OldData = old
		}
		if data := c.Locals(LocalAuditNewData); data != nil {
			entry.NewData = data
		}
		logs.Record(entry)
		return nil
	}
}

// RequestEntry builds the log context handed to services that write their own
// richer entries. Such routes skip the Audit middleware.
func RequestEntry(c *fiber.Ctx) service.Entry {
	return service.Entry{
		BusinessID: BusinessID(c),
		UserID:     UserID(c),
		IPAddress:  c.IP(),
		UserAgent:  c.Get("User-Agent"),
	}
}
