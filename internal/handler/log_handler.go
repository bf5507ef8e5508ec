package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"go-pos-backend/internal/middleware"
	"go-pos-backend/internal/repository"
	"go-pos-backend/internal/service"
	"go-pos-backend/pkg/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

type LogHandler struct {
	logService service.LogService
}

func NewLogHandler(logService service.LogService) *LogHandler {
	return &LogHandler{logService: logService}
}

func logFilterFromQuery(c *fiber.Ctx) (repository.LogFilter, error) {
	filter := repository.LogFilter{
		ModuleID: queryInt(c, "module", 0),
		ActionID: queryInt(c, "action", 0),
		Limit:    queryInt(c, "limit", 50),
		Offset:   queryInt(c, "offset", 0),
	}
	if userID := queryInt(c, "user_id", 0); userID > 0 {
		filter.UserID = uint(userID)
	}
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, apperr.Validationf("invalid from date %q", raw)
		}
		filter.From = t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, apperr.Validationf("invalid to date %q", raw)
		}
		filter.To = t.AddDate(0, 0, 1)
	}
	return filter, nil
}

// ListBusinessLogs pages through the business activity log
// GET /api/businesses/:businessId/logs
func (h *LogHandler) ListBusinessLogs(c *fiber.Ctx) error {
	filter, err := logFilterFromQuery(c)
	if err != nil {
		return err
	}
	rows, total, err := h.logService.ListBusinessLogs(middleware.BusinessID(c), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"logs": rows, "total": total})
}

// ListAuditLogs pages through the audit trail
// GET /api/businesses/:businessId/audit-logs
func (h *LogHandler) ListAuditLogs(c *fiber.Ctx) error {
	filter, err := logFilterFromQuery(c)
	if err != nil {
		return err
	}
	logs, total, err := h.logService.ListAuditLogs(middleware.BusinessID(c), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"logs": logs, "total": total})
}

// ListAllAuditLogs pages through the audit trail across every business
// GET /api/admin/audit-logs
func (h *LogHandler) ListAllAuditLogs(c *fiber.Ctx) error {
	filter, err := logFilterFromQuery(c)
	if err != nil {
		return err
	}
	logs, total, err := h.logService.ListAllAuditLogs(filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"logs": logs, "total": total})
}

var logExportHeader = []string{"id", "timestamp", "username", "module", "action", "table", "record_id", "old_data", "new_data", "ip_address"}

func exportRows(rows []repository.BusinessLogRow) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, []string{
			strconv.FormatUint(uint64(row.ID), 10),
			row.CreatedAt.Format(time.RFC3339),
			row.Username,
			strconv.Itoa(row.ModuleID),
			strconv.Itoa(row.ActionID),
			row.Table,
			strconv.FormatUint(uint64(row.RecordID), 10),
			row.OldData,
			row.NewData,
			row.IPAddress,
		})
	}
	return out
}

// ExportBusinessLogs downloads the filtered log as CSV or XLSX
// GET /api/businesses/:businessId/logs/export?format=csv|xlsx
func (h *LogHandler) ExportBusinessLogs(c *fiber.Ctx) error {
	filter, err := logFilterFromQuery(c)
	if err != nil {
		return err
	}
	// Export ignores paging.
	filter.Limit = 10000
	filter.Offset = 0

	rows, _, err := h.logService.ListBusinessLogs(middleware.BusinessID(c), filter)
	if err != nil {
		return err
	}

	stamp := time.Now().Format("20060102")
	switch c.Query("format", "csv") {
	case "xlsx":
		f := excelize.NewFile()
		defer f.Close()
		sheet := f.GetSheetName(0)
		for col, name := range logExportHeader {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			f.SetCellValue(sheet, cell, name)
		}
		for i, record := range exportRows(rows) {
			for col, value := range record {
				cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
				f.SetCellValue(sheet, cell, value)
			}
		}
		buf, err := f.WriteToBuffer()
		if err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="business_logs_%s.xlsx"`, stamp))
		return c.Send(buf.Bytes())

	case "csv":
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.Write(logExportHeader); err != nil {
			return err
		}
		if err := w.WriteAll(exportRows(rows)); err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, "text/csv")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="business_logs_%s.csv"`, stamp))
		return c.Send(buf.Bytes())

	default:
		return apperr.Validationf("unsupported export format %q", c.Query("format"))
	}
}
