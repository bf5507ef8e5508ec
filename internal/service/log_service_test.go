package service_test

import (
	"testing"

	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"
	"go-pos-backend/internal/service"
	"go-pos-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordWritesBothTables(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewLogService(repository.NewLogRepo(db))

	svc.Record(service.Entry{
		BusinessID: 1,
		UserID:     2,
		ModuleID:   model.ModuleInventory,
		ActionID:   model.ActionUpdate,
		Table:      "inventory_table",
		RecordID:   42,
		NewData:    map[string]interface{}{"quantity": 5},
		IPAddress:  "10.0.0.1",
	})

	var audit model.AuditLog
	require.NoError(t, db.First(&audit).Error)
	assert.Equal(t, uint(42), audit.RecordID)
	assert.Equal(t, "{}", audit.OldData)
	assert.JSONEq(t, `{"quantity":5}`, audit.NewData)

	var business model.BusinessLog
	require.NoError(t, db.First(&business).Error)
	assert.Equal(t, audit.Table, business.Table)
	assert.Equal(t, audit.NewData, business.NewData)
	assert.Equal(t, audit.IPAddress, business.IPAddress)
}

func TestRecordKeepsDuplicateEntries(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewLogService(repository.NewLogRepo(db))

	entry := service.Entry{
		BusinessID: 1, UserID: 2,
		ModuleID: model.ModuleInventory, ActionID: model.ActionUpdate,
		Table: "inventory_table", RecordID: 42,
	}
	svc.Record(entry)
	svc.Record(entry)

	var count int64
	require.NoError(t, db.Model(&model.AuditLog{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
	require.NoError(t, db.Model(&model.BusinessLog{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestRecordSuppressesReads(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewLogService(repository.NewLogRepo(db))

	svc.Record(service.Entry{
		BusinessID: 1, UserID: 2,
		ModuleID: model.ModuleSales, ActionID: model.ActionRead,
		Table: "transaction_table",
	})

	var count int64
	require.NoError(t, db.Model(&model.AuditLog{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&model.BusinessLog{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRecordSwallowsWriteFailures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewLogService(repository.NewLogRepo(db))

	// Dropping the audit table makes the insert fail; Record must not panic
	// and must still write the business log.
	require.NoError(t, db.Migrator().DropTable(&model.AuditLog{}))

	assert.NotPanics(t, func() {
		svc.Record(service.Entry{
			BusinessID: 1, UserID: 2,
			ModuleID: model.ModuleBusiness, ActionID: model.ActionCreate,
			Table: "business_table", RecordID: 7,
		})
	})

	var count int64
	require.NoError(t, db.Model(&model.BusinessLog{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRecordSerializesUnmarshalableDataAsEmptyObject(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewLogService(repository.NewLogRepo(db))

	svc.Record(service.Entry{
		BusinessID: 1, UserID: 2,
		ModuleID: model.ModuleBusiness, ActionID: model.ActionCreate,
		Table:   "business_table",
		NewData: make(chan int),
	})

	var audit model.AuditLog
	require.NoError(t, db.First(&audit).Error)
	assert.Equal(t, "{}", audit.NewData)
}

func TestListBusinessLogsFilters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedRBAC(t, db)
	user := testutil.SeedUser(t, db, "actor", model.SystemRoleUser)
	svc := service.NewLogService(repository.NewLogRepo(db))

	svc.Record(service.Entry{BusinessID: 1, UserID: user.ID, ModuleID: model.ModuleInventory, ActionID: model.ActionUpdate, Table: "inventory_table"})
	svc.Record(service.Entry{BusinessID: 1, UserID: user.ID, ModuleID: model.ModuleSales, ActionID: model.ActionCreate, Table: "transaction_table"})
	svc.Record(service.Entry{BusinessID: 2, UserID: user.ID, ModuleID: model.ModuleSales, ActionID: model.ActionCreate, Table: "transaction_table"})

	rows, total, err := svc.ListBusinessLogs(1, repository.LogFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, rows, 2)
	assert.Equal(t, "actor", rows[0].Username)

	rows, total, err = svc.ListBusinessLogs(1, repository.LogFilter{ModuleID: model.ModuleSales})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "transaction_table", rows[0].Table)
}

func TestListAllAuditLogsSpansBusinesses(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedRBAC(t, db)
	first := testutil.SeedUser(t, db, "first", model.SystemRoleUser)
	second := testutil.SeedUser(t, db, "second", model.SystemRoleUser)
	svc := service.NewLogService(repository.NewLogRepo(db))

	svc.Record(service.Entry{BusinessID: 1, UserID: first.ID, ModuleID: model.ModuleInventory, ActionID: model.ActionUpdate, Table: "inventory_table"})
	svc.Record(service.Entry{BusinessID: 2, UserID: second.ID, ModuleID: model.ModuleSales, ActionID: model.ActionCreate, Table: "transaction_table"})

	rows, total, err := svc.ListAllAuditLogs(repository.LogFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, rows, 2)
	assert.Equal(t, "second", rows[0].Username)
	assert.Equal(t, "first", rows[1].Username)

	rows, total, err = svc.ListAllAuditLogs(repository.LogFilter{UserID: first.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, uint(1), rows[0].BusinessID)
}
