package database

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"Attendly/internal/model"
	"Attendly/internal/repository"
)

// sqlRecorder 收集 dry run 生成的语句
type sqlRecorder struct {
	mu   sync.Mutex
	sql  []string
	vars [][]interface{}
}

func (r *sqlRecorder) record(tx *gorm.DB) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sql = append(r.sql, tx.Statement.SQL.String())
	r.vars = append(r.vars, append([]interface{}(nil), tx.Statement.Vars...))
}

func (r *sqlRecorder) last(t *testing.T) (string, []interface{}) {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.sql)
	return r.sql[len(r.sql)-1], r.vars[len(r.vars)-1]
}

func newDryRunDB(t *testing.T) (*gorm.DB, *sqlRecorder) {
	t.Helper()
	db, err := gorm.Open(postgres.Open("host=127.0.0.1 user=attendly dbname=attendly sslmode=disable"), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	rec := &sqlRecorder{}
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:record_query", rec.record))
	require.NoError(t, db.Callback().Create().After("gorm:create").Register("test:record_create", rec.record))
	require.NoError(t, db.Callback().Update().After("gorm:update").Register("test:record_update", rec.record))
	return db, rec
}

func TestLockEmployeeSelectsForUpdate(t *testing.T) {
	db, rec := newDryRunDB(t)
	tx := &attendanceTx{db: db}

	_, err := tx.LockEmployee(context.Background(), "e1")
	require.NoError(t, err)

	sql, vars := rec.last(t)
	assert.True(t, strings.HasPrefix(sql, `SELECT * FROM "employees" WHERE id = $1`), sql)
	assert.True(t, strings.HasSuffix(sql, "FOR UPDATE"), sql)
	assert.Equal(t, "e1", vars[0])
}

func TestLockAttendanceSelectsForUpdate(t *testing.T) {
	db, rec := newDryRunDB(t)
	tx := &attendanceTx{db: db}
	day := time.Date(2026, 2, 7, 0, 0, 0, 0, time.UTC)

	_, err := tx.LockAttendance(context.Background(), "e1", day)
	require.NoError(t, err)

	sql, vars := rec.last(t)
	assert.Contains(t, sql, `FROM "attendances" WHERE employee_id = $1 AND date = $2`)
	assert.True(t, strings.HasSuffix(sql, "FOR UPDATE"), sql)
	assert.Equal(t, "e1", vars[0])
	assert.Equal(t, datatypes.Date(day), vars[1])
}

func TestUpdateAttendanceWritesOnlyCheckOut(t *testing.T) {
	db, rec := newDryRunDB(t)
	tx := &attendanceTx{db: db}
	out := time.Date(2026, 2, 7, 18, 0, 0, 0, time.UTC)

	a := &model.Attendance{
		BaseModel:  model.BaseModel{ID: "a1"},
		EmployeeID: "e1",
		Date:       datatypes.Date(time.Date(2026, 2, 7, 0, 0, 0, 0, time.UTC)),
		CheckInAt:  time.Date(2026, 2, 7, 9, 0, 0, 0, time.UTC),
		CheckOutAt: &out,
	}
	require.NoError(t, tx.UpdateAttendance(context.Background(), a))

	sql, _ := rec.last(t)
	assert.True(t, strings.HasPrefix(sql, `UPDATE "attendances" SET`), sql)
	assert.Contains(t, sql, `"check_out_at"=`)
	assert.Contains(t, sql, `"updated_at"=`)
	assert.NotContains(t, sql, `"check_in_at"`)
	assert.NotContains(t, sql, `"date"`)
	assert.NotContains(t, sql, `"employee_id"`)
	assert.Contains(t, sql, `WHERE "id" =`)
	assert.False(t, a.UpdatedAt.IsZero())
}

func TestInsertAttendanceMapsUniqueViolation(t *testing.T) {
	db, _ := newDryRunDB(t)
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:unique_violation", func(tx *gorm.DB) {
		_ = tx.AddError(&pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "uq_attendance_employee_date"})
	}))
	tx := &attendanceTx{db: db}

	err := tx.InsertAttendance(context.Background(), &model.Attendance{EmployeeID: "e1"})
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.ErrorIs(t, err, repository.ErrDuplicateKey)
}

func TestInsertAttendance(t *testing.T) {
	db, rec := newDryRunDB(t)
	tx := &attendanceTx{db: db}

	a := &model.Attendance{EmployeeID: "e1", CheckInAt: time.Date(2026, 2, 7, 9, 0, 0, 0, time.UTC)}
	require.NoError(t, tx.InsertAttendance(context.Background(), a))

	sql, _ := rec.last(t)
	assert.True(t, strings.HasPrefix(sql, `INSERT INTO "attendances"`), sql)
	assert.NotEmpty(t, a.ID)
}

func TestListAttendancesFilterAndOrder(t *testing.T) {
	db, rec := newDryRunDB(t)
	store := NewAttendanceStore(db)
	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 7, 0, 0, 0, 0, time.UTC)

	_, err := store.ListAttendances(context.Background(), repository.AttendanceFilter{
		EmployeeID: "e1",
		DateFrom:   &from,
		DateTo:     &to,
	})
	require.NoError(t, err)

	sql, vars := rec.last(t)
	assert.Contains(t, sql, `WHERE employee_id = $1 AND date >= $2 AND date <= $3`)
	assert.True(t, strings.HasSuffix(sql, "ORDER BY date DESC,created_at DESC"), sql)
	assert.Equal(t, []interface{}{"e1", datatypes.Date(from), datatypes.Date(to)}, vars)
}

func TestListAttendancesWithoutFilter(t *testing.T) {
	db, rec := newDryRunDB(t)

	_, err := NewAttendanceStore(db).ListAttendances(context.Background(), repository.AttendanceFilter{})
	require.NoError(t, err)

	sql, vars := rec.last(t)
	assert.Equal(t, `SELECT * FROM "attendances" ORDER BY date DESC,created_at DESC`, sql)
	assert.Empty(t, vars)
}
