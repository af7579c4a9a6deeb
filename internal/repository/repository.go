package repository

import (
	"context"
	"errors"
	"time"

	"Attendly/internal/model"
	"Attendly/internal/model/dto"
)

// ErrDuplicateKey 唯一约束冲突，存储层无论底层驱动都统一返回该错误
var ErrDuplicateKey = errors.New("duplicate key violation")

// ========== Attendance 相关接口 ==========

// AttendanceFilter 列表查询条件，零值字段不参与过滤
type AttendanceFilter struct {
	DateFrom   *time.Time
	DateTo     *time.Time
	EmployeeID string
}

// AttendanceTx 事务内的考勤操作，所有加锁方法都是排他行锁
type AttendanceTx interface {
	// LockEmployee 锁定员工行，不存在时返回 nil, nil
	//
	// SELECT * FROM employees WHERE id = @id LIMIT 1 FOR UPDATE
	LockEmployee(ctx context.Context, id string) (*model.Employee, error)

	// LockAttendance 锁定员工当日的考勤行，不存在时返回 nil, nil
	//
	// SELECT * FROM attendances WHERE employee_id = @employeeID AND date = @date LIMIT 1 FOR UPDATE
	LockAttendance(ctx context.Context, employeeID string, date time.Time) (*model.Attendance, error)

	// InsertAttendance 唯一约束冲突时返回 ErrDuplicateKey
	InsertAttendance(ctx context.Context, a *model.Attendance) error

	UpdateAttendance(ctx context.Context, a *model.Attendance) error
}

// TransactionalStore 考勤存储，fn 返回错误时回滚
type TransactionalStore interface {
	WithTransaction(ctx context.Context, fn func(tx AttendanceTx) error) error

	// ListAttendances 无锁读取，按 date DESC, created_at DESC 排序
	ListAttendances(ctx context.Context, filter AttendanceFilter) ([]model.Attendance, error)
}

// ========== Employee 相关接口 ==========

type EmployeeRepository interface {
	// Create 邮箱或工号重复时返回 ErrDuplicateKey
	Create(ctx context.Context, e *model.Employee) error

	// List 按 created_at DESC 分页，同时返回总数
	List(ctx context.Context, offset, limit int) ([]model.Employee, int64, error)

	// FindByID 不存在时返回 nil, nil
	FindByID(ctx context.Context, id string) (*model.Employee, error)

	Update(ctx context.Context, e *model.Employee) error

	// Delete 返回受影响行数，考勤记录由外键级联删除
	Delete(ctx context.Context, id string) (int64, error)
}

// ========== User 相关接口 ==========

type UserRepository interface {
	// Create 邮箱重复时返回 ErrDuplicateKey
	Create(ctx context.Context, u *model.User) error

	// 以下查询不存在时均返回 nil, nil
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByResetTokenHash(ctx context.Context, hash string) (*model.User, error)

	// UpdateFields 按列名更新，值为 nil 时置 NULL
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
}

// ========== Report 相关接口 ==========

type ReportRepository interface {
	// DailyRows 所有员工按工号升序，LEFT JOIN 当日考勤
	//
	// SELECT e.names, e.employee_identifier, a.check_in_at, a.check_out_at
	// FROM employees e LEFT JOIN attendances a ON a.employee_id = e.id AND a.date = @date
	// ORDER BY e.employee_identifier ASC
	DailyRows(ctx context.Context, date time.Time) ([]dto.DailyReportRow, error)
}
