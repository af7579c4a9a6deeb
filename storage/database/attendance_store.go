package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"Attendly/internal/model"
	"Attendly/internal/repository"
)

// AttendanceStore 基于 gorm 的考勤存储，行锁使用 SELECT ... FOR UPDATE
type AttendanceStore struct {
	db *gorm.DB
}

func NewAttendanceStore(db *gorm.DB) *AttendanceStore {
	return &AttendanceStore{db: db}
}

func (s *AttendanceStore) WithTransaction(ctx context.Context, fn func(tx repository.AttendanceTx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&attendanceTx{db: tx})
	})
}

func (s *AttendanceStore) ListAttendances(ctx context.Context, filter repository.AttendanceFilter) ([]model.Attendance, error) {
	q := s.db.WithContext(ctx).Model(&model.Attendance{})

	if filter.EmployeeID != "" {
		q = q.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.DateFrom != nil {
		q = q.Where("date >= ?", datatypes.Date(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		q = q.Where("date <= ?", datatypes.Date(*filter.DateTo))
	}

	var list []model.Attendance
	if err := q.Order("date DESC").Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list attendances: %w", err)
	}
	return list, nil
}

type attendanceTx struct {
	db *gorm.DB
}

func (t *attendanceTx) forUpdate(ctx context.Context) *gorm.DB {
	return t.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
}

func (t *attendanceTx) LockEmployee(ctx context.Context, id string) (*model.Employee, error) {
	var employee model.Employee
	err := t.forUpdate(ctx).Where("id = ?", id).Take(&employee).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock employee: %w", err)
	}
	return &employee, nil
}

func (t *attendanceTx) LockAttendance(ctx context.Context, employeeID string, date time.Time) (*model.Attendance, error) {
	var attendance model.Attendance
	err := t.forUpdate(ctx).
		Where("employee_id = ? AND date = ?", employeeID, datatypes.Date(date)).
		Take(&attendance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock attendance: %w", err)
	}
	return &attendance, nil
}

func (t *attendanceTx) InsertAttendance(ctx context.Context, a *model.Attendance) error {
	if err := t.db.WithContext(ctx).Create(a).Error; err != nil {
		if IsDuplicateKey(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to insert attendance: %w", err)
	}
	return nil
}

// UpdateAttendance 只允许写入签退时间，签到时间与日期创建后不可变
func (t *attendanceTx) UpdateAttendance(ctx context.Context, a *model.Attendance) error {
	a.UpdatedAt = time.Now().UTC()
	err := t.db.WithContext(ctx).
		Model(a).
		Select("check_out_at", "updated_at").
		Updates(a).Error
	if err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	return nil
}
