package service

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"Attendly/config"
	"Attendly/internal/model"
	"Attendly/internal/model/dto"
	"Attendly/internal/queue"
	"Attendly/internal/repository"
	"Attendly/pkg/errors"
	"Attendly/pkg/logger"
	"Attendly/pkg/metrics"
	"Attendly/storage/database"
	"Attendly/utils"
)

// AttendanceNotifier 提交后投递考勤通知，由 queue.Producer 实现
type AttendanceNotifier interface {
	EnqueueAttendanceNotification(ctx context.Context, n model.AttendanceNotification) error
}

var (
	attendanceService *AttendanceService
	attendanceOnce    sync.Once
)

// Attendance 按全局配置装配的单例，启动时 config.Validate 已校验时区
func Attendance() *AttendanceService {
	attendanceOnce.Do(func() {
		loc, err := config.Cfg.Location()
		if err != nil {
			loc = time.Local
		}
		attendanceService = NewAttendanceService(
			database.NewAttendanceStore(database.DB()),
			queue.NewProducer(),
			loc,
		)
	})
	return attendanceService
}

// AttendanceService 签到/签退状态机
//
// 每次变更都在一个事务内先锁员工行、再锁 (employee_id, date) 考勤行，
// 同一员工的并发请求由员工行锁串行化；唯一约束兜底，冲突统一映射为已签到。
type AttendanceService struct {
	store    repository.TransactionalStore
	notifier AttendanceNotifier
	loc      *time.Location
	now      func() time.Time
}

func NewAttendanceService(store repository.TransactionalStore, notifier AttendanceNotifier, loc *time.Location) *AttendanceService {
	if loc == nil {
		loc = time.Local
	}
	return &AttendanceService{
		store:    store,
		notifier: notifier,
		loc:      loc,
		now:      time.Now,
	}
}

// CheckIn 创建当日考勤记录，occurredAt 为空时取当前时间
func (s *AttendanceService) CheckIn(ctx context.Context, employeeID string, occurredAt *time.Time) (*model.Attendance, error) {
	at := s.eventTime(occurredAt)
	date := utils.DateOf(at, s.loc)

	var (
		employee *model.Employee
		created  *model.Attendance
	)

	err := s.store.WithTransaction(ctx, func(tx repository.AttendanceTx) error {
		emp, err := tx.LockEmployee(ctx, employeeID)
		if err != nil {
			return err
		}
		if emp == nil {
			return errors.EmployeeNotFound
		}

		existing, err := tx.LockAttendance(ctx, employeeID, date)
		if err != nil {
			return err
		}
		if existing != nil {
			return errors.AttendanceAlreadyCheckedIn
		}

		record := &model.Attendance{
			EmployeeID: employeeID,
			Date:       datatypes.Date(date),
			CheckInAt:  at,
		}
		if err := tx.InsertAttendance(ctx, record); err != nil {
			if stderrors.Is(err, repository.ErrDuplicateKey) {
				return errors.AttendanceAlreadyCheckedIn
			}
			return err
		}

		employee, created = emp, record
		return nil
	})
	s.record(ctx, model.AttendanceCheckIn, metrics.OutcomeCreated, err)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, employee, created, model.AttendanceCheckIn, at)
	return created, nil
}

// CheckOut 关闭当日已签到的记录，签退时间只能写入一次
func (s *AttendanceService) CheckOut(ctx context.Context, employeeID string, occurredAt *time.Time) (*model.Attendance, error) {
	at := s.eventTime(occurredAt)
	date := utils.DateOf(at, s.loc)

	var (
		employee *model.Employee
		updated  *model.Attendance
	)

	err := s.store.WithTransaction(ctx, func(tx repository.AttendanceTx) error {
		emp, err := tx.LockEmployee(ctx, employeeID)
		if err != nil {
			return err
		}
		if emp == nil {
			return errors.EmployeeNotFound
		}

		record, err := tx.LockAttendance(ctx, employeeID, date)
		if err != nil {
			return err
		}
		if record == nil {
			return errors.AttendanceNotCheckedIn
		}
		if record.CheckedOut() {
			return errors.AttendanceAlreadyCheckedOut
		}

		record.CheckOutAt = &at
		if err := tx.UpdateAttendance(ctx, record); err != nil {
			return err
		}

		employee, updated = emp, record
		return nil
	})
	s.record(ctx, model.AttendanceCheckOut, metrics.OutcomeUpdated, err)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, employee, updated, model.AttendanceCheckOut, at)
	return updated, nil
}

// FindAll 无锁查询，日期区间为闭区间
func (s *AttendanceService) FindAll(ctx context.Context, q dto.AttendanceListQuery) ([]model.Attendance, error) {
	filter := repository.AttendanceFilter{EmployeeID: q.EmployeeID}

	if q.DateFrom != "" {
		from, err := utils.ParseDate(q.DateFrom)
		if err != nil {
			return nil, errors.InvalidRequest.WithMessage("dateFrom must be in YYYY-MM-DD format")
		}
		filter.DateFrom = &from
	}
	if q.DateTo != "" {
		to, err := utils.ParseDate(q.DateTo)
		if err != nil {
			return nil, errors.InvalidRequest.WithMessage("dateTo must be in YYYY-MM-DD format")
		}
		filter.DateTo = &to
	}
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateFrom.After(*filter.DateTo) {
		return nil, errors.AttendanceDateRangeInvalid
	}

	return s.store.ListAttendances(ctx, filter)
}

func (s *AttendanceService) eventTime(occurredAt *time.Time) time.Time {
	if occurredAt != nil {
		return *occurredAt
	}
	return s.now()
}

func (s *AttendanceService) record(ctx context.Context, status model.AttendanceStatus, success string, err error) {
	outcome := success
	if err != nil {
		switch errors.KindOf(err) {
		case errors.KindNotFound:
			outcome = metrics.OutcomeNotFound
		case errors.KindConflict:
			outcome = metrics.OutcomeConflict
		default:
			outcome = metrics.OutcomeError
		}
	}
	metrics.RecordAttendanceEvent(ctx, string(status), outcome)
}

// notify 事务提交后调用，失败只记录日志
func (s *AttendanceService) notify(ctx context.Context, employee *model.Employee, a *model.Attendance, status model.AttendanceStatus, at time.Time) {
	if s.notifier == nil || employee == nil {
		return
	}

	payload := model.AttendanceNotification{
		Email:          employee.Email,
		EmployeeName:   employee.Names,
		AttendanceDate: a.DateString(),
		Status:         status,
		OccurredAt:     utils.FormatISO(at),
	}
	if err := s.notifier.EnqueueAttendanceNotification(ctx, payload); err != nil {
		logger.Ctx(ctx).Warn("Failed to enqueue attendance notification",
			zap.String("employee_id", a.EmployeeID),
			zap.String("attendance_id", a.ID),
			zap.String("status", string(status)),
			zap.Error(err),
		)
	}
}
