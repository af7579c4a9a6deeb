package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"Attendly/internal/model"
	"Attendly/internal/repository"
)

// memoryStore 模拟行锁语义：LockEmployee 持有员工级互斥锁直到事务结束
type memoryStore struct {
	mu        sync.Mutex
	employees map[string]model.Employee
	rows      []model.Attendance
	rowLocks  map[string]*sync.Mutex
	clock     time.Time

	// 模拟加锁查询漏读，让唯一约束成为唯一防线
	missAttendanceLock bool
	insertErr          error
	listCalls          int
}

func newMemoryStore(employees ...model.Employee) *memoryStore {
	s := &memoryStore{
		employees: map[string]model.Employee{},
		rowLocks:  map[string]*sync.Mutex{},
		clock:     time.Date(2026, 2, 7, 0, 0, 0, 0, time.UTC),
	}
	for _, e := range employees {
		s.employees[e.ID] = e
	}
	return s
}

func (s *memoryStore) lockFor(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.rowLocks[id]
	if !ok {
		l = &sync.Mutex{}
		s.rowLocks[id] = l
	}
	return l
}

func (s *memoryStore) count(employeeID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.rows {
		if r.EmployeeID == employeeID {
			n++
		}
	}
	return n
}

func (s *memoryStore) WithTransaction(ctx context.Context, fn func(tx repository.AttendanceTx) error) error {
	tx := &memoryTx{store: s}
	defer tx.release()

	if err := fn(tx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range tx.inserts {
		s.rows = append(s.rows, *a)
	}
	for _, a := range tx.updates {
		for i := range s.rows {
			if s.rows[i].ID == a.ID {
				s.rows[i].CheckOutAt = a.CheckOutAt
				s.rows[i].UpdatedAt = a.UpdatedAt
			}
		}
	}
	return nil
}

func (s *memoryStore) ListAttendances(ctx context.Context, filter repository.AttendanceFilter) ([]model.Attendance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++

	var out []model.Attendance
	for _, r := range s.rows {
		day := r.Day()
		if filter.EmployeeID != "" && r.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.DateFrom != nil && day.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && day.After(*filter.DateTo) {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Day().Equal(out[j].Day()) {
			return out[i].Day().After(out[j].Day())
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

type memoryTx struct {
	store   *memoryStore
	held    []*sync.Mutex
	inserts []*model.Attendance
	updates []*model.Attendance
}

func (t *memoryTx) release() {
	for i := len(t.held) - 1; i >= 0; i-- {
		t.held[i].Unlock()
	}
}

func (t *memoryTx) LockEmployee(ctx context.Context, id string) (*model.Employee, error) {
	l := t.store.lockFor("employee:" + id)
	l.Lock()
	t.held = append(t.held, l)

	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	e, ok := t.store.employees[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (t *memoryTx) LockAttendance(ctx context.Context, employeeID string, date time.Time) (*model.Attendance, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.store.missAttendanceLock {
		return nil, nil
	}
	for _, r := range t.store.rows {
		if r.EmployeeID == employeeID && r.Day().Equal(date) {
			row := r
			return &row, nil
		}
	}
	return nil, nil
}

func (t *memoryTx) InsertAttendance(ctx context.Context, a *model.Attendance) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.store.insertErr != nil {
		return t.store.insertErr
	}
	for _, r := range t.store.rows {
		if r.EmployeeID == a.EmployeeID && r.Day().Equal(a.Day()) {
			return repository.ErrDuplicateKey
		}
	}
	t.store.clock = t.store.clock.Add(time.Second)
	a.ID = uuid.NewString()
	a.CreatedAt = t.store.clock
	a.UpdatedAt = t.store.clock
	t.inserts = append(t.inserts, a)
	return nil
}

func (t *memoryTx) UpdateAttendance(ctx context.Context, a *model.Attendance) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	t.store.clock = t.store.clock.Add(time.Second)
	a.UpdatedAt = t.store.clock
	t.updates = append(t.updates, a)
	return nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []model.AttendanceNotification
	err  error
}

func (n *recordingNotifier) EnqueueAttendanceNotification(ctx context.Context, p model.AttendanceNotification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, p)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

func repositoryFilterAll() repository.AttendanceFilter {
	return repository.AttendanceFilter{}
}
