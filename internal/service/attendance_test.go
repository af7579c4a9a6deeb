package service

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Attendly/internal/model"
	"Attendly/internal/model/dto"
	"Attendly/pkg/errors"
)

const employeeID = "5b8f2c1e-9d4a-4f63-a1b2-3c4d5e6f7a80"

func testEmployee() model.Employee {
	e := model.Employee{
		Names:              "Ana Perez",
		Email:              "ana@example.com",
		EmployeeIdentifier: "EMP-001",
	}
	e.ID = employeeID
	return e
}

func newAttendanceFixture() (*AttendanceService, *memoryStore, *recordingNotifier) {
	store := newMemoryStore(testEmployee())
	notifier := &recordingNotifier{}
	return NewAttendanceService(store, notifier, time.UTC), store, notifier
}

func at(value string) *time.Time {
	t, err := time.ParseInLocation("2006-01-02T15:04:05", value, time.UTC)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestCheckInCreatesRecordAndNotifies(t *testing.T) {
	svc, _, notifier := newAttendanceFixture()

	record, err := svc.CheckIn(context.Background(), employeeID, at("2026-02-07T09:00:00"))
	require.NoError(t, err)

	assert.Equal(t, employeeID, record.EmployeeID)
	assert.Equal(t, "2026-02-07", record.DateString())
	assert.True(t, record.CheckInAt.Equal(*at("2026-02-07T09:00:00")))
	assert.Nil(t, record.CheckOutAt)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, model.AttendanceNotification{
		Email:          "ana@example.com",
		EmployeeName:   "Ana Perez",
		AttendanceDate: "2026-02-07",
		Status:         model.AttendanceCheckIn,
		OccurredAt:     "2026-02-07T09:00:00.000Z",
	}, notifier.sent[0])
}

func TestCheckInTwiceConflicts(t *testing.T) {
	svc, store, notifier := newAttendanceFixture()

	_, err := svc.CheckIn(context.Background(), employeeID, at("2026-02-07T09:00:00"))
	require.NoError(t, err)

	_, err = svc.CheckIn(context.Background(), employeeID, at("2026-02-07T09:00:00"))
	assert.ErrorIs(t, err, errors.AttendanceAlreadyCheckedIn)
	assert.Equal(t, 1, store.count(employeeID))
	assert.Equal(t, 1, notifier.count())
}

func TestCheckOutClosesRecord(t *testing.T) {
	svc, store, notifier := newAttendanceFixture()

	created, err := svc.CheckIn(context.Background(), employeeID, at("2026-02-07T09:00:00"))
	require.NoError(t, err)

	updated, err := svc.CheckOut(context.Background(), employeeID, at("2026-02-07T17:00:00"))
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	require.NotNil(t, updated.CheckOutAt)
	assert.True(t, updated.CheckOutAt.Equal(*at("2026-02-07T17:00:00")))
	assert.Equal(t, 1, store.count(employeeID))

	require.Equal(t, 2, notifier.count())
	assert.Equal(t, model.AttendanceCheckOut, notifier.sent[1].Status)
	assert.Equal(t, "2026-02-07T17:00:00.000Z", notifier.sent[1].OccurredAt)
}

func TestCheckOutWithoutCheckInConflicts(t *testing.T) {
	svc, _, notifier := newAttendanceFixture()

	_, err := svc.CheckOut(context.Background(), employeeID, at("2026-02-07T17:00:00"))
	assert.ErrorIs(t, err, errors.AttendanceNotCheckedIn)
	assert.Equal(t, errors.KindConflict, errors.KindOf(err))
	assert.Zero(t, notifier.count())
}

func TestCheckOutTwiceKeepsFirstTimestamp(t *testing.T) {
	svc, store, _ := newAttendanceFixture()
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, employeeID, at("2026-02-07T09:00:00"))
	require.NoError(t, err)
	_, err = svc.CheckOut(ctx, employeeID, at("2026-02-07T17:00:00"))
	require.NoError(t, err)

	_, err = svc.CheckOut(ctx, employeeID, at("2026-02-07T18:00:00"))
	assert.ErrorIs(t, err, errors.AttendanceAlreadyCheckedOut)

	rows, err := store.ListAttendances(ctx, repositoryFilterAll())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].CheckOutAt.Equal(*at("2026-02-07T17:00:00")))
}

func TestUnknownEmployeeNotFound(t *testing.T) {
	svc, _, notifier := newAttendanceFixture()
	missing := "00000000-0000-4000-8000-000000000000"

	_, err := svc.CheckIn(context.Background(), missing, nil)
	assert.ErrorIs(t, err, errors.EmployeeNotFound)

	_, err = svc.CheckOut(context.Background(), missing, nil)
	assert.ErrorIs(t, err, errors.EmployeeNotFound)
	assert.Zero(t, notifier.count())
}

func TestCheckInDefaultsToNow(t *testing.T) {
	svc, _, _ := newAttendanceFixture()
	svc.now = func() time.Time { return *at("2026-02-09T08:15:00") }

	record, err := svc.CheckIn(context.Background(), employeeID, nil)
	require.NoError(t, err)
	assert.Equal(t, "2026-02-09", record.DateString())
}

func TestDateDerivedInBusinessLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	store := newMemoryStore(testEmployee())
	svc := NewAttendanceService(store, nil, loc)

	// 2026-02-08 03:00 UTC 在 UTC-5 仍是 2026-02-07
	record, err := svc.CheckIn(context.Background(), employeeID, at("2026-02-08T03:00:00"))
	require.NoError(t, err)
	assert.Equal(t, "2026-02-07", record.DateString())
}

func TestDuplicateKeyRemappedToConflict(t *testing.T) {
	svc, store, notifier := newAttendanceFixture()
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, employeeID, at("2026-02-07T09:00:00"))
	require.NoError(t, err)

	store.missAttendanceLock = true
	_, err = svc.CheckIn(ctx, employeeID, at("2026-02-07T10:00:00"))
	assert.ErrorIs(t, err, errors.AttendanceAlreadyCheckedIn)
	assert.Equal(t, 1, store.count(employeeID))
	assert.Equal(t, 1, notifier.count())
}

func TestStorageErrorsPropagateUnmodified(t *testing.T) {
	svc, store, notifier := newAttendanceFixture()
	boom := stderrors.New("connection reset by peer")
	store.insertErr = boom

	_, err := svc.CheckIn(context.Background(), employeeID, at("2026-02-07T09:00:00"))
	assert.Same(t, boom, err)
	assert.Equal(t, errors.KindInternal, errors.KindOf(err))
	assert.Zero(t, notifier.count())
}

func TestNotifierFailureDoesNotFailCheckIn(t *testing.T) {
	svc, store, notifier := newAttendanceFixture()
	notifier.err = stderrors.New("broker unavailable")

	record, err := svc.CheckIn(context.Background(), employeeID, at("2026-02-07T09:00:00"))
	require.NoError(t, err)
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, 1, store.count(employeeID))
}

func TestConcurrentCheckInsCreateExactlyOne(t *testing.T) {
	svc, store, notifier := newAttendanceFixture()
	const workers = 16

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		conflicts int
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.CheckIn(context.Background(), employeeID, at("2026-02-07T09:00:00"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case stderrors.Is(err, errors.AttendanceAlreadyCheckedIn):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, workers-1, conflicts)
	assert.Equal(t, 1, store.count(employeeID))
	assert.Equal(t, 1, notifier.count())
}

func TestConcurrentCheckOutsCloseOnce(t *testing.T) {
	svc, _, notifier := newAttendanceFixture()
	_, err := svc.CheckIn(context.Background(), employeeID, at("2026-02-07T09:00:00"))
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ts := at("2026-02-07T17:00:00").Add(time.Duration(i) * time.Minute)
			if _, err := svc.CheckOut(context.Background(), employeeID, &ts); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, success)
	assert.Equal(t, 2, notifier.count())
}

func TestFindAllOrdersByDateThenCreation(t *testing.T) {
	other := model.Employee{Names: "Bo", Email: "bo@example.com", EmployeeIdentifier: "EMP-002"}
	other.ID = "6c9f3d2f-0e5b-4a74-b2c3-4d5e6f7a8b91"
	store := newMemoryStore(testEmployee(), other)
	svc := NewAttendanceService(store, nil, time.UTC)
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, employeeID, at("2026-02-06T09:00:00"))
	require.NoError(t, err)
	first, err := svc.CheckIn(ctx, employeeID, at("2026-02-07T09:00:00"))
	require.NoError(t, err)
	second, err := svc.CheckIn(ctx, other.ID, at("2026-02-07T08:00:00"))
	require.NoError(t, err)

	rows, err := svc.FindAll(ctx, dto.AttendanceListQuery{})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, second.ID, rows[0].ID)
	assert.Equal(t, first.ID, rows[1].ID)
	assert.Equal(t, "2026-02-06", rows[2].DateString())

	rows, err = svc.FindAll(ctx, dto.AttendanceListQuery{EmployeeID: employeeID, DateFrom: "2026-02-07", DateTo: "2026-02-07"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, first.ID, rows[0].ID)
}

func TestFindAllRejectsInvertedRange(t *testing.T) {
	svc, store, _ := newAttendanceFixture()

	_, err := svc.FindAll(context.Background(), dto.AttendanceListQuery{DateFrom: "2026-02-08", DateTo: "2026-02-07"})
	assert.ErrorIs(t, err, errors.AttendanceDateRangeInvalid)
	assert.Equal(t, errors.KindBadRequest, errors.KindOf(err))
	assert.Zero(t, store.listCalls)
}

func TestFindAllRejectsMalformedDate(t *testing.T) {
	svc, store, _ := newAttendanceFixture()

	_, err := svc.FindAll(context.Background(), dto.AttendanceListQuery{DateFrom: "07/02/2026"})
	assert.Equal(t, errors.KindBadRequest, errors.KindOf(err))
	assert.Zero(t, store.listCalls)
}
