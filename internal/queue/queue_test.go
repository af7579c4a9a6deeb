package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Attendly/internal/mail"
	"Attendly/internal/model"
	"Attendly/storage/mq"
)

type published struct {
	exchange   string
	routingKey string
	msg        mq.Message
}

type recordingPublisher struct {
	mu    sync.Mutex
	calls []published
	err   error
}

func (r *recordingPublisher) Publish(ctx context.Context, exchange, routingKey string, msg mq.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.calls = append(r.calls, published{exchange, routingKey, msg})
	return nil
}

type fakeSender struct {
	err  error
	sent []mail.Message
}

func (f *fakeSender) Send(ctx context.Context, msg mail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeSender) Transport() string { return "fake" }

type memoryMarks struct {
	state map[string]string
	err   error
}

func newMemoryMarks() *memoryMarks {
	return &memoryMarks{state: map[string]string{}}
}

func (m *memoryMarks) TryMarkProcessing(ctx context.Context, id string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.state[id]; ok {
		return false, nil
	}
	m.state[id] = "processing"
	return true, nil
}

func (m *memoryMarks) MarkProcessed(ctx context.Context, id string) error {
	m.state[id] = "processed"
	return nil
}

func (m *memoryMarks) Unmark(ctx context.Context, id string) error {
	delete(m.state, id)
	return nil
}

func attendanceJob(attempt int) model.MailJob {
	return model.MailJob{
		MessageID: "1001",
		Kind:      model.MailKindAttendanceNotification,
		Attempt:   attempt,
		Attendance: &model.AttendanceNotification{
			Email:          "ana@example.com",
			EmployeeName:   "Ana",
			AttendanceDate: "2026-02-07",
			Status:         model.AttendanceCheckIn,
			OccurredAt:     "2026-02-07T09:00:00.000Z",
		},
	}
}

func delivery(t *testing.T, job model.MailJob) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(job)
	require.NoError(t, err)
	return amqp.Delivery{MessageId: job.MessageID, Body: body}
}

func newTestConsumer(sender *fakeSender, marks *memoryMarks, pub *recordingPublisher) *MailConsumer {
	c := NewMailConsumer(sender, marks, 3)
	c.publish = pub.Publish
	return c
}

func TestProducerEnqueueAttendanceNotification(t *testing.T) {
	pub := &recordingPublisher{}
	p := &Producer{
		publish: pub.Publish,
		nextID:  func() (string, error) { return "42", nil },
		now:     func() time.Time { return time.Date(2026, 2, 7, 9, 0, 0, 0, time.UTC) },
	}

	err := p.EnqueueAttendanceNotification(context.Background(), *attendanceJob(1).Attendance)
	require.NoError(t, err)

	require.Len(t, pub.calls, 1)
	call := pub.calls[0]
	assert.Equal(t, mq.MailExchange, call.exchange)
	assert.Equal(t, mq.RoutingKeyAttendanceNotification, call.routingKey)
	assert.Equal(t, "42", call.msg.MessageID)

	var job model.MailJob
	require.NoError(t, json.Unmarshal(call.msg.Body, &job))
	assert.Equal(t, 1, job.Attempt)
	assert.Equal(t, "2026-02-07T09:00:00.000Z", job.CreatedAt)
	assert.Equal(t, "Ana", job.Attendance.EmployeeName)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(call.msg.Body, &raw))
	payload := raw["attendance"].(map[string]interface{})
	assert.Equal(t, "2026-02-07", payload["attendanceDate"])
	assert.Equal(t, "check-in", payload["status"])
}

func TestProducerEnqueueResetPassword(t *testing.T) {
	pub := &recordingPublisher{}
	p := &Producer{
		publish: pub.Publish,
		nextID:  func() (string, error) { return "43", nil },
		now:     time.Now,
	}

	require.NoError(t, p.EnqueueResetPassword(context.Background(), model.ResetPasswordMail{Email: "a@example.com", ResetURL: "http://x?token=t"}))
	require.Len(t, pub.calls, 1)
	assert.Equal(t, mq.RoutingKeyResetPassword, pub.calls[0].routingKey)
}

func TestProducerPropagatesErrors(t *testing.T) {
	p := &Producer{
		publish: (&recordingPublisher{err: errors.New("channel closed")}).Publish,
		nextID:  func() (string, error) { return "1", nil },
		now:     time.Now,
	}
	assert.Error(t, p.EnqueueResetPassword(context.Background(), model.ResetPasswordMail{}))

	p.nextID = func() (string, error) { return "", errors.New("not initialized") }
	assert.Error(t, p.EnqueueResetPassword(context.Background(), model.ResetPasswordMail{}))
}

func TestConsumerDelivers(t *testing.T) {
	sender, marks, pub := &fakeSender{}, newMemoryMarks(), &recordingPublisher{}
	c := newTestConsumer(sender, marks, pub)

	require.NoError(t, c.Handle(context.Background(), delivery(t, attendanceJob(1))))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "Attendance check-in recorded", sender.sent[0].Subject)
	assert.Equal(t, "processed", marks.state["1001"])
	assert.Empty(t, pub.calls)
}

func TestConsumerSkipsDuplicates(t *testing.T) {
	sender, marks, pub := &fakeSender{}, newMemoryMarks(), &recordingPublisher{}
	c := newTestConsumer(sender, marks, pub)
	d := delivery(t, attendanceJob(1))

	require.NoError(t, c.Handle(context.Background(), d))
	require.NoError(t, c.Handle(context.Background(), d))

	assert.Len(t, sender.sent, 1)
}

func TestConsumerDeliversWhenMarkerUnavailable(t *testing.T) {
	sender, marks, pub := &fakeSender{}, newMemoryMarks(), &recordingPublisher{}
	marks.err = errors.New("redis down")
	c := newTestConsumer(sender, marks, pub)

	require.NoError(t, c.Handle(context.Background(), delivery(t, attendanceJob(1))))
	assert.Len(t, sender.sent, 1)
}

func TestConsumerSchedulesRetryWithBackoff(t *testing.T) {
	sender, marks, pub := &fakeSender{err: errors.New("smtp 421")}, newMemoryMarks(), &recordingPublisher{}
	c := newTestConsumer(sender, marks, pub)

	require.NoError(t, c.Handle(context.Background(), delivery(t, attendanceJob(2))))

	require.Len(t, pub.calls, 1)
	call := pub.calls[0]
	assert.Equal(t, mq.DefaultExchange, call.exchange)
	assert.Equal(t, mq.MailRetryQueue, call.routingKey)
	assert.Equal(t, 2*time.Second, call.msg.Expiration)
	assert.Equal(t, "smtp 421", call.msg.Headers[headerLastError])

	var job model.MailJob
	require.NoError(t, json.Unmarshal(call.msg.Body, &job))
	assert.Equal(t, 3, job.Attempt)
	assert.Equal(t, "1001", job.MessageID)

	_, marked := marks.state["1001"]
	assert.False(t, marked, "failed delivery must release the marker")
}

func TestConsumerDeadLettersAfterMaxAttempts(t *testing.T) {
	sender, marks, pub := &fakeSender{err: errors.New("smtp 550")}, newMemoryMarks(), &recordingPublisher{}
	c := newTestConsumer(sender, marks, pub)

	require.NoError(t, c.Handle(context.Background(), delivery(t, attendanceJob(3))))

	require.Len(t, pub.calls, 1)
	assert.Equal(t, mq.MailDeadQueue, pub.calls[0].routingKey)
	assert.Zero(t, pub.calls[0].msg.Expiration)
}

func TestConsumerDeadLettersMalformedBody(t *testing.T) {
	sender, marks, pub := &fakeSender{}, newMemoryMarks(), &recordingPublisher{}
	c := newTestConsumer(sender, marks, pub)

	require.NoError(t, c.Handle(context.Background(), amqp.Delivery{MessageId: "x", Body: []byte("{not json")}))

	require.Len(t, pub.calls, 1)
	assert.Equal(t, mq.MailDeadQueue, pub.calls[0].routingKey)
	assert.Empty(t, sender.sent)
}

func TestConsumerRequeuesWhenRepublishFails(t *testing.T) {
	sender, marks := &fakeSender{err: errors.New("smtp 421")}, newMemoryMarks()
	c := newTestConsumer(sender, marks, &recordingPublisher{err: errors.New("channel closed")})

	assert.Error(t, c.Handle(context.Background(), delivery(t, attendanceJob(1))))
}

func TestConsumerUncomposableJobReachesDeadQueueAfterRedelivery(t *testing.T) {
	sender, marks, pub := &fakeSender{}, newMemoryMarks(), &recordingPublisher{err: errors.New("channel closed")}
	c := newTestConsumer(sender, marks, pub)

	job := attendanceJob(1)
	job.Attendance = nil
	d := delivery(t, job)

	assert.Error(t, c.Handle(context.Background(), d))
	_, marked := marks.state["1001"]
	assert.False(t, marked, "a failed dead-letter publish must not leave the job marked")

	pub.err = nil
	require.NoError(t, c.Handle(context.Background(), d))

	require.Len(t, pub.calls, 1)
	assert.Equal(t, mq.MailDeadQueue, pub.calls[0].routingKey)
	assert.Equal(t, "processed", marks.state["1001"])
	assert.Empty(t, sender.sent)
}
