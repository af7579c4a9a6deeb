package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"Attendly/internal/model"
	"Attendly/pkg/logger"
	"Attendly/pkg/snowflake"
	"Attendly/storage/mq"
	"Attendly/utils"
)

// PublishFunc 与 mq.Publish 签名一致，测试中替换
type PublishFunc func(ctx context.Context, exchange, routingKey string, msg mq.Message) error

// Producer 把邮件任务投递到 mail.direct
type Producer struct {
	publish PublishFunc
	nextID  func() (string, error)
	now     func() time.Time
}

func NewProducer() *Producer {
	return &Producer{
		publish: mq.Publish,
		nextID:  snowflake.NextMessageID,
		now:     time.Now,
	}
}

// EnqueueAttendanceNotification 签到/签退通知
func (p *Producer) EnqueueAttendanceNotification(ctx context.Context, n model.AttendanceNotification) error {
	return p.enqueue(ctx, mq.RoutingKeyAttendanceNotification, model.MailJob{
		Kind:       model.MailKindAttendanceNotification,
		Attendance: &n,
	})
}

// EnqueueResetPassword 重置密码邮件
func (p *Producer) EnqueueResetPassword(ctx context.Context, m model.ResetPasswordMail) error {
	return p.enqueue(ctx, mq.RoutingKeyResetPassword, model.MailJob{
		Kind:          model.MailKindResetPassword,
		ResetPassword: &m,
	})
}

func (p *Producer) enqueue(ctx context.Context, routingKey string, job model.MailJob) error {
	id, err := p.nextID()
	if err != nil {
		return fmt.Errorf("failed to generate message ID: %w", err)
	}
	job.MessageID = id
	job.Attempt = 1
	job.CreatedAt = utils.FormatISO(p.now())

	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal mail job: %w", err)
	}

	if err := p.publish(ctx, mq.MailExchange, routingKey, mq.Message{
		MessageID: job.MessageID,
		Body:      body,
	}); err != nil {
		return err
	}

	logger.Ctx(ctx).Debug("Published mail job",
		zap.String("message_id", job.MessageID),
		zap.String("kind", string(job.Kind)),
	)
	return nil
}
