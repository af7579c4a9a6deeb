package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"Attendly/internal/mail"
	"Attendly/internal/model"
	"Attendly/pkg/logger"
	"Attendly/pkg/metrics"
	"Attendly/storage/mq"
)

const (
	headerAttempt   = "x-attempt"
	headerLastError = "x-last-error"

	decisionRetry = "retry"
	decisionDead  = "dead"
)

// MessageMarker 消息幂等标记，由 cache.MessageMarks 实现
type MessageMarker interface {
	TryMarkProcessing(ctx context.Context, messageID string) (bool, error)
	MarkProcessed(ctx context.Context, messageID string) error
	Unmark(ctx context.Context, messageID string) error
}

// MailConsumer 消费 mail.jobs：投递成功即确认，失败进入重试队列，超过次数进入死信队列
type MailConsumer struct {
	sender      mail.Sender
	marks       MessageMarker
	publish     PublishFunc
	maxAttempts int
}

func NewMailConsumer(sender mail.Sender, marks MessageMarker, maxAttempts int) *MailConsumer {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &MailConsumer{
		sender:      sender,
		marks:       marks,
		publish:     mq.Publish,
		maxAttempts: maxAttempts,
	}
}

// Start 阻塞直到 ctx 取消
func (c *MailConsumer) Start(ctx context.Context) error {
	return mq.Consume(ctx, mq.ConsumeOptions{
		Queue:         mq.MailQueue,
		ConsumerTag:   "mail_consumer",
		PrefetchCount: 10,
		Handler:       c.Handle,
	})
}

// Handle 返回 nil 表示消息可以确认；只有重新投递失败时才返回错误
func (c *MailConsumer) Handle(ctx context.Context, d amqp.Delivery) error {
	log := logger.Ctx(ctx).With(zap.String("component", "mail_consumer"))

	var job model.MailJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		log.Error("Malformed mail job, moving to dead queue",
			zap.String("message_id", d.MessageId),
			zap.Error(err),
		)
		return c.publish(ctx, mq.DefaultExchange, mq.MailDeadQueue, mq.Message{
			MessageID: d.MessageId,
			Body:      d.Body,
			Headers:   amqp.Table{headerLastError: err.Error()},
		})
	}
	if job.MessageID == "" {
		job.MessageID = d.MessageId
	}
	if job.Attempt < 1 {
		job.Attempt = 1
	}
	log = log.With(
		zap.String("message_id", job.MessageID),
		zap.String("kind", string(job.Kind)),
		zap.Int("attempt", job.Attempt),
	)

	if job.MessageID != "" {
		ok, err := c.marks.TryMarkProcessing(ctx, job.MessageID)
		if err != nil {
			// 标记失败时继续投递，宁可重复也不丢
			log.Warn("Failed to check message processed status", zap.Error(err))
		} else if !ok {
			log.Info("Message already processed or being processed, skipping")
			return nil
		}
	}

	msg, err := mail.Compose(job)
	if err != nil {
		log.Error("Cannot compose mail, moving to dead queue", zap.Error(err))
		if dlErr := c.deadLetter(ctx, job, err); dlErr != nil {
			// 死信投递失败时释放标记，重新入队的消息才能再次进入死信流程
			c.release(ctx, log, job.MessageID)
			return dlErr
		}
		c.markProcessed(ctx, log, job.MessageID)
		return nil
	}

	start := time.Now()
	sendErr := c.sender.Send(ctx, msg)
	metrics.RecordMailDelivery(ctx, string(job.Kind), c.sender.Transport(), sendErr, time.Since(start))

	if sendErr == nil {
		c.markProcessed(ctx, log, job.MessageID)
		log.Info("Mail delivered", zap.String("to", msg.To))
		return nil
	}

	log.Warn("Mail delivery failed", zap.Error(sendErr))
	c.release(ctx, log, job.MessageID)

	if job.Attempt >= c.maxAttempts {
		log.Error("Mail delivery attempts exhausted, moving to dead queue")
		return c.deadLetter(ctx, job, sendErr)
	}
	return c.retry(ctx, job, sendErr)
}

func (c *MailConsumer) markProcessed(ctx context.Context, log *zap.Logger, messageID string) {
	if messageID == "" {
		return
	}
	if err := c.marks.MarkProcessed(ctx, messageID); err != nil {
		log.Warn("Failed to mark message as processed", zap.Error(err))
	}
}

func (c *MailConsumer) release(ctx context.Context, log *zap.Logger, messageID string) {
	if messageID == "" {
		return
	}
	if err := c.marks.Unmark(ctx, messageID); err != nil {
		log.Warn("Failed to release message marker", zap.Error(err))
	}
}

// retry 经 mail.retry 延迟后回到 mail.jobs
func (c *MailConsumer) retry(ctx context.Context, job model.MailJob, cause error) error {
	delay := mq.RetryDelay(job.Attempt)
	job.Attempt++

	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal mail job: %w", err)
	}

	if err := c.publish(ctx, mq.DefaultExchange, mq.MailRetryQueue, mq.Message{
		MessageID:  job.MessageID,
		Body:       body,
		Expiration: delay,
		Headers: amqp.Table{
			headerAttempt:   int32(job.Attempt),
			headerLastError: cause.Error(),
		},
	}); err != nil {
		return fmt.Errorf("failed to schedule retry: %w", err)
	}

	metrics.RecordMailRetry(ctx, string(job.Kind), decisionRetry)
	return nil
}

func (c *MailConsumer) deadLetter(ctx context.Context, job model.MailJob, cause error) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal mail job: %w", err)
	}

	if err := c.publish(ctx, mq.DefaultExchange, mq.MailDeadQueue, mq.Message{
		MessageID: job.MessageID,
		Body:      body,
		Headers: amqp.Table{
			headerAttempt:   int32(job.Attempt),
			headerLastError: cause.Error(),
		},
	}); err != nil {
		return fmt.Errorf("failed to dead-letter mail job: %w", err)
	}

	metrics.RecordMailRetry(ctx, string(job.Kind), decisionDead)
	return nil
}
