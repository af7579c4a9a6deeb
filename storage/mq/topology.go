package mq

import (
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// 邮件任务拓扑：
//
//	mail.direct (direct) --reset_password/attendance_notification/requeue--> mail.jobs
//	mail.retry  过期后死信回 mail.direct，路由键 mail.requeue
//	mail.dead   超过最大次数的任务
const (
	MailExchange   = "mail.direct"
	MailQueue      = "mail.jobs"
	MailRetryQueue = "mail.retry"
	MailDeadQueue  = "mail.dead"

	RoutingKeyResetPassword          = "mail.reset_password"
	RoutingKeyAttendanceNotification = "mail.attendance_notification"
	RoutingKeyRequeue                = "mail.requeue"

	// DefaultExchange 直接按队列名投递
	DefaultExchange = ""

	baseRetryDelay = time.Second
)

var mailBindings = []string{
	RoutingKeyResetPassword,
	RoutingKeyAttendanceNotification,
	RoutingKeyRequeue,
}

// declarer 便于测试时替换 *amqp.Channel
type declarer interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
}

// DeclareMailTopology 幂等声明交换机、队列与绑定
func DeclareMailTopology(ch declarer) error {
	if err := ch.ExchangeDeclare(MailExchange, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", MailExchange, err)
	}

	if _, err := ch.QueueDeclare(MailQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", MailQueue, err)
	}
	for _, key := range mailBindings {
		if err := ch.QueueBind(MailQueue, key, MailExchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind %s with %s: %w", MailQueue, key, err)
		}
	}

	if _, err := ch.QueueDeclare(MailRetryQueue, true, false, false, false, RetryQueueArgs()); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", MailRetryQueue, err)
	}

	if _, err := ch.QueueDeclare(MailDeadQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", MailDeadQueue, err)
	}

	return nil
}

// RetryQueueArgs 重试队列的消息过期后回到主队列
func RetryQueueArgs() amqp.Table {
	return amqp.Table{
		"x-dead-letter-exchange":    MailExchange,
		"x-dead-letter-routing-key": RoutingKeyRequeue,
	}
}

// RetryDelay 第 attempt 次失败后的等待时间：1s, 2s, 4s ...
func RetryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 16 {
		attempt = 16
	}
	return baseRetryDelay << (attempt - 1)
}
