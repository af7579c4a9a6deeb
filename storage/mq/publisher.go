package mq

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"Attendly/pkg/logger"
)

var (
	publisherCh *amqp.Channel
	pubMutex    sync.RWMutex // 读写锁，读多写少
)

// Message 待发布的消息，Body 已经序列化
type Message struct {
	Headers    amqp.Table
	MessageID  string
	Body       []byte
	Expiration time.Duration // 仅对进入重试队列的消息有意义
}

func getPublisherChannel() (*amqp.Channel, error) {
	pubMutex.RLock()
	if publisherCh != nil && !publisherCh.IsClosed() {
		ch := publisherCh
		pubMutex.RUnlock()
		return ch, nil
	}
	pubMutex.RUnlock()

	pubMutex.Lock()
	defer pubMutex.Unlock()

	if publisherCh != nil && !publisherCh.IsClosed() {
		return publisherCh, nil
	}

	c := Connection()
	if c == nil {
		return nil, fmt.Errorf("RabbitMQ connection is nil")
	}

	ch, err := c.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open publish channel: %w", err)
	}

	publisherCh = ch

	closeChan := ch.NotifyClose(make(chan *amqp.Error, 1))
	go func() {
		<-closeChan

		pubMutex.Lock()
		if publisherCh == ch {
			publisherCh = nil
		}
		pubMutex.Unlock()

		logger.Logger.Warn("Publisher channel closed, will recreate on next publish",
			zap.String("component", "rabbitmq"),
		)
	}()

	logger.Logger.Info("Publisher channel created",
		zap.String("component", "rabbitmq"),
	)

	return publisherCh, nil
}

// Publish 发布持久化消息，追踪上下文写入消息头
func Publish(ctx context.Context, exchange, routingKey string, msg Message) (err error) {
	start := time.Now()
	destination := exchange
	if destination == "" {
		destination = routingKey
	}

	ctx, span, headers := startPublishSpan(ctx, exchange, routingKey, msg.Headers)
	defer func() {
		endSpan(span, err)
		recordMessage(ctx, "publish", destination, start, err)
	}()

	ch, err := getPublisherChannel()
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(ctx, exchange, routingKey, false, false, buildPublishing(msg, headers, start))
	if err != nil {
		return fmt.Errorf("failed to publish to %s/%s: %w", exchange, routingKey, err)
	}
	return nil
}

func buildPublishing(msg Message, headers amqp.Table, now time.Time) amqp.Publishing {
	p := amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    msg.MessageID,
		Body:         msg.Body,
		Headers:      headers,
		DeliveryMode: amqp.Persistent,
		Timestamp:    now,
	}
	if msg.Expiration > 0 {
		// AMQP 的 expiration 是毫秒字符串
		p.Expiration = strconv.FormatInt(msg.Expiration.Milliseconds(), 10)
	}
	return p
}
