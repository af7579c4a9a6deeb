package cache

import (
	"context"
	"fmt"
	"time"

	"Attendly/storage/redis"
)

const (
	messagePrefix = "mail:message"

	processingValue = "processing"
	processedValue  = "processed"

	// 处理中标记的过期时间，worker 崩溃后标记自动释放
	ProcessingTTL = 10 * time.Minute
	ProcessedTTL  = 48 * time.Hour
)

// MessageMarks 基于 Redis 的消息幂等标记，key 为 message_id
type MessageMarks struct{}

func messageKey(messageID string) string {
	return redis.Key(messagePrefix, messageID)
}

// TryMarkProcessing 原子性地标记消息正在处理（SETNX）
// 返回 false 表示消息已处理或正被其他消费者处理
func (MessageMarks) TryMarkProcessing(ctx context.Context, messageID string) (bool, error) {
	ok, err := redis.Client().SetNX(ctx, messageKey(messageID), processingValue, ProcessingTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark message %s as processing: %w", messageID, err)
	}
	return ok, nil
}

// MarkProcessed 处理成功后延长标记，重复投递将被跳过
func (MessageMarks) MarkProcessed(ctx context.Context, messageID string) error {
	return redis.Client().Set(ctx, messageKey(messageID), processedValue, ProcessedTTL).Err()
}

// Unmark 处理失败时释放标记，允许后续重试
func (MessageMarks) Unmark(ctx context.Context, messageID string) error {
	return redis.Client().Del(ctx, messageKey(messageID)).Err()
}
