package storage

import (
	"context"
	"time"

	"go.uber.org/zap"

	"Attendly/pkg/logger"
	"Attendly/storage/database"
	"Attendly/storage/mq"
	"Attendly/storage/redis"
)

type closer struct {
	close func(ctx context.Context) error
	name  string
}

// Close 优雅关闭所有存储连接
// 顺序：MQ -> Redis -> Database，先停止投递，最后释放数据库
func Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	log := logger.Named("storage")
	log.Info("Closing storage connections...")

	for _, c := range []closer{
		{name: "rabbitmq", close: mq.Close},
		{name: "redis", close: redis.Close},
		{name: "database", close: database.Close},
	} {
		if err := c.close(ctx); err != nil {
			log.Error("Failed to close connection", zap.String("target", c.name), zap.Error(err))
			continue
		}
		log.Info("Connection closed", zap.String("target", c.name))
	}

	log.Info("All storage connections closed")
}
