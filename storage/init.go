package storage

import (
	"Attendly/storage/database"
	"Attendly/storage/mq"
	"Attendly/storage/redis"
)

// Init 统一初始化 storage 层：数据库（含迁移）、Redis、RabbitMQ（含拓扑）
func Init() error {
	if err := database.Init(); err != nil {
		return err
	}

	if err := redis.Init(); err != nil {
		return err
	}

	if err := mq.Init(); err != nil {
		return err
	}

	return nil
}
