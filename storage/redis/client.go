package redis

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"Attendly/config"
)

const (
	defaultPrefix = "attendly"
	initTimeout   = 10 * time.Second
)

var (
	client  *redis.Client
	once    sync.Once
	initErr error
)

// options 限流与幂等标记都是短命令，超时取得比较紧
func options(cfg *config.Config) *redis.Options {
	return &redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		MinIdleConns: 5,
		MaxRetries:   3,
	}
}

func Init() error {
	once.Do(func() {
		cfg := &config.Cfg
		c := redis.NewClient(options(cfg))
		c.AddHook(NewTracingHook(cfg.ServiceName, cfg.RedisDB))

		ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
		defer cancel()
		if err := c.Ping(ctx).Err(); err != nil {
			_ = c.Close()
			initErr = fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
			return
		}
		client = c
	})
	return initErr
}

// Client 未初始化即调用属于启动顺序错误
func Client() *redis.Client {
	if client == nil {
		panic("redis: Client called before Init")
	}
	return client
}

func Ping(ctx context.Context) error {
	if client == nil {
		return redis.ErrClosed
	}
	return client.Ping(ctx).Err()
}

func Close(ctx context.Context) error {
	if client == nil {
		return nil
	}
	return client.Close()
}

// Key 拼接带全局前缀的键名，空片段会被忽略
func Key(parts ...string) string {
	prefix := config.Cfg.RedisPrefix
	if prefix == "" {
		prefix = defaultPrefix
	}

	segments := make([]string, 0, len(parts)+1)
	segments = append(segments, prefix)
	for _, part := range parts {
		if part != "" {
			segments = append(segments, part)
		}
	}
	return strings.Join(segments, ":")
}
