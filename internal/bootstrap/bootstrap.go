package bootstrap

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"Attendly/config"
	"Attendly/pkg/logger"
	"Attendly/pkg/metrics"
	pkgotel "Attendly/pkg/otel"
	"Attendly/pkg/snowflake"
	"Attendly/storage"
	"Attendly/storage/database"
	"Attendly/storage/mq"
	"Attendly/storage/redis"
)

// Init server 与 worker 共用的启动流程，需在 logger.Init 之后调用
// 顺序：配置校验 -> OpenTelemetry -> 指标 -> 存储层 -> snowflake
// 返回的 cleanup 按相反顺序释放资源
func Init(ctx context.Context, component string) (func(), error) {
	cfg := &config.Cfg
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	shutdownOTel := func(context.Context) error { return nil }
	if cfg.OTelEnabled {
		shutdown, err := pkgotel.InitOpenTelemetry(ctx, pkgotel.Config{
			ServiceName:  cfg.ServiceName + "-" + component,
			Environment:  cfg.Environment,
			OTLPEndpoint: cfg.OTelEndpoint,
			SampleRatio:  cfg.OTelSampleRatio,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
		}
		shutdownOTel = shutdown
		logger.Logger.Info("OpenTelemetry initialized", zap.String("endpoint", cfg.OTelEndpoint))
	}

	if err := initMetrics(Meter()); err != nil {
		_ = shutdownOTel(context.Background())
		return nil, err
	}

	if err := storage.Init(); err != nil {
		_ = shutdownOTel(context.Background())
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	cleanup := func() {
		storage.Close()
		if err := shutdownOTel(context.Background()); err != nil {
			logger.Logger.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
		}
	}

	if err := snowflake.Init(cfg.SnowflakeMachineID, cfg.SnowflakeDataCenter); err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to initialize snowflake: %w", err)
	}

	return cleanup, nil
}

// Meter 未启用 OpenTelemetry 时返回全局 no-op meter
func Meter() metric.Meter {
	return otel.Meter(config.Cfg.ServiceName)
}

func initMetrics(meter metric.Meter) error {
	for name, initFn := range map[string]func(metric.Meter) error{
		"business": metrics.InitMetrics,
		"database": database.InitDatabaseMetrics,
		"redis":    redis.InitRedisMetrics,
		"rabbitmq": mq.InitMQMetrics,
	} {
		if err := initFn(meter); err != nil {
			return fmt.Errorf("failed to initialize %s metrics: %w", name, err)
		}
	}
	return nil
}
