package database

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

var (
	// 数据库相关指标，未初始化时不记录
	dbQueriesTotal  metric.Int64Counter
	dbQueryDuration metric.Float64Histogram

	sensitivePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(password[a-z_]*)\s*=\s*'[^']*'`),
		regexp.MustCompile(`(token[a-z_]*)\s*=\s*'[^']*'`),
		regexp.MustCompile(`(secret[a-z_]*)\s*=\s*'[^']*'`),
	}
)

const (
	spanKey      = "otel:span"
	startTimeKey = "otel:start_time"
)

// InitDatabaseMetrics 初始化数据库指标
func InitDatabaseMetrics(meter metric.Meter) error {
	var err error

	dbQueriesTotal, err = meter.Int64Counter(
		"db.queries.total",
		metric.WithDescription("Total number of database queries"),
		metric.WithUnit("{query}"),
	)
	if err != nil {
		return err
	}

	dbQueryDuration, err = meter.Float64Histogram(
		"db.query.duration",
		metric.WithDescription("Database query duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	)
	return err
}

// OTELPlugin GORM OpenTelemetry 插件
type OTELPlugin struct {
	tracer trace.Tracer
	config PluginConfig
}

// PluginConfig 插件配置
type PluginConfig struct {
	ServiceName   string
	EnableMetrics bool
	MaxSQLLength  int
}

func DefaultPluginConfig() PluginConfig {
	return PluginConfig{
		ServiceName:   "attendly",
		EnableMetrics: true,
		MaxSQLLength:  500,
	}
}

func NewOTELPlugin(config PluginConfig) *OTELPlugin {
	if config.ServiceName == "" {
		config.ServiceName = "attendly"
	}
	if config.MaxSQLLength <= 0 {
		config.MaxSQLLength = 500
	}

	return &OTELPlugin{
		tracer: otel.Tracer(config.ServiceName + ".gorm"),
		config: config,
	}
}

// Name 实现 gorm.Plugin 接口
func (p *OTELPlugin) Name() string {
	return "otel_plugin"
}

// Initialize 注册回调
func (p *OTELPlugin) Initialize(db *gorm.DB) error {
	callbacks := db.Callback()

	hooks := []struct {
		name   string
		before func(string) error
		after  func(string) error
	}{
		{"query", func(n string) error { return callbacks.Query().Before("gorm:query").Register(n, p.beforeCallback) },
			func(n string) error { return callbacks.Query().After("gorm:query").Register(n, p.afterCallback) }},
		{"create", func(n string) error { return callbacks.Create().Before("gorm:create").Register(n, p.beforeCallback) },
			func(n string) error { return callbacks.Create().After("gorm:create").Register(n, p.afterCallback) }},
		{"update", func(n string) error { return callbacks.Update().Before("gorm:update").Register(n, p.beforeCallback) },
			func(n string) error { return callbacks.Update().After("gorm:update").Register(n, p.afterCallback) }},
		{"delete", func(n string) error { return callbacks.Delete().Before("gorm:delete").Register(n, p.beforeCallback) },
			func(n string) error { return callbacks.Delete().After("gorm:delete").Register(n, p.afterCallback) }},
		{"row", func(n string) error { return callbacks.Row().Before("gorm:row").Register(n, p.beforeCallback) },
			func(n string) error { return callbacks.Row().After("gorm:row").Register(n, p.afterCallback) }},
		{"raw", func(n string) error { return callbacks.Raw().Before("gorm:raw").Register(n, p.beforeCallback) },
			func(n string) error { return callbacks.Raw().After("gorm:raw").Register(n, p.afterCallback) }},
	}

	for _, h := range hooks {
		if err := h.before("otel:before_" + h.name); err != nil {
			return err
		}
		if err := h.after("otel:after_" + h.name); err != nil {
			return err
		}
	}
	return nil
}

func (p *OTELPlugin) beforeCallback(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}

	// SQL 此时尚未生成，span 名称在 after 中补全
	ctx, span := p.tracer.Start(ctx, "db."+tableOf(db),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			semconv.DBSystemPostgreSQL,
			attribute.String("service.name", p.config.ServiceName),
		),
	)

	db.InstanceSet(startTimeKey, time.Now())
	db.InstanceSet(spanKey, span)
	db.Statement.Context = ctx
}

func (p *OTELPlugin) afterCallback(db *gorm.DB) {
	spanValue, ok := db.InstanceGet(spanKey)
	if !ok {
		return
	}
	span, ok := spanValue.(trace.Span)
	if !ok {
		return
	}
	defer span.End()

	operation := operationName(db.Statement.SQL.String())
	span.SetName(operation + " " + tableOf(db))
	span.SetAttributes(
		semconv.DBStatement(p.sanitizeSQL(db.Statement.SQL.String())),
		attribute.String("db.operation", operation),
		attribute.String("db.sql.table", tableOf(db)),
		attribute.Int64("db.rows_affected", db.Statement.RowsAffected),
	)

	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.RecordError(db.Error)
		span.SetStatus(codes.Error, db.Error.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	if !p.config.EnableMetrics {
		return
	}
	startValue, ok := db.InstanceGet(startTimeKey)
	if !ok {
		return
	}
	if start, ok := startValue.(time.Time); ok {
		p.recordMetrics(db.Statement.Context, operation, db.Error, time.Since(start).Seconds())
	}
}

func tableOf(db *gorm.DB) string {
	if db.Statement.Table != "" {
		return db.Statement.Table
	}
	return "unknown"
}

// operationName 行锁查询单独标记为 select_for_update，便于在链路中定位锁等待
func operationName(sql string) string {
	sql = strings.ToUpper(strings.TrimSpace(sql))
	switch {
	case sql == "":
		return "db.unknown"
	case strings.HasPrefix(sql, "SELECT") && strings.Contains(sql, "FOR UPDATE"):
		return "db.select_for_update"
	case strings.HasPrefix(sql, "SELECT"):
		return "db.select"
	case strings.HasPrefix(sql, "INSERT"):
		return "db.insert"
	case strings.HasPrefix(sql, "UPDATE"):
		return "db.update"
	case strings.HasPrefix(sql, "DELETE"):
		return "db.delete"
	default:
		return "db.query"
	}
}

// sanitizeSQL 截断并遮盖敏感字段
func (p *OTELPlugin) sanitizeSQL(sql string) string {
	if len(sql) > p.config.MaxSQLLength {
		sql = sql[:p.config.MaxSQLLength] + "..."
	}
	for _, re := range sensitivePatterns {
		sql = re.ReplaceAllString(sql, "$1='***'")
	}
	return sql
}

func (p *OTELPlugin) recordMetrics(ctx context.Context, operation string, err error, duration float64) {
	if dbQueriesTotal == nil || dbQueryDuration == nil {
		return
	}
	status := "success"
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		status = "error"
	}

	labels := metric.WithAttributes(
		attribute.String("db.operation", operation),
		attribute.String("db.status", status),
	)
	dbQueriesTotal.Add(ctx, 1, labels)
	dbQueryDuration.Record(ctx, duration, labels)
}

// WithDefaultOTELPlugin 使用默认配置添加 OpenTelemetry 插件
func WithDefaultOTELPlugin(db *gorm.DB, serviceName string) error {
	config := DefaultPluginConfig()
	config.ServiceName = serviceName
	return db.Use(NewOTELPlugin(config))
}
