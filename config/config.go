package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

var Cfg Config

type Config struct {
	// 服务配置
	ServerPort  string `env:"SERVER_PORT" envDefault:"3000"`
	ServerHost  string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // development, test, production
	ServiceName string `env:"SERVICE_NAME" envDefault:"attendly"`

	// 考勤日期的业务时区，Local 表示服务器本地时区
	AppTimezone string `env:"APP_TIMEZONE" envDefault:"Local"`

	// PostgreSQL 配置
	PostgreSQLHost     string   `env:"POSTGRESQL_HOST" envDefault:"localhost"`
	PostgreSQLPort     string   `env:"POSTGRESQL_PORT" envDefault:"5432"`
	PostgreSQLUser     string   `env:"POSTGRESQL_USER" envDefault:"postgres"`
	PostgreSQLPassword string   `env:"POSTGRESQL_PASSWORD" envDefault:"postgres"`
	PostgreSQLDatabase string   `env:"POSTGRESQL_DATABASE" envDefault:"attendly"`
	PostgreSQLSchema   string   `env:"POSTGRESQL_SCHEMA" envDefault:"public"`
	PostgreSQLSSLMode  string   `env:"POSTGRESQL_SSLMODE" envDefault:"disable"`
	PostgreSQLMaxIdle  int      `env:"POSTGRESQL_MAX_IDLE" envDefault:"10"`
	PostgreSQLMaxOpen  int      `env:"POSTGRESQL_MAX_OPEN" envDefault:"50"`
	PostgreSQLReplicas []string `env:"POSTGRESQL_REPLICAS" envSeparator:","` // 只读副本 DSN 列表，列表查询和报表走副本

	// Redis 配置
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"attendly"`

	// RabbitMQ 配置
	RabbitMQAddr     string `env:"RABBITMQ_ADDR" envDefault:"localhost"`
	RabbitMQPort     string `env:"RABBITMQ_PORT" envDefault:"5672"`
	RabbitMQUsername string `env:"RABBITMQ_USERNAME" envDefault:"guest"`
	RabbitMQPassword string `env:"RABBITMQ_PASSWORD" envDefault:"guest"`
	RabbitMQVhost    string `env:"RABBITMQ_VHOST" envDefault:"/"`

	// JWT 配置
	JWTSecret        string `env:"JWT_SECRET"` // 必填，access token 签名
	JWTExpireMinutes int    `env:"JWT_EXPIRE_MINUTES" envDefault:"15"`
	JWTRefreshSecret string `env:"JWT_REFRESH_SECRET"` // 必填，refresh token 签名
	JWTRefreshDays   int    `env:"JWT_REFRESH_DAYS" envDefault:"7"`

	// 邮件配置
	MailTransport   string `env:"MAIL_TRANSPORT" envDefault:"console"` // console, smtp
	MailHost        string `env:"MAIL_HOST"`
	MailPort        int    `env:"MAIL_PORT" envDefault:"2525"`
	MailUser        string `env:"MAIL_USER"`
	MailPass        string `env:"MAIL_PASS"`
	MailFrom        string `env:"MAIL_FROM" envDefault:"no-reply@attendly.local"`
	MailMaxAttempts int    `env:"MAIL_MAX_ATTEMPTS" envDefault:"3"`

	FrontendResetURL string `env:"FRONTEND_RESET_URL" envDefault:"http://localhost:3001/reset-password"`

	// Snowflake ID 生成器配置
	SnowflakeMachineID  int64 `env:"SNOWFLAKE_MACHINE_ID" envDefault:"1"`
	SnowflakeDataCenter int64 `env:"SNOWFLAKE_DATACENTER_ID" envDefault:"1"`

	// 日志配置
	LoggerLevel      string `env:"LOGGER_LEVEL" envDefault:"INFO"`
	LoggerFormat     string `env:"LOGGER_FORMAT" envDefault:"text"` // json, text
	LoggerOutputPath string `env:"LOGGER_OUTPUT_PATH" envDefault:"stdout"`

	// 链路追踪配置
	OTelEnabled     bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTelEndpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	OTelSampleRatio float64 `env:"OTEL_SAMPLE_RATIO" envDefault:"0.1"`

	// 速率限制配置
	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitWindow  int  `env:"RATE_LIMIT_WINDOW" envDefault:"60"`
	RateLimitMax     int  `env:"RATE_LIMIT_MAX" envDefault:"120"`
}

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("WARN: Cannot load .env file: %v, using environment variables", err)
	}

	if err := Load(); err != nil {
		log.Fatalf("Failed to parse environment variables: %v", err)
	}
}

// Load 重新从环境变量解析配置
func Load() error {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return err
	}
	Cfg = cfg
	return nil
}

// Validate 检查启动所需的必填项，由 server/worker 启动时调用
func (c *Config) Validate() error {
	var errs []error

	if len(c.JWTSecret) < 8 {
		errs = append(errs, errors.New("JWT_SECRET is required (min 8 bytes)"))
	}
	if len(c.JWTRefreshSecret) < 8 {
		errs = append(errs, errors.New("JWT_REFRESH_SECRET is required (min 8 bytes)"))
	}

	switch c.MailTransport {
	case "console":
	case "smtp":
		if c.MailHost == "" || c.MailFrom == "" {
			errs = append(errs, errors.New("MAIL_HOST and MAIL_FROM are required for smtp transport"))
		}
	default:
		errs = append(errs, fmt.Errorf("MAIL_TRANSPORT must be console or smtp, got %q", c.MailTransport))
	}

	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("APP_TIMEZONE invalid: %w", err))
	}

	if c.MailMaxAttempts < 1 {
		errs = append(errs, errors.New("MAIL_MAX_ATTEMPTS must be at least 1"))
	}

	return errors.Join(errs...)
}

// Location 返回考勤日期计算使用的时区
func (c *Config) Location() (*time.Location, error) {
	if c.AppTimezone == "" || strings.EqualFold(c.AppTimezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(c.AppTimezone)
}

func (c *Config) GetDSN() string {
	return "host=" + c.PostgreSQLHost +
		" port=" + c.PostgreSQLPort +
		" user=" + c.PostgreSQLUser +
		" password=" + c.PostgreSQLPassword +
		" dbname=" + c.PostgreSQLDatabase +
		" sslmode=" + c.PostgreSQLSSLMode +
		" search_path=" + c.PostgreSQLSchema
}

// GetMigrationURL golang-migrate 使用的 URL 形式连接串
func (c *Config) GetMigrationURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s&search_path=%s",
		c.PostgreSQLUser, c.PostgreSQLPassword,
		c.PostgreSQLHost, c.PostgreSQLPort,
		c.PostgreSQLDatabase, c.PostgreSQLSSLMode, c.PostgreSQLSchema,
	)
}

func (c *Config) GetRabbitMQURL() string {
	return "amqp://" + c.RabbitMQUsername + ":" + c.RabbitMQPassword + "@" + c.RabbitMQAddr + ":" + c.RabbitMQPort + c.RabbitMQVhost
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
