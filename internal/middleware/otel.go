package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/config"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const unmatchedRoute = "unmatched"

var (
	httpServerRequestTotal   metric.Int64Counter
	httpServerDuration       metric.Float64Histogram
	httpServerResponseSize   metric.Int64Histogram
	httpServerActiveRequests metric.Int64UpDownCounter
)

// toValidUTF8 清洗用户可控字符串，非法 UTF-8 会让 trace 导出失败
func toValidUTF8(val string) string {
	return strings.ToValidUTF8(val, "")
}

// InitMetrics 初始化 HTTP 指标，未调用时中间件只补充 span 属性
func InitMetrics(meter metric.Meter) error {
	var err error

	httpServerRequestTotal, err = meter.Int64Counter(
		"http.server.requests.total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return err
	}

	httpServerDuration, err = meter.Float64Histogram(
		"http.server.duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return err
	}

	// 报表下载的响应体积单独观察
	httpServerResponseSize, err = meter.Int64Histogram(
		"http.server.response.size",
		metric.WithDescription("HTTP response size"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return err
	}

	httpServerActiveRequests, err = meter.Int64UpDownCounter(
		"http.server.active_requests",
		metric.WithDescription("Number of active HTTP requests"),
		metric.WithUnit("{request}"),
	)
	return err
}

// routeOf 指标标签使用路由模板，/employees/:id 不会因 id 不同而产生新的序列
func routeOf(c *app.RequestContext) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return unmatchedRoute
}

// OpenTelemetryMiddleware 记录 HTTP 指标，并给 server tracer 创建的 span 补充业务属性
func OpenTelemetryMiddleware() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		start := time.Now()
		method := toValidUTF8(string(c.Method()))
		route := routeOf(c)

		if httpServerActiveRequests != nil {
			httpServerActiveRequests.Add(ctx, 1, metric.WithAttributes(semconv.HTTPMethod(method)))
			defer httpServerActiveRequests.Add(ctx, -1, metric.WithAttributes(semconv.HTTPMethod(method)))
		}

		c.Next(ctx)

		status := c.Response.StatusCode()
		annotateSpan(ctx, c, route, status)

		if httpServerRequestTotal == nil {
			return
		}
		attrs := metric.WithAttributes(
			semconv.HTTPMethod(method),
			semconv.HTTPRoute(route),
			semconv.HTTPStatusCode(status),
		)
		httpServerRequestTotal.Add(ctx, 1, attrs)
		httpServerDuration.Record(ctx, time.Since(start).Seconds(), attrs)
		if size := int64(len(c.Response.Body())); size > 0 {
			httpServerResponseSize.Record(ctx, size, attrs)
		}
	}
}

func annotateSpan(ctx context.Context, c *app.RequestContext, route string, status int) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(semconv.HTTPRoute(route))
	if requestID := c.GetHeader("X-Request-Id"); len(requestID) > 0 {
		span.SetAttributes(attribute.String("http.request_id", toValidUTF8(string(requestID))))
	}
	// 鉴权在路由组内执行，请求结束后才能拿到用户
	if userID, ok := GetUserID(ctx, c); ok {
		span.SetAttributes(attribute.String("enduser.id", userID))
	}

	if status >= 500 {
		span.SetStatus(codes.Error, "HTTP server error")
		if lastErr := c.Errors.Last(); lastErr != nil {
			span.RecordError(lastErr)
		}
	}
}

// NewServerTracerConfig 创建 Hertz Server 的追踪配置
// 返回用于初始化 Hertz server 的配置选项和追踪中间件
func NewServerTracerConfig(opts ...hertztracing.Option) (config.Option, app.HandlerFunc) {
	tracer, cfg := hertztracing.NewServerTracer(opts...)
	return tracer, hertztracing.ServerMiddleware(cfg)
}
