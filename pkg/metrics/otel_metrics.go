package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// 业务结果标签
const (
	OutcomeCreated  = "created"
	OutcomeUpdated  = "updated"
	OutcomeConflict = "conflict"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// OTelMetrics OpenTelemetry 指标集合
type OTelMetrics struct {
	// 考勤相关指标
	AttendanceEventsTotal metric.Int64Counter

	// 邮件相关指标
	MailDeliveriesTotal  metric.Int64Counter
	MailDeliveryDuration metric.Float64Histogram
	MailRetriesTotal     metric.Int64Counter
}

// 全局指标实例，未初始化时所有 Record 方法都是 no-op
var metrics *OTelMetrics

// InitMetrics 初始化 OpenTelemetry 指标
func InitMetrics(meter metric.Meter) error {
	m := &OTelMetrics{}
	var err error

	m.AttendanceEventsTotal, err = meter.Int64Counter(
		"attendance.events.total",
		metric.WithDescription("Attendance check-in/check-out attempts by outcome"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return err
	}

	m.MailDeliveriesTotal, err = meter.Int64Counter(
		"mail.deliveries.total",
		metric.WithDescription("Mail jobs processed by kind and status"),
		metric.WithUnit("{mail}"),
	)
	if err != nil {
		return err
	}

	m.MailDeliveryDuration, err = meter.Float64Histogram(
		"mail.delivery.duration",
		metric.WithDescription("Time spent delivering a mail"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	m.MailRetriesTotal, err = meter.Int64Counter(
		"mail.retries.total",
		metric.WithDescription("Mail jobs scheduled for retry or dead-lettered"),
		metric.WithUnit("{mail}"),
	)
	if err != nil {
		return err
	}

	metrics = m
	return nil
}

// GetMetrics 获取全局指标实例
func GetMetrics() *OTelMetrics {
	return metrics
}

// RecordAttendanceEvent event 为 check-in / check-out
func RecordAttendanceEvent(ctx context.Context, event, outcome string) {
	if metrics == nil {
		return
	}
	metrics.AttendanceEventsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event", event),
		attribute.String("outcome", outcome),
	))
}

// RecordMailDelivery 记录一次投递结果
func RecordMailDelivery(ctx context.Context, kind, transport string, err error, duration time.Duration) {
	if metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failed"
	}

	metrics.MailDeliveriesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("transport", transport),
		attribute.String("status", status),
	))
	metrics.MailDeliveryDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("transport", transport),
	))
}

// RecordMailRetry decision 为 retry / dead
func RecordMailRetry(ctx context.Context, kind, decision string) {
	if metrics == nil {
		return
	}
	metrics.MailRetriesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("decision", decision),
	))
}
