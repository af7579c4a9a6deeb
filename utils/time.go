package utils

import (
	"fmt"
	"time"
)

const (
	DateLayout = "2006-01-02"
	// ISOLayout 毫秒精度的 ISO-8601，UTC 时间输出为 Z
	ISOLayout = "2006-01-02T15:04:05.000Z07:00"
)

// 不带时区的时间戳按业务时区解释
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	DateLayout, // 仅日期时取业务时区当天零点
}

// ParseOccurredAt 解析调用方传入的事件时间，支持带偏移量的 RFC3339、无偏移量的本地时间以及纯日期
func ParseOccurredAt(value string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", value)
}

// DateOf 取事件在业务时区下的日历日期，以 UTC 零点表示，与时区无关地落库和比较
func DateOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate 解析 YYYY-MM-DD
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}
