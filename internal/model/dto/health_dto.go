package dto

import "time"

const (
	HealthUp   = "up"
	HealthDown = "down"

	HealthStatusOK    = "ok"
	HealthStatusError = "error"
)

// HealthCheck 单个依赖的检查结果
type HealthCheck struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	LatencyMs int64  `json:"latency_ms"`
}

type HealthResponse struct {
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]HealthCheck `json:"checks"`
	Status    string                 `json:"status"`
}

// OK 所有依赖都为 up
func (h HealthResponse) OK() bool {
	for _, c := range h.Checks {
		if c.Status != HealthUp {
			return false
		}
	}
	return true
}
