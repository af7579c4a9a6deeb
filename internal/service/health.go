package service

import (
	"context"
	"sync"
	"time"

	"Attendly/internal/model/dto"
	"Attendly/storage/database"
	"Attendly/storage/redis"
)

const healthCheckTimeout = 3 * time.Second

// Pinger 依赖探活
type Pinger func(ctx context.Context) error

var (
	healthService *HealthService
	healthOnce    sync.Once
)

func Health() *HealthService {
	healthOnce.Do(func() {
		healthService = NewHealthService(map[string]Pinger{
			"database": database.Ping,
			"redis":    redis.Ping,
		})
	})
	return healthService
}

type HealthService struct {
	checks map[string]Pinger
	now    func() time.Time
}

func NewHealthService(checks map[string]Pinger) *HealthService {
	return &HealthService{checks: checks, now: time.Now}
}

// Check 并发探测所有依赖，任一失败整体为 error
func (s *HealthService) Check(ctx context.Context) dto.HealthResponse {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	results := make(map[string]dto.HealthCheck, len(s.checks))

	for name, ping := range s.checks {
		wg.Add(1)
		go func(name string, ping Pinger) {
			defer wg.Done()

			start := time.Now()
			err := ping(ctx)
			check := dto.HealthCheck{
				Status:    dto.HealthUp,
				LatencyMs: time.Since(start).Milliseconds(),
			}
			if err != nil {
				check.Status = dto.HealthDown
				check.Message = err.Error()
			}

			mu.Lock()
			results[name] = check
			mu.Unlock()
		}(name, ping)
	}
	wg.Wait()

	resp := dto.HealthResponse{
		Timestamp: s.now().UTC(),
		Checks:    results,
		Status:    dto.HealthStatusOK,
	}
	if !resp.OK() {
		resp.Status = dto.HealthStatusError
	}
	return resp
}
