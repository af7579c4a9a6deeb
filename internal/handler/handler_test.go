package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/config"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/route"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Attendly/internal/model/dto"
)

type errorBody struct {
	Error struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

func newEngine() *route.Engine {
	e := route.NewEngine(config.NewOptions([]config.Option{}))
	e.POST("/auth/register", Register)
	e.POST("/employees", CreateEmployee)
	e.GET("/employees/:id", GetEmployee)
	e.PATCH("/employees/:id", UpdateEmployee)
	e.POST("/attendance/check-in", CheckIn)
	e.GET("/attendance", ListAttendance)
	return e
}

func perform(e *route.Engine, method, path, body string) *protocol.Response {
	if body == "" {
		return ut.PerformRequest(e, method, path, nil).Result()
	}
	return ut.PerformRequest(e, method, path,
		&ut.Body{Body: strings.NewReader(body), Len: len(body)},
		ut.Header{Key: "Content-Type", Value: "application/json"},
	).Result()
}

func decodeError(t *testing.T, resp *protocol.Response) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(resp.Body(), &body))
	return body
}

// 以下请求都在调用 service 之前被拒绝
func TestRequestValidation(t *testing.T) {
	e := newEngine()

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		field  string
	}{
		{"register email", http.MethodPost, "/auth/register", `{"email":"nope","password":"password123"}`, "email"},
		{"register short password", http.MethodPost, "/auth/register", `{"email":"a@example.com","password":"short"}`, "password"},
		{"employee required", http.MethodPost, "/employees", `{"email":"a@example.com"}`, "names"},
		{"employee id", http.MethodGet, "/employees/not-a-uuid", "", "id"},
		{"employee patch id", http.MethodPatch, "/employees/42", `{"names":"x"}`, "id"},
		{"check-in employee id", http.MethodPost, "/attendance/check-in", `{"employeeId":"abc"}`, "employeeId"},
		{"list date format", http.MethodGet, "/attendance?dateTo=2026/02/07", "", "dateTo"},
	}

	for _, tc := range cases {
		resp := perform(e, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode(), tc.name)

		body := decodeError(t, resp)
		assert.Equal(t, "INVALID_REQUEST", body.Error.Code, tc.name)
		assert.Contains(t, body.Error.Details, tc.field, tc.name)
	}
}

func TestCheckInRejectsMalformedOccurredAt(t *testing.T) {
	e := newEngine()

	resp := perform(e, http.MethodPost, "/attendance/check-in",
		`{"employeeId":"5b0e7b8e-4c53-4a4f-9d1e-2f3a4b5c6d7e","occurredAt":"yesterday"}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode())
	body := decodeError(t, resp)
	assert.Equal(t, "INVALID_REQUEST", body.Error.Code)
	assert.Contains(t, body.Error.Message, "occurredAt")
}

func TestOccurredAt(t *testing.T) {
	at, err := occurredAt("")
	require.NoError(t, err)
	assert.Nil(t, at)

	at, err = occurredAt("2026-02-07T09:15:00+08:00")
	require.NoError(t, err)
	require.NotNil(t, at)
	assert.True(t, at.Equal(time.Date(2026, 2, 7, 1, 15, 0, 0, time.UTC)))

	at, err = occurredAt("2026-02-07")
	require.NoError(t, err)
	require.NotNil(t, at)
	assert.Equal(t, "2026-02-07", at.Format("2006-01-02"))
}

func TestWriteHealth(t *testing.T) {
	c := app.NewContext(0)
	writeHealth(context.Background(), c, dto.HealthResponse{
		Status: dto.HealthStatusOK,
		Checks: map[string]dto.HealthCheck{"database": {Status: dto.HealthUp}},
	})
	assert.Equal(t, http.StatusOK, c.Response.StatusCode())

	c = app.NewContext(0)
	writeHealth(context.Background(), c, dto.HealthResponse{
		Status: dto.HealthStatusError,
		Checks: map[string]dto.HealthCheck{
			"database": {Status: dto.HealthUp},
			"redis":    {Status: dto.HealthDown, Message: "connection refused"},
		},
	})
	assert.Equal(t, http.StatusServiceUnavailable, c.Response.StatusCode())

	var body errorBody
	require.NoError(t, json.Unmarshal(c.Response.Body(), &body))
	assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	assert.Equal(t, "Dependency health check failed", body.Error.Message)
	checks := body.Error.Details["checks"].(map[string]interface{})
	assert.Equal(t, "down", checks["redis"].(map[string]interface{})["status"])
}
