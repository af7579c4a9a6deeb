package dto

import (
	"time"

	"Attendly/internal/model"
)

// ========== Employee 相关 DTO ==========

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

type CreateEmployeeRequest struct {
	Names              string `json:"names" validate:"required,max=255"`
	Email              string `json:"email" validate:"required,email,max=255"`
	EmployeeIdentifier string `json:"employeeIdentifier" validate:"required,max=64"`
	PhoneNumber        string `json:"phoneNumber" validate:"required,max=32"`
}

// UpdateEmployeeRequest 部分更新，nil 字段保持不变
type UpdateEmployeeRequest struct {
	Names              *string `json:"names,omitempty" validate:"omitempty,min=1,max=255"`
	Email              *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	EmployeeIdentifier *string `json:"employeeIdentifier,omitempty" validate:"omitempty,min=1,max=64"`
	PhoneNumber        *string `json:"phoneNumber,omitempty" validate:"omitempty,min=1,max=32"`
}

// Empty 没有任何需要更新的字段
func (r UpdateEmployeeRequest) Empty() bool {
	return r.Names == nil && r.Email == nil && r.EmployeeIdentifier == nil && r.PhoneNumber == nil
}

type EmployeeIDParam struct {
	ID string `path:"id" validate:"required,uuid"`
}

type ListEmployeesQuery struct {
	Page  int `query:"page" validate:"omitempty,min=1"`
	Limit int `query:"limit" validate:"omitempty,min=1"`
}

// Normalize 补默认值并限制 limit 上限
func (q ListEmployeesQuery) Normalize() ListEmployeesQuery {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	return q
}

func (q ListEmployeesQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

type EmployeeResponse struct {
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
	ID                 string    `json:"id"`
	Names              string    `json:"names"`
	Email              string    `json:"email"`
	EmployeeIdentifier string    `json:"employeeIdentifier"`
	PhoneNumber        string    `json:"phoneNumber"`
}

func NewEmployeeResponse(e *model.Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:                 e.ID,
		Names:              e.Names,
		Email:              e.Email,
		EmployeeIdentifier: e.EmployeeIdentifier,
		PhoneNumber:        e.PhoneNumber,
		CreatedAt:          e.CreatedAt.UTC(),
		UpdatedAt:          e.UpdatedAt.UTC(),
	}
}

// EmployeePage 分页结果
type EmployeePage struct {
	Items []EmployeeResponse
	Page  int
	Limit int
	Total int64
}

// Meta 分页信息，放在响应的 meta 中
func (p EmployeePage) Meta() map[string]interface{} {
	return map[string]interface{}{
		"page":  p.Page,
		"limit": p.Limit,
		"total": p.Total,
	}
}
