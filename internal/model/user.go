package model

import "time"

// UserRole 用户角色
type UserRole string

const (
	UserRoleAdmin    UserRole = "admin"
	UserRoleManager  UserRole = "manager"
	UserRoleEmployee UserRole = "employee"
)

// User 登录账号，token 相关字段只保存摘要
type User struct {
	BaseModel
	Email               string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash        string     `gorm:"type:varchar(255);not null" json:"-"`
	Role                *UserRole  `gorm:"type:varchar(16)" json:"role"`
	RefreshTokenHash    *string    `gorm:"type:varchar(255)" json:"-"`
	ResetTokenHash      *string    `gorm:"type:char(64);index" json:"-"`
	ResetTokenExpiresAt *time.Time `gorm:"type:timestamptz" json:"-"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// RoleString 未设置角色时返回空串
func (u *User) RoleString() string {
	if u.Role == nil {
		return ""
	}
	return string(*u.Role)
}
