package model

// MailKind 邮件任务类型，与 routing key 一一对应
type MailKind string

const (
	MailKindResetPassword          MailKind = "reset_password"
	MailKindAttendanceNotification MailKind = "attendance_notification"
)

// MailJob 邮件队列消息
type MailJob struct {
	MessageID string   `json:"message_id"` // 消息唯一ID，用于幂等性检查
	Kind      MailKind `json:"kind"`
	Attempt   int      `json:"attempt"` // 从 1 开始
	CreatedAt string   `json:"created_at"`

	ResetPassword *ResetPasswordMail      `json:"reset_password,omitempty"`
	Attendance    *AttendanceNotification `json:"attendance,omitempty"`
}

// AttendanceNotification 签到/签退提交后的通知载荷
type AttendanceNotification struct {
	Email          string           `json:"email"`
	EmployeeName   string           `json:"employeeName"`
	AttendanceDate string           `json:"attendanceDate"` // YYYY-MM-DD
	Status         AttendanceStatus `json:"status"`
	OccurredAt     string           `json:"occurredAt"` // ISO-8601 UTC
}

// ResetPasswordMail 重置密码邮件
type ResetPasswordMail struct {
	Email     string `json:"email"`
	ResetURL  string `json:"resetUrl"`
	ExpiresAt string `json:"expiresAt"`
}
