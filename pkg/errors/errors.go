package errors

import stderrors "errors"

// Kind 业务错误的分类，由 response 包映射为 HTTP 状态码
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindTooManyRequests
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindTooManyRequests:
		return "too_many_requests"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

func (d Definition) Error() string {
	return d.Message
}

// Definition 表示业务错误码及默认信息。
type Definition struct {
	Code    string
	Message string
	Kind    Kind
}

// WithMessage 复制一份 Definition 并替换提示信息，错误码和分类不变
func (d Definition) WithMessage(msg string) Definition {
	d.Message = msg
	return d
}

// Is 按错误码比较，使 WithMessage 产生的副本仍能被 errors.Is 识别
func (d Definition) Is(target error) bool {
	t, ok := target.(Definition)
	return ok && t.Code == d.Code
}

// 通用错误。
var (
	InvalidRequest  = Definition{Code: "INVALID_REQUEST", Message: "Invalid request", Kind: KindBadRequest}
	Unauthorized    = Definition{Code: "UNAUTHORIZED", Message: "Unauthorized", Kind: KindUnauthorized}
	Forbidden       = Definition{Code: "FORBIDDEN", Message: "Forbidden", Kind: KindForbidden}
	TooManyRequests = Definition{Code: "TOO_MANY_REQUESTS", Message: "Too many requests", Kind: KindTooManyRequests}
	ServiceDegraded = Definition{Code: "SERVICE_UNAVAILABLE", Message: "Service unavailable", Kind: KindUnavailable}
)

// 员工模块错误。
var (
	EmployeeNotFound      = Definition{Code: "EMPLOYEE_NOT_FOUND", Message: "Employee not found", Kind: KindNotFound}
	EmployeeAlreadyExists = Definition{Code: "EMPLOYEE_ALREADY_EXISTS", Message: "Employee with same email or identifier already exists", Kind: KindConflict}
)

// 考勤模块错误。
var (
	AttendanceAlreadyCheckedIn  = Definition{Code: "ATTENDANCE_ALREADY_CHECKED_IN", Message: "Employee already checked in for this date", Kind: KindConflict}
	AttendanceNotCheckedIn      = Definition{Code: "ATTENDANCE_NOT_CHECKED_IN", Message: "Cannot check out before check-in for this date", Kind: KindConflict}
	AttendanceAlreadyCheckedOut = Definition{Code: "ATTENDANCE_ALREADY_CHECKED_OUT", Message: "Employee already checked out for this date", Kind: KindConflict}
	AttendanceDateRangeInvalid  = Definition{Code: "ATTENDANCE_DATE_RANGE_INVALID", Message: "dateFrom cannot be greater than dateTo", Kind: KindBadRequest}
)

// 认证相关错误。
var (
	EmailAlreadyRegistered = Definition{Code: "EMAIL_ALREADY_REGISTERED", Message: "Email already registered", Kind: KindConflict}
	InvalidCredentials     = Definition{Code: "INVALID_CREDENTIALS", Message: "Invalid credentials", Kind: KindUnauthorized}
	RefreshTokenInvalid    = Definition{Code: "REFRESH_TOKEN_INVALID", Message: "Invalid refresh token", Kind: KindUnauthorized}
	RefreshTokenMismatch   = Definition{Code: "REFRESH_TOKEN_MISMATCH", Message: "Refresh token does not match", Kind: KindForbidden}
	ResetTokenInvalid      = Definition{Code: "RESET_TOKEN_INVALID", Message: "Invalid or expired reset token", Kind: KindBadRequest}
)

// 报表模块错误。
var (
	ReportDateInvalid = Definition{Code: "REPORT_DATE_INVALID", Message: "date must be in YYYY-MM-DD format", Kind: KindBadRequest}
)

// As 从错误链中取出 Definition，包装过的业务错误同样可以识别
func As(err error) (Definition, bool) {
	var def Definition
	if stderrors.As(err, &def) {
		return def, true
	}
	return Definition{}, false
}

// KindOf 返回错误链上的业务分类，非业务错误返回 KindInternal
func KindOf(err error) Kind {
	if def, ok := As(err); ok {
		return def.Kind
	}
	return KindInternal
}
