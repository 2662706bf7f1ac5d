// Package request 定义 HTTP 请求体
package request

import (
	"bytes"
	"encoding/json"
	"time"

	"register_server/pkg/constants"
)

// RegisterRequest 注册请求
// binding 标签中的自定义规则（not_blank、username、phone、password_complex、date_format、past_date、min_age、accepted）
// 在 handler.InitTrans 中注册，Date 类型在校验前会被转换为 time.Time
type RegisterRequest struct {
	FullName        string `json:"fullName" binding:"required,not_blank,min=2,max=100"`
	Username        string `json:"username" binding:"required,min=3,max=50,username"`
	Email           string `json:"email" binding:"required,email"`
	Phone           string `json:"phone" binding:"required,phone"`
	Password        string `json:"password" binding:"required,password_complex"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,not_blank"`
	Dob             Date   `json:"dob" binding:"required,date_format,past_date,min_age=13"`
	AcceptTerms     bool   `json:"acceptTerms" binding:"accepted"`
}

// Date 仅包含日期部分的时间，JSON 格式为 YYYY-MM-DD
// 格式错误时不中断 JSON 解码，原始值保留在 raw 中，由 date_format 规则报告
type Date struct {
	time.Time
	raw     string
	invalid bool
}

// Valid 解码时格式是否正确（未填写视为正确，由 required 规则处理）
func (d Date) Valid() bool {
	return !d.invalid
}

// Raw 格式错误时的原始输入
func (d Date) Raw() string {
	return d.raw
}

// DateParseError 出生日期格式错误
type DateParseError struct {
	Value string
}

func (e *DateParseError) Error() string {
	return "invalid date " + e.Value + ", expected " + constants.DATE_LAYOUT
}

// NewDate 以 UTC 零点构造日期
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate 解析 YYYY-MM-DD
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(constants.DATE_LAYOUT, s, time.UTC)
	if err != nil {
		return Date{}, &DateParseError{Value: s}
	}
	return Date{Time: t}, nil
}

// UnmarshalJSON 实现 json.Unmarshaler；null 和空串视为未填写，格式错误不返回错误
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*d = Date{raw: string(data), invalid: true}
		return nil
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		*d = Date{raw: s, invalid: true}
		return nil
	}
	*d = parsed
	return nil
}

// MarshalJSON 实现 json.Marshaler
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(constants.DATE_LAYOUT))
}

// String 返回 YYYY-MM-DD
func (d Date) String() string {
	return d.Format(constants.DATE_LAYOUT)
}
