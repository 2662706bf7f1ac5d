package errorx

import (
	"errors"
	"fmt"
)

// CodeError 带业务错误码的自定义错误
// 实现了 error 接口，支持 %w 包装底层错误，且能被 errors.Is/errors.As 识别
// Fields 只在参数校验失败时使用，key 为 json 字段名，value 为可读的错误提示
type CodeError struct {
	Code   string            // 业务错误码
	Msg    string            // 错误消息
	Fields map[string]string // 字段级错误
	cause  error             // 被包装的底层错误
}

// Error 实现 Go 标准 error 接口
// 当存在底层错误时，返回格式为 "消息: 底层错误"；否则仅返回消息
func (e *CodeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.cause)
	}
	return e.Msg
}

// Unwrap 实现 errors.Unwrap 接口，支持 errors.Is/errors.As 向下追溯
func (e *CodeError) Unwrap() error {
	return e.cause
}

// New 创建一个新的 CodeError
func New(code string, msg string) *CodeError {
	return &CodeError{
		Code: code,
		Msg:  msg,
	}
}

// Newf 创建一个带格式化消息的 CodeError
func Newf(code string, format string, args ...any) *CodeError {
	return &CodeError{
		Code: code,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// Wrap 包装底层错误，添加业务错误码和消息
// 用法: errorx.Wrap(err, CodeDBError, "创建账号")
func Wrap(err error, code string, msg string) *CodeError {
	return &CodeError{
		Code:  code,
		Msg:   msg,
		cause: err,
	}
}

// Wrapf 包装底层错误，支持格式化消息
// 用法: errorx.Wrapf(err, CodeNotFound, "account %s not found", id)
func Wrapf(err error, code string, format string, args ...any) *CodeError {
	return &CodeError{
		Code:  code,
		Msg:   fmt.Sprintf(format, args...),
		cause: err,
	}
}

// NewValidation 创建参数校验失败错误，fields 会被完整保留
func NewValidation(fields map[string]string) *CodeError {
	return &CodeError{
		Code:   CodeValidationFailed,
		Msg:    "validation failed",
		Fields: fields,
	}
}

// GetCode 从错误中提取业务错误码，如果不是 CodeError 则返回 CodeInternalError
func GetCode(err error) string {
	var codeErr *CodeError
	if errors.As(err, &codeErr) {
		return codeErr.Code
	}
	return CodeInternalError
}

// 业务错误码常量定义
const (
	CodeValidationFailed = "VALIDATION_FAILED" // 参数或唯一性校验失败
	CodeInternalError    = "INTERNAL_ERROR"    // 内部错误
	CodeNotFound         = "NOT_FOUND"         // 记录不存在
	CodeDuplicate        = "DUPLICATE_KEY"     // 唯一约束冲突
	CodeDBError          = "DB_ERROR"          // 数据库错误
	CodeCacheError       = "CACHE_ERROR"       // 缓存错误
	CodeNotifyError      = "NOTIFY_ERROR"      // 通知发送失败
)

// 预定义常用错误实例
var (
	ErrServerBusy = New(CodeInternalError, "An unexpected error occurred")
)

// IsNotFound 检查错误是否为"未找到"类型
func IsNotFound(err error) bool {
	var codeErr *CodeError
	if errors.As(err, &codeErr) && codeErr.Code == CodeNotFound {
		return true
	}
	return err != nil && err.Error() == "record not found"
}

// IsDuplicate 检查错误是否为唯一约束冲突
func IsDuplicate(err error) bool {
	var codeErr *CodeError
	return errors.As(err, &codeErr) && codeErr.Code == CodeDuplicate
}

// IsValidation 检查错误是否为校验失败
func IsValidation(err error) bool {
	var codeErr *CodeError
	return errors.As(err, &codeErr) && codeErr.Code == CodeValidationFailed
}
