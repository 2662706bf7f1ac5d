// Package respond 定义 HTTP 响应体
package respond

import "time"

// RegisterRespond 注册结果
// 重放请求返回的结果与首次创建时完全一致
type RegisterRespond struct {
	UserId       string           `json:"userId"`
	Status       string           `json:"status"`
	Verification VerificationInfo `json:"verification"`
}

// VerificationInfo 验证通知信息，SentAt 取账号创建时间
type VerificationInfo struct {
	Channel string    `json:"channel"`
	SentAt  time.Time `json:"sentAt"`
}

// ErrorRespond 统一错误响应
type ErrorRespond struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail 错误码 + 字段级错误
type ErrorDetail struct {
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields"`
}

// HealthRespond 健康检查结果
type HealthRespond struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Storage string `json:"storage"`
	Cache   string `json:"cache"`
}
