package account_status_enum

import "strings"

// 账号生命周期状态
const (
	PENDING_VERIFICATION = iota // 待验证（注册后的唯一初始状态）
	ACTIVE                      // 已验证
	DISABLED                    // 已禁用
)

var names = map[int8]string{
	PENDING_VERIFICATION: "PENDING_VERIFICATION",
	ACTIVE:               "ACTIVE",
	DISABLED:             "DISABLED",
}

// Name 返回状态的枚举名，如 PENDING_VERIFICATION
func Name(status int8) string {
	if n, ok := names[status]; ok {
		return n
	}
	return "UNKNOWN"
}

// Lower 返回小写状态名，用于接口响应，如 pending_verification
func Lower(status int8) string {
	return strings.ToLower(Name(status))
}
