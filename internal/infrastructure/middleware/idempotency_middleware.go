package middleware

import (
	"strings"

	"register_server/pkg/constants"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maxIdempotencyKeyLength 与 account.idempotency_key 列长度一致
const maxIdempotencyKeyLength = 255

// Idempotency 读取 Idempotency-Key 请求头，缺省时生成随机键
// 键写入上下文并回显到响应头，客户端可用它安全重试
func Idempotency() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(constants.IDEMPOTENCY_HEADER))
		if key == "" || len(key) > maxIdempotencyKeyLength {
			key = uuid.NewString()
		}
		c.Set(constants.IDEMPOTENCY_CTX_KEY, key)
		c.Header(constants.IDEMPOTENCY_HEADER, key)
		c.Next()
	}
}
