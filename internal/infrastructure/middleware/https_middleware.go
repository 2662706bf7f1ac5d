package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

// SecureHeaders 安全响应头中间件；sslRedirect 为 true 时把 HTTP 请求重定向到 HTTPS
func SecureHeaders(host string, port int, sslRedirect bool, isDevelopment bool) gin.HandlerFunc {
	opts := secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		ReferrerPolicy:     "no-referrer",
		IsDevelopment:      isDevelopment,
	}
	if sslRedirect {
		opts.SSLRedirect = true
		opts.SSLHost = host + ":" + strconv.Itoa(port)
		opts.STSSeconds = 31536000
	}
	secureMiddleware := secure.New(opts)

	return func(c *gin.Context) {
		// 重定向时 Process 已写入响应
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			zap.L().Warn("secure middleware rejected request", zap.Error(err), zap.String("path", c.Request.URL.Path))
			c.Abort()
			return
		}
		if status := c.Writer.Status(); status >= 300 && status < 400 {
			c.Abort()
			return
		}
		c.Next()
	}
}
