// Package https_server 提供 HTTP/HTTPS 服务器的初始化和配置
// 负责创建 Gin 引擎实例并配置中间件和路由
package https_server

import (
	"register_server/internal/config"                    // 配置管理
	"register_server/internal/handler"                   // Handler 聚合对象
	"register_server/internal/infrastructure/logger"     // 自定义日志中间件
	"register_server/internal/infrastructure/middleware" // 安全与幂等中间件
	"register_server/internal/router"                    // 路由注册
	"register_server/pkg/constants"

	"github.com/gin-contrib/cors" // CORS 跨域中间件
	"github.com/gin-gonic/gin"    // Gin Web 框架
)

// Init 创建 Gin 引擎
// 配置顺序：日志 -> 恢复 -> 安全头 -> CORS -> 路由
func Init(handlers *handler.Handlers, conf *config.MainConfig) *gin.Engine {
	if conf.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 不使用 gin.Default() 以便完全控制中间件
	engine := gin.New()

	engine.Use(logger.GinLogger())
	engine.Use(logger.GinRecovery(true))
	engine.Use(middleware.SecureHeaders(conf.Host, conf.Port, conf.SSLRedirect, conf.Mode != "release"))

	// 幂等键需要对浏览器可见
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", constants.IDEMPOTENCY_HEADER}
	corsConfig.ExposeHeaders = []string{constants.IDEMPOTENCY_HEADER}
	engine.Use(cors.New(corsConfig))

	rt := router.NewRouter(handlers)
	rt.RegisterRoutes(engine)

	return engine
}
