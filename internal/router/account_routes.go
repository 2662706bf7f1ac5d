package router

import (
	"register_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// registerAccountRoutes 注册账号相关路由
func (rt *Router) registerAccountRoutes(r *gin.Engine) {
	v1 := r.Group("/api/v1")
	v1.Use(middleware.Idempotency())
	{
		v1.POST("/register", rt.handlers.Register.Register)
	}
}
