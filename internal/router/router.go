// Package router 提供 HTTP 路由注册
// 本文件是路由注册的入口
package router

import (
	"register_server/internal/handler"

	"github.com/gin-gonic/gin"
)

// Router 持有 Handler 聚合，负责把路由挂到 gin.Engine
type Router struct {
	handlers *handler.Handlers
}

// NewRouter 创建路由管理器
func NewRouter(handlers *handler.Handlers) *Router {
	return &Router{handlers: handlers}
}

// RegisterRoutes 注册所有路由，在 https_server.Init() 中调用
func (rt *Router) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", rt.handlers.Health.Health)
	rt.registerAccountRoutes(r)
}
