// Package service 提供业务逻辑层
// 本文件实现 Service 层的依赖注入和聚合
package service

import (
	"register_server/internal/dao/mysql/repository"
	myredis "register_server/internal/dao/redis"
	"register_server/internal/infrastructure/notify"
	"register_server/internal/service/health"
	"register_server/internal/service/register"
)

// Services 聚合所有 Service 实例
type Services struct {
	Register RegisterService // 注册 Service
	Health   HealthService   // 健康检查 Service
}

// NewServices 创建并注入所有 Service 实例
// cache 为 nil 表示未启用 Redis，重放只走数据库
func NewServices(repos *repository.Repositories, notifier notify.Notifier, cache myredis.AsyncCacheService, opts register.Options) *Services {
	return &Services{
		Register: register.NewRegisterService(repos, notifier, cache, opts),
		Health:   health.NewHealthService(repos.Account, cache),
	}
}
