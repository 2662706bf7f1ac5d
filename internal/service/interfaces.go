// Package service 定义业务层接口
// Handler 层只依赖这里的接口
package service

import (
	"context"

	"register_server/internal/dto/request"
	"register_server/internal/dto/respond"
)

// RegisterService 注册业务接口
type RegisterService interface {
	// Register 幂等注册：同一幂等键只创建一个账号，重复请求返回相同结果
	// replayed 为 true 表示结果来自已有账号，未执行校验、写入和通知
	Register(ctx context.Context, req request.RegisterRequest, idempotencyKey string) (result *respond.RegisterRespond, replayed bool, err error)
}

// HealthService 健康检查接口
type HealthService interface {
	Check(ctx context.Context) *respond.HealthRespond
}
