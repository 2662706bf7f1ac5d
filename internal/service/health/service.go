// Package health 汇总依赖组件的可用状态
package health

import (
	"context"
	"time"

	"go.uber.org/zap"

	"register_server/internal/dto/respond"
	"register_server/pkg/constants"
)

// Pinger 可探活的依赖
type Pinger interface {
	Ping(ctx context.Context) error
}

const (
	statusUp       = "UP"
	statusDown     = "DOWN"
	statusDisabled = "DISABLED"
	pingTimeout    = 2 * time.Second
)

type healthService struct {
	storage Pinger
	cache   Pinger
}

// NewHealthService cache 为 nil 时缓存状态为 DISABLED
func NewHealthService(storage Pinger, cache Pinger) *healthService {
	return &healthService{storage: storage, cache: cache}
}

// Check 存储不可用时整体为 DOWN；缓存只影响自身状态
func (h *healthService) Check(ctx context.Context) *respond.HealthRespond {
	rsp := &respond.HealthRespond{
		Status:  statusUp,
		Service: constants.SERVICE_NAME,
		Storage: ping(ctx, "storage", h.storage),
		Cache:   statusDisabled,
	}
	if h.cache != nil {
		rsp.Cache = ping(ctx, "cache", h.cache)
	}
	if rsp.Storage != statusUp {
		rsp.Status = statusDown
	}
	return rsp
}

func ping(ctx context.Context, name string, p Pinger) string {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		zap.L().Warn("health check failed", zap.String("component", name), zap.Error(err))
		return statusDown
	}
	return statusUp
}
