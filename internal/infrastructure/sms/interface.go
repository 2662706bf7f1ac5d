// Package sms 通过短信下发注册验证码
package sms

import (
	"context"
	"time"
)

// CodeStore 验证码存储，由 Redis 缓存实现
type CodeStore interface {
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// 验证码有效期
const codeTTL = 10 * time.Minute
