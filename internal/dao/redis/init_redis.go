package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"register_server/internal/config"

	"github.com/redis/go-redis/v9"
)

const (
	defaultWorkerNum    = 4
	defaultTaskChanSize = 1000
)

// Init 根据配置创建 Redis 客户端并启动缓存 Worker Pool
// 连接失败时返回错误，由调用方决定是否降级
func Init(cfg *config.RedisConfig) (AsyncCacheService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Host + ":" + strconv.Itoa(cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.Db,
		PoolSize:     50,
		MinIdleConns: defaultWorkerNum,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	return NewRedisCache(client, defaultWorkerNum, defaultTaskChanSize), nil
}
