package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"register_server/internal/config"
	dao "register_server/internal/dao/mysql"
	myredis "register_server/internal/dao/redis"
	"register_server/internal/handler"
	"register_server/internal/https_server"
	"register_server/internal/infrastructure/logger"
	"register_server/internal/infrastructure/mq"
	"register_server/internal/infrastructure/notify"
	"register_server/internal/infrastructure/sms"
	"register_server/internal/service"
	"register_server/internal/service/register"
	"register_server/pkg/constants"
	"register_server/pkg/util/jwt"

	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	conf := config.GetConfig()

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, conf.MainConfig.Mode); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer zap.L().Sync()
	zap.L().Info("日志初始化成功")

	// 3. 初始化存储
	repos := dao.Init()
	zap.L().Info("存储初始化成功", zap.String("mode", conf.StorageConfig.Mode))

	// 4. 初始化 Redis（可选，失败时降级为只查数据库）
	var cache myredis.AsyncCacheService
	if conf.RedisConfig.Enabled {
		c, err := myredis.Init(&conf.RedisConfig)
		if err != nil {
			zap.L().Warn("Redis 不可用，幂等结果不做缓存", zap.Error(err))
		} else {
			cache = c
			zap.L().Info("Redis 初始化成功")
		}
	}

	// 5. 初始化 JWT，没有密钥无法签发验证 Token
	if err := jwt.Init(conf.VerificationConfig.TokenSecret, conf.VerificationConfig.TokenExpiryHours); err != nil {
		zap.L().Fatal("JWT 初始化失败，请配置 verificationConfig.tokenSecret", zap.Error(err))
	}

	// 6. 初始化验证通知
	sender, err := newSender(conf, cache)
	if err != nil {
		zap.L().Fatal("验证通知初始化失败", zap.Error(err))
	}
	dispatcher := notify.NewDispatcher(sender, conf.VerificationConfig.Workers, conf.VerificationConfig.Buffer)

	// 7. 初始化 Service / Handler
	replayTTL := conf.IdempotencyConfig.ReplayTTL
	if replayTTL <= 0 {
		replayTTL = constants.IDEMPOTENCY_REPLAY_TTL
	}
	svc := service.NewServices(repos, dispatcher, cache, register.Options{
		Channel:    conf.VerificationConfig.Channel,
		BcryptCost: conf.PasswordConfig.BcryptCost,
		ReplayTTL:  time.Duration(replayTTL) * time.Second,
	})
	if err := handler.InitTrans("en"); err != nil {
		zap.L().Fatal("初始化校验翻译器失败", zap.Error(err))
	}

	// 8. 启动 HTTP 服务
	engine := https_server.Init(handler.NewHandlers(svc), &conf.MainConfig)
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zap.L().Info("服务启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("server running fault", zap.Error(err))
		}
	}()

	// 设置信号监听
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zap.L().Error("server shutdown", zap.Error(err))
	}
	// 先停通知再关缓存，短信发送可能仍在写验证码
	if err := dispatcher.Close(); err != nil {
		zap.L().Error("close notify dispatcher", zap.Error(err))
	}
	if cache != nil {
		if err := cache.Close(); err != nil {
			zap.L().Error("close redis", zap.Error(err))
		}
	}

	zap.L().Info("服务器已关闭")
}

// newSender 按 verificationConfig.sender 选择发送实现
func newSender(conf *config.Config, cache myredis.AsyncCacheService) (notify.Sender, error) {
	switch conf.VerificationConfig.Sender {
	case "", "log":
		return notify.NewLogSender(zap.L()), nil
	case "kafka":
		if err := mq.CreateTopic(&conf.KafkaConfig); err != nil {
			zap.L().Warn("kafka 不可达，首条消息发送时重试", zap.Error(err))
		}
		return mq.NewKafkaSender(&conf.KafkaConfig), nil
	case "aliyun":
		if conf.VerificationConfig.Channel != constants.VERIFICATION_CHANNEL_SMS {
			return nil, fmt.Errorf("sender aliyun requires channel %q, got %q", constants.VERIFICATION_CHANNEL_SMS, conf.VerificationConfig.Channel)
		}
		var store sms.CodeStore
		if cache != nil {
			store = cache
		}
		return sms.Init(conf.AuthCodeConfig, store)
	default:
		return nil, fmt.Errorf("unknown verification sender %q", conf.VerificationConfig.Sender)
	}
}
