// Package register 实现幂等注册流程
package register

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"register_server/internal/dao/mysql/repository"
	myredis "register_server/internal/dao/redis"
	"register_server/internal/dto/request"
	"register_server/internal/dto/respond"
	"register_server/internal/infrastructure/notify"
	"register_server/internal/model"
	"register_server/pkg/constants"
	"register_server/pkg/enum/account/account_status_enum"
	"register_server/pkg/errorx"
)

// Options 注册流程参数
type Options struct {
	Channel    string        // 验证渠道，默认 email
	BcryptCost int           // bcrypt 代价因子，0 表示默认值
	ReplayTTL  time.Duration // 幂等结果缓存有效期
}

// registerService 注册业务实现
type registerService struct {
	repo      repository.AccountRepository
	validator *Validator
	notifier  notify.Notifier
	cache     myredis.AsyncCacheService
	opts      Options
	now       func() time.Time
}

// NewRegisterService 构造函数，cache 可以为 nil
func NewRegisterService(repos *repository.Repositories, notifier notify.Notifier, cache myredis.AsyncCacheService, opts Options) *registerService {
	if opts.Channel == "" {
		opts.Channel = constants.VERIFICATION_CHANNEL_EMAIL
	}
	if opts.ReplayTTL <= 0 {
		opts.ReplayTTL = constants.IDEMPOTENCY_REPLAY_TTL * time.Second
	}
	return &registerService{
		repo:      repos.Account,
		validator: NewValidator(repos.Account),
		notifier:  notifier,
		cache:     cache,
		opts:      opts,
		now:       time.Now,
	}
}

// Register 幂等注册
// 流程：查幂等键 -> 命中则重放；未命中 -> 校验 -> 创建 -> 异步通知 -> 返回
func (s *registerService) Register(ctx context.Context, req request.RegisterRequest, idempotencyKey string) (*respond.RegisterRespond, bool, error) {
	key := strings.TrimSpace(idempotencyKey)
	if key == "" {
		key = uuid.NewString()
	}

	// 1. 查幂等键
	if rsp := s.lookupCache(ctx, key); rsp != nil {
		return rsp, true, nil
	}
	existing, err := s.repo.FindByIdempotencyKey(ctx, key)
	if err == nil {
		rsp := s.buildRespond(existing)
		s.storeCache(key, rsp)
		zap.L().Info("register replayed", zap.String("idempotency_key", key), zap.String("account_id", existing.AccountId))
		return rsp, true, nil
	}
	if !errorx.IsNotFound(err) {
		return nil, false, errorx.Wrap(err, errorx.CodeInternalError, "failed to look up idempotency key")
	}

	// 2. 唯一性校验
	if err := s.validator.Validate(ctx, req); err != nil {
		// 同一幂等键的并发请求可能已先写入，此时按重放处理
		if errorx.IsValidation(err) {
			if acc, lookupErr := s.repo.FindByIdempotencyKey(ctx, key); lookupErr == nil {
				return s.buildRespond(acc), true, nil
			}
		}
		return nil, false, err
	}

	// 3. 创建账号
	account, err := s.newAccount(req, key)
	if err != nil {
		return nil, false, err
	}
	stored, created, err := s.repo.CreateIfAbsent(ctx, account)
	if err != nil {
		// 校验与写入之间被并发请求抢占唯一值，不重试
		return nil, false, errorx.Wrap(err, errorx.CodeInternalError, "failed to create account")
	}
	rsp := s.buildRespond(stored)
	s.storeCache(key, rsp)
	if !created {
		zap.L().Info("register replayed after concurrent insert", zap.String("idempotency_key", key), zap.String("account_id", stored.AccountId))
		return rsp, true, nil
	}

	// 4. 异步通知，失败不影响注册结果
	s.dispatchVerification(stored)

	zap.L().Info("account registered",
		zap.String("idempotency_key", key),
		zap.String("account_id", stored.AccountId),
		zap.String("username", stored.Username),
	)
	return rsp, false, nil
}

func (s *registerService) newAccount(req request.RegisterRequest, key string) (*model.Account, error) {
	account := &model.Account{
		AccountId:      newAccountID(),
		FullName:       strings.TrimSpace(req.FullName),
		Username:       req.Username,
		Email:          req.Email,
		Phone:          req.Phone,
		Dob:            req.Dob.Time,
		AcceptTerms:    req.AcceptTerms,
		Status:         account_status_enum.PENDING_VERIFICATION,
		IdempotencyKey: key,
	}
	// 毫秒精度与 datetime(3) 一致，重放结果与首次结果相同
	account.CreatedAt = s.now().UTC().Truncate(time.Millisecond)
	account.UpdatedAt = account.CreatedAt
	if err := account.SetPassword(req.Password, s.opts.BcryptCost); err != nil {
		return nil, errorx.Wrap(err, errorx.CodeInternalError, "failed to hash password")
	}
	return account, nil
}

// newAccountID usr_ + 32 位十六进制
func newAccountID() string {
	return constants.ACCOUNT_ID_PREFIX + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// buildRespond 只依赖账号已存储的字段，首次与重放结果一致
func (s *registerService) buildRespond(acc *model.Account) *respond.RegisterRespond {
	return &respond.RegisterRespond{
		UserId: acc.AccountId,
		Status: account_status_enum.Lower(acc.Status),
		Verification: respond.VerificationInfo{
			Channel: s.opts.Channel,
			SentAt:  acc.CreatedAt.UTC(),
		},
	}
}

func (s *registerService) dispatchVerification(acc *model.Account) {
	if s.notifier == nil {
		return
	}
	v, err := notify.NewVerification(acc, s.opts.Channel, acc.CreatedAt.UTC())
	if err != nil {
		zap.L().Error("build verification failed", zap.Error(err), zap.String("account_id", acc.AccountId))
		return
	}
	s.notifier.Notify(v)
}

func cacheKey(key string) string {
	return constants.IDEMPOTENCY_CACHE_PREFIX + key
}

// lookupCache 缓存未命中或出错时返回 nil，由数据库兜底
func (s *registerService) lookupCache(ctx context.Context, key string) *respond.RegisterRespond {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, cacheKey(key))
	if err != nil {
		zap.L().Warn("idempotency cache lookup failed", zap.Error(err), zap.String("idempotency_key", key))
		return nil
	}
	if raw == "" {
		return nil
	}
	var rsp respond.RegisterRespond
	if err := json.Unmarshal([]byte(raw), &rsp); err != nil {
		zap.L().Warn("idempotency cache entry corrupted", zap.Error(err), zap.String("idempotency_key", key))
		return nil
	}
	return &rsp
}

// storeCache 异步回写幂等结果
func (s *registerService) storeCache(key string, rsp *respond.RegisterRespond) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(rsp)
	if err != nil {
		zap.L().Error("marshal register respond", zap.Error(err))
		return
	}
	ttl := s.opts.ReplayTTL
	s.cache.SubmitTask(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := s.cache.Set(ctx, cacheKey(key), string(data), ttl); err != nil {
			zap.L().Warn("idempotency cache write failed", zap.Error(err), zap.String("idempotency_key", key))
		}
	})
}
