package repository

import (
	"context"

	"register_server/internal/model"
	"register_server/pkg/errorx"

	"gorm.io/gorm"
)

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository 创建基于 GORM 的账号 Repository
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

// NewRepositories 创建 MySQL 版 Repository 聚合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Account: NewAccountRepository(db),
	}
}

func (r *accountRepository) exists(ctx context.Context, column, value string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Account{}).
		Where(column+" = ?", value).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, wrapDBErrorf(err, "查询账号 %s=%s", column, value)
	}
	return count > 0, nil
}

// ExistsByUsername 用户名是否已存在
func (r *accountRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username", username)
}

// ExistsByEmail 邮箱是否已存在
func (r *accountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email", email)
}

// ExistsByPhone 手机号是否已存在
func (r *accountRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	return r.exists(ctx, "phone", phone)
}

// FindByIdempotencyKey 按幂等键查找账号
func (r *accountRepository) FindByIdempotencyKey(ctx context.Context, key string) (*model.Account, error) {
	var account model.Account
	if err := r.db.WithContext(ctx).First(&account, "idempotency_key = ?", key).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询账号 idempotency_key=%s", key)
	}
	return &account, nil
}

// Insert 插入新账号
func (r *accountRepository) Insert(ctx context.Context, account *model.Account) error {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return wrapDBErrorf(err, "创建账号 username=%s", account.Username)
	}
	return nil
}

// CreateIfAbsent 依赖 idempotency_key 唯一索引：插入冲突后回查幂等键，
// 命中说明同一幂等键的并发请求已先写入
func (r *accountRepository) CreateIfAbsent(ctx context.Context, account *model.Account) (*model.Account, bool, error) {
	err := r.Insert(ctx, account)
	if err == nil {
		return account, true, nil
	}
	if !errorx.IsDuplicate(err) {
		return nil, false, err
	}

	existing, findErr := r.FindByIdempotencyKey(ctx, account.IdempotencyKey)
	if findErr == nil {
		return existing, false, nil
	}
	if !errorx.IsNotFound(findErr) {
		return nil, false, findErr
	}
	// 冲突来自 username/email/phone
	return nil, false, err
}

// Ping 检查数据库连接
func (r *accountRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return wrapDBError(err, "获取数据库连接")
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return wrapDBError(err, "ping 数据库")
	}
	return nil
}
