package repository

import (
	"context"
	"sync"

	"register_server/internal/model"
	"register_server/pkg/errorx"
)

// memoryAccountRepository 内存版账号 Repository
// 唯一约束与 MySQL 表一致，用于 storageConfig.mode = "memory" 和测试
type memoryAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*model.Account // key: AccountId
	nextID   uint
}

// NewMemoryAccountRepository 创建内存版账号 Repository
func NewMemoryAccountRepository() AccountRepository {
	return &memoryAccountRepository{accounts: map[string]*model.Account{}}
}

// NewMemoryRepositories 创建内存版 Repository 聚合
func NewMemoryRepositories() *Repositories {
	return &Repositories{
		Account: NewMemoryAccountRepository(),
	}
}

func (r *memoryAccountRepository) find(match func(*model.Account) bool) *model.Account {
	for _, acc := range r.accounts {
		if match(acc) {
			return acc
		}
	}
	return nil
}

func (r *memoryAccountRepository) exists(match func(*model.Account) bool) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.find(match) != nil
}

func (r *memoryAccountRepository) ExistsByUsername(_ context.Context, username string) (bool, error) {
	return r.exists(func(a *model.Account) bool { return a.Username == username }), nil
}

func (r *memoryAccountRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	return r.exists(func(a *model.Account) bool { return a.Email == email }), nil
}

func (r *memoryAccountRepository) ExistsByPhone(_ context.Context, phone string) (bool, error) {
	return r.exists(func(a *model.Account) bool { return a.Phone == phone }), nil
}

func (r *memoryAccountRepository) FindByIdempotencyKey(_ context.Context, key string) (*model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	acc := r.find(func(a *model.Account) bool { return a.IdempotencyKey == key })
	if acc == nil {
		return nil, errorx.Newf(errorx.CodeNotFound, "account idempotency_key=%s not found", key)
	}
	cp := *acc
	return &cp, nil
}

func (r *memoryAccountRepository) Insert(_ context.Context, account *model.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertLocked(account)
}

func (r *memoryAccountRepository) insertLocked(account *model.Account) error {
	conflict := r.find(func(a *model.Account) bool {
		return a.AccountId == account.AccountId ||
			a.Username == account.Username ||
			a.Email == account.Email ||
			a.Phone == account.Phone ||
			a.IdempotencyKey == account.IdempotencyKey
	})
	if conflict != nil {
		return errorx.Newf(errorx.CodeDuplicate, "duplicate account username=%s", account.Username)
	}
	r.nextID++
	account.ID = r.nextID
	if account.UpdatedAt.IsZero() {
		account.UpdatedAt = account.CreatedAt
	}
	cp := *account
	r.accounts[account.AccountId] = &cp
	return nil
}

func (r *memoryAccountRepository) CreateIfAbsent(_ context.Context, account *model.Account) (*model.Account, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing := r.find(func(a *model.Account) bool { return a.IdempotencyKey == account.IdempotencyKey }); existing != nil {
		cp := *existing
		return &cp, false, nil
	}
	if err := r.insertLocked(account); err != nil {
		return nil, false, err
	}
	return account, true, nil
}

func (r *memoryAccountRepository) Ping(context.Context) error {
	return nil
}
