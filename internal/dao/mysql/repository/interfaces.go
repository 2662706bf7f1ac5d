// Package repository 定义数据访问层接口和聚合结构
// 采用 Repository 模式将数据访问逻辑与业务逻辑分离
package repository

import (
	"context"

	"register_server/internal/model"
)

// AccountReader 账号只读查询，供注册校验使用
type AccountReader interface {
	// ExistsByUsername 用户名是否已存在
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// ExistsByEmail 邮箱是否已存在
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// ExistsByPhone 手机号是否已存在
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	// FindByIdempotencyKey 按幂等键查找账号，不存在时返回 CodeNotFound 错误
	FindByIdempotencyKey(ctx context.Context, key string) (*model.Account, error)
}

// AccountRepository 账号数据访问接口
type AccountRepository interface {
	AccountReader
	// Insert 插入新账号，违反唯一约束时返回 CodeDuplicate 错误
	Insert(ctx context.Context, account *model.Account) error
	// CreateIfAbsent 以幂等键为准插入账号
	// 幂等键已存在时返回已有账号且 created=false；其他唯一约束冲突返回 CodeDuplicate 错误
	CreateIfAbsent(ctx context.Context, account *model.Account) (stored *model.Account, created bool, err error)
	// Ping 检查存储是否可用
	Ping(ctx context.Context) error
}

// Repositories 聚合所有 Repository 实例
type Repositories struct {
	Account AccountRepository // 账号 Repository
}
