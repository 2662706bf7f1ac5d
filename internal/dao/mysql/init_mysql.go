// Package mysql 提供数据访问层的初始化
// 负责建立 MySQL 连接、自动迁移表结构、初始化 Repository 层
package mysql

import (
	"fmt"
	"time"

	"register_server/internal/config"
	"register_server/internal/dao/mysql/repository"
	"register_server/internal/model"

	"go.uber.org/zap"
	mysqldriver "gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// 存储模式
const (
	StorageModeMySQL  = "mysql"
	StorageModeMemory = "memory"
)

// Init 按 storageConfig.mode 初始化 Repository 层
// memory 模式不连接数据库；mysql 模式连接失败直接退出
func Init() *repository.Repositories {
	conf := config.GetConfig()
	if conf.StorageConfig.Mode == StorageModeMemory {
		zap.L().Warn("storage running in memory mode, data is not persisted")
		return repository.NewMemoryRepositories()
	}

	db, err := Open(&conf.MysqlConfig)
	if err != nil {
		zap.L().Fatal("init mysql failed", zap.Error(err))
	}
	return repository.NewRepositories(db)
}

// Open 建立 GORM 连接并迁移账号表
func Open(cfg *config.MysqlConfig) (*gorm.DB, error) {
	// 格式：user:password@tcp(host:port)/database?params
	// loc=UTC 保证 created_at 读写一致，重放结果与首次响应相同
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DatabaseName,
	)

	db, err := gorm.Open(mysqldriver.Open(dsn), &gorm.Config{
		TranslateError: true, // 唯一键冲突转换为 gorm.ErrDuplicatedKey
		NowFunc: func() time.Time {
			return time.Now().UTC().Truncate(time.Millisecond)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// 只会新增表和字段，不会删除已有字段或数据
	if err := db.AutoMigrate(&model.Account{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return db, nil
}
