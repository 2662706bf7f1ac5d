package repository

import (
	"errors"

	"register_server/pkg/errorx"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// mysqlErrDupEntry MySQL 唯一键冲突错误号
const mysqlErrDupEntry = 1062

// wrapDBError 包装数据库错误
//   - ErrRecordNotFound -> CodeNotFound
//   - 唯一键冲突 -> CodeDuplicate
//   - 其他错误 -> CodeDBError
func wrapDBError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errorx.Wrap(err, classify(err), msg)
}

// wrapDBErrorf 功能同 wrapDBError，支持格式化消息
func wrapDBErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return errorx.Wrapf(err, classify(err), format, args...)
}

func classify(err error) string {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errorx.CodeNotFound
	case isDuplicateKeyError(err):
		return errorx.CodeDuplicate
	default:
		return errorx.CodeDBError
	}
}

// isDuplicateKeyError 兼容 gorm 的 TranslateError 与原始 MySQL 错误
func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysqldriver.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrDupEntry
}
