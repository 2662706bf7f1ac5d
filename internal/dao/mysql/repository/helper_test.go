package repository

import (
	"errors"
	"fmt"
	"testing"

	"register_server/pkg/errorx"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestWrapDBError_Classification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"not found", gorm.ErrRecordNotFound, errorx.CodeNotFound},
		{"wrapped not found", fmt.Errorf("query: %w", gorm.ErrRecordNotFound), errorx.CodeNotFound},
		{"gorm duplicated", gorm.ErrDuplicatedKey, errorx.CodeDuplicate},
		{"mysql 1062", &mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry"}, errorx.CodeDuplicate},
		{"mysql other", &mysqldriver.MySQLError{Number: 1045, Message: "Access denied"}, errorx.CodeDBError},
		{"plain", errors.New("connection refused"), errorx.CodeDBError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := wrapDBError(tt.err, "op")
			assert.Equal(t, tt.code, errorx.GetCode(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}
	assert.NoError(t, wrapDBError(nil, "op"))
	assert.NoError(t, wrapDBErrorf(nil, "op %d", 1))
}
