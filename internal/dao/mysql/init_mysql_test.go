package mysql

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"register_server/internal/config"
	"register_server/internal/dao/mysql/repository"
	"register_server/internal/model"
	"register_server/pkg/errorx"
)

// 需要本地 MySQL：REGISTER_TEST_MYSQL=1 go test ./internal/dao/mysql/...
func openTestRepo(t *testing.T) repository.AccountRepository {
	t.Helper()
	if os.Getenv("REGISTER_TEST_MYSQL") == "" {
		t.Skip("REGISTER_TEST_MYSQL not set")
	}
	conf, err := config.LoadFile("../../../configs/config.toml")
	require.NoError(t, err)
	db, err := Open(&conf.MysqlConfig)
	require.NoError(t, err)
	return repository.NewAccountRepository(db)
}

func newAccount(key string) *model.Account {
	suffix := uuid.NewString()[:8]
	acc := &model.Account{
		AccountId:      "usr_" + uuid.NewString()[:32],
		FullName:       "Integration Test",
		Username:       "it." + suffix,
		Email:          "it." + suffix + "@example.com",
		Phone:          "+1555" + suffix[:7],
		Dob:            time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		AcceptTerms:    true,
		IdempotencyKey: key,
	}
	acc.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	return acc
}

func TestAccountRepository_CreateAndReplay(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	key := "it-" + uuid.NewString()

	acc := newAccount(key)
	require.NoError(t, acc.SetPassword("Pa$$w0rd2025!", 4))
	stored, created, err := repo.CreateIfAbsent(ctx, acc)
	require.NoError(t, err)
	assert.True(t, created)

	found, err := repo.FindByIdempotencyKey(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, stored.AccountId, found.AccountId)
	assert.True(t, stored.CreatedAt.Equal(found.CreatedAt))

	exists, err := repo.ExistsByEmail(ctx, acc.Email)
	require.NoError(t, err)
	assert.True(t, exists)

	// 同一幂等键再次写入返回已有账号
	again, created, err := repo.CreateIfAbsent(ctx, newAccount(key))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, stored.AccountId, again.AccountId)

	// 不同幂等键但用户名冲突
	dup := newAccount("it-" + uuid.NewString())
	dup.Username = acc.Username
	_, _, err = repo.CreateIfAbsent(ctx, dup)
	assert.True(t, errorx.IsDuplicate(err))
}

func TestAccountRepository_ConcurrentSameKey(t *testing.T) {
	repo := openTestRepo(t)
	key := "it-" + uuid.NewString()

	const n = 5
	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			stored, _, err := repo.CreateIfAbsent(context.Background(), newAccount(key))
			if assert.NoError(t, err) {
				ids[i] = stored.AccountId
			}
		}(i)
	}
	wg.Wait()
	for _, id := range ids[1:] {
		assert.Equal(t, ids[0], id)
	}
}
