package register

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"register_server/internal/dao/mysql/repository"
	"register_server/internal/dto/request"
	"register_server/internal/dto/respond"
	"register_server/internal/infrastructure/notify"
	"register_server/internal/model"
	"register_server/pkg/constants"
	"register_server/pkg/enum/account/account_status_enum"
	"register_server/pkg/errorx"
	"register_server/pkg/util/jwt"
)

var bcryptPattern = regexp.MustCompile(`^\$2[aby]\$\d{2}\$[./A-Za-z0-9]{53}$`)

type spyNotifier struct {
	mu   sync.Mutex
	sent []notify.Verification
}

func (s *spyNotifier) Notify(v notify.Verification) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, v)
	return true
}

func (s *spyNotifier) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

// fakeCache 同步执行任务的内存缓存
type fakeCache struct {
	mu     sync.Mutex
	data   map[string]string
	getErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string]string{}}
}

func (c *fakeCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	if c.getErr != nil {
		return "", c.getErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[key], nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *fakeCache) Ping(context.Context) error { return nil }
func (c *fakeCache) SubmitTask(action func())   { action() }
func (c *fakeCache) Close() error               { return nil }

// staleReadRepo 唯一性查询总是返回不存在，模拟校验与写入之间的并发插入
type staleReadRepo struct {
	repository.AccountRepository
}

func (staleReadRepo) ExistsByUsername(context.Context, string) (bool, error) { return false, nil }
func (staleReadRepo) ExistsByEmail(context.Context, string) (bool, error)    { return false, nil }
func (staleReadRepo) ExistsByPhone(context.Context, string) (bool, error)    { return false, nil }

// brokenRepo 所有查询都失败
type brokenRepo struct {
	repository.AccountRepository
}

func (brokenRepo) FindByIdempotencyKey(context.Context, string) (*model.Account, error) {
	return nil, errorx.New(errorx.CodeDBError, "connection refused")
}

func validRequest() request.RegisterRequest {
	return request.RegisterRequest{
		FullName:        "Somkiat Pui",
		Username:        "somkiat.p",
		Email:           "somkiat.p@example.com",
		Phone:           "+66812345678",
		Password:        "Pa$$w0rd2025!",
		ConfirmPassword: "Pa$$w0rd2025!",
		Dob:             request.NewDate(1995, time.May, 10),
		AcceptTerms:     true,
	}
}

func newTestService(t *testing.T, repo repository.AccountRepository) (*registerService, *spyNotifier) {
	t.Helper()
	jwt.Init("register-test-secret", 1)
	notifier := &spyNotifier{}
	svc := NewRegisterService(&repository.Repositories{Account: repo}, notifier, nil, Options{BcryptCost: 4})
	return svc, notifier
}

func countAccounts(t *testing.T, repo repository.AccountRepository, key string) int {
	t.Helper()
	_, err := repo.FindByIdempotencyKey(context.Background(), key)
	if err != nil {
		require.True(t, errorx.IsNotFound(err))
		return 0
	}
	return 1
}

func TestRegister_EndToEndExample(t *testing.T) {
	repo := repository.NewMemoryAccountRepository()
	svc, notifier := newTestService(t, repo)

	rsp, replayed, err := svc.Register(context.Background(), validRequest(), "test-key-001")
	require.NoError(t, err)
	assert.False(t, replayed)
	assert.Equal(t, "pending_verification", rsp.Status)
	assert.Equal(t, constants.VERIFICATION_CHANNEL_EMAIL, rsp.Verification.Channel)
	assert.Regexp(t, `^usr_[0-9a-f]{32}$`, rsp.UserId)

	stored, err := repo.FindByIdempotencyKey(context.Background(), "test-key-001")
	require.NoError(t, err)
	assert.Equal(t, rsp.UserId, stored.AccountId)
	assert.Equal(t, int8(account_status_enum.PENDING_VERIFICATION), stored.Status)
	assert.True(t, stored.CreatedAt.Equal(rsp.Verification.SentAt))

	require.Equal(t, 1, notifier.count())
	assert.Equal(t, "somkiat.p@example.com", notifier.sent[0].Email)
	assert.True(t, stored.CreatedAt.Equal(notifier.sent[0].SentAt))
}

func TestRegister_ReplayWithMutatedBody(t *testing.T) {
	repo := repository.NewMemoryAccountRepository()
	svc, notifier := newTestService(t, repo)

	first, _, err := svc.Register(context.Background(), validRequest(), "retry-key")
	require.NoError(t, err)

	mutated := validRequest()
	mutated.Username = "someone.else"
	mutated.ConfirmPassword = "does-not-match"
	second, replayed, err := svc.Register(context.Background(), mutated, "retry-key")
	require.NoError(t, err)
	assert.True(t, replayed)
	assert.Equal(t, first, second)

	exists, err := repo.ExistsByUsername(context.Background(), "someone.else")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, 1, notifier.count())
}

func TestRegister_PasswordMismatch(t *testing.T) {
	repo := repository.NewMemoryAccountRepository()
	svc, notifier := newTestService(t, repo)

	req := validRequest()
	req.ConfirmPassword = "Different1!"
	_, _, err := svc.Register(context.Background(), req, "mismatch-key")

	var codeErr *errorx.CodeError
	require.True(t, errors.As(err, &codeErr))
	assert.Equal(t, errorx.CodeValidationFailed, codeErr.Code)
	assert.Equal(t, map[string]string{"confirmPassword": MsgPasswordMismatch}, codeErr.Fields)
	assert.Equal(t, 0, countAccounts(t, repo, "mismatch-key"))
	assert.Equal(t, 0, notifier.count())
}

func TestRegister_AllUniquenessViolationsTogether(t *testing.T) {
	repo := repository.NewMemoryAccountRepository()
	svc, _ := newTestService(t, repo)

	_, _, err := svc.Register(context.Background(), validRequest(), "first")
	require.NoError(t, err)

	req := validRequest()
	req.ConfirmPassword = "nope"
	_, _, err = svc.Register(context.Background(), req, "second")

	var codeErr *errorx.CodeError
	require.True(t, errors.As(err, &codeErr))
	assert.Equal(t, map[string]string{
		"confirmPassword": MsgPasswordMismatch,
		"username":        MsgUsernameTaken,
		"email":           MsgEmailTaken,
		"phone":           MsgPhoneTaken,
	}, codeErr.Fields)
	assert.Equal(t, 0, countAccounts(t, repo, "second"))
}

func TestRegister_PasswordIsHashed(t *testing.T) {
	repo := repository.NewMemoryAccountRepository()
	svc, _ := newTestService(t, repo)

	_, _, err := svc.Register(context.Background(), validRequest(), "hash-key")
	require.NoError(t, err)

	stored, err := repo.FindByIdempotencyKey(context.Background(), "hash-key")
	require.NoError(t, err)
	assert.NotEqual(t, validRequest().Password, stored.Password)
	assert.Regexp(t, bcryptPattern, stored.Password)
	assert.True(t, stored.CheckPassword(validRequest().Password))
}

func TestRegister_GeneratesKeyWhenMissing(t *testing.T) {
	repo := repository.NewMemoryAccountRepository()
	svc, _ := newTestService(t, repo)

	first, replayed, err := svc.Register(context.Background(), validRequest(), "  ")
	require.NoError(t, err)
	assert.False(t, replayed)

	other := validRequest()
	other.Username = "another.user"
	other.Email = "another@example.com"
	other.Phone = "+66812345679"
	second, replayed, err := svc.Register(context.Background(), other, "")
	require.NoError(t, err)
	assert.False(t, replayed)
	assert.NotEqual(t, first.UserId, second.UserId)
}

func TestRegister_InsertRaceIsFatal(t *testing.T) {
	repo := repository.NewMemoryAccountRepository()
	svc, notifier := newTestService(t, staleReadRepo{repo})

	_, _, err := svc.Register(context.Background(), validRequest(), "winner")
	require.NoError(t, err)

	_, _, err = svc.Register(context.Background(), validRequest(), "loser")
	require.Error(t, err)
	assert.Equal(t, errorx.CodeInternalError, errorx.GetCode(err))
	assert.True(t, errorx.IsDuplicate(errors.Unwrap(err)))
	assert.Equal(t, 0, countAccounts(t, repo, "loser"))
	assert.Equal(t, 1, notifier.count())
}

func TestRegister_LookupFailureIsInternal(t *testing.T) {
	svc, _ := newTestService(t, brokenRepo{repository.NewMemoryAccountRepository()})

	_, _, err := svc.Register(context.Background(), validRequest(), "any")
	require.Error(t, err)
	assert.Equal(t, errorx.CodeInternalError, errorx.GetCode(err))
}

func TestRegister_NilNotifier(t *testing.T) {
	jwt.Init("register-test-secret", 1)
	repo := repository.NewMemoryAccountRepository()
	svc := NewRegisterService(&repository.Repositories{Account: repo}, nil, nil, Options{BcryptCost: 4})

	_, _, err := svc.Register(context.Background(), validRequest(), "no-notifier")
	require.NoError(t, err)
}

func TestRegister_ReplayFromCache(t *testing.T) {
	jwt.Init("register-test-secret", 1)
	repo := repository.NewMemoryAccountRepository()
	cache := newFakeCache()
	svc := NewRegisterService(&repository.Repositories{Account: repo}, &spyNotifier{}, cache, Options{BcryptCost: 4, Channel: "sms"})

	first, _, err := svc.Register(context.Background(), validRequest(), "cached-key")
	require.NoError(t, err)
	assert.Equal(t, "sms", first.Verification.Channel)
	assert.Contains(t, cache.data, constants.IDEMPOTENCY_CACHE_PREFIX+"cached-key")

	// 缓存命中时不访问存储
	svc.repo = brokenRepo{repo}
	second, replayed, err := svc.Register(context.Background(), validRequest(), "cached-key")
	require.NoError(t, err)
	assert.True(t, replayed)
	assert.Equal(t, first.UserId, second.UserId)
	assert.True(t, first.Verification.SentAt.Equal(second.Verification.SentAt))
}

func TestRegister_CacheErrorFallsBackToStorage(t *testing.T) {
	jwt.Init("register-test-secret", 1)
	repo := repository.NewMemoryAccountRepository()
	cache := newFakeCache()
	svc := NewRegisterService(&repository.Repositories{Account: repo}, &spyNotifier{}, cache, Options{BcryptCost: 4})

	first, _, err := svc.Register(context.Background(), validRequest(), "k")
	require.NoError(t, err)

	cache.getErr = errors.New("redis down")
	second, replayed, err := svc.Register(context.Background(), validRequest(), "k")
	require.NoError(t, err)
	assert.True(t, replayed)
	assert.Equal(t, first, second)
}

func TestRegister_ConcurrentSameKeyCreatesOnce(t *testing.T) {
	repo := repository.NewMemoryAccountRepository()
	svc, notifier := newTestService(t, repo)

	const n = 8
	results := make([]*respond.RegisterRespond, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rsp, _, err := svc.Register(context.Background(), validRequest(), "same-key")
			if assert.NoError(t, err) {
				results[i] = rsp
			}
		}(i)
	}
	wg.Wait()

	for _, rsp := range results[1:] {
		assert.Equal(t, results[0], rsp)
	}
	assert.Equal(t, 1, notifier.count())
}
