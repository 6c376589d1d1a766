package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/applicant-intake/internal/infrastructure/kv"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func newLimiter() (*Limiter, *clock) {
	c := &clock{t: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	return New(kv.NewMemoryStore(c.Now), c.Now), c
}

func TestCheck_FourthCallInWindowFails(t *testing.T) {
	l, _ := newLimiter()
	cfg := Config{Window: time.Second, MaxRequests: 3}
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		res := l.Check(ctx, "apply:1.2.3.4", cfg)
		assert.True(t, res.Success, "call %d", i)
		assert.Equal(t, 3-i, res.Remaining)
	}
	res := l.Check(ctx, "apply:1.2.3.4", cfg)
	assert.False(t, res.Success)
	assert.Zero(t, res.Remaining)
	assert.Equal(t, 4, res.Count)
}

func TestCheck_ResetsAfterWindow(t *testing.T) {
	l, c := newLimiter()
	cfg := Config{Window: time.Second, MaxRequests: 3}
	ctx := context.Background()

	var last Result
	for i := 0; i < 4; i++ {
		last = l.Check(ctx, "id", cfg)
	}
	require.False(t, last.Success)

	c.t = last.ResetAt.Add(time.Millisecond)
	res := l.Check(ctx, "id", cfg)
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, 2, res.Remaining)
}

func TestCheck_WindowNotReplacedWhileChargingOverLimit(t *testing.T) {
	l, c := newLimiter()
	cfg := Config{Window: time.Minute, MaxRequests: 1}
	ctx := context.Background()

	first := l.Check(ctx, "id", cfg)
	c.t = c.t.Add(30 * time.Second)
	second := l.Check(ctx, "id", cfg)
	assert.False(t, second.Success)
	assert.Equal(t, first.ResetAt, second.ResetAt)
}

func TestCheck_IdentitiesAreIndependent(t *testing.T) {
	l, _ := newLimiter()
	cfg := Config{Window: time.Hour, MaxRequests: 1}
	ctx := context.Background()

	assert.True(t, l.Check(ctx, "apply:a", cfg).Success)
	assert.False(t, l.Check(ctx, "apply:a", cfg).Success)
	assert.True(t, l.Check(ctx, "apply:b", cfg).Success)
	assert.True(t, l.Check(ctx, "resend:a", cfg).Success)
}

func TestCheck_RedisBackedStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	l := New(kv.NewRedisStore(client, "test"), nil)
	cfg := Config{Window: time.Minute, MaxRequests: 2}
	ctx := context.Background()

	assert.True(t, l.Check(ctx, "presign:ip", cfg).Success)
	assert.True(t, l.Check(ctx, "presign:ip", cfg).Success)
	assert.False(t, l.Check(ctx, "presign:ip", cfg).Success)
	assert.True(t, mr.Exists("test:ratelimit:presign:ip"))
}

type failingStore struct{ mock.Mock }

func (m *failingStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	b, _ := args.Get(0).([]byte)
	return b, args.Bool(1), args.Error(2)
}
func (m *failingStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}
func (m *failingStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}
func (m *failingStore) Sweep(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func TestCheck_StoreErrorAllows(t *testing.T) {
	st := &failingStore{}
	st.On("Get", mock.Anything, "ratelimit:id").Return(nil, false, errors.New("connection refused"))

	l := New(st, nil)
	res := l.Check(context.Background(), "id", Apply)
	assert.True(t, res.Success)
	st.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
