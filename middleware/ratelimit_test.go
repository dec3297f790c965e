package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestRedisLimiter_WindowResets(t *testing.T) {
	client, mr := setupTestRedis(t)
	limiter := NewRedisLimiter(client, "quiz:ratelimit:login", 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := limiter.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d", i+1)
	}

	ok, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok, "fourth attempt inside the window must be refused")

	ok, err = limiter.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, ok, "other keys are independent")

	mr.FastForward(time.Minute + time.Second)

	ok, err = limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok, "window expired")
}

func TestRedisLimiter_SetsTTL(t *testing.T) {
	client, mr := setupTestRedis(t)
	limiter := NewRedisLimiter(client, "rl", 5, 30*time.Second)

	_, err := limiter.Allow(context.Background(), "k")
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, mr.TTL("rl:k"))
}

func TestLocalLimiter_Burst(t *testing.T) {
	limiter := NewLocalLimiter(1, 2)
	ctx := context.Background()

	first, _ := limiter.Allow(ctx, "a")
	second, _ := limiter.Allow(ctx, "a")
	third, _ := limiter.Allow(ctx, "a")
	other, _ := limiter.Allow(ctx, "b")

	assert.True(t, first)
	assert.True(t, second)
	assert.False(t, third)
	assert.True(t, other)
}

func TestRedisLimiter_RepairsMissingTTL(t *testing.T) {
	client, mr := setupTestRedis(t)
	limiter := NewRedisLimiter(client, "rl", 3, time.Minute)
	ctx := context.Background()

	// Counter left over limit without TTL by an earlier failed EXPIRE.
	require.NoError(t, mr.Set("rl:10.0.0.1", "7"))

	ok, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, time.Minute, mr.TTL("rl:10.0.0.1"))

	mr.FastForward(time.Minute + time.Second)

	ok, err = limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok, "key must not stay locked once the window passes")
}

func TestRedisLimiter_KeepsWindowFixed(t *testing.T) {
	client, mr := setupTestRedis(t)
	limiter := NewRedisLimiter(client, "rl", 5, time.Minute)
	ctx := context.Background()

	_, err := limiter.Allow(ctx, "k")
	require.NoError(t, err)
	mr.FastForward(20 * time.Second)
	_, err = limiter.Allow(ctx, "k")
	require.NoError(t, err)

	assert.Equal(t, 40*time.Second, mr.TTL("rl:k"))
}

func TestLocalLimiter_EvictsIdleKeys(t *testing.T) {
	limiter := NewLocalLimiter(60, 2)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	ctx := context.Background()

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		ok, err := limiter.Allow(ctx, ip)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Len(t, limiter.entries, 3)

	now = now.Add(time.Second)
	_, _ = limiter.Allow(ctx, "10.0.0.1")

	now = now.Add(1500 * time.Millisecond)
	_, _ = limiter.Allow(ctx, "10.0.0.1")

	assert.Len(t, limiter.entries, 1, "idle keys are swept")
	assert.Contains(t, limiter.entries, "10.0.0.1")
}

type stubLimiter struct {
	allowed bool
	err     error
}

func (s stubLimiter) Allow(context.Context, string) (bool, error) { return s.allowed, s.err }

func TestLoginRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name    string
		limiter Limiter
		want    int
	}{
		{"allowed", stubLimiter{allowed: true}, http.StatusOK},
		{"refused", stubLimiter{allowed: false}, http.StatusTooManyRequests},
		{"limiter down fails open", stubLimiter{err: errors.New("connection refused")}, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.POST("/login", LoginRateLimit(tc.limiter), func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))

			assert.Equal(t, tc.want, w.Code)
		})
	}
}
