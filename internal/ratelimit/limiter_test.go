package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/config"
	apperrors "github.com/spec-kit/account-service/pkg/util"
)

// fakeWindowStore counts in memory and can simulate an unreachable redis.
type fakeWindowStore struct {
	counts  map[string]int64
	expires map[string]time.Duration
	err     error
}

func newFakeWindowStore() *fakeWindowStore {
	return &fakeWindowStore{
		counts:  make(map[string]int64),
		expires: make(map[string]time.Duration),
	}
}

func (f *fakeWindowStore) Incr(_ context.Context, key string) *redis.IntCmd {
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeWindowStore) Expire(_ context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	if f.err != nil {
		return redis.NewBoolResult(false, f.err)
	}
	f.expires[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func newLimiterApp(limiter *Limiter, quota config.RateLimitQuota) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"error": de.Code})
		},
	})
	app.Get("/", limiter.Class("login", quota), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})
	return app
}

func doGet(t *testing.T, app *fiber.App) *http.Response {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	return resp
}

func TestLimiter_OverQuotaReturns429(t *testing.T) {
	t.Parallel()

	store := newFakeWindowStore()
	limiter := NewLimiter(store, config.RateLimitConfig{Enabled: true}, zap.NewNop())
	app := newLimiterApp(limiter, config.RateLimitQuota{Requests: 2, Window: time.Minute})

	assert.Equal(t, http.StatusOK, doGet(t, app).StatusCode)
	assert.Equal(t, http.StatusOK, doGet(t, app).StatusCode)

	resp := doGet(t, app)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode, "third request must exceed the 2-request quota")

	// the window stays exhausted for subsequent hits
	assert.Equal(t, http.StatusTooManyRequests, doGet(t, app).StatusCode)
}

func TestLimiter_ExpireSetOnFirstHitOnly(t *testing.T) {
	t.Parallel()

	store := newFakeWindowStore()
	limiter := NewLimiter(store, config.RateLimitConfig{Enabled: true}, zap.NewNop())
	app := newLimiterApp(limiter, config.RateLimitQuota{Requests: 5, Window: 5 * time.Minute})

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doGet(t, app).StatusCode)
	}

	require.Len(t, store.counts, 1, "one client address yields one window key")
	for key, count := range store.counts {
		assert.Equal(t, int64(3), count)
		assert.Equal(t, 5*time.Minute, store.expires[key], "window TTL set when the key is created")
	}
}

func TestLimiter_FailsOpenWhenStoreErrors(t *testing.T) {
	t.Parallel()

	store := newFakeWindowStore()
	store.err = errors.New("connection refused")
	limiter := NewLimiter(store, config.RateLimitConfig{Enabled: true}, zap.NewNop())
	app := newLimiterApp(limiter, config.RateLimitQuota{Requests: 1, Window: time.Minute})

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doGet(t, app).StatusCode, "unreachable redis must not reject requests")
	}
}

func TestLimiter_DisabledPassesThrough(t *testing.T) {
	t.Parallel()

	limiter := NewLimiter(newFakeWindowStore(), config.RateLimitConfig{Enabled: false}, zap.NewNop())
	app := newLimiterApp(limiter, config.RateLimitQuota{Requests: 1, Window: time.Minute})

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doGet(t, app).StatusCode)
	}
}

func TestLimiter_NilStoreDisables(t *testing.T) {
	t.Parallel()

	limiter := NewLimiter(nil, config.RateLimitConfig{Enabled: true}, zap.NewNop())
	assert.False(t, limiter.enabled)
}

func TestLimiter_ZeroQuotaPassesThrough(t *testing.T) {
	t.Parallel()

	store := newFakeWindowStore()
	limiter := NewLimiter(store, config.RateLimitConfig{Enabled: true}, zap.NewNop())
	app := newLimiterApp(limiter, config.RateLimitQuota{})

	resp := doGet(t, app)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, store.counts)
}
