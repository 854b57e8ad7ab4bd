package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	goredis "github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mhttp "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/hivehr/hivehr/pkg/httpapi"
)

type RateLimitConfig struct {
	RequestsPerPeriod int
	Period            time.Duration
	Store             limiter.Store
}

func NewMemoryStore() limiter.Store {
	return memorystore.NewStore()
}

func NewRedisStore(redisURL string) (limiter.Store, error) {
	opt, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	client := goredis.NewClient(opt)
	return redisstore.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix: "hivehr:ratelimit",
	})
}

// RateLimit applies a global request rate limit keyed by client IP.
func RateLimit(config RateLimitConfig) mux.MiddlewareFunc {
	period := config.Period
	if period == 0 {
		period = time.Second
	}
	store := config.Store
	if store == nil {
		store = NewMemoryStore()
	}

	rate := limiter.Rate{
		Period: period,
		Limit:  int64(config.RequestsPerPeriod),
	}
	instance := limiter.New(store, rate)
	wrapped := mhttp.NewMiddleware(instance, mhttp.WithErrorHandler(rateLimitError), mhttp.WithLimitReachedHandler(rateLimitReached))

	return wrapped.Handler
}

func rateLimitError(w http.ResponseWriter, r *http.Request, err error) {
	_ = httpapi.WriteError(w, http.StatusInternalServerError, "RATE_LIMIT_ERROR", "rate limiter failure", nil)
}

func rateLimitReached(w http.ResponseWriter, r *http.Request) {
	_ = httpapi.WriteError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests", nil)
}
