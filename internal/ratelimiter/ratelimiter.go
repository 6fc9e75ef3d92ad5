package ratelimiter

import (
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

const storePrefix = "cqpay-limiter"

type KeyFunc = stdlib.KeyGetter

type EndpointConfig struct {
	Name    string
	Limit   int64
	Period  time.Duration
	KeyFunc KeyFunc
}

// Service hands out one limiter middleware per named endpoint, all sharing a store.
type Service struct {
	store        limiter.Store
	middlewares  map[string]*stdlib.Middleware
	limitReached stdlib.LimitReachedHandler
	onError      stdlib.ErrorHandler
}

func NewRateLimit(store limiter.Store, rate limiter.Rate, keyGetter KeyFunc, opts ...stdlib.Option) *stdlib.Middleware {
	limiter := limiter.New(store, rate)

	opts = append([]stdlib.Option{stdlib.WithKeyGetter(keyGetter)}, opts...)
	return stdlib.NewMiddleware(limiter, opts...)
}

func NewMemoryStore() limiter.Store {
	return memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          storePrefix,
		CleanUpInterval: time.Minute,
	})
}

func NewRedisStore(client *redis.Client) (limiter.Store, error) {
	return sredis.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix: storePrefix,
	})
}

func NewService(store limiter.Store, limitReached stdlib.LimitReachedHandler, onError stdlib.ErrorHandler) *Service {
	return &Service{
		store:        store,
		middlewares:  make(map[string]*stdlib.Middleware),
		limitReached: limitReached,
		onError:      onError,
	}
}

func (s *Service) AddEndpoint(cfg EndpointConfig) {
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = IPKey
	}

	var opts []stdlib.Option

	if s.limitReached != nil {
		opts = append(opts, stdlib.WithLimitReachedHandler(s.limitReached))
	}

	if s.onError != nil {
		opts = append(opts, stdlib.WithErrorHandler(s.onError))
	}

	rate := limiter.Rate{Period: cfg.Period, Limit: cfg.Limit}
	s.middlewares[cfg.Name] = NewRateLimit(s.store, rate, prefixed(cfg.Name, keyFunc), opts...)
}

// Limit wraps next with the named endpoint's limiter. Unknown names pass through.
func (s *Service) Limit(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		m, ok := s.middlewares[name]
		if !ok {
			return next
		}

		return m.Handler(next)
	}
}

func prefixed(name string, keyFunc KeyFunc) KeyFunc {
	return func(r *http.Request) string {
		return name + ":" + keyFunc(r)
	}
}

func IPKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}
