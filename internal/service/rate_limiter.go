package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter cuenta eventos por clave dentro de una ventana fija.
// Se usa para los OTP (clave = email) y para el coach (clave = modo + usuario).
type RateLimiter interface {
	Allow(key string) bool
}

// Prefijos de clave por uso. Comparten backend pero no contadores.
const (
	OTPLimitPrefix   = "rl:otp:"
	CoachLimitPrefix = "rl:coach:"
)

// redisOpTimeout acota cada llamada a Redis de los stores de este paquete.
const redisOpTimeout = 500 * time.Millisecond

func redisContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), redisOpTimeout)
}

// limitKey arma la clave final. Una clave vacia no se puede limitar y se rechaza.
func limitKey(prefix, key string) (string, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return "", false
	}
	return prefix + key, true
}

func limiterDefaults(window time.Duration, max int) (time.Duration, int) {
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return window, max
}

type memoryRateLimiter struct {
	mu     sync.Mutex
	prefix string
	window time.Duration
	max    int
	now    func() time.Time
	hits   map[string][]time.Time
}

// NewMemoryRateLimiter crea un limiter de ventana deslizante en memoria, para un solo proceso.
func NewMemoryRateLimiter(prefix string, window time.Duration, max int) RateLimiter {
	window, max = limiterDefaults(window, max)
	return &memoryRateLimiter{
		prefix: prefix,
		window: window,
		max:    max,
		now:    func() time.Time { return time.Now().UTC() },
		hits:   make(map[string][]time.Time),
	}
}

func (l *memoryRateLimiter) Allow(key string) bool {
	k, ok := limitKey(l.prefix, key)
	if !ok {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)
	kept := l.hits[k][:0]
	for _, ts := range l.hits[k] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.hits[k] = kept
		return false
	}
	l.hits[k] = append(kept, now)
	return true
}

// INCR + EXPIRE en una sola ida: la ventana arranca con el primer evento.
const redisAllowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

type redisRateLimiter struct {
	client redisEvaler
	prefix string
	window time.Duration
	max    int
}

// NewRedisRateLimiter comparte los contadores entre instancias. Si Redis falla, deja pasar.
func NewRedisRateLimiter(client *redis.Client, prefix string, window time.Duration, max int) RateLimiter {
	if client == nil {
		return nil
	}
	window, max = limiterDefaults(window, max)
	return &redisRateLimiter{client: client, prefix: prefix, window: window, max: max}
}

func (l *redisRateLimiter) Allow(key string) bool {
	if l == nil || l.client == nil {
		return true
	}
	k, ok := limitKey(l.prefix, key)
	if !ok {
		return false
	}
	ctx, cancel := redisContext()
	defer cancel()

	seconds := int(l.window / time.Second)
	if seconds <= 0 {
		seconds = 1
	}
	count, err := l.client.Eval(ctx, redisAllowScript, []string{k}, seconds).Int()
	if err != nil {
		return true
	}
	return count <= l.max
}
