// Package ratelimit ограничивает частоту запросов к /query с одного адреса.
package ratelimit

import (
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/time/rate"
)

// Config - лимит в запросах в секунду и размер всплеска. Limit <= 0 отключает ограничение.
type Config struct {
	Limit          float64  `yaml:"limit"`
	Burst          int      `yaml:"burst"`
	TrustedProxies []string `yaml:"trustedProxies"`
}

// idleTTL - сколько живёт лимитер адреса, от которого нет запросов.
const idleTTL = time.Minute

// Limiter хранит по лимитеру на адрес клиента.
type Limiter struct {
	cfg     Config
	trusted map[string]struct{}
	cache   *ttlcache.Cache[string, *rate.Limiter]
	logger  *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Limiter {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	cache := ttlcache.New[string, *rate.Limiter](
		ttlcache.WithTTL[string, *rate.Limiter](idleTTL),
	)
	go cache.Start()

	trusted := make(map[string]struct{}, len(cfg.TrustedProxies))
	for _, p := range cfg.TrustedProxies {
		trusted[p] = struct{}{}
	}
	return &Limiter{
		cfg:     cfg,
		trusted: trusted,
		cache:   cache,
		logger:  logger.With("component", "rate-limiter"),
	}
}

// Stop останавливает очистку кэша.
func (l *Limiter) Stop() { l.cache.Stop() }

// clientIP - адрес клиента. X-Forwarded-For учитывается только от доверенных прокси.
func (l *Limiter) clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	if _, ok := l.trusted[ip]; ok {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			return strings.TrimSpace(strings.Split(fwd, ",")[0])
		}
	}
	return ip
}

func (l *Limiter) get(ip string) *rate.Limiter {
	if item := l.cache.Get(ip); item != nil {
		return item.Value()
	}
	item, _ := l.cache.GetOrSet(ip, rate.NewLimiter(rate.Limit(l.cfg.Limit), l.cfg.Burst))
	return item.Value()
}

// Middleware отвечает 429 с Retry-After, когда адрес исчерпал лимит.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	if l.cfg.Limit <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limiter := l.get(l.clientIP(r))
		res := limiter.Reserve()
		if delay := res.Delay(); delay > 0 {
			res.Cancel()
			l.logger.Warn("rate limit exceeded", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
			w.Header().Set("Retry-After", fmt.Sprintf("%.0f", math.Ceil(delay.Seconds())))
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%v", limiter.Limit()))
			w.Header().Set("X-RateLimit-Burst", fmt.Sprintf("%d", limiter.Burst()))
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
