package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/likbrus/likbrus.github.io/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const purgeInterval = 5 * time.Minute

type window struct {
	count int
	ends  time.Time
}

// Limiter is a fixed-window per-IP request limiter.
type Limiter struct {
	mu      sync.Mutex
	name    string
	limit   int
	span    time.Duration
	message string
	ips     map[string]*window
	now     func() time.Time
}

func NewLimiter(name string, limit int, span time.Duration, message string) *Limiter {
	return &Limiter{
		name:    name,
		limit:   limit,
		span:    span,
		message: message,
		ips:     make(map[string]*window),
		now:     time.Now,
	}
}

// NewLoginLimiter allows 20 sign-in attempts per minute per IP.
func NewLoginLimiter() *Limiter {
	return NewLimiter("login", 20, time.Minute, "For mange innloggingsforsøk. Prøv igjen om et minutt.")
}

// Allow counts one request from ip and reports whether it may proceed.
func (l *Limiter) Allow(ip string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	w, ok := l.ips[ip]
	if !ok || now.After(w.ends) {
		w = &window{ends: now.Add(l.span)}
		l.ips[ip] = w
	}
	w.count++
	return w.count <= l.limit, w.ends
}

func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, ends := l.Allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", ends.UTC().Format(http.TimeFormat))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(l.message))
			return
		}
		c.Next()
	}
}

// StartPurge drops expired windows every few minutes until ctx is done.
func (l *Limiter) StartPurge(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(purgeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := l.purge(); n > 0 {
					log.Debug().Str("limiter", l.name).Int("purged", n).Msg("rate limiter purged")
				}
			}
		}
	}()
}

func (l *Limiter) purge() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	n := 0
	for ip, w := range l.ips {
		if now.After(w.ends) {
			delete(l.ips, ip)
			n++
		}
	}
	return n
}
