package middleware

import (
	"context"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"site-content-api/internal/metrics"
	"site-content-api/internal/respond"
)

// Limiter decides whether the client behind key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type client struct {
	lim  *rate.Limiter
	seen time.Time
}

// RateLimiter is an in-process token bucket per client address.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	r       rate.Limit
	burst   int
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*client),
		r:       rate.Limit(rps),
		burst:   burst,
	}
}

// Sweep drops clients idle for longer than idle until ctx is done.
func (rl *RateLimiter) Sweep(ctx context.Context, every, idle time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			rl.mu.Lock()
			for ip, c := range rl.clients {
				if time.Since(c.seen) > idle {
					delete(rl.clients, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *RateLimiter) get(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if c, ok := rl.clients[ip]; ok {
		c.seen = time.Now()
		return c.lim
	}
	l := rate.NewLimiter(rl.r, rl.burst)
	rl.clients[ip] = &client{lim: l, seen: time.Now()}
	return l
}

func (rl *RateLimiter) Allow(_ context.Context, key string) (bool, error) {
	return rl.get(key).Allow(), nil
}

// RateLimit rejects clients over their budget with 429. Each route keeps
// its own budget per client. Limiter errors let the request through.
// X-Forwarded-For is only read when the peer is one of trusted.
func RateLimit(l Limiter, trusted ...netip.Prefix) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := l.Allow(r.Context(), metrics.Route(r)+"|"+clientKey(r, trusted))
			if err != nil {
				Logger(r.Context()).WithError(err).Warn("rate limiter error")
			} else if !ok {
				metrics.RecordRateLimited(r)
				respond.Error(w, http.StatusTooManyRequests, "Too many requests, please try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientKey is the peer address, or the right-most X-Forwarded-For hop
// that is not a trusted proxy when the peer itself is trusted.
func clientKey(r *http.Request, trusted []netip.Prefix) string {
	ap, err := netip.ParseAddrPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	client := ap.Addr().Unmap()
	if !within(client, trusted) {
		return client.String()
	}
	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			break
		}
		client = hop.Unmap()
		if !within(client, trusted) {
			break
		}
	}
	return client.String()
}

func within(addr netip.Addr, prefixes []netip.Prefix) bool {
	for _, p := range prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
