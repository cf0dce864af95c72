package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig holds configuration for the rate limiter middleware.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate limit (tokens added per second).
	RequestsPerSecond float64
	// Burst is the maximum number of requests allowed in a burst.
	Burst int
}

// clientLimiter tracks one client's token bucket. lastSeen is UnixNano,
// updated on every request and read concurrently by the janitor.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// clientPool maps client IPs to their limiters and evicts entries not seen
// for staleAfter. Event producers tend to come and go (batch jobs, CI), so
// unbounded growth here would be a slow leak.
type clientPool struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	cfg     RateLimitConfig
}

const (
	janitorInterval = 5 * time.Minute
	staleAfter      = 10 * time.Minute
)

func newClientPool(cfg RateLimitConfig) *clientPool {
	p := &clientPool{
		clients: make(map[string]*clientLimiter),
		cfg:     cfg,
	}
	go p.janitor()
	return p
}

func (p *clientPool) get(ip string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	cl, ok := p.clients[ip]
	if !ok {
		cl = &clientLimiter{
			limiter: rate.NewLimiter(rate.Limit(p.cfg.RequestsPerSecond), p.cfg.Burst),
		}
		p.clients[ip] = cl
	}
	cl.lastSeen.Store(time.Now().UnixNano())
	return cl.limiter
}

func (p *clientPool) janitor() {
	for {
		time.Sleep(janitorInterval)
		cutoff := time.Now().Add(-staleAfter).UnixNano()
		p.mu.Lock()
		for ip, cl := range p.clients {
			if cl.lastSeen.Load() < cutoff {
				delete(p.clients, ip)
			}
		}
		p.mu.Unlock()
	}
}

// RateLimiter returns an HTTP middleware enforcing a per-client token
// bucket. Over-limit requests get 429 with a Retry-After hint; allowed
// requests carry X-RateLimit headers so well-behaved event producers can
// pace themselves instead of getting rejected mid-batch.
func RateLimiter(cfg RateLimitConfig) func(http.Handler) http.Handler {
	pool := newClientPool(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiter := pool.get(clientIP(r))

			reservation := limiter.Reserve()
			if !reservation.OK() {
				writeTooManyRequests(w, 0)
				return
			}

			if delay := reservation.Delay(); delay > 0 {
				// Over the sustained rate: give the tokens back and reject
				// rather than queueing the request.
				reservation.Cancel()
				writeTooManyRequests(w, int(delay.Seconds())+1)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Burst))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(limiter.Tokens())))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Second).Unix(), 10))

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP extracts the client IP from RemoteAddr, stripping the port.
// X-Forwarded-For is deliberately ignored: it is attacker-controlled, and
// honoring it would let any producer spoof its way past the limit.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeTooManyRequests(w http.ResponseWriter, retryAfterSecs int) {
	if retryAfterSecs > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSecs))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    429,
		"message": "rate limit exceeded",
	})
}
