// Package middleware provides the HTTP middleware shared by every route.
package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shashiranjanraj/heartscript/pkg/response"
)

// Limiter is a fixed-window request counter per client IP.
type Limiter struct {
	max    int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
	sweepAt time.Time
}

type bucket struct {
	count   int
	resetAt time.Time
}

// NewLimiter allows max requests per window for each client IP.
func NewLimiter(max int, window time.Duration) *Limiter {
	return &Limiter{max: max, window: window, now: time.Now, buckets: map[string]*bucket{}}
}

// Allow records one request from key and reports whether it is within limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.After(l.sweepAt) {
		for k, b := range l.buckets {
			if now.After(b.resetAt) {
				delete(l.buckets, k)
			}
		}
		l.sweepAt = now.Add(l.window)
	}

	b, ok := l.buckets[key]
	if !ok || now.After(b.resetAt) {
		b = &bucket{resetAt: now.Add(l.window)}
		l.buckets[key] = b
	}
	b.count++
	return b.count <= l.max
}

// Middleware rejects requests over the limit with 429. Only the methods
// listed are counted; an empty list counts all of them.
func (l *Limiter) Middleware(methods ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if counts(methods, r.Method) && !l.Allow(ClientIP(r)) {
				response.TooManyRequests(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func counts(methods []string, method string) bool {
	if len(methods) == 0 {
		return true
	}
	for _, m := range methods {
		if m == method {
			return true
		}
	}
	return false
}

var (
	proxyMu sync.RWMutex
	proxies []*net.IPNet
)

// TrustProxies replaces the set of peers whose forwarding headers
// ClientIP believes. Entries are IPs or CIDRs; no entries trusts nobody.
func TrustProxies(cidrs ...string) error {
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, c := range cidrs {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if !strings.Contains(c, "/") {
			ip := net.ParseIP(c)
			if ip == nil {
				return fmt.Errorf("middleware: bad trusted proxy %q", c)
			}
			bits := 128
			if ip.To4() != nil {
				ip, bits = ip.To4(), 32
			}
			nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, n, err := net.ParseCIDR(c)
		if err != nil {
			return fmt.Errorf("middleware: bad trusted proxy %q: %w", c, err)
		}
		nets = append(nets, n)
	}

	proxyMu.Lock()
	proxies = nets
	proxyMu.Unlock()
	return nil
}

func trusted(addr string) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	proxyMu.RLock()
	defer proxyMu.RUnlock()
	for _, n := range proxies {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// ClientIP returns the peer address without its port. Only when the peer
// is a trusted proxy are X-Forwarded-For (read right to left, skipping
// trusted hops) and X-Real-Ip consulted.
func ClientIP(r *http.Request) string {
	peer := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		peer = host
	}
	if !trusted(peer) {
		return peer
	}

	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		hops := strings.Split(fwd, ",")
		client := peer
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if net.ParseIP(hop) == nil {
				break
			}
			client = hop
			if !trusted(hop) {
				break
			}
		}
		return client
	}
	if real := strings.TrimSpace(r.Header.Get("X-Real-Ip")); net.ParseIP(real) != nil {
		return real
	}
	return peer
}
