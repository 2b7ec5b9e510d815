// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Limiter is a keyed token-bucket limiter: each key may spend limit
// requests at once and regains them evenly over window.
// It is safe for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    int
	window   time.Duration
	every    rate.Limit
	stop     chan struct{}
	once     sync.Once
}

type visitor struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// New creates a limiter allowing limit requests per window for each key.
func New(limit int, window time.Duration) *Limiter {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	l := &Limiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		window:   window,
		every:    rate.Every(window / time.Duration(limit)),
		stop:     make(chan struct{}),
	}
	go l.cleanupLoop(window * 2)
	return l
}

// Limit reports the per-window allowance.
func (l *Limiter) Limit() int { return l.limit }

func (l *Limiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{lim: rate.NewLimiter(l.every, l.limit)}
		l.visitors[key] = v
	}
	v.lastSeen = time.Now()
	return v.lim
}

// Allow reports whether a request for key may proceed, spending one token.
func (l *Limiter) Allow(key string) bool {
	return l.get(key).Allow()
}

// Remaining returns how many requests key can make right now.
func (l *Limiter) Remaining(key string) int {
	n := int(l.get(key).Tokens())
	if n < 0 {
		return 0
	}
	return n
}

// Reset forgets key, restoring its full allowance.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.visitors, key)
}

// Close stops the background cleanup.
func (l *Limiter) Close() {
	l.once.Do(func() { close(l.stop) })
}

// cleanupLoop drops keys idle long enough to have refilled completely.
func (l *Limiter) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.mu.Lock()
			cutoff := time.Now().Add(-l.window)
			for key, v := range l.visitors {
				if v.lastSeen.Before(cutoff) {
					delete(l.visitors, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Middleware limits requests per client IP and answers 429 with a JSON
// message once the allowance is spent.
func Middleware(l *Limiter, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)
			if !l.Allow(ip) {
				log.Warn("rate limit exceeded",
					zap.String("ip", ip),
					zap.String("path", r.URL.Path))
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.Header().Set("Retry-After", strconv.Itoa(int(l.window/time.Duration(l.limit)/time.Second)+1))
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"message": "Too many requests, please try again later.",
				})
				return
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the host part of r.RemoteAddr. Forwarding headers are
// not consulted here; mount RealIP ahead of any caller so proxied requests
// already carry the client address.
func ClientIP(r *http.Request) string {
	return hostOnly(r.RemoteAddr)
}

func hostOnly(addr string) string {
	ip, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return ip
}

// Proxies is the set of networks whose X-Forwarded-For and X-Real-IP
// headers are believed. The zero value trusts nobody.
type Proxies struct {
	nets []*net.IPNet
}

// ParseProxies parses IP addresses and CIDR ranges.
func ParseProxies(list []string) (*Proxies, error) {
	p := &Proxies{}
	for _, entry := range list {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if !strings.Contains(entry, "/") {
			ip := net.ParseIP(entry)
			if ip == nil {
				return nil, fmt.Errorf("invalid trusted proxy %q", entry)
			}
			bits := 128
			if ip.To4() != nil {
				ip, bits = ip.To4(), 32
			}
			p.nets = append(p.nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, n, err := net.ParseCIDR(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
		}
		p.nets = append(p.nets, n)
	}
	return p, nil
}

func (p *Proxies) trusts(ip net.IP) bool {
	if p == nil || ip == nil {
		return false
	}
	for _, n := range p.nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// ClientIP resolves the originating client of r. Headers count only when
// the direct peer is trusted; X-Forwarded-For is walked from the right and
// the first untrusted hop wins.
func (p *Proxies) ClientIP(r *http.Request) string {
	peer := hostOnly(r.RemoteAddr)
	if !p.trusts(net.ParseIP(peer)) {
		return peer
	}

	var hops []string
	for _, v := range r.Header.Values("X-Forwarded-For") {
		for _, h := range strings.Split(v, ",") {
			if h = strings.TrimSpace(h); h != "" {
				hops = append(hops, h)
			}
		}
	}
	if len(hops) > 0 {
		for i := len(hops) - 1; i >= 0; i-- {
			ip := net.ParseIP(hops[i])
			if ip == nil {
				return peer
			}
			if !p.trusts(ip) || i == 0 {
				return ip.String()
			}
		}
	}

	if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
		return ip.String()
	}
	return peer
}

// RealIP rewrites r.RemoteAddr to the client address resolved by p.
func RealIP(p *Proxies) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ip := p.ClientIP(r); ip != hostOnly(r.RemoteAddr) {
				r.RemoteAddr = net.JoinHostPort(ip, "0")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoginLimiter throttles credential attempts both per IP and per email, so
// neither spraying one account from many hosts nor many accounts from one
// host goes unchecked.
type LoginLimiter struct {
	ipLimiter    *Limiter
	emailLimiter *Limiter
}

// NewLoginLimiter allows 10 attempts per IP per minute and 5 per email per
// 15 minutes.
func NewLoginLimiter() *LoginLimiter {
	return &LoginLimiter{
		ipLimiter:    New(10, time.Minute),
		emailLimiter: New(5, 15*time.Minute),
	}
}

// Check verifies if a login attempt should be allowed.
// Returns (allowed, reason) where reason explains why it was blocked.
func (ll *LoginLimiter) Check(r *http.Request, email string) (bool, string) {
	if !ll.ipLimiter.Allow(ClientIP(r)) {
		return false, "Too many login attempts. Please wait a minute before trying again."
	}

	if key := emailKey(email); key != "" {
		if !ll.emailLimiter.Allow(key) {
			return false, "Too many login attempts for this account. Please try again in 15 minutes."
		}
	}

	return true, ""
}

// ResetEmail clears the per-email allowance after a successful login.
func (ll *LoginLimiter) ResetEmail(email string) {
	if key := emailKey(email); key != "" {
		ll.emailLimiter.Reset(key)
	}
}

// Close stops both limiters' cleanup loops.
func (ll *LoginLimiter) Close() {
	ll.ipLimiter.Close()
	ll.emailLimiter.Close()
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
