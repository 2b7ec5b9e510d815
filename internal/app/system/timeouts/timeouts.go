// Package timeouts provides centralized timeout values for handler operations.
//
// Handlers wrap r.Context() with one of these before touching MongoDB:
//   - Ping: health checks
//   - Short: single-document reads and atomic updates (get question, vote)
//   - Medium: list queries and single-collection writes (list notifications)
//   - Long: writes spanning collections (create answer, accept answer)
//   - Upload: multipart uploads to object storage
package timeouts

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
	DefaultUpload = 60 * time.Second
)

var mu sync.RWMutex

var (
	ping   = DefaultPing
	short  = DefaultShort
	medium = DefaultMedium
	long   = DefaultLong
	upload = DefaultUpload
)

func get(d *time.Duration) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return *d
}

// Ping returns the timeout for health checks.
func Ping() time.Duration { return get(&ping) }

// Short returns the timeout for single-document operations.
func Short() time.Duration { return get(&short) }

// Medium returns the timeout for list queries and simple writes.
func Medium() time.Duration { return get(&medium) }

// Long returns the timeout for operations touching several collections.
func Long() time.Duration { return get(&long) }

// Upload returns the timeout for file uploads.
func Upload() time.Duration { return get(&upload) }

// Config holds timeout configuration values. Zero values are ignored.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
	Upload time.Duration
}

// Configure sets custom timeout values, keeping current values for zero fields.
// Call it during startup before handlers are registered.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	set(&ping, cfg.Ping)
	set(&short, cfg.Short)
	set(&medium, cfg.Medium)
	set(&long, cfg.Long)
	set(&upload, cfg.Upload)
}

func set(dst *time.Duration, v time.Duration) {
	if v > 0 {
		*dst = v
	}
}

// Reset restores all timeouts to their defaults. Useful for testing.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping, short, medium, long, upload = DefaultPing, DefaultShort, DefaultMedium, DefaultLong, DefaultUpload
}

// ConfigureFromEnv reads TIMEOUT_PING, TIMEOUT_SHORT, TIMEOUT_MEDIUM,
// TIMEOUT_LONG and TIMEOUT_UPLOAD (Go duration strings). Invalid or
// non-positive values are skipped. Returns how many were applied.
func ConfigureFromEnv() int {
	var cfg Config
	n := 0
	for _, e := range []struct {
		key string
		dst *time.Duration
	}{
		{"TIMEOUT_PING", &cfg.Ping},
		{"TIMEOUT_SHORT", &cfg.Short},
		{"TIMEOUT_MEDIUM", &cfg.Medium},
		{"TIMEOUT_LONG", &cfg.Long},
		{"TIMEOUT_UPLOAD", &cfg.Upload},
	} {
		v := os.Getenv(e.key)
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*e.dst = d
			n++
		}
	}
	Configure(cfg)
	return n
}

// Current returns the current timeout configuration.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return Config{Ping: ping, Short: short, Medium: medium, Long: long, Upload: upload}
}

// WithTimeout creates a context with timeout and returns a cancel function
// that logs a warning when the deadline was hit.
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "accept answer")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
