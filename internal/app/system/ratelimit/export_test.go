package ratelimit

import "time"

// EmailWindow reports the per-email refill window of ll.
func EmailWindow(ll *LoginLimiter) time.Duration { return ll.emailLimiter.window }
