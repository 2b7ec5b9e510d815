package auth

import "time"

// SetClock overrides the token clock in tests.
func SetClock(t *Tokens, now func() time.Time) { t.now = now }
