package utils

import (
	"context"
	"sync"
	"time"
)

const revokedKeyPrefix = "lifeos:jwt:revoked:"

var (
	revoked   = map[string]time.Time{}
	revokedMu sync.RWMutex
)

// RevokeToken marks a token as unusable until its natural expiry.
func RevokeToken(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return rc.Set(ctx, revokedKeyPrefix+token, "1", ttl).Err()
	}

	revokedMu.Lock()
	defer revokedMu.Unlock()
	now := time.Now()
	for t, exp := range revoked {
		if now.After(exp) {
			delete(revoked, t)
		}
	}
	revoked[token] = expiresAt
	return nil
}

// IsTokenRevoked reports whether a token was revoked before expiry. Redis
// errors fail open so an outage does not log every user out.
func IsTokenRevoked(ctx context.Context, token string) bool {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		n, err := rc.Exists(ctx, revokedKeyPrefix+token).Result()
		if err != nil {
			Sugar.Warnw("token revocation lookup failed", "error", err)
			return false
		}
		return n > 0
	}

	revokedMu.RLock()
	exp, ok := revoked[token]
	revokedMu.RUnlock()
	return ok && time.Now().Before(exp)
}
