package limiter

import (
	"context"
	"strings"

	"fastfood-be/internal/logger"

	"go.uber.org/zap"
)

// Guard composes the two tiers protecting sensitive entry points: a broad
// limiter on IP and email before the user is known, and a narrow per-account
// limiter once it is.
type Guard struct {
	Entry   Limiter
	Account Limiter
}

// CheckEntry applies the entry limiter to the client IP and, when given, to
// the normalized email.
func (g *Guard) CheckEntry(ctx context.Context, ip, email string) error {
	keys := []string{"ip:" + ip}
	if email = strings.ToLower(strings.TrimSpace(email)); email != "" {
		keys = append(keys, "email:"+email)
	}

	for _, key := range keys {
		if err := check(ctx, g.Entry, key); err != nil {
			return err
		}
	}
	return nil
}

// CheckAccount applies the per-account limiter.
func (g *Guard) CheckAccount(ctx context.Context, userID string) error {
	return check(ctx, g.Account, "user:"+userID)
}

func check(ctx context.Context, l Limiter, key string) error {
	res, err := l.Limit(ctx, key)
	if err != nil {
		// Fail open: a limiter outage must not take the endpoint down.
		ReportUnavailable(ctx, key, err)
		return nil
	}
	if !res.Success {
		logger.FromCtx(ctx).Warn("rate limit exceeded",
			zap.String("key", key),
			zap.Time("reset", res.Reset),
		)
		return &LimitedError{Identifier: key, Reset: res.Reset}
	}
	return nil
}
