package middleware

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"fastfood-be/internal/limiter"
	"fastfood-be/internal/logger"
	"fastfood-be/internal/utils"

	"go.uber.org/zap"
)

const (
	HeaderLimit     = "X-RateLimit-Limit"
	HeaderRemaining = "X-RateLimit-Remaining"
	HeaderReset     = "X-RateLimit-Reset"
)

// KeyFunc picks the bucket a request is counted against.
type KeyFunc func(r *http.Request) string

// ClientIdentity prefers a user id already placed in the context by an
// upstream layer, then the remote IP. Client supplied headers are never
// used as keys since rotating them would reset the quota.
func ClientIdentity(r *http.Request) string {
	if userID := logger.UserIDFrom(r.Context()); userID != "" {
		return "user:" + userID
	}
	return "ip:" + ClientIP(r)
}

// ClientIP is the request's remote address without the port. Run behind
// chi's RealIP so that proxy headers are already applied.
func ClientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// RateLimit rejects requests over the limiter's quota with 429. Limiter
// backend errors let the request through.
func RateLimit(l limiter.Limiter, key KeyFunc) func(http.Handler) http.Handler {
	if key == nil {
		key = ClientIdentity
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := key(r)

			res, err := l.Limit(r.Context(), identity)
			if err != nil {
				limiter.ReportUnavailable(r.Context(), identity, err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set(HeaderLimit, strconv.Itoa(res.Limit))
			w.Header().Set(HeaderRemaining, strconv.Itoa(res.Remaining))
			w.Header().Set(HeaderReset, strconv.FormatInt(res.Reset.Unix(), 10))

			if !res.Success {
				logger.FromCtx(r.Context()).Warn("rate limit exceeded",
					zap.String("key", identity),
					zap.Duration("retry_after", res.RetryAfter(time.Now())),
				)
				utils.WriteError(w, &limiter.LimitedError{Identifier: identity, Reset: res.Reset})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
