package limiter

import (
	"context"
	"sync/atomic"
	"time"

	"fastfood-be/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// OutageLog reports limiter backend errors. During an outage every request
// fails open, so the error is logged at most once per interval and the
// suppressed count is carried on the next line.
type OutageLog struct {
	every      *rate.Sometimes
	suppressed atomic.Int64
}

func NewOutageLog(interval time.Duration) *OutageLog {
	return &OutageLog{every: &rate.Sometimes{First: 1, Interval: interval}}
}

func (o *OutageLog) Report(ctx context.Context, key string, err error) {
	logged := false
	o.every.Do(func() {
		logged = true
		logger.FromCtx(ctx).Error("rate limiter unavailable",
			zap.String("key", key),
			zap.Int64("suppressed", o.suppressed.Swap(0)),
			zap.Error(err),
		)
	})
	if !logged {
		o.suppressed.Add(1)
	}
}

var unavailable = NewOutageLog(time.Second)

// ReportUnavailable logs a backend error through the process-wide OutageLog.
func ReportUnavailable(ctx context.Context, key string, err error) {
	unavailable.Report(ctx, key, err)
}
