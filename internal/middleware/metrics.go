package middleware

import (
	"fmt"
	"net/http"

	"fastfood-be/internal/metrics"
)

const counterRequests = "http_requests_total"

// Metrics counts requests and responses per status class, e.g.
// http_responses_4xx.
func Metrics(reg *metrics.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rec, r)

			reg.Counter(counterRequests).Inc()
			reg.Counter(fmt.Sprintf("http_responses_%dxx", rec.statusCode/100)).Inc()
		})
	}
}
