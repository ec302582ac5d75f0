package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const ctxStation contextKey = "station"

const stationIDHeader = "X-Station-Id"

// StationContext captures the station identity header the scan UIs send with
// every request and carries it in the request context.
func StationContext() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if station := strings.TrimSpace(r.Header.Get(stationIDHeader)); station != "" {
				ctx = context.WithValue(ctx, ctxStation, station)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func StationFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxStation).(string); ok {
		return v
	}
	return ""
}
