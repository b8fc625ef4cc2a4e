package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/logger"
)

const (
	requestIDHeader = "X-Request-Id"

	// maxRequestIDLength bounds what a client may inject into every log
	// line of its request.
	maxRequestIDLength = 64
)

// RequestID honors an inbound X-Request-Id, minting one when it is absent
// or oversized, and echoes it on the response so client and server logs
// can be joined.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(requestIDHeader)
			if reqID == "" || len(reqID) > maxRequestIDLength {
				reqID = uuid.NewString()
			}

			w.Header().Set(requestIDHeader, reqID)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
