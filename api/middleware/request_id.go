package middleware

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"

	"github.com/khatmdev/quadramall-sub001/pkg/logger"
	"github.com/khatmdev/quadramall-sub001/pkg/types"
)

const requestIDHeader = "X-Request-Id"

// Inbound ids end up in logs and error bodies, so only short opaque tokens are trusted.
var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// RequestID keeps a well-formed caller request id or mints a uuid, and exposes
// it on the response, in the log context and in error envelopes.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(requestIDHeader)
			if !requestIDPattern.MatchString(reqID) {
				reqID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, reqID)

			ctx := types.WithRequestID(r.Context(), reqID)
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
