package middlewares

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// AttachRequestMetadata copies chi's request id into our context, echoes it
// back to the client and tags the active span with it.
func AttachRequestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := middleware.GetReqID(r.Context())
		w.Header().Set(HeaderXRequestID, requestID)

		ctx := context.WithValue(r.Context(), ContextKeyRequestID, requestID)
		trace.SpanFromContext(ctx).SetAttributes(
			attribute.String("http.request_id", requestID),
			attribute.String("shop.session_id", SessionID(ctx)),
		)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
