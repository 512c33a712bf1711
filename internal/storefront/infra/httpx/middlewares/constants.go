package middlewares

import "context"

// contextKey keeps our context values apart from other packages' keys.
type contextKey string

const (
	HeaderXRequestID = "X-Request-Id"
	SessionCookie    = "pallet_shop_session"

	ContextKeyRequestID contextKey = "request_id"
	ContextKeySessionID contextKey = "session_id"
)

// RequestID returns the request id attached by AttachRequestMetadata.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeyRequestID).(string)
	return id
}

// SessionID returns the cart session attached by Session.
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeySessionID).(string)
	return id
}

// WithSessionID attaches a session id to ctx.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ContextKeySessionID, id)
}
