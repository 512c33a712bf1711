package checkoutlog

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// TraceInfo holds the OTel identifiers of the span active in a context.
type TraceInfo struct {
	TraceID string
	SpanID  string
}

// ExtractTraceInfo returns the ids of the active span, or empty strings when
// ctx carries none.
func ExtractTraceInfo(ctx context.Context) TraceInfo {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return TraceInfo{}
	}
	return TraceInfo{
		TraceID: sc.TraceID().String(),
		SpanID:  sc.SpanID().String(),
	}
}

// NewEntry builds an entry stamped with the trace of ctx and the current time.
//
//	entry := checkoutlog.NewEntry(ctx, attemptID, "cart:abc", checkoutlog.StatusFailed, "", err.Error())
func NewEntry(ctx context.Context, attemptID, cartKey string, status Status, payload, errText string) *Entry {
	ti := ExtractTraceInfo(ctx)
	return &Entry{
		AttemptID: attemptID,
		CartKey:   cartKey,
		Status:    status,
		Payload:   payload,
		Error:     errText,
		TraceID:   ti.TraceID,
		SpanID:    ti.SpanID,
		CreatedAt: time.Now().UTC(),
	}
}
