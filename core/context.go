package core

import "context"

// Context keys for run options
type contextKey string

const (
	suppressHeaderKey contextKey = "suppressHeader"
	historyRunIDKey   contextKey = "historyRunID"
)

// WithSuppressHeader marks the context so runs keep stdout free of headers and summaries
func WithSuppressHeader(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressHeaderKey, true)
}

// shouldSuppressHeader returns whether headers should be suppressed from context
func shouldSuppressHeader(ctx context.Context) bool {
	val := ctx.Value(suppressHeaderKey)
	if val == nil {
		return false // default: show headers
	}
	suppress, ok := val.(bool)
	return ok && suppress
}

// withRunID stores the history run id in the context
func withRunID(ctx context.Context, runID int64) context.Context {
	return context.WithValue(ctx, historyRunIDKey, runID)
}

// getRunID returns the history run id from context, if one was recorded
func getRunID(ctx context.Context) (int64, bool) {
	runID, ok := ctx.Value(historyRunIDKey).(int64)
	return runID, ok
}
