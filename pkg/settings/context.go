package settings

import "context"

type contextKey string

const runContextKey contextKey = "run-settings"

// IntoContext returns a context carrying the run parameters.
func IntoContext(ctx context.Context, r *Run) context.Context {
	return context.WithValue(ctx, runContextKey, r)
}

// FromContext retrieves the run parameters stored by IntoContext.
func FromContext(ctx context.Context) (*Run, bool) {
	r, ok := ctx.Value(runContextKey).(*Run)
	return r, ok
}
