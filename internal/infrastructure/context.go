package infrastructure

import (
	"context"

	"github.com/google/uuid"
)

// contextKey is a type for context keys
type contextKey string

// RunIDContextKey is the key for storing the pipeline run ID in context.
const RunIDContextKey contextKey = "run_id"

// NewRunID generates a fresh run identifier for one pipeline execution.
func NewRunID() string {
	return uuid.NewString()
}

// WithRunID returns a context carrying the given run ID. Every log record
// emitted under that context is tagged with it.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDContextKey, runID)
}

// GetRunID extracts the run ID from context, or "" when absent.
func GetRunID(ctx context.Context) string {
	if v, ok := ctx.Value(RunIDContextKey).(string); ok {
		return v
	}
	return ""
}
