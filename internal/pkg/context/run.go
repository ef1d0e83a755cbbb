// Package context provides context utilities for benchmark runs.
package context

import (
	"context"
)

type contextKey string

const (
	// RunIDKey is the context key for the benchmark run id.
	RunIDKey contextKey = "run_id"

	// QueryIDKey is the context key for the query id being processed.
	QueryIDKey contextKey = "query_id"
)

// WithRunID adds a benchmark run id to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// GetRunID retrieves the run id from context.
// Returns empty string if not found.
func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		return runID
	}
	return ""
}

// WithQueryID adds a query id to the context.
func WithQueryID(ctx context.Context, queryID string) context.Context {
	return context.WithValue(ctx, QueryIDKey, queryID)
}

// GetQueryID retrieves the query id from context.
// Returns empty string if not found.
func GetQueryID(ctx context.Context) string {
	if queryID, ok := ctx.Value(QueryIDKey).(string); ok {
		return queryID
	}
	return ""
}
