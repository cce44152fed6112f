// Package context carries run and session identifiers through goroutines so
// that every log line of one pipeline run can be correlated.
package context

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Context keys for tracing.
// Using unexported struct pointers prevents key collisions.
var (
	sessionIDKey = &struct{}{}
	runIDKey     = &struct{}{}
	operationKey = &struct{}{}
	startTimeKey = &struct{}{}
)

const (
	unknownSession   = "unknown-session"
	unknownRun       = "unknown-run"
	unknownOperation = "unknown-operation"
)

// WithSessionID adds a session ID to the context
func WithSessionID(parent context.Context, sessionID string) context.Context {
	if sessionID == "" {
		sessionID = GenerateSessionID()
	}
	return context.WithValue(parent, sessionIDKey, sessionID)
}

// GetSessionID retrieves the session ID from context
func GetSessionID(ctx context.Context) string {
	if id, ok := ctx.Value(sessionIDKey).(string); ok && id != "" {
		return id
	}
	return unknownSession
}

// WithRunID adds a pipeline run ID to the context
func WithRunID(parent context.Context, runID string) context.Context {
	if runID == "" {
		runID = GenerateRunID()
	}
	return context.WithValue(parent, runIDKey, runID)
}

// GetRunID retrieves the pipeline run ID from context
func GetRunID(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey).(string); ok && id != "" {
		return id
	}
	return unknownRun
}

// WithOperation adds an operation name to the context
func WithOperation(parent context.Context, operation string) context.Context {
	return context.WithValue(parent, operationKey, operation)
}

// GetOperation retrieves the operation name from context
func GetOperation(ctx context.Context) string {
	if op, ok := ctx.Value(operationKey).(string); ok && op != "" {
		return op
	}
	return unknownOperation
}

// WithStartTime adds the operation start time to the context
func WithStartTime(parent context.Context, startTime time.Time) context.Context {
	return context.WithValue(parent, startTimeKey, startTime)
}

// GetStartTime retrieves the operation start time from context.
// The second result reports whether a start time was recorded.
func GetStartTime(ctx context.Context) (time.Time, bool) {
	t, ok := ctx.Value(startTimeKey).(time.Time)
	return t, ok
}

// GetDuration returns the time elapsed since the recorded start time, or zero.
func GetDuration(ctx context.Context) time.Duration {
	start, ok := GetStartTime(ctx)
	if !ok {
		return 0
	}
	return time.Since(start)
}

// GenerateSessionID creates a new unique session ID
func GenerateSessionID() string {
	return "ses_" + uuid.New().String()
}

// GenerateRunID creates a new unique run ID
func GenerateRunID() string {
	return "run_" + uuid.New().String()
}

// NewRunContext derives a context for one pipeline run: a fresh run ID, the
// operation name and the start time.
func NewRunContext(parent context.Context, operation string) context.Context {
	ctx := WithRunID(parent, "")
	ctx = WithOperation(ctx, operation)
	return WithStartTime(ctx, time.Now())
}

// IsKnown reports whether id is a real identifier rather than a placeholder
// returned by one of the getters.
func IsKnown(id string) bool {
	switch id {
	case unknownSession, unknownRun, unknownOperation:
		return false
	}
	return id != ""
}
