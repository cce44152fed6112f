package context_test

import (
	"context"
	"strings"
	"testing"
	"time"

	pcontext "github.com/epiq/epiq/pkg/context"
)

func TestRunContext(t *testing.T) {
	ctx := pcontext.NewRunContext(context.Background(), "submit")

	runID := pcontext.GetRunID(ctx)
	if !strings.HasPrefix(runID, "run_") {
		t.Fatalf("expected run_ prefix, got %q", runID)
	}
	if got := pcontext.GetOperation(ctx); got != "submit" {
		t.Errorf("operation = %q, want submit", got)
	}
	if _, ok := pcontext.GetStartTime(ctx); !ok {
		t.Error("expected start time to be recorded")
	}
}

func TestRunContext_UniqueIDs(t *testing.T) {
	a := pcontext.GetRunID(pcontext.NewRunContext(context.Background(), "x"))
	b := pcontext.GetRunID(pcontext.NewRunContext(context.Background(), "x"))
	if a == b {
		t.Errorf("expected distinct run IDs, both %q", a)
	}
}

func TestGetters_Defaults(t *testing.T) {
	ctx := context.Background()

	if pcontext.IsKnown(pcontext.GetRunID(ctx)) {
		t.Error("run ID should be unknown on an empty context")
	}
	if pcontext.IsKnown(pcontext.GetSessionID(ctx)) {
		t.Error("session ID should be unknown on an empty context")
	}
	if pcontext.IsKnown(pcontext.GetOperation(ctx)) {
		t.Error("operation should be unknown on an empty context")
	}
	if d := pcontext.GetDuration(ctx); d != 0 {
		t.Errorf("duration = %v, want 0", d)
	}
}

func TestWithSessionID_GeneratesWhenEmpty(t *testing.T) {
	ctx := pcontext.WithSessionID(context.Background(), "")
	if id := pcontext.GetSessionID(ctx); !strings.HasPrefix(id, "ses_") {
		t.Errorf("expected generated session ID, got %q", id)
	}

	ctx = pcontext.WithSessionID(context.Background(), "fixed")
	if id := pcontext.GetSessionID(ctx); id != "fixed" {
		t.Errorf("session ID = %q, want fixed", id)
	}
}

func TestGetDuration(t *testing.T) {
	ctx := pcontext.WithStartTime(context.Background(), time.Now().Add(-time.Second))
	if d := pcontext.GetDuration(ctx); d < time.Second {
		t.Errorf("duration = %v, want >= 1s", d)
	}
}
