package process_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/epiq/epiq/pkg/logger"
	"github.com/epiq/epiq/pkg/process"
)

func TestManager_HandlersRunInReverseOnContextDone(t *testing.T) {
	m := process.NewManager(logger.Discard())

	var mu sync.Mutex
	var order []string
	done := make(chan struct{})

	m.RegisterShutdownHandler(func() {
		mu.Lock()
		order = append(order, "first")
		mu.Unlock()
		close(done)
	})
	m.RegisterShutdownHandler(func() {
		mu.Lock()
		order = append(order, "second")
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)
	m.Start(ctx)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown handlers did not run")
	}
	m.Stop()

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 2 || order[0] != "second" || order[1] != "first" {
		t.Errorf("handler order = %v, want [second first]", order)
	}
}

func TestManager_StopSkipsHandlers(t *testing.T) {
	m := process.NewManager(logger.Discard())

	called := false
	m.RegisterShutdownHandler(func() { called = true })

	m.Start(context.Background())
	m.Stop()
	m.Stop()

	if called {
		t.Error("Stop should not run shutdown handlers")
	}
}

func TestSafeGroup_RecoversPanic(t *testing.T) {
	g, _ := process.NewSafeGroup(context.Background(), logger.Discard())

	g.Go(func() error {
		panic("boom")
	})

	err := g.Wait()
	if err == nil || !strings.Contains(err.Error(), "goroutine panic: boom") {
		t.Fatalf("expected recovered panic error, got %v", err)
	}
}

func TestSafeGroup_FirstErrorCancelsContext(t *testing.T) {
	g, ctx := process.NewSafeGroup(context.Background(), logger.Discard())
	sentinel := errors.New("stop")

	g.Go(func() error { return sentinel })
	g.Go(func() error {
		<-ctx.Done()
		return nil
	})

	if err := g.Wait(); !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}
}
