// Package process provides process lifecycle utilities: OS signal handling
// with ordered shutdown handlers, and a panic-safe goroutine group.
package process

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/epiq/epiq/pkg/logger"
)

// Manager runs registered shutdown handlers when the process receives a
// termination signal or its context ends.
type Manager struct {
	logger           logger.Logger
	shutdownHandlers []func()
	signals          []os.Signal
	wg               sync.WaitGroup
	mu               sync.Mutex
	running          bool
	stop             chan struct{}
}

// NewManager creates a new process manager
func NewManager(log logger.Logger) *Manager {
	return &Manager{
		logger:  log,
		signals: []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGHUP},
	}
}

// RegisterShutdownHandler adds a shutdown handler. Handlers run in reverse
// registration order.
func (m *Manager) RegisterShutdownHandler(handler func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.shutdownHandlers = append(m.shutdownHandlers, handler)
}

// Start starts watching for signals. The context controls the lifetime of
// the manager; when it ends the shutdown handlers run as well.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.stop = make(chan struct{})
	stop := m.stop
	m.mu.Unlock()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, m.signals...)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer signal.Stop(sigChan)

		select {
		case <-ctx.Done():
			m.handleShutdown()
		case sig := <-sigChan:
			m.logger.Info("Received signal", logger.WithField("signal", sig))
			m.handleShutdown()
		case <-stop:
		}
	}()
}

// Stop stops watching without running the shutdown handlers.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		m.wg.Wait()
		return
	}
	m.running = false
	close(m.stop)
	m.mu.Unlock()

	m.wg.Wait()
}

func (m *Manager) handleShutdown() {
	m.logger.Info("Initiating shutdown")

	m.mu.Lock()
	handlers := make([]func(), len(m.shutdownHandlers))
	copy(handlers, m.shutdownHandlers)
	m.running = false
	m.mu.Unlock()

	for i := len(handlers) - 1; i >= 0; i-- {
		handlers[i]()
	}
}
