// Package mocks provides test doubles for the rendering surface and the
// notification sink.
package mocks

import (
	"strings"
	"sync"

	"github.com/epiq/epiq/pkg/notifier"
)

// RecordingSurface records every frame it is asked to draw.
type RecordingSurface struct {
	mu      sync.Mutex
	frames  []string
	drawErr error
	drawn   chan struct{}
}

// NewRecordingSurface creates a new recording surface
func NewRecordingSurface() *RecordingSurface {
	return &RecordingSurface{
		drawn: make(chan struct{}, 1),
	}
}

// Draw records frame
func (s *RecordingSurface) Draw(frame string) error {
	s.mu.Lock()
	s.frames = append(s.frames, frame)
	err := s.drawErr
	s.mu.Unlock()

	select {
	case s.drawn <- struct{}{}:
	default:
	}
	return err
}

// SetDrawError makes subsequent draws fail with err
func (s *RecordingSurface) SetDrawError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drawErr = err
}

// Drawn is signalled after a draw
func (s *RecordingSurface) Drawn() <-chan struct{} {
	return s.drawn
}

// Frames returns every recorded frame
func (s *RecordingSurface) Frames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.frames...)
}

// Last returns the most recent frame, or "" if nothing was drawn
func (s *RecordingSurface) Last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.frames) == 0 {
		return ""
	}
	return s.frames[len(s.frames)-1]
}

// LastContains reports whether the most recent frame contains every part
func (s *RecordingSurface) LastContains(parts ...string) bool {
	last := s.Last()
	for _, p := range parts {
		if !strings.Contains(last, p) {
			return false
		}
	}
	return true
}

// MockNotifier records notifications
type MockNotifier struct {
	mu       sync.Mutex
	messages []notifier.Message
	err      error
}

// NewMockNotifier creates a new mock notifier
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// Notify records msg
func (m *MockNotifier) Notify(msg notifier.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return m.err
}

// SetError makes Notify fail with err
func (m *MockNotifier) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Messages returns every recorded notification
func (m *MockNotifier) Messages() []notifier.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notifier.Message(nil), m.messages...)
}
