// Package render composes every visible pane into full-screen frames.
package render

import (
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/x/ansi"

	"github.com/epiq/epiq/internal/registry"
	"github.com/epiq/epiq/pkg/logger"
)

//go:generate mockgen -destination=../../pkg/mocks/surface_mock.go -package=mocks github.com/epiq/epiq/internal/render Surface

// Surface receives complete frames.
type Surface interface {
	Draw(frame string) error
}

// Compositor owns the ordered pane set. Every Render redraws all panes, so
// callers are expected to throttle it.
type Compositor struct {
	mu      sync.Mutex
	surface Surface
	panes   map[PaneIndex]Pane
	width   int
	height  int
	logger  logger.Logger
}

// New creates a compositor with an empty notification line, the head stage
// editor and the output pane.
func New(surface Surface, width, height int, log logger.Logger) *Compositor {
	return &Compositor{
		surface: surface,
		panes: map[PaneIndex]Pane{
			Notify():              nil,
			Editor(registry.Head): nil,
			Output():              nil,
		},
		width:  width,
		height: height,
		logger: log.WithTarget("render"),
	}
}

// Update replaces the content of a pane.
func (c *Compositor) Update(index PaneIndex, pane Pane) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.panes[index] = pane
}

// Remove deletes panes.
func (c *Compositor) Remove(indices ...PaneIndex) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, idx := range indices {
		delete(c.panes, idx)
	}
}

// Draw applies one update and renders in a single critical section.
func (c *Compositor) Draw(index PaneIndex, pane Pane) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.panes[index] = pane
	return c.render()
}

// Render draws the complete pane set once.
func (c *Compositor) Render() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.render()
}

func (c *Compositor) render() error {
	indices := make([]PaneIndex, 0, len(c.panes))
	for idx := range c.panes {
		indices = append(indices, idx)
	}
	slices.SortFunc(indices, PaneIndex.Compare)

	rows := make([]string, 0, c.height)
	for _, idx := range indices {
		for _, line := range c.panes[idx] {
			if len(rows) == c.height {
				break
			}
			if c.width > 0 {
				line = ansi.Truncate(line, c.width, "")
			}
			rows = append(rows, line)
		}
	}

	if err := c.surface.Draw(strings.Join(rows, "\n")); err != nil {
		c.logger.Warn("Draw failed", logger.WithField("error", err))
		return err
	}
	return nil
}

// Resize records the new terminal size.
func (c *Compositor) Resize(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width, c.height = width, height
}

// Size returns the terminal size.
func (c *Compositor) Size() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

// Available returns the rows left for the output pane once every other
// pane is drawn.
func (c *Compositor) Available() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	used := 0
	for idx, pane := range c.panes {
		if idx.Kind != OutputPane {
			used += len(pane)
		}
	}
	return max(0, c.height-used)
}
