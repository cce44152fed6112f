// Package prompt owns the stage editors: one text buffer per pipeline stage,
// kept in a registry and rendered as one pane each.
package prompt

import (
	"context"
	"strings"
	"sync"

	"github.com/epiq/epiq/internal/operator"
	"github.com/epiq/epiq/internal/registry"
	"github.com/epiq/epiq/internal/render"
	"github.com/epiq/epiq/internal/textedit"
	"github.com/epiq/epiq/pkg/logger"
	"github.com/epiq/epiq/pkg/notifier"
)

// reservedRows are the rows kept for the notification and output panes.
const reservedRows = 2

// Canvas is where the prompt draws its panes.
type Canvas interface {
	Update(index render.PaneIndex, pane render.Pane)
	Remove(indices ...render.PaneIndex)
	Render() error
}

// Prompt is the set of stage editors and the focused stage.
type Prompt struct {
	mu     sync.Mutex
	stages *registry.Registry[*textedit.Buffer]
	focus  registry.Key
	theme  Theme
	width  int
	height int

	// applied counts ops handled by Run; progress is closed and replaced
	// whenever it grows.
	applied  uint64
	progress chan struct{}

	canvas Canvas
	notify chan<- notifier.Message
	logger logger.Logger
}

// New creates a prompt with only the head stage and draws its pane.
func New(theme Theme, width, height int, canvas Canvas, notify chan<- notifier.Message, log logger.Logger) *Prompt {
	p := &Prompt{
		stages:   registry.New(textedit.New()),
		focus:    registry.Head,
		theme:    theme,
		width:    width,
		height:   height,
		progress: make(chan struct{}),
		canvas:   canvas,
		notify:   notify,
		logger:   log.WithTarget("prompt"),
	}
	p.updateAll()
	return p
}

// Run applies ops until ctx is done or ops is closed.
func (p *Prompt) Run(ctx context.Context, ops <-chan operator.Op) error {
	if err := p.canvas.Render(); err != nil {
		p.logger.Warn("Initial render failed", logger.WithField("error", err))
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case op, ok := <-ops:
			if !ok {
				return nil
			}
			p.Apply(ctx, op)
			p.advance()
		}
	}
}

// WaitApplied blocks until Run has handled at least n ops. It returns false
// if ctx is done first.
func (p *Prompt) WaitApplied(ctx context.Context, n uint64) bool {
	for {
		p.mu.Lock()
		if p.applied >= n {
			p.mu.Unlock()
			return true
		}
		progress := p.progress
		p.mu.Unlock()

		select {
		case <-progress:
		case <-ctx.Done():
			return false
		}
	}
}

func (p *Prompt) advance() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.applied++
	close(p.progress)
	p.progress = make(chan struct{})
}

// Apply handles one op and redraws the frame.
func (p *Prompt) Apply(ctx context.Context, op operator.Op) {
	var warning string

	p.mu.Lock()
	switch {
	case op.Kind == operator.OpResize:
		p.resize(op.Width, op.Height)
	case op.Kind == operator.OpVerticalCursor:
		p.moveFocus(p.stages.Navigate(p.focus, op.Backward, op.Forward))
	case op.Is(operator.Ctrl('b')):
		if !p.insert(op.Count) {
			warning = "Cannot create more editors"
		}
	case op.Is(operator.Ctrl('d')):
		p.remove(op.Count)
	case op.Is(operator.Ctrl('x')):
		if op.Count%2 != 0 {
			p.stages.ToggleIgnore(p.focus)
			p.update(p.focus)
		}
	default:
		if edit(p.stages.Get(p.focus), op, p.theme.WordBreak) {
			p.update(p.focus)
		}
	}
	p.mu.Unlock()

	if warning != "" {
		p.send(ctx, notifier.Error(warning))
	}
	if err := p.canvas.Render(); err != nil {
		p.logger.Warn("Render failed", logger.WithField("error", err))
	}
}

// Texts returns the text of every stage that takes part in submission, in
// stage order. Ignored and blank stages are skipped.
func (p *Prompt) Texts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	var texts []string
	p.stages.Each(func(_ registry.Key, buf *textedit.Buffer, ignored bool) {
		text := buf.Text()
		if ignored || strings.TrimSpace(text) == "" {
			return
		}
		texts = append(texts, text)
	})
	return texts
}

// SetTheme restyles every stage.
func (p *Prompt) SetTheme(theme Theme) {
	p.mu.Lock()
	p.theme = theme
	p.updateAll()
	p.mu.Unlock()

	if err := p.canvas.Render(); err != nil {
		p.logger.Warn("Render failed", logger.WithField("error", err))
	}
}

// Focus returns the focused stage key.
func (p *Prompt) Focus() registry.Key {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.focus
}

// Len returns the number of stages.
func (p *Prompt) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stages.Len()
}

// insert adds count stages after the focused one, stopping when the
// screen has no room left. It reports whether every stage was added.
func (p *Prompt) insert(count int) bool {
	prev := p.focus
	ok := true
	for i := 0; i < count; i++ {
		if p.stages.Len() >= p.height-reservedRows {
			ok = false
			break
		}
		p.focus = p.stages.InsertAdjacent(p.focus, textedit.New())
		p.update(p.focus)
	}
	p.logger.Debug("Stages inserted",
		logger.WithField("focus", p.focus.String()),
		logger.WithField("stages", p.stages.Len()))
	p.update(prev)
	return ok
}

// remove deletes the focused stage count times, moving focus up each time.
// The head stage stays.
func (p *Prompt) remove(count int) {
	for i := 0; i < count && p.focus != registry.Head; i++ {
		removed := p.focus
		p.focus = p.stages.Remove(removed)
		p.canvas.Remove(render.Editor(removed))
	}
	p.update(p.focus)
}

// resize drops tail stages that no longer fit and rewraps every pane.
func (p *Prompt) resize(width, height int) {
	p.width, p.height = width, height
	if height < p.stages.Len()+reservedRows {
		for _, key := range p.stages.ShrinkToFit(height - reservedRows) {
			p.canvas.Remove(render.Editor(key))
		}
		p.focus = registry.Head
	}
	p.updateAll()
}

func (p *Prompt) moveFocus(next registry.Key) {
	if next == p.focus {
		return
	}
	prev := p.focus
	p.focus = next
	p.update(prev)
	p.update(next)
}

func (p *Prompt) update(key registry.Key) {
	st := paneState{
		head:    key == registry.Head,
		focused: key == p.focus,
		ignored: p.stages.Ignored(key),
	}
	p.canvas.Update(render.Editor(key), p.theme.renderStage(p.stages.Get(key), st, p.width))
}

func (p *Prompt) updateAll() {
	for _, key := range p.stages.Keys() {
		p.update(key)
	}
}

func (p *Prompt) send(ctx context.Context, msg notifier.Message) {
	if p.notify == nil {
		return
	}
	select {
	case p.notify <- msg:
	case <-ctx.Done():
	}
}
