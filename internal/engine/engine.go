// Package engine wires the interactive session together: it aggregates
// terminal input, routes ops to the stage editors and the output pane, and
// spawns a fresh pipeline on every submission.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/epiq/epiq/internal/operator"
	"github.com/epiq/epiq/internal/pipeline"
	"github.com/epiq/epiq/internal/prompt"
	"github.com/epiq/epiq/internal/render"
	"github.com/epiq/epiq/pkg/logger"
	"github.com/epiq/epiq/pkg/notifier"
	"github.com/epiq/epiq/pkg/process"
	"github.com/epiq/epiq/pkg/queue"
)

// sinkSize is the buffer between the last pipeline stage and the output loop.
const sinkSize = 16

// errQuit ends the session; Run does not report it.
var errQuit = errors.New("quit requested")

// Config holds the startup settings of a session.
type Config struct {
	QueueSize       int
	OperateInterval time.Duration
	RenderInterval  time.Duration
	MouseCapture    bool
	Theme           prompt.Theme
	Notifications   notifier.Config
}

// Engine runs one interactive session.
type Engine struct {
	config   Config
	terminal Terminal
	notifier notifier.Notifier
	logger   logger.Logger

	compositor *render.Compositor
	prompt     *prompt.Prompt
	resets     *Broadcaster[uint64]
	notify     chan notifier.Message
	lines      chan pipeline.Line

	mu    sync.Mutex
	live  *pipeline.Pipeline
	run   uint64
	mouse bool

	// forwarded counts ops sent to the prompt; owned by the dispatcher.
	forwarded uint64
}

// New creates an engine. The terminal dependency is required.
func New(config Config, log logger.Logger, deps Dependencies) (*Engine, error) {
	if deps.Terminal == nil {
		return nil, errors.New("engine: terminal is required")
	}
	if config.QueueSize <= 0 {
		return nil, fmt.Errorf("engine: invalid queue size %d", config.QueueSize)
	}
	if config.OperateInterval <= 0 || config.RenderInterval <= 0 {
		return nil, errors.New("engine: intervals must be positive")
	}

	e := &Engine{
		config:   config,
		terminal: deps.Terminal,
		notifier: deps.Notifier,
		logger:   log.WithTarget("engine"),
		resets:   NewBroadcaster[uint64](),
		notify:   make(chan notifier.Message, 1),
		lines:    make(chan pipeline.Line, sinkSize),
		mouse:    config.MouseCapture,
	}

	width, height := deps.Terminal.Size()
	e.compositor = render.New(deps.Terminal, width, height, log)
	e.prompt = prompt.New(config.Theme, width, height, e.compositor, e.notify, log)
	return e, nil
}

// Run blocks until the user quits, the terminal closes or ctx is done. The
// live pipeline, if any, is aborted before Run returns.
func (e *Engine) Run(ctx context.Context) error {
	group, gctx := process.NewSafeGroup(ctx, e.logger)

	batches := make(chan []operator.Op, 1)
	promptOps := make(chan operator.Op, 1)
	outputOps := make(chan operator.Op, 1)
	resets := e.resets.Subscribe()

	op := operator.New(e.terminal.Events(), e.config.OperateInterval, e.logger)
	output := newOutputLoop(queue.New(e.config.QueueSize), e.compositor, e.config.RenderInterval, e.logger)

	e.logger.Info("Session started",
		logger.WithField("queue_size", e.config.QueueSize),
		logger.WithField("mouse", e.mouse))

	group.Go(func() error {
		if err := e.terminal.Run(gctx); err != nil {
			return fmt.Errorf("terminal: %w", err)
		}
		return errQuit
	})
	group.Go(func() error { return op.Run(gctx, batches) })
	group.Go(func() error { return e.prompt.Run(gctx, promptOps) })
	group.Go(func() error { return output.Run(gctx, e.lines, outputOps, resets) })
	group.Go(func() error { return e.notifyLoop(gctx, e.notify) })
	group.Go(func() error { return e.dispatch(gctx, batches, promptOps, outputOps) })

	err := group.Wait()
	e.Abort()

	if errors.Is(err, errQuit) {
		e.logger.Info("Session ended")
		return nil
	}
	if err != nil {
		e.logger.Error("Session failed", logger.WithField("error", err))
	}
	return err
}

// Abort kills the live pipeline, if any.
func (e *Engine) Abort() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.live != nil {
		e.live.Abort()
		e.live = nil
	}
}

// SetTheme restyles the stage editors of a running session.
func (e *Engine) SetTheme(theme prompt.Theme) {
	e.prompt.SetTheme(theme)
}

// dispatch routes every aggregated op, in order, to its consumer.
func (e *Engine) dispatch(
	ctx context.Context,
	batches <-chan []operator.Op,
	promptOps, outputOps chan<- operator.Op,
) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case batch := <-batches:
			for _, op := range batch {
				if err := e.route(ctx, op, promptOps, outputOps); err != nil {
					return err
				}
			}
		}
	}
}

func (e *Engine) route(ctx context.Context, op operator.Op, promptOps, outputOps chan<- operator.Op) error {
	switch {
	case op.Is(operator.Ctrl('c')):
		e.logger.Debug("Quit requested")
		return errQuit
	case op.Is(operator.Press(operator.KeyEsc, 0)):
		if op.Count%2 != 0 {
			e.toggleMouse()
		}
	case op.Is(operator.Press(operator.KeyEnter, 0)):
		e.submit(ctx)
	case op.Kind == operator.OpVerticalScroll:
		forward(ctx, outputOps, op)
	case op.Kind == operator.OpHorizontalScroll:
		e.logger.Debug("Horizontal scroll ignored", logger.WithField("op", op.String()))
	case op.Kind == operator.OpResize:
		e.compositor.Resize(op.Width, op.Height)
		e.toPrompt(ctx, promptOps, op)
		forward(ctx, outputOps, op)
	default:
		e.toPrompt(ctx, promptOps, op)
	}
	return nil
}

func (e *Engine) toPrompt(ctx context.Context, promptOps chan<- operator.Op, op operator.Op) {
	if forward(ctx, promptOps, op) {
		e.forwarded++
	}
}

// submit replaces the live pipeline with one built from the current stage
// texts. The output pane and the notification line are reset first.
func (e *Engine) submit(ctx context.Context) {
	// Edits typed before Enter must be visible in the stage texts.
	if !e.prompt.WaitApplied(ctx, e.forwarded) {
		return
	}

	e.mu.Lock()
	if e.live != nil {
		e.live.Abort()
		e.live = nil
	}
	e.run++
	run := e.run
	e.mu.Unlock()

	e.resets.Publish(run)
	e.send(ctx, notifier.None())

	p, err := pipeline.Spawn(ctx, pipeline.Spec{Run: run, Commands: e.prompt.Texts()}, e.lines, e.logger)
	if err != nil {
		e.logger.Warn("Submission failed", logger.WithField("run", run), logger.WithField("error", err))
		msg := notifier.Error("Cannot spawn commands: " + err.Error())
		e.send(ctx, msg)
		if e.notifier != nil {
			if nerr := e.notifier.Notify(msg); nerr != nil {
				e.logger.Debug("Desktop notification failed", logger.WithField("error", nerr))
			}
		}
		return
	}

	e.mu.Lock()
	e.live = p
	e.mu.Unlock()
}

func (e *Engine) toggleMouse() {
	e.mouse = !e.mouse
	e.terminal.SetMouseCapture(e.mouse)
	e.logger.Debug("Mouse capture toggled", logger.WithField("enabled", e.mouse))
}

func (e *Engine) send(ctx context.Context, msg notifier.Message) {
	select {
	case e.notify <- msg:
	case <-ctx.Done():
	}
}

func forward(ctx context.Context, ch chan<- operator.Op, op operator.Op) bool {
	select {
	case ch <- op:
		return true
	case <-ctx.Done():
		return false
	}
}
