package engine

import (
	"context"
	"time"

	"github.com/epiq/epiq/internal/operator"
	"github.com/epiq/epiq/internal/pipeline"
	"github.com/epiq/epiq/internal/render"
	"github.com/epiq/epiq/pkg/logger"
	"github.com/epiq/epiq/pkg/queue"
)

// outputCanvas is the part of the compositor the output loop draws on.
type outputCanvas interface {
	Draw(index render.PaneIndex, pane render.Pane) error
	Available() int
}

// outputLoop feeds pipeline lines into the scrollback and redraws the
// output pane on a fixed interval, only when something changed.
type outputLoop struct {
	queue    *queue.Scrollback
	canvas   outputCanvas
	interval time.Duration
	logger   logger.Logger

	run          uint64
	lastModified time.Time
	lastRendered time.Time
}

func newOutputLoop(q *queue.Scrollback, canvas outputCanvas, interval time.Duration, log logger.Logger) *outputLoop {
	now := time.Now()
	return &outputLoop{
		queue:        q,
		canvas:       canvas,
		interval:     interval,
		logger:       log.WithTarget("output"),
		lastModified: now,
		lastRendered: now,
	}
}

func (o *outputLoop) Run(
	ctx context.Context,
	lines <-chan pipeline.Line,
	ops <-chan operator.Op,
	resets <-chan uint64,
) error {
	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case run := <-resets:
			if run > o.run {
				o.reset(run)
			}

		case <-ticker.C:
			if o.queue.SetViewport(o.canvas.Available()) {
				o.touch()
			}
			if o.lastModified.After(o.lastRendered) {
				o.draw()
			}

		case op := <-ops:
			switch op.Kind {
			case operator.OpVerticalScroll:
				if o.queue.Shift(op.Backward, op.Forward) {
					o.touch()
				}
			case operator.OpResize:
				o.touch()
			}

		case line := <-lines:
			if line.Run < o.run {
				continue
			}
			if line.Run > o.run {
				o.reset(line.Run)
			}
			o.queue.Push(line.Text)
			o.touch()
		}
	}
}

// reset clears the scrollback for a new run and blanks the pane at once.
func (o *outputLoop) reset(run uint64) {
	o.logger.Debug("Output reset", logger.WithField("run", run))
	o.run = run
	o.queue.Reset()
	o.touch()
	o.draw()
}

func (o *outputLoop) draw() {
	stamp := o.lastModified
	if err := o.canvas.Draw(render.Output(), o.queue.Window()); err != nil {
		o.logger.Warn("Output render failed", logger.WithField("error", err))
	}
	o.lastRendered = stamp
}

// touch records a modification. Timestamps strictly increase so a change
// right after a render is never mistaken for an already drawn one.
func (o *outputLoop) touch() {
	now := time.Now()
	if !now.After(o.lastModified) {
		now = o.lastModified.Add(time.Nanosecond)
	}
	o.lastModified = now
}
