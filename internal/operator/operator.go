package operator

import (
	"context"
	"time"

	"github.com/epiq/epiq/pkg/logger"
)

// Operator collects raw events and emits one aggregated batch per tick.
type Operator struct {
	input    <-chan Event
	interval time.Duration
	logger   logger.Logger
}

// New creates an Operator reading raw events from input.
func New(input <-chan Event, interval time.Duration, log logger.Logger) *Operator {
	return &Operator{
		input:    input,
		interval: interval,
		logger:   log.WithTarget("operator"),
	}
}

// Run buffers events until each tick and sends the aggregated batch on out.
// Empty batches are skipped. A send blocks until the consumer is ready, so
// a busy consumer stalls the tick while input keeps buffering.
// Run returns when ctx is done or the input channel is closed.
func (o *Operator) Run(ctx context.Context, out chan<- []Op) error {
	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	var buf []Event
	input := o.input

	for {
		select {
		case <-ctx.Done():
			return nil

		case e, ok := <-input:
			if !ok {
				// Deliver what is left, then stop.
				if len(buf) > 0 {
					o.send(ctx, out, buf)
				}
				return nil
			}
			buf = append(buf, e)

		case <-ticker.C:
			if len(buf) == 0 {
				continue
			}
			if !o.send(ctx, out, buf) {
				return nil
			}
			buf = nil
		}
	}
}

func (o *Operator) send(ctx context.Context, out chan<- []Op, events []Event) bool {
	ops := Aggregate(events)
	o.logger.Debug("Batch aggregated",
		logger.WithField("events", len(events)),
		logger.WithField("ops", len(ops)))

	select {
	case out <- ops:
		return true
	case <-ctx.Done():
		return false
	}
}
