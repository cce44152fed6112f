// Package pipeline runs a chain of OS processes, feeding each stage's
// output into the next and the last stage's output into a single sink.
package pipeline

import (
	"context"
	"sync"

	pcontext "github.com/epiq/epiq/pkg/context"
	"github.com/epiq/epiq/pkg/logger"
	"github.com/epiq/epiq/pkg/process"
)

// Spec describes one submission.
type Spec struct {
	// Run numbers submissions; every Line carries the Run it belongs to.
	Run      uint64
	Commands []string
}

// Line is one line of combined stdout/stderr from the final stage.
type Line struct {
	Run  uint64
	Text string
}

// Pipeline is a set of running stages that is aborted as a whole.
type Pipeline struct {
	run    uint64
	stages []*stage
	cancel context.CancelFunc
	done   chan struct{}
	err    error
	once   sync.Once
	logger logger.Logger
}

// Spawn starts one process per command. Every command is tokenized before
// anything starts; if a stage then fails to start, the stages already
// running are aborted before Spawn returns.
func Spawn(ctx context.Context, spec Spec, sink chan<- Line, log logger.Logger) (*Pipeline, error) {
	if len(spec.Commands) == 0 {
		return nil, ErrEmptyPipeline
	}

	argv := make([][]string, len(spec.Commands))
	for i, command := range spec.Commands {
		words, err := parse(i, command)
		if err != nil {
			return nil, err
		}
		argv[i] = words
	}

	ctx = pcontext.NewRunContext(ctx, "pipeline")
	ctx, cancel := context.WithCancel(ctx)
	group, gctx := process.NewSafeGroup(ctx, log)
	log = logger.WithContext(ctx, log).WithTarget("pipeline")

	p := &Pipeline{
		run:    spec.Run,
		cancel: cancel,
		done:   make(chan struct{}),
		logger: log,
	}

	var input <-chan string
	for i, command := range spec.Commands {
		s := &stage{index: i, command: command, input: input}

		var emit emitter
		var finish func()
		if i == len(spec.Commands)-1 {
			emit = sinkEmitter(spec.Run, sink)
		} else {
			next := make(chan string, inputBuffer)
			emit = chanEmitter(next)
			finish = func() { close(next) }
			input = next
		}

		if err := s.start(gctx, argv[i], group, emit, finish, log); err != nil {
			cancel()
			_ = group.Wait()
			log.Warn("Spawn failed", logger.WithField("stage", i), logger.WithField("error", err))
			return nil, err
		}
		p.stages = append(p.stages, s)
	}

	go func() {
		p.err = group.Wait()
		cancel()
		close(p.done)
	}()

	log.Info("Pipeline spawned",
		logger.WithField("run", spec.Run),
		logger.WithField("stages", len(p.stages)))
	return p, nil
}

func sinkEmitter(run uint64, sink chan<- Line) emitter {
	return func(ctx context.Context, text string) bool {
		select {
		case sink <- Line{Run: run, Text: text}:
			return true
		case <-ctx.Done():
			return false
		}
	}
}

func chanEmitter(next chan<- string) emitter {
	return func(ctx context.Context, text string) bool {
		select {
		case next <- text:
			return true
		case <-ctx.Done():
			return false
		}
	}
}

// Abort kills every stage without waiting for a graceful exit. It is safe
// to call more than once.
func (p *Pipeline) Abort() {
	p.once.Do(func() {
		p.logger.Debug("Pipeline aborted", logger.WithField("run", p.run))
		p.cancel()
	})
}

// Done is closed once every stage task has returned.
func (p *Pipeline) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until Done and returns the first task failure, if any.
func (p *Pipeline) Wait() error {
	<-p.done
	return p.err
}

// Run returns the submission number.
func (p *Pipeline) Run() uint64 {
	return p.run
}

// Len returns the number of stages.
func (p *Pipeline) Len() int {
	return len(p.stages)
}
