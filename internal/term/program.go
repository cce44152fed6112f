// Package term hosts the session on the real terminal through bubbletea:
// it turns terminal input into operator events and shows composed frames
// on the alternate screen.
package term

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	xterm "golang.org/x/term"

	"github.com/epiq/epiq/internal/operator"
	"github.com/epiq/epiq/pkg/logger"
)

const (
	eventBuffer   = 256
	defaultWidth  = 80
	defaultHeight = 24
)

// Options configure a Program.
type Options struct {
	MouseCapture bool
	// Input and Output default to the process's stdin and stdout.
	Input  io.Reader
	Output io.Writer
}

type (
	redrawMsg struct{}
	mouseMsg  bool
)

// Program adapts a bubbletea program to the engine's terminal contract.
// Draw and SetMouseCapture never block on the bubbletea event loop.
type Program struct {
	program *tea.Program
	events  chan operator.Event
	redraw  chan struct{}
	mouse   chan bool
	stopped chan struct{}
	logger  logger.Logger

	mu    sync.Mutex
	frame string
}

// New creates a program. It does not touch the terminal until Run.
func New(opts Options, log logger.Logger) *Program {
	p := &Program{
		events:  make(chan operator.Event, eventBuffer),
		redraw:  make(chan struct{}, 1),
		mouse:   make(chan bool, 1),
		stopped: make(chan struct{}),
		logger:  log.WithTarget("term"),
	}

	teaOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithoutSignalHandler()}
	if opts.MouseCapture {
		teaOpts = append(teaOpts, tea.WithMouseCellMotion())
	}
	if opts.Input != nil {
		teaOpts = append(teaOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		teaOpts = append(teaOpts, tea.WithOutput(opts.Output))
	}
	p.program = tea.NewProgram(&model{program: p}, teaOpts...)
	return p
}

// Run starts the bubbletea program and blocks until it exits or ctx is done.
func (p *Program) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go p.pump(ctx)
	go func() {
		<-ctx.Done()
		close(p.stopped)
		p.program.Quit()
	}()

	_, err := p.program.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// Events delivers translated input events.
func (p *Program) Events() <-chan operator.Event {
	return p.events
}

// Draw replaces the frame shown on screen.
func (p *Program) Draw(frame string) error {
	p.mu.Lock()
	p.frame = frame
	p.mu.Unlock()

	select {
	case p.redraw <- struct{}{}:
	default:
	}
	return nil
}

// SetMouseCapture turns mouse reporting on or off. Only the latest request
// is kept if the event loop is busy.
func (p *Program) SetMouseCapture(enabled bool) {
	for {
		select {
		case p.mouse <- enabled:
			return
		default:
			select {
			case <-p.mouse:
			default:
			}
		}
	}
}

// Size returns the terminal size, falling back to 80x24 when stdout is not
// a terminal.
func (p *Program) Size() (int, int) {
	fd := int(os.Stdout.Fd())
	if !xterm.IsTerminal(fd) {
		return defaultWidth, defaultHeight
	}
	width, height, err := xterm.GetSize(fd)
	if err != nil {
		p.logger.Debug("Terminal size unavailable", logger.WithField("error", err))
		return defaultWidth, defaultHeight
	}
	return width, height
}

// pump forwards redraw and mouse requests into the event loop.
func (p *Program) pump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.redraw:
			p.program.Send(redrawMsg{})
		case enabled := <-p.mouse:
			p.program.Send(mouseMsg(enabled))
		}
	}
}

func (p *Program) view() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frame
}

// emit hands events to the engine. It gives up once the program is stopping.
func (p *Program) emit(events []operator.Event) {
	for _, e := range events {
		select {
		case p.events <- e:
		case <-p.stopped:
			return
		}
	}
}

type model struct {
	program *Program
}

func (m *model) Init() tea.Cmd { return nil }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case redrawMsg:
		return m, nil
	case mouseMsg:
		if msg {
			return m, tea.EnableMouseCellMotion
		}
		return m, tea.DisableMouse
	}

	if events := Translate(msg); len(events) > 0 {
		m.program.emit(events)
	}
	return m, nil
}

func (m *model) View() string {
	return m.program.view()
}
