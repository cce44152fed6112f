package engine

import (
	"context"

	"github.com/charmbracelet/lipgloss"

	"github.com/epiq/epiq/internal/render"
	"github.com/epiq/epiq/pkg/logger"
	"github.com/epiq/epiq/pkg/notifier"
)

var (
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	infoStyle  = lipgloss.NewStyle().Faint(true)
)

// notifyPane renders a message as the notification line.
func notifyPane(msg notifier.Message) render.Pane {
	switch msg.Level {
	case notifier.LevelError:
		return render.Pane{errorStyle.Render(msg.Text)}
	case notifier.LevelInfo:
		return render.Pane{infoStyle.Render(msg.Text)}
	default:
		return nil
	}
}

// notifyLoop draws every message on the notification line.
func (e *Engine) notifyLoop(ctx context.Context, messages <-chan notifier.Message) error {
	log := e.logger.WithTarget("notify")
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-messages:
			if err := e.compositor.Draw(render.Notify(), notifyPane(msg)); err != nil {
				log.Warn("Notify render failed", logger.WithField("error", err))
			}
		}
	}
}
