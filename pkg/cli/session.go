package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/epiq/epiq/internal/engine"
	"github.com/epiq/epiq/internal/term"
	"github.com/epiq/epiq/pkg/config"
	pcontext "github.com/epiq/epiq/pkg/context"
	"github.com/epiq/epiq/pkg/logger"
	"github.com/epiq/epiq/pkg/notifier"
	"github.com/epiq/epiq/pkg/process"
)

// EngineConfig maps the loaded configuration onto the session settings.
func EngineConfig(cfg *config.Config) engine.Config {
	return engine.Config{
		QueueSize:       cfg.OutputQueueSize,
		OperateInterval: cfg.OperateInterval(),
		RenderInterval:  cfg.RenderInterval(),
		MouseCapture:    cfg.MouseCapture,
		Theme:           cfg.PromptTheme(),
		Notifications: notifier.Config{
			Enabled: cfg.Notifications.Desktop,
			Sound:   cfg.Notifications.Sound,
		},
	}
}

// RunSession runs the TUI on the real terminal until the user quits or the
// process is signalled. When configPath is set, theme changes in that file
// are applied live.
func RunSession(ctx context.Context, cfg *config.Config, configPath string) error {
	ctx, cancel := context.WithCancel(pcontext.WithSessionID(ctx, pcontext.GenerateSessionID()))
	defer cancel()

	log := logger.WithContext(ctx, logger.CreateLogger(cfg.LogFile, cfg.LogLevel))

	ecfg := EngineConfig(cfg)
	program := term.New(term.Options{MouseCapture: cfg.MouseCapture}, log)
	deps := engine.NewDependencyFactory(ecfg, log).
		CreateWithOverrides(engine.Dependencies{Terminal: program})

	eng, err := engine.New(ecfg, log, deps)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	// Handlers run in reverse: the live pipeline is killed before the
	// session context goes away.
	manager := process.NewManager(log)
	manager.RegisterShutdownHandler(cancel)
	manager.RegisterShutdownHandler(eng.Abort)
	manager.Start(ctx)
	defer manager.Stop()

	if configPath != "" {
		reload := config.NewReloadManager(configPath, config.DefaultReloadDebounce, log)
		reload.AddCallback(func(next *config.Config, err error) {
			if err != nil {
				log.Warn("Configuration reload ignored",
					logger.WithField("path", reload.ConfigPath()),
					logger.WithField("error", err))
				return
			}
			eng.SetTheme(next.PromptTheme())
			log.Info("Theme reloaded",
				logger.WithField("path", reload.ConfigPath()),
				logger.WithField("reloaded_at", reload.LastReloadTime().Format(time.RFC3339)))
		})
		if err := reload.StartWatching(ctx); err != nil {
			log.Warn("Configuration hot reload unavailable", logger.WithField("error", err))
		} else {
			defer reload.StopWatching()
		}
	}

	return eng.Run(ctx)
}
