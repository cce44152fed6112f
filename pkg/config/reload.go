package config

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/epiq/epiq/pkg/logger"
)

// ReloadCallback is called after every reload attempt. Exactly one of cfg
// and err is non-nil.
type ReloadCallback func(cfg *Config, err error)

// ReloadEventType represents the type of reload event
type ReloadEventType string

const (
	ReloadEventTypeModified ReloadEventType = "modified"
	ReloadEventTypeCreated  ReloadEventType = "created"
	ReloadEventTypeRemoved  ReloadEventType = "removed"
)

// ReloadManager watches the configuration file and reloads it after a
// burst of changes settles.
type ReloadManager struct {
	configPath     string
	logger         logger.Logger
	watcher        *fsnotify.Watcher
	callbacks      []ReloadCallback
	lastReload     time.Time
	debounceTimer  *time.Timer
	debouncePeriod time.Duration
	mu             sync.RWMutex
	cancel         context.CancelFunc
	isWatching     bool
}

// DefaultReloadDebounce is how long a burst of file events must settle
// before the configuration is reloaded.
const DefaultReloadDebounce = 200 * time.Millisecond

// NewReloadManager creates a new configuration reload manager. A
// non-positive debounce uses DefaultReloadDebounce.
func NewReloadManager(configPath string, debounce time.Duration, log logger.Logger) *ReloadManager {
	if debounce <= 0 {
		debounce = DefaultReloadDebounce
	}
	return &ReloadManager{
		configPath:     configPath,
		logger:         log.WithTarget("config"),
		debouncePeriod: debounce,
	}
}

// AddCallback adds a reload callback
func (rm *ReloadManager) AddCallback(callback ReloadCallback) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.callbacks = append(rm.callbacks, callback)
}

// StartWatching begins watching the configuration file until ctx is done
// or StopWatching is called. The parent directory is watched so that
// editors replacing the file are noticed.
func (rm *ReloadManager) StartWatching(ctx context.Context) error {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.isWatching {
		return fmt.Errorf("already watching configuration file")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(rm.configPath)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch config directory: %w", err)
	}

	ctx, rm.cancel = context.WithCancel(ctx)
	rm.watcher = watcher
	rm.isWatching = true
	go rm.watchLoop(ctx, watcher)

	rm.logger.Debug("Started watching configuration file",
		logger.WithField("path", rm.configPath))
	return nil
}

// StopWatching stops watching the configuration file
func (rm *ReloadManager) StopWatching() error {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if !rm.isWatching {
		return nil
	}

	rm.cancel()
	if rm.debounceTimer != nil {
		rm.debounceTimer.Stop()
		rm.debounceTimer = nil
	}
	if err := rm.watcher.Close(); err != nil {
		rm.logger.Warn("Error closing file watcher", logger.WithField("error", err))
	}
	rm.watcher = nil
	rm.isWatching = false

	rm.logger.Debug("Stopped watching configuration file")
	return nil
}

// IsWatching returns whether the manager is currently watching
func (rm *ReloadManager) IsWatching() bool {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.isWatching
}

// LastReloadTime returns when the configuration was last reloaded successfully.
func (rm *ReloadManager) LastReloadTime() time.Time {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.lastReload
}

// ConfigPath returns the path of the watched configuration file
func (rm *ReloadManager) ConfigPath() string {
	return rm.configPath
}

func (rm *ReloadManager) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer func() {
		if r := recover(); r != nil {
			rm.logger.Error("Configuration watcher panic recovered",
				logger.WithField("panic", r))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !rm.isConfigFileEvent(event.Name) {
				continue
			}
			rm.logger.Debug("Configuration file event received",
				logger.WithField("event", event.String()))
			rm.debounceReload(mapFsnotifyEvent(event.Op))

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			rm.logger.Error("Configuration file watcher error", logger.WithField("error", err))
			rm.notifyCallbacks(nil, err)
		}
	}
}

// isConfigFileEvent matches the config file and the temporary files
// editors write next to it.
func (rm *ReloadManager) isConfigFileEvent(eventPath string) bool {
	name := filepath.Base(rm.configPath)
	base := filepath.Base(eventPath)
	return base == name || strings.HasPrefix(base, name)
}

func mapFsnotifyEvent(op fsnotify.Op) ReloadEventType {
	switch {
	case op.Has(fsnotify.Write):
		return ReloadEventTypeModified
	case op.Has(fsnotify.Create):
		return ReloadEventTypeCreated
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return ReloadEventTypeRemoved
	default:
		return ReloadEventTypeModified
	}
}

func (rm *ReloadManager) debounceReload(eventType ReloadEventType) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.debounceTimer != nil {
		rm.debounceTimer.Stop()
	}
	rm.debounceTimer = time.AfterFunc(rm.debouncePeriod, func() {
		rm.handleConfigChange(eventType)
	})
}

func (rm *ReloadManager) handleConfigChange(eventType ReloadEventType) {
	rm.logger.Debug("Processing configuration change",
		logger.WithField("eventType", eventType))

	// A rename-over save shows up as remove then create; the create re-arms
	// the debounce, so a lone remove means the file is really gone.
	if eventType == ReloadEventTypeRemoved {
		rm.notifyCallbacks(nil, fmt.Errorf("configuration file was removed: %s", rm.configPath))
		return
	}

	cfg, err := LoadFile(rm.configPath)
	if err != nil {
		rm.logger.Error("Failed to reload configuration", logger.WithField("error", err))
		rm.notifyCallbacks(nil, err)
		return
	}

	rm.mu.Lock()
	rm.lastReload = time.Now()
	rm.mu.Unlock()

	rm.logger.Info("Configuration reloaded", logger.WithField("path", rm.configPath))
	rm.notifyCallbacks(cfg, nil)
}

func (rm *ReloadManager) notifyCallbacks(cfg *Config, err error) {
	rm.mu.RLock()
	callbacks := append([]ReloadCallback(nil), rm.callbacks...)
	rm.mu.RUnlock()

	for _, cb := range callbacks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					rm.logger.Error("Reload callback panic recovered",
						logger.WithField("panic", r))
				}
			}()
			cb(cfg, err)
		}()
	}
}
