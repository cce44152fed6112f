package engine

import (
	"github.com/epiq/epiq/pkg/logger"
	"github.com/epiq/epiq/pkg/notifier"
)

// DependencyFactory creates default implementations of dependencies, so
// constructors never fall back to hidden concrete types.
type DependencyFactory struct {
	config Config
	logger logger.Logger
}

// NewDependencyFactory creates a new dependency factory
func NewDependencyFactory(config Config, log logger.Logger) *DependencyFactory {
	return &DependencyFactory{config: config, logger: log}
}

// CreateDefaults creates every dependency that has a default. The terminal
// has none and must be supplied through CreateWithOverrides.
func (f *DependencyFactory) CreateDefaults() Dependencies {
	var deps Dependencies
	if f.config.Notifications.Enabled {
		deps.Notifier = notifier.New(f.config.Notifications, f.logger)
	}
	return deps
}

// CreateWithOverrides creates dependencies with specific overrides.
// Non-nil overrides replace defaults.
func (f *DependencyFactory) CreateWithOverrides(overrides Dependencies) Dependencies {
	deps := f.CreateDefaults()
	if overrides.Terminal != nil {
		deps.Terminal = overrides.Terminal
	}
	if overrides.Notifier != nil {
		deps.Notifier = overrides.Notifier
	}
	return deps
}
