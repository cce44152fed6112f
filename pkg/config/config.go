// Package config handles configuration loading and management
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/epiq/epiq/internal/prompt"
	"github.com/epiq/epiq/internal/textedit"
	"github.com/epiq/epiq/pkg/logger"
)

const (
	// EnvPrefix prefixes every environment override, e.g. EPIQ_LOG_LEVEL.
	EnvPrefix = "EPIQ"
	// FileName is the base name searched for in the config directories.
	FileName = "epiq"
)

// StageTheme is the look of one kind of stage editor.
type StageTheme struct {
	Prefix      string `mapstructure:"prefix" yaml:"prefix"`
	PrefixColor string `mapstructure:"prefix_color" yaml:"prefix_color"`
	CursorColor string `mapstructure:"cursor_color" yaml:"cursor_color"`
}

// ThemeConfig styles the stage editors.
type ThemeConfig struct {
	Head           StageTheme `mapstructure:"head" yaml:"head"`
	Pipe           StageTheme `mapstructure:"pipe" yaml:"pipe"`
	WordBreakChars string     `mapstructure:"word_break_chars" yaml:"word_break_chars"`
}

// NotificationConfig controls desktop notifications of submission errors.
type NotificationConfig struct {
	Desktop bool `mapstructure:"desktop" yaml:"desktop"`
	Sound   bool `mapstructure:"sound" yaml:"sound"`
}

// Config is the complete epiq configuration.
type Config struct {
	OutputQueueSize      int                `mapstructure:"output_queue_size" yaml:"output_queue_size"`
	EventOperateInterval int                `mapstructure:"event_operate_interval" yaml:"event_operate_interval"`
	OutputRenderInterval int                `mapstructure:"output_render_interval" yaml:"output_render_interval"`
	MouseCapture         bool               `mapstructure:"mouse_capture" yaml:"mouse_capture"`
	LogFile              string             `mapstructure:"log_file" yaml:"log_file"`
	LogLevel             string             `mapstructure:"log_level" yaml:"log_level"`
	Notifications        NotificationConfig `mapstructure:"notifications" yaml:"notifications"`
	Theme                ThemeConfig        `mapstructure:"theme" yaml:"theme"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		OutputQueueSize:      1000,
		EventOperateInterval: 32,
		OutputRenderInterval: 10,
		MouseCapture:         true,
		LogLevel:             "info",
		Theme: ThemeConfig{
			Head:           StageTheme{Prefix: "❯❯ ", PrefixColor: "2", CursorColor: "6"},
			Pipe:           StageTheme{Prefix: "❚ ", PrefixColor: "3", CursorColor: "6"},
			WordBreakChars: ".|()[] ",
		},
	}
}

// NewViper returns a viper instance with every default registered and
// EPIQ_* environment overrides enabled.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// SetDefaults registers the built-in values on v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("output_queue_size", d.OutputQueueSize)
	v.SetDefault("event_operate_interval", d.EventOperateInterval)
	v.SetDefault("output_render_interval", d.OutputRenderInterval)
	v.SetDefault("mouse_capture", d.MouseCapture)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("notifications.desktop", d.Notifications.Desktop)
	v.SetDefault("notifications.sound", d.Notifications.Sound)
	v.SetDefault("theme.head.prefix", d.Theme.Head.Prefix)
	v.SetDefault("theme.head.prefix_color", d.Theme.Head.PrefixColor)
	v.SetDefault("theme.head.cursor_color", d.Theme.Head.CursorColor)
	v.SetDefault("theme.pipe.prefix", d.Theme.Pipe.Prefix)
	v.SetDefault("theme.pipe.prefix_color", d.Theme.Pipe.PrefixColor)
	v.SetDefault("theme.pipe.cursor_color", d.Theme.Pipe.CursorColor)
	v.SetDefault("theme.word_break_chars", d.Theme.WordBreakChars)
}

// SearchPaths returns the directories searched for epiq.yaml, in order.
func SearchPaths() []string {
	var dirs []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, filepath.Join(xdg, "epiq"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", "epiq"))
	}
	return append(dirs, ".")
}

// DefaultPath is where `epiq init` writes when no path is given.
func DefaultPath() string {
	return filepath.Join(SearchPaths()[0], FileName+".yaml")
}

// Load reads the configuration into v and decodes it. An explicit path
// must exist; otherwise the search paths are tried and a missing file
// leaves the defaults in place.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		for _, dir := range SearchPaths() {
			v.AddConfigPath(dir)
		}
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile reads one configuration file on top of the defaults and the
// environment.
func LoadFile(path string) (*Config, error) {
	return Load(NewViper(), path)
}

// Validate rejects settings the session cannot start with.
func (c *Config) Validate() error {
	if c.OutputQueueSize <= 0 {
		return fmt.Errorf("output_queue_size must be positive, got %d", c.OutputQueueSize)
	}
	if c.EventOperateInterval <= 0 {
		return fmt.Errorf("event_operate_interval must be positive, got %d", c.EventOperateInterval)
	}
	if c.OutputRenderInterval <= 0 {
		return fmt.Errorf("output_render_interval must be positive, got %d", c.OutputRenderInterval)
	}
	if !logger.ValidLevel(c.LogLevel) {
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}

// OperateInterval is the input aggregation interval.
func (c *Config) OperateInterval() time.Duration {
	return time.Duration(c.EventOperateInterval) * time.Millisecond
}

// RenderInterval is the output pane render interval.
func (c *Config) RenderInterval() time.Duration {
	return time.Duration(c.OutputRenderInterval) * time.Millisecond
}

// PromptTheme converts the theme settings for the stage editors.
func (c *Config) PromptTheme() prompt.Theme {
	return prompt.Theme{
		Head:      c.Theme.Head.toPrompt(),
		Pipe:      c.Theme.Pipe.toPrompt(),
		WordBreak: textedit.Set(c.Theme.WordBreakChars),
	}
}

func (s StageTheme) toPrompt() prompt.StageTheme {
	return prompt.StageTheme{
		Prefix:      s.Prefix,
		PrefixColor: lipgloss.Color(s.PrefixColor),
		CursorColor: lipgloss.Color(s.CursorColor),
	}
}

// YAML renders the configuration as a config file.
func (c *Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return data, nil
}
