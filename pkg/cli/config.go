package cli

// Config holds the CLI settings that are not part of the epiq
// configuration file itself.
type Config struct {
	ConfigFile string
	Version    string
	NoMouse    bool
}

// NewConfig creates a new CLI configuration with defaults
func NewConfig() *Config {
	return &Config{Version: "dev"}
}
