package log

// Config controls the global logger. It lives under the `logger:` key of
// the agent configuration file.
type Config struct {
	Level     string           `mapstructure:"level" yaml:"level"`
	Pattern   string           `mapstructure:"pattern" yaml:"pattern"`
	Time      string           `mapstructure:"time" yaml:"time"`
	Appenders []AppenderConfig `mapstructure:"appenders" yaml:"appenders"`
}

// AppenderConfig selects an output target. Type is "console" or "file";
// Options carries the type-specific settings (see FileAppenderOpt).
type AppenderConfig struct {
	Type    string                 `mapstructure:"type" yaml:"type"`
	Options map[string]interface{} `mapstructure:"options" yaml:"options,omitempty"`
}

// DefaultConfig is the fallback used when the config file carries no
// logger section: info-level console output only.
func DefaultConfig() *Config {
	return &Config{
		Level:   "info",
		Pattern: "%time [%level] %msg%n",
		Time:    "2006-01-02 15:04:05",
		Appenders: []AppenderConfig{
			{Type: "console"},
		},
	}
}
