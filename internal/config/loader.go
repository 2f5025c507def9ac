package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Load reads the YAML config file at path. A missing file is not an
// error: the defaults describe a usable agent, the caller just has no
// persisted settings yet.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("control.socket", "/var/run/spyglass.sock")
	v.SetDefault("control.pid_file", "/tmp/spyglass.pid")

	v.SetDefault("paths.opcodes", "opcodes.txt")
	v.SetDefault("paths.schema_dir", "schemas")
	v.SetDefault("paths.descriptions", "descriptions.yaml")
	v.SetDefault("paths.blacklist", "blacklist.yaml")

	v.SetDefault("capture.server_port", 9000)

	v.SetDefault("output.timestamp", true)
	v.SetDefault("output.direction", true)
	v.SetDefault("output.opcode_names", true)
	v.SetDefault("output.size", true)
	v.SetDefault("output.hex_dump", true)
	v.SetDefault("output.description", true)
	v.SetDefault("output.console", true)
	v.SetDefault("output.file.filename", "packets.log")
	v.SetDefault("output.file.max_size", 50)
	v.SetDefault("output.file.max_backups", 3)

	v.SetDefault("filter.blacklist_enabled", true)
	v.SetDefault("filter.min_size", 0)
	v.SetDefault("filter.max_size", 0)
}

// Save persists the configuration back to path. It rewrites the whole
// file: runtime mutations (filter and output settings) survive agent
// restarts this way.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}
