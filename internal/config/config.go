// Package config handles agent configuration loading and persistence.
package config

import (
	"github.com/spyglass-tools/spyglass/internal/log"
)

// Config is the top-level agent configuration, mapped from the YAML
// config file.
type Config struct {
	Control ControlConfig `mapstructure:"control" yaml:"control"`
	Logger  *log.Config   `mapstructure:"logger" yaml:"logger"`
	Paths   PathsConfig   `mapstructure:"paths" yaml:"paths"`
	Capture CaptureConfig `mapstructure:"capture" yaml:"capture"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output"`
	Filter  FilterConfig  `mapstructure:"filter" yaml:"filter"`
}

// ControlConfig locates the local control plane.
type ControlConfig struct {
	Socket  string `mapstructure:"socket" yaml:"socket"`
	PIDFile string `mapstructure:"pid_file" yaml:"pid_file"`
}

// PathsConfig names the external data resources the core loads at
// startup.
type PathsConfig struct {
	Opcodes      string `mapstructure:"opcodes" yaml:"opcodes"`
	SchemaDir    string `mapstructure:"schema_dir" yaml:"schema_dir"`
	Descriptions string `mapstructure:"descriptions" yaml:"descriptions"`
	Blacklist    string `mapstructure:"blacklist" yaml:"blacklist"`
}

// CaptureConfig selects the message feed.
type CaptureConfig struct {
	Pcap       string `mapstructure:"pcap" yaml:"pcap"`
	ServerIP   string `mapstructure:"server_ip" yaml:"server_ip"`
	ServerPort uint16 `mapstructure:"server_port" yaml:"server_port"`
}

// OutputConfig controls the rendered record sink. Every segment of the
// record line can be switched off independently.
type OutputConfig struct {
	Timestamp   bool `mapstructure:"timestamp" yaml:"timestamp"`
	Direction   bool `mapstructure:"direction" yaml:"direction"`
	OpcodeNames bool `mapstructure:"opcode_names" yaml:"opcode_names"`
	Size        bool `mapstructure:"size" yaml:"size"`
	HexDump     bool `mapstructure:"hex_dump" yaml:"hex_dump"`
	Description bool `mapstructure:"description" yaml:"description"`

	Console bool           `mapstructure:"console" yaml:"console"`
	File    FileSinkConfig `mapstructure:"file" yaml:"file"`
}

// FileSinkConfig is the rotated record file.
type FileSinkConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	Filename   string `mapstructure:"filename" yaml:"filename"`
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// FilterConfig is the persisted admission policy.
type FilterConfig struct {
	BlacklistEnabled bool     `mapstructure:"blacklist_enabled" yaml:"blacklist_enabled"`
	MinSize          uint32   `mapstructure:"min_size" yaml:"min_size"`
	MaxSize          uint32   `mapstructure:"max_size" yaml:"max_size"`
	Include          []string `mapstructure:"include" yaml:"include"`
	Exclude          []string `mapstructure:"exclude" yaml:"exclude"`
}
