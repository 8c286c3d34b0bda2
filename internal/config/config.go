// Package config loads the dev panel configuration.
//
// Sources, highest priority first: environment variables (DEVPANEL_ prefix,
// dots replaced by underscores), the config file, built-in defaults.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigFile    = "devpanel.yaml"
	DefaultCommand       = "yarn start"
	DefaultCommitMessage = "Auto-save: 10 min interval"
	DefaultPushInterval  = 10 * time.Minute
	DefaultTick          = time.Second
	DefaultStopGrace     = 5 * time.Second
	DefaultStatsURL      = "http://localhost:3000/stats"
	DefaultStatsField    = "activeUsers"
	DefaultPollInterval  = 2 * time.Second
	DefaultPollTimeout   = 2 * time.Second
	DefaultAPIAddress    = "localhost:50051"
	DefaultHistoryPath   = ".devpanel/history.db"
	DefaultLogLevel      = "info"
	DefaultLogMaxSize    = 10 // MB
	DefaultLogMaxBackups = 3
	DefaultLogMaxAge     = 7 // days

	envPrefix = "DEVPANEL"
)

// Config is the full dev panel configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" yaml:"server"`
	Automation AutomationConfig `mapstructure:"automation" yaml:"automation"`
	Stats      StatsConfig      `mapstructure:"stats" yaml:"stats"`
	API        APIConfig        `mapstructure:"api" yaml:"api"`
	History    HistoryConfig    `mapstructure:"history" yaml:"history"`
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
}

// ServerConfig describes the supervised development server.
type ServerConfig struct {
	Command   string        `mapstructure:"command" yaml:"command"`
	Dir       string        `mapstructure:"dir" yaml:"dir"`
	StopGrace time.Duration `mapstructure:"stop_grace" yaml:"stop_grace"`
}

// AutomationConfig drives the auto-push countdown.
type AutomationConfig struct {
	Enabled       bool          `mapstructure:"enabled" yaml:"enabled"`
	RepoDir       string        `mapstructure:"repo_dir" yaml:"repo_dir"`
	CommitMessage string        `mapstructure:"commit_message" yaml:"commit_message"`
	PushInterval  time.Duration `mapstructure:"push_interval" yaml:"push_interval"`
	Tick          time.Duration `mapstructure:"tick" yaml:"tick"`
	Remote        string        `mapstructure:"remote" yaml:"remote"`
	Branch        string        `mapstructure:"branch" yaml:"branch"`
}

// PushPeriod returns the push interval in ticks, at least one.
func (a AutomationConfig) PushPeriod() int {
	if a.Tick <= 0 {
		return 1
	}
	n := int(a.PushInterval / a.Tick)
	if n < 1 {
		return 1
	}
	return n
}

// StatsConfig describes the polled stats endpoint.
type StatsConfig struct {
	URL      string        `mapstructure:"url" yaml:"url"`
	Field    string        `mapstructure:"field" yaml:"field"`
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// APIConfig configures the HTTP control API.
type APIConfig struct {
	Address string    `mapstructure:"address" yaml:"address"`
	TLS     TLSConfig `mapstructure:"tls" yaml:"tls"`
}

// TLSConfig enables mutual TLS on the control API.
type TLSConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	CertFile string `mapstructure:"cert_file" yaml:"cert_file"`
	KeyFile  string `mapstructure:"key_file" yaml:"key_file"`
	CAFile   string `mapstructure:"ca_file" yaml:"ca_file"`
}

type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// LogConfig controls the zap logger and its rotated file output.
type LogConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	File       string `mapstructure:"file" yaml:"file"`
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"`
	Console    bool   `mapstructure:"console" yaml:"console"`
}

// Load reads configuration from configPath, DEVPANEL_CONFIG_PATH or
// devpanel.yaml in the working directory. A missing file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath == "" {
		configPath = os.Getenv(envPrefix + "_CONFIG_PATH")
	}
	if configPath == "" {
		configPath = DefaultConfigFile
	}
	v.SetConfigFile(configPath)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			if _, statErr := os.Stat(v.ConfigFileUsed()); statErr == nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.command", DefaultCommand)
	v.SetDefault("server.dir", "")
	v.SetDefault("server.stop_grace", DefaultStopGrace)

	v.SetDefault("automation.enabled", true)
	v.SetDefault("automation.repo_dir", "")
	v.SetDefault("automation.commit_message", DefaultCommitMessage)
	v.SetDefault("automation.push_interval", DefaultPushInterval)
	v.SetDefault("automation.tick", DefaultTick)
	v.SetDefault("automation.remote", "")
	v.SetDefault("automation.branch", "")

	v.SetDefault("stats.url", DefaultStatsURL)
	v.SetDefault("stats.field", DefaultStatsField)
	v.SetDefault("stats.interval", DefaultPollInterval)
	v.SetDefault("stats.timeout", DefaultPollTimeout)

	v.SetDefault("api.address", DefaultAPIAddress)
	v.SetDefault("api.tls.enabled", false)
	v.SetDefault("api.tls.cert_file", "")
	v.SetDefault("api.tls.key_file", "")
	v.SetDefault("api.tls.ca_file", "")

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", DefaultHistoryPath)

	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size", DefaultLogMaxSize)
	v.SetDefault("log.max_backups", DefaultLogMaxBackups)
	v.SetDefault("log.max_age", DefaultLogMaxAge)
	v.SetDefault("log.console", true)
}

// Validate checks the configuration for values the panel cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Command) == "" {
		return errors.New("server.command is required")
	}

	if c.Automation.Tick <= 0 {
		return errors.New("automation.tick must be positive")
	}
	if c.Automation.PushInterval < c.Automation.Tick {
		return fmt.Errorf("automation.push_interval must be at least one tick (%s)", c.Automation.Tick)
	}
	if c.Automation.Branch != "" && c.Automation.Remote == "" {
		return errors.New("automation.branch requires automation.remote")
	}

	u, err := url.Parse(c.Stats.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("stats.url must be an http(s) URL: %q", c.Stats.URL)
	}
	if c.Stats.Field == "" {
		return errors.New("stats.field is required")
	}
	if c.Stats.Interval <= 0 || c.Stats.Timeout <= 0 {
		return errors.New("stats.interval and stats.timeout must be positive")
	}

	if c.API.TLS.Enabled {
		if c.API.TLS.CertFile == "" || c.API.TLS.KeyFile == "" || c.API.TLS.CAFile == "" {
			return errors.New("api.tls.cert_file, key_file and ca_file are required when TLS is enabled")
		}
	}

	if c.History.Enabled && c.History.Path == "" {
		return errors.New("history.path is required when history is enabled")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level)
	}
	return nil
}

// ToYAML renders the configuration as a config file. yaml.v3 writes
// durations in their string form ("10m0s"), which viper reads back.
func (c *Config) ToYAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return out, nil
}
