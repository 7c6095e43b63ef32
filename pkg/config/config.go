// Package config loads browserpilot configuration from a YAML file with
// environment variable overrides. Missing files are not an error; every
// field has a usable default.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full browserpilot configuration, shared by the daemon and
// the client CLI.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Browser  BrowserConfig  `yaml:"browser"`
	Client   ClientConfig   `yaml:"client"`
	Playback PlaybackConfig `yaml:"playback"`
}

// ServerConfig configures the automation daemon's HTTP listener.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// StreamInterval is the pacing of screenshot frames on the preview
	// WebSocket.
	StreamInterval time.Duration `yaml:"stream_interval"`
}

// BrowserConfig configures the automation engine.
type BrowserConfig struct {
	Headless       bool          `yaml:"headless"`
	LaunchTimeout  time.Duration `yaml:"launch_timeout"`
	TypeDelay      time.Duration `yaml:"type_delay"`
	SettleDelay    time.Duration `yaml:"settle_delay"`
	ViewportWidth  int           `yaml:"viewport_width"`
	ViewportHeight int           `yaml:"viewport_height"`
}

// ClientConfig configures the gateway side.
type ClientConfig struct {
	// ServerURL is the base URL of the automation daemon.
	ServerURL string `yaml:"server_url"`

	// RequestTimeout bounds one action round-trip.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// HistoryLimit caps the gateway's action history log.
	HistoryLimit int `yaml:"history_limit"`

	// SequencesPath is the JSON file holding saved action sequences.
	// Empty means ~/.browserpilot/sequences.json.
	SequencesPath string `yaml:"sequences_path"`
}

// PlaybackConfig tunes sequence replay timing. The recorded inter-action
// gaps are honored up to DelayCap; Pause is the fixed wait inserted after
// every replayed action. Neither value is a timing contract, both exist to
// keep replays watchable without unbounded waits.
type PlaybackConfig struct {
	Pause    time.Duration `yaml:"pause"`
	DelayCap time.Duration `yaml:"delay_cap"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:           "localhost:3001",
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   60 * time.Second,
			StreamInterval: time.Second,
		},
		Browser: BrowserConfig{
			Headless:       true,
			LaunchTimeout:  30 * time.Second,
			TypeDelay:      50 * time.Millisecond,
			SettleDelay:    300 * time.Millisecond,
			ViewportWidth:  1280,
			ViewportHeight: 720,
		},
		Client: ClientConfig{
			ServerURL:      "http://localhost:3001",
			RequestTimeout: 45 * time.Second,
			HistoryLimit:   100,
		},
		Playback: PlaybackConfig{
			Pause:    500 * time.Millisecond,
			DelayCap: 3 * time.Second,
		},
	}
}

// Load reads configuration from path, layering it over the defaults and
// then applying environment overrides. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overrides individual fields from the environment. Only the
// fields operators commonly need at deploy time are exposed.
func (c *Config) applyEnv() {
	if v := os.Getenv("BROWSERPILOT_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("BROWSERPILOT_SERVER_URL"); v != "" {
		c.Client.ServerURL = v
	}
	if v := os.Getenv("BROWSERPILOT_HEADLESS"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			c.Browser.Headless = parsed
		}
	}
	if v := os.Getenv("BROWSERPILOT_SEQUENCES_PATH"); v != "" {
		c.Client.SequencesPath = v
	}
}
