// Package config provides configuration management for WaveRider with
// layered precedence.
//
// Configuration sources are loaded in the following order (highest
// precedence first):
//  1. CLI flags (passed via LoadWithOverrides)
//  2. Environment variables (WAVERIDER_* prefix)
//  3. Project config (.waverider/config.yaml)
//  4. Global config (~/.waverider/config.yaml)
//  5. Built-in defaults
//
// Each higher level completely overrides the lower level for the same key.
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import internal/domain or other internal packages.
package config

import "time"

// Config is the root configuration structure for the WaveRider client.
type Config struct {
	// Backend contains settings for the REST backend connection.
	Backend BackendConfig `yaml:"backend" mapstructure:"backend"`

	// Channel contains settings for the progress broadcast channel.
	Channel ChannelConfig `yaml:"channel" mapstructure:"channel"`

	// Terminal contains settings for the persisted terminal log.
	Terminal TerminalConfig `yaml:"terminal" mapstructure:"terminal"`
}

// BackendConfig contains settings for the REST backend connection.
type BackendConfig struct {
	// BaseURL is the backend's REST base URL, without a trailing slash.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// RequestTimeout bounds a single request/response exchange.
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
}

// ChannelConfig contains settings for the progress broadcast channel.
type ChannelConfig struct {
	// URL is the WebSocket endpoint of the broadcast channel.
	URL string `yaml:"url" mapstructure:"url"`

	// ReconnectBaseDelay is the initial backoff delay after a disconnect.
	ReconnectBaseDelay time.Duration `yaml:"reconnect_base_delay" mapstructure:"reconnect_base_delay"`

	// ReconnectMaxDelay caps the exponential reconnect backoff.
	ReconnectMaxDelay time.Duration `yaml:"reconnect_max_delay" mapstructure:"reconnect_max_delay"`

	// PingInterval is how often a keepalive ping frame is sent.
	PingInterval time.Duration `yaml:"ping_interval" mapstructure:"ping_interval"`
}

// TerminalConfig contains settings for the persisted terminal log.
type TerminalConfig struct {
	// MaxEntries caps the terminal log; older entries are dropped first.
	MaxEntries int `yaml:"max_entries" mapstructure:"max_entries"`
}
