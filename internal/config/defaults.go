package config

import (
	"github.com/spf13/viper"

	"github.com/waverider/waverider/internal/constants"
)

// DefaultConfig returns a new Config with sensible default values.
// These defaults are used as the base layer that can be overridden by
// config files, environment variables, and CLI flags.
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			// BaseURL points at a local development backend by default.
			BaseURL: constants.DefaultBackendURL,

			// RequestTimeout: 30 seconds covers slow agent-backed endpoints
			// without hanging a command indefinitely.
			RequestTimeout: constants.RequestTimeout,
		},
		Channel: ChannelConfig{
			URL: constants.DefaultChannelURL,

			// ReconnectBaseDelay/MaxDelay: 1s doubling up to 30s keeps
			// reconnect storms bounded.
			ReconnectBaseDelay: constants.ReconnectBaseDelay,
			ReconnectMaxDelay:  constants.ReconnectMaxDelay,

			// PingInterval: 30 seconds matches the backend's idle timeout.
			PingInterval: constants.PingInterval,
		},
		Terminal: TerminalConfig{
			MaxEntries: constants.TerminalLogMaxEntries,
		},
	}
}

// setDefaults registers default values on a Viper instance so env vars and
// config files can override them key by key.
func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()

	v.SetDefault("backend.base_url", defaults.Backend.BaseURL)
	v.SetDefault("backend.request_timeout", defaults.Backend.RequestTimeout)

	v.SetDefault("channel.url", defaults.Channel.URL)
	v.SetDefault("channel.reconnect_base_delay", defaults.Channel.ReconnectBaseDelay)
	v.SetDefault("channel.reconnect_max_delay", defaults.Channel.ReconnectMaxDelay)
	v.SetDefault("channel.ping_interval", defaults.Channel.PingInterval)

	v.SetDefault("terminal.max_entries", defaults.Terminal.MaxEntries)
}
