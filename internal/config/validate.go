package config

import (
	"net/url"
	"strings"

	wrerrors "github.com/waverider/waverider/internal/errors"
)

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
//
// Validation rules:
//   - backend base URL must be a valid http(s) URL
//   - channel URL must be a valid ws(s) URL
//   - all timeouts and delays must be positive
//   - reconnect max delay must not be below the base delay
//   - terminal max entries must be positive
func Validate(cfg *Config) error {
	if cfg == nil {
		return wrerrors.Wrap(wrerrors.ErrConfigInvalid, "config is nil")
	}

	if err := validateBackendConfig(&cfg.Backend); err != nil {
		return err
	}
	if err := validateChannelConfig(&cfg.Channel); err != nil {
		return err
	}
	if cfg.Terminal.MaxEntries <= 0 {
		return wrerrors.Wrapf(wrerrors.ErrConfigInvalid,
			"terminal.max_entries must be positive, got %d", cfg.Terminal.MaxEntries)
	}

	return nil
}

func validateBackendConfig(cfg *BackendConfig) error {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return wrerrors.Wrapf(wrerrors.ErrConfigInvalid,
			"backend.base_url must be an http(s) URL, got %q", cfg.BaseURL)
	}
	if strings.HasSuffix(cfg.BaseURL, "/") {
		return wrerrors.Wrapf(wrerrors.ErrConfigInvalid,
			"backend.base_url must not end with a slash, got %q", cfg.BaseURL)
	}
	if cfg.RequestTimeout <= 0 {
		return wrerrors.Wrapf(wrerrors.ErrConfigInvalid,
			"backend.request_timeout must be positive, got %s", cfg.RequestTimeout)
	}
	return nil
}

func validateChannelConfig(cfg *ChannelConfig) error {
	u, err := url.Parse(cfg.URL)
	if err != nil || u.Host == "" || (u.Scheme != "ws" && u.Scheme != "wss") {
		return wrerrors.Wrapf(wrerrors.ErrConfigInvalid,
			"channel.url must be a ws(s) URL, got %q", cfg.URL)
	}
	if cfg.ReconnectBaseDelay <= 0 {
		return wrerrors.Wrapf(wrerrors.ErrConfigInvalid,
			"channel.reconnect_base_delay must be positive, got %s", cfg.ReconnectBaseDelay)
	}
	if cfg.ReconnectMaxDelay < cfg.ReconnectBaseDelay {
		return wrerrors.Wrapf(wrerrors.ErrConfigInvalid,
			"channel.reconnect_max_delay %s is below the base delay %s",
			cfg.ReconnectMaxDelay, cfg.ReconnectBaseDelay)
	}
	if cfg.PingInterval <= 0 {
		return wrerrors.Wrapf(wrerrors.ErrConfigInvalid,
			"channel.ping_interval must be positive, got %s", cfg.PingInterval)
	}
	return nil
}
