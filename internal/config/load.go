package config

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/waverider/waverider/internal/constants"
	wrerrors "github.com/waverider/waverider/internal/errors"
)

// newViperInstance creates a new Viper instance with standard WaveRider
// configuration: environment variable prefix (WAVERIDER_), key replacer,
// and defaults.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// isConfigNotFoundError returns true if the error is a viper config file
// not found error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

// fileExists returns true if the file at path exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Load reads configuration from all available sources with proper
// precedence. Missing config files are not errors; many environments run
// entirely on defaults and environment variables.
func Load(ctx context.Context) (*Config, error) {
	v := newViperInstance()

	// Global config first (lower precedence).
	if err := loadGlobalConfig(v); err != nil {
		return nil, err
	}

	// Project config merges over global.
	if err := loadProjectConfig(v); err != nil {
		return nil, err
	}

	cfg, err := unmarshalAndValidate(v)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx).With().Str("component", "config").Logger()
	logger.Debug().
		Str("backend.base_url", cfg.Backend.BaseURL).
		Str("channel.url", cfg.Channel.URL).
		Dur("channel.ping_interval", cfg.Channel.PingInterval).
		Msg("configuration loaded")

	return cfg, nil
}

// LoadWithOverrides loads configuration and applies CLI flag overrides.
// Only non-zero values in overrides are applied, so partial overrides work.
func LoadWithOverrides(ctx context.Context, overrides *Config) (*Config, error) {
	cfg, err := Load(ctx)
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		applyOverrides(cfg, overrides)
	}

	if err := Validate(cfg); err != nil {
		return nil, wrerrors.Wrap(err, "invalid configuration after overrides")
	}
	return cfg, nil
}

// LoadFromPaths loads configuration from specific file paths for testing.
// Either path can be empty to skip that level.
func LoadFromPaths(_ context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()

	if globalConfigPath != "" {
		v.SetConfigFile(globalConfigPath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, wrerrors.Wrapf(err, "failed to read global config: %s", globalConfigPath)
		}
	}

	if projectConfigPath != "" {
		v.SetConfigFile(projectConfigPath)
		if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, wrerrors.Wrapf(err, "failed to read project config: %s", projectConfigPath)
		}
	}

	return unmarshalAndValidate(v)
}

func loadGlobalConfig(v *viper.Viper) error {
	globalConfigPath, err := GlobalConfigPath()
	if err != nil || !fileExists(globalConfigPath) {
		// Global config absent or home dir unavailable, skip silently.
		return nil
	}

	v.SetConfigFile(globalConfigPath)
	if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
		return wrerrors.Wrap(err, "failed to read global config file")
	}
	return nil
}

func loadProjectConfig(v *viper.Viper) error {
	projectConfigPath := ProjectConfigPath()
	if !fileExists(projectConfigPath) {
		return nil
	}

	v.SetConfigFile(projectConfigPath)
	if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
		return wrerrors.Wrap(err, "failed to read project config file")
	}
	return nil
}

// unmarshalAndValidate unmarshals viper config into Config and validates it.
func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, wrerrors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, wrerrors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// viperDecoderOption configures mapstructure to handle time.Duration
// conversion from strings.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	)
}

// applyOverrides copies non-zero fields from overrides onto cfg.
func applyOverrides(cfg, overrides *Config) {
	if overrides.Backend.BaseURL != "" {
		cfg.Backend.BaseURL = overrides.Backend.BaseURL
	}
	if overrides.Backend.RequestTimeout > 0 {
		cfg.Backend.RequestTimeout = overrides.Backend.RequestTimeout
	}
	if overrides.Channel.URL != "" {
		cfg.Channel.URL = overrides.Channel.URL
	}
	if overrides.Channel.ReconnectBaseDelay > 0 {
		cfg.Channel.ReconnectBaseDelay = overrides.Channel.ReconnectBaseDelay
	}
	if overrides.Channel.ReconnectMaxDelay > 0 {
		cfg.Channel.ReconnectMaxDelay = overrides.Channel.ReconnectMaxDelay
	}
	if overrides.Channel.PingInterval > 0 {
		cfg.Channel.PingInterval = overrides.Channel.PingInterval
	}
	if overrides.Terminal.MaxEntries > 0 {
		cfg.Terminal.MaxEntries = overrides.Terminal.MaxEntries
	}
}
