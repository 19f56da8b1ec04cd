package config

import (
	"os"
	"path/filepath"

	"github.com/waverider/waverider/internal/constants"
	wrerrors "github.com/waverider/waverider/internal/errors"
)

// GlobalConfigDir returns the path to the global WaveRider configuration
// directory, typically ~/.waverider. The WAVERIDER_HOME environment
// variable overrides the location entirely.
func GlobalConfigDir() (string, error) {
	if override := os.Getenv(constants.HomeEnvVar); override != "" {
		return override, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", wrerrors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, constants.WaveRiderHome), nil
}

// GlobalConfigPath returns the full path to the global configuration file,
// typically ~/.waverider/config.yaml.
func GlobalConfigPath() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.ConfigFileName), nil
}

// ProjectConfigPath returns the relative path to the project configuration
// file, always .waverider/config.yaml relative to the working directory.
func ProjectConfigPath() string {
	return filepath.Join(constants.ProjectConfigDir, constants.ConfigFileName)
}

// StateFilePath returns the full path to the persisted Entity Store
// snapshot, typically ~/.waverider/state.json.
func StateFilePath() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.StateFileName), nil
}

// LogFilePath returns the full path to the rotating CLI log file,
// typically ~/.waverider/logs/waverider.log.
func LogFilePath() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.LogsDir, constants.CLILogFileName), nil
}
