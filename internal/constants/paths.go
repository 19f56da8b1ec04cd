package constants

// Filesystem layout under the user's home directory. All client-side
// persisted state lives below WaveRiderHome.
const (
	// WaveRiderHome is the hidden directory under $HOME that holds all
	// client state, configuration, and logs.
	WaveRiderHome = ".waverider"

	// HomeEnvVar overrides the home directory location when set.
	HomeEnvVar = "WAVERIDER_HOME"

	// ConfigFileName is the YAML configuration file name, used for both
	// the global (~/.waverider) and project-local (.waverider) locations.
	ConfigFileName = "config.yaml"

	// ProjectConfigDir is the per-project configuration directory.
	ProjectConfigDir = ".waverider"

	// StateFileName holds the persisted Entity Store snapshot
	// (projects, chat history, file cache, terminal log, UI flags).
	StateFileName = "state.json"

	// LogsDir is the directory for rotating CLI log files.
	LogsDir = "logs"

	// CLILogFileName is the rotating log file written by every command.
	CLILogFileName = "waverider.log"
)
