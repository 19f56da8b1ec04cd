// Package constants provides shared constant values for the WaveRider client core.
// Values are centralized here so that other internal packages never duplicate
// magic strings or limits.
package constants

import "time"

// Application identity.
const (
	// AppName is the canonical binary and product name.
	AppName = "waverider"

	// EnvPrefix is the environment variable prefix for configuration
	// (e.g. WAVERIDER_BACKEND_BASE_URL).
	EnvPrefix = "WAVERIDER"
)

// Progress bounds. Percentages outside this range are clamped, never rejected.
const (
	// ProgressMin is the lowest valid progress percentage.
	ProgressMin = 0

	// ProgressMax is the highest valid progress percentage.
	ProgressMax = 100
)

// Broadcast channel defaults.
const (
	// ReconnectBaseDelay is the initial backoff delay after a channel disconnect.
	ReconnectBaseDelay = 1 * time.Second

	// ReconnectMaxDelay caps the exponential reconnect backoff.
	ReconnectMaxDelay = 30 * time.Second

	// PingInterval is how often the channel sends a keepalive ping frame.
	PingInterval = 30 * time.Second

	// WriteTimeout bounds a single outbound frame write.
	WriteTimeout = 10 * time.Second
)

// Backend HTTP defaults.
const (
	// DefaultBackendURL is the REST base URL of the WaveRider backend.
	DefaultBackendURL = "http://localhost:8000"

	// DefaultChannelURL is the WebSocket URL of the progress broadcast endpoint.
	DefaultChannelURL = "ws://localhost:8000/ws"

	// RequestTimeout bounds a single backend request/response exchange.
	RequestTimeout = 30 * time.Second
)

// Terminal log limits.
const (
	// TerminalLogMaxEntries caps the persisted terminal log; older entries
	// are dropped first.
	TerminalLogMaxEntries = 1000
)

// Log rotation settings for the CLI log file.
const (
	// LogMaxSizeMB is the maximum size of a log file before rotation.
	LogMaxSizeMB = 10

	// LogMaxBackups is the number of rotated log files to retain.
	LogMaxBackups = 3

	// LogMaxAgeDays is the maximum age of a rotated log file.
	LogMaxAgeDays = 30

	// LogCompress enables gzip compression of rotated log files.
	LogCompress = true
)
