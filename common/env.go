// Package common provides shared types and constants used between the
// ptimer daemon and its clients.
package common

// Environment variable names for configuration.
const (
	// ConfigDirEnv overrides the directory holding config.yaml and .env.
	ConfigDirEnv = "PTIMER_CONFIG_DIR"

	// DataDirEnv overrides the directory holding timer records and logs.
	DataDirEnv = "PTIMER_DATA_DIR"

	// ListenAddrEnv overrides the daemon listen address.
	ListenAddrEnv = "PTIMER_LISTEN_ADDR"

	// StoreEnv selects the record store backend ("json" or "sqlite").
	StoreEnv = "PTIMER_STORE"

	// TickIntervalEnv overrides the reconciliation loop interval.
	TickIntervalEnv = "PTIMER_TICK_INTERVAL"

	// ClockToleranceEnv overrides the backwards clock step tolerated silently.
	ClockToleranceEnv = "PTIMER_CLOCK_TOLERANCE"

	// ExactAlarmsEnv toggles exact wake delivery.
	ExactAlarmsEnv = "PTIMER_EXACT_ALARMS"

	// BatchCronEnv sets the batching expression for inexact wakes.
	BatchCronEnv = "PTIMER_BATCH_CRON"

	// MaxSleepCapEnv bounds a single wake scheduler sleep.
	MaxSleepCapEnv = "PTIMER_MAX_SLEEP_CAP"

	// ShutdownTimeoutEnv bounds graceful shutdown.
	ShutdownTimeoutEnv = "PTIMER_SHUTDOWN_TIMEOUT"

	// RPCSecretEnv sets the bearer token of the daemon API.
	RPCSecretEnv = "PTIMER_RPC_SECRET"

	// DebugEnv is the environment variable to enable debug logging.
	DebugEnv = "PTIMER_DEBUG"
)
