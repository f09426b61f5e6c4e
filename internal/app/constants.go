package app

import "time"

// Lifecycle tuning defaults. Centralized so tests and local runs can
// adjust the timings without touching call sites.
const (
	// DefaultIdleTimeout is how long a room may sit without activity
	// before the reaper removes it.
	DefaultIdleTimeout = 30 * time.Minute

	// DefaultGracePeriod is how long a disconnected player keeps a
	// playing room alive before the match forfeits against them.
	DefaultGracePeriod = 60 * time.Second

	// DefaultReapInterval is how often the reaper sweeps idle rooms.
	DefaultReapInterval = 5 * time.Minute
)
