package app

import "time"

const (
	MinTickInterval     = 200 * time.Millisecond
	MaxTickInterval     = 500 * time.Millisecond
	DefaultTickInterval = MinTickInterval
)

// Config is the runtime configuration read from the environment.
type Config struct {
	StorePath    string        // OSRS_STORE_PATH
	StorageKey   string        // OSRS_STORAGE_KEY
	TickInterval time.Duration // OSRS_TICK_INTERVAL
}
