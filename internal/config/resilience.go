package config

import (
	"time"

	"osrs_tax_columns/internal/retry"
)

// ResilienceConfig tunes retries around the hidden-item store. Reads and
// writes happen inside a sub-second reconciliation pass, so delays stay short.
type ResilienceConfig struct {
	StoreRead  retry.Config
	StoreWrite retry.Config
}

var DefaultResilienceConfig = ResilienceConfig{
	StoreRead: retry.Config{
		MaxRetries: 2,
		BaseDelay:  10 * time.Millisecond,
		MaxDelay:   50 * time.Millisecond,
		Timeout:    2 * time.Second,
	},
	StoreWrite: retry.Config{
		MaxRetries: 3,
		BaseDelay:  10 * time.Millisecond,
		MaxDelay:   100 * time.Millisecond,
		Timeout:    2 * time.Second,
	},
}
