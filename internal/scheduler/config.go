package scheduler

import "time"

type Config struct {
	// Interval between sweeps.
	Interval time.Duration
	// BatchSize bounds how many occurrences one sweep claims.
	BatchSize int
	// Lease is how long a claimed occurrence stays invisible to other
	// workers. Must comfortably exceed the longest expected processing run.
	Lease time.Duration
	// RetentionDays is the default purge window when an event does not
	// override it.
	RetentionDays int
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = 30 * time.Second
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 50
	}
	if c.Lease <= 0 {
		c.Lease = 5 * time.Minute
	}
	if c.RetentionDays <= 0 {
		c.RetentionDays = 90
	}
	return c
}
