package capture

import "time"

// Config defines the per-capture retry and timeout policy.
type Config struct {
	// ReadTimeout bounds each read while streaming row packets.
	ReadTimeout time.Duration

	// ReplyTimeout bounds the single reply drained after a parameter
	// command. Devices occasionally skip these replies, so a miss is
	// tolerated.
	ReplyTimeout time.Duration

	// MaxAttempts caps the read loop. Hitting the cap is a soft
	// success: some firmware omits the terminal marker and the rows
	// collected so far are still a valid frame.
	MaxAttempts int
}

func DefaultConfig() Config {
	return Config{
		ReadTimeout:  5 * time.Second,
		ReplyTimeout: 2 * time.Second,
		MaxAttempts:  20,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.ReplyTimeout <= 0 {
		c.ReplyTimeout = d.ReplyTimeout
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	return c
}
