package server

import "time"

// Engine defaults used when the host does not override them.
const (
	DefaultReadHeaderTimeout    = 30 * time.Second
	DefaultIdleTimeout          = 2 * time.Minute
	DefaultShutdownTimeout      = 5 * time.Second
	DefaultMaxConcurrentStreams = 250
)

// Config tunes the listeners. It is not part of the host configuration
// file; the composer fills ServiceName and Version.
type Config struct {
	ReadHeaderTimeout    time.Duration
	IdleTimeout          time.Duration
	ShutdownTimeout      time.Duration
	MaxConcurrentStreams uint32 // per HTTP/2 connection

	ServiceName string
	Version     string
}

// ApplyDefaults replaces zero and negative durations with the defaults.
func (c *Config) ApplyDefaults() {
	orDefault := func(d *time.Duration, def time.Duration) {
		if *d <= 0 {
			*d = def
		}
	}
	orDefault(&c.ReadHeaderTimeout, DefaultReadHeaderTimeout)
	orDefault(&c.IdleTimeout, DefaultIdleTimeout)
	orDefault(&c.ShutdownTimeout, DefaultShutdownTimeout)
	if c.MaxConcurrentStreams == 0 {
		c.MaxConcurrentStreams = DefaultMaxConcurrentStreams
	}
}
