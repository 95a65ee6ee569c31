package config

import "time"

const (
	DefaultMaxWorkers     = 20
	DefaultMaxAttempts    = 10
	DefaultAttemptTimeout = 30 * time.Second
	DefaultBackoffBase    = time.Second
	DefaultUserAgent      = "podarc/1.0"
	DefaultOutputPath     = "rss.xml"
	DefaultMediaPrefix    = "episode"
)
