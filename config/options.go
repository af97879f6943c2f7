package config

import "time"

var (
	PolishRequestTimeout  = 30 * time.Second
	PolishCommandTimeout  = 2 * time.Minute
	TagPackLoadTimeout    = 5 * time.Second
	ShutdownGracePeriod   = 3 * time.Second
	DefaultPolishCacheTTL = 6 * time.Hour
)
