package ratelimiter

import "time"

// Limiter answers whether a client may proceed and, if not, how long until
// the window resets.
type Limiter interface {
	Allow(ip string) (bool, time.Duration)
}

type Config struct {
	RequestsPerTimeFrame int
	TimeFrame            time.Duration
	Enabled              bool
}
