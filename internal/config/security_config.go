package config

import (
	"golang.org/x/time/rate"
)

type SecurityConfig interface {
	GetLoginRateLimit() rate.Limit
	GetLoginRateBurst() int
	GetEnableRateLimiting() bool
}

type Security struct {
	loginRate  float64
	loginBurst int
	disabled   bool
}

var _ SecurityConfig = Security{}

func loadSecurity(lookup LookupFunc) Security {
	return Security{
		loginRate:  floatOr(lookup, "LOGIN_RATE_PER_SECOND", 1),
		loginBurst: intOr(lookup, "LOGIN_RATE_BURST", 5),
		disabled:   lookup("DISABLE_RATE_LIMITING") == "true",
	}
}

// GetLoginRateLimit is the sustained number of login attempts allowed per client IP per second.
func (s Security) GetLoginRateLimit() rate.Limit {
	return rate.Limit(s.loginRate)
}

func (s Security) GetLoginRateBurst() int {
	return s.loginBurst
}

func (s Security) GetEnableRateLimiting() bool {
	return !s.disabled
}
