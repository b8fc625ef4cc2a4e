// Package env reads the handful of variables the platform injects at run
// time, outside the typed config: the listen PORT, the instance name, and
// the log format toggle. Everything else goes through pkg/config.
package env

import "os"

// Get returns the value of the given environment variable, or the fallback
// when it is unset or empty.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// Instance names the running process for log correlation. Hosted dynos get
// their platform name, everything else the fallback.
func Instance(fallback string) string {
	return Get("DYNO", fallback)
}
