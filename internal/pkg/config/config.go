// Package config reads runtime configuration.
//
// Values come from a YAML file and can be overridden by environment variables
// named after the key with an upper-case prefix, dots replaced by underscores
// (access.window_steps -> MINIAPPPASS_ACCESS_WINDOW_STEPS).
package config

import (
	"io"
	"time"
)

// Config defines the methods for retrieving typed configuration values.
//
// Missing keys and unconvertible values yield the zero value of the type
// unless a default was registered.
type Config interface {
	io.Closer

	GetBool(key string) bool
	GetInt(key string) int
	GetInt64(key string) int64
	GetString(key string) string

	// GetDuration parses Go duration strings such as "30s" or "72h".
	GetDuration(key string) time.Duration

	// GetBinary decodes a base64 value.
	GetBinary(key string) []byte

	// GetArray splits "a,b,c", dropping empty elements.
	GetArray(key string) []string

	// GetMap parses "k1:v1,k2:v2".
	GetMap(key string) map[string]string
}
