// Package config handles loading and parsing of configuration from YAML files
// and environment variables. It defines the application configuration structure
// including server settings, circuit breaker thresholds and cool-down windows,
// metrics buffering, and the upstreams the guard proxy protects.
package config
