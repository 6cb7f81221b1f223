// Package config loads cluster and logging configuration from files, env vars,
// and flags, and validates it.
package config

import (
	"time"
)

// Config holds the application configuration.
type Config struct {
	Cluster ClusterConfig `mapstructure:"cluster"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ClusterConfig holds Cassandra cluster connection parameters.
type ClusterConfig struct {
	Hosts    []string `mapstructure:"hosts"`
	Port     int      `mapstructure:"port"`
	Keyspace string   `mapstructure:"keyspace"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	// PasswordFile is a path to a file containing the password (for secrets
	// management). Supports "@-" to read from stdin.
	PasswordFile string `mapstructure:"password_file"`
	// PasswordPrompt asks for the password interactively on startup.
	PasswordPrompt bool          `mapstructure:"password_prompt"`
	Timeout        time.Duration `mapstructure:"timeout"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	// PrependReversed declares the cluster's list-prepend convention: servers
	// older than Cassandra 2.1.3 materialize multi-element prepends in
	// reverse of caller order.
	PrependReversed bool `mapstructure:"prepend_reversed"`
}

// LoggingConfig holds logging parameters.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}
