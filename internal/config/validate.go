package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error with context.
type ValidationError struct {
	Field   string
	Message string
	Hint    string
}

func (e ValidationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s (hint: %s)", e.Field, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Field   string
	Message string
	Hint    string
}

// ValidationResult contains the results of configuration validation.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Error returns a combined error message if there are validation errors.
func (r *ValidationResult) Error() string {
	if !r.HasErrors() {
		return ""
	}
	var msgs []string
	for _, e := range r.Errors {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration for errors and returns validation results.
// It returns both errors (fatal) and warnings (non-fatal issues).
func (c *Config) Validate() *ValidationResult {
	result := &ValidationResult{}

	if len(c.Cluster.Hosts) == 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "cluster.hosts",
			Message: "at least one contact point is required",
			Hint:    "set cluster.hosts or CQLRP_CLUSTER_HOSTS",
		})
	}
	for _, host := range c.Cluster.Hosts {
		if strings.TrimSpace(host) == "" {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "cluster.hosts",
				Message: "contact points cannot be blank",
			})
			break
		}
	}

	if c.Cluster.Port <= 0 || c.Cluster.Port > 65535 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "cluster.port",
			Message: fmt.Sprintf("invalid port %d", c.Cluster.Port),
			Hint:    "the Cassandra native protocol default is 9042",
		})
	}

	if c.Cluster.Keyspace == "" {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "cluster.keyspace",
			Message: "no default keyspace configured",
			Hint:    "table definitions must carry their own keyspace",
		})
	}

	if c.Cluster.Username != "" && c.Cluster.Password == "" && !c.Cluster.PasswordPrompt {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "cluster.password",
			Message: "username set without a password",
			Hint:    "set cluster.password, cluster.password_file, or cluster.password_prompt",
		})
	}

	if c.Cluster.Timeout < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "cluster.timeout",
			Message: "timeout cannot be negative",
		})
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		result.Errors = append(result.Errors, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("unknown log level %q", c.Logging.Level),
			Hint:    "use debug, info, warn, or error",
		})
	}

	switch c.Logging.Format {
	case "", "json", "text":
	default:
		result.Errors = append(result.Errors, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("unknown log format %q", c.Logging.Format),
			Hint:    "use json or text",
		})
	}

	return result
}
