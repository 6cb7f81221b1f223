package rowpatch

import (
	"fmt"
	"log/slog"

	gocql "github.com/apache/cassandra-gocql-driver/v2"

	"cql-rowpatch/internal/config"
	"cql-rowpatch/internal/dbexec"
	"cql-rowpatch/internal/logging"
	"cql-rowpatch/internal/observability"
	"cql-rowpatch/internal/schema"
)

// Session owns a cluster connection and hands out table handles bound to it.
type Session struct {
	session *gocql.Session
	exec    dbexec.Executor
	logger  *logging.Logger
}

// Connect validates the configuration and opens a session against the cluster.
func Connect(cfg *config.Config) (*Session, error) {
	if result := cfg.Validate(); result.HasErrors() {
		return nil, fmt.Errorf("invalid configuration: %s", result.Error())
	}

	logger := logging.NewLogger(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	cluster := gocql.NewCluster(cfg.Cluster.Hosts...)
	cluster.Port = cfg.Cluster.Port
	cluster.Keyspace = cfg.Cluster.Keyspace
	cluster.Timeout = cfg.Cluster.Timeout
	cluster.ConnectTimeout = cfg.Cluster.ConnectTimeout
	if cfg.Cluster.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.Cluster.Username,
			Password: cfg.Cluster.Password,
		}
	}

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to cluster: %w", err)
	}

	metrics, err := observability.InitPatchMetrics()
	if err != nil {
		logger.Warn("failed to initialize patch metrics", slog.String("error", err.Error()))
		metrics = nil
	}

	exec := dbexec.NewSessionExecutor(session,
		dbexec.Capabilities{PrependReversed: cfg.Cluster.PrependReversed},
		metrics)

	logger.Info("connected to cluster",
		"hosts", cfg.Cluster.Hosts,
		"keyspace", cfg.Cluster.Keyspace)

	return &Session{session: session, exec: exec, logger: logger}, nil
}

// Table returns a handle for the given table definition bound to this session.
func (s *Session) Table(spec *schema.Table) *Table {
	return NewTable(spec, s.exec, s.logger)
}

// Close shuts down the underlying cluster connection.
func (s *Session) Close() {
	s.session.Close()
}
