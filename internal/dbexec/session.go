package dbexec

import (
	"context"
	"time"

	gocql "github.com/apache/cassandra-gocql-driver/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"cql-rowpatch/internal/cqlbuild"
	"cql-rowpatch/internal/observability"
	"cql-rowpatch/internal/planner"
	"cql-rowpatch/internal/schema"
)

// SessionExecutor executes planned writes against a Cassandra cluster through
// a gocql session. Statement serialization happens in cqlbuild; driver errors
// are returned to the caller unwrapped.
type SessionExecutor struct {
	session *gocql.Session
	caps    Capabilities
	metrics *observability.PatchMetrics
	tracer  trace.Tracer
}

// NewSessionExecutor wraps an existing gocql session. Metrics may be nil.
func NewSessionExecutor(session *gocql.Session, caps Capabilities, metrics *observability.PatchMetrics) *SessionExecutor {
	return &SessionExecutor{
		session: session,
		caps:    caps,
		metrics: metrics,
		tracer:  otel.Tracer("cql-rowpatch"),
	}
}

// Capabilities reports the cluster's list-prepend convention as configured.
func (e *SessionExecutor) Capabilities() Capabilities {
	return e.caps
}

func (e *SessionExecutor) ApplyPatch(ctx context.Context, table *schema.Table, key planner.RowKey, instructions []planner.Instruction) error {
	stmt, err := cqlbuild.BuildUpdate(table, key, instructions)
	if err != nil {
		return err
	}

	ctx, span := e.tracer.Start(ctx, "dbexec.ApplyPatch", trace.WithAttributes(
		attribute.String("db.table", table.Name),
		attribute.Int("db.instructions", len(instructions)),
	))
	defer span.End()

	start := time.Now()
	err = e.session.Query(stmt.CQL, stmt.Args...).WithContext(ctx).Exec()
	e.metrics.RecordPatch(ctx, table.Name, len(instructions), time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "patch statement failed")
	}
	return err
}

func (e *SessionExecutor) InsertRow(ctx context.Context, table *schema.Table, columns []string, values []interface{}) error {
	stmt, err := cqlbuild.BuildInsert(table, columns, values)
	if err != nil {
		return err
	}

	ctx, span := e.tracer.Start(ctx, "dbexec.InsertRow", trace.WithAttributes(
		attribute.String("db.table", table.Name),
	))
	defer span.End()

	err = e.session.Query(stmt.CQL, stmt.Args...).WithContext(ctx).Exec()
	e.metrics.RecordStatement(ctx, table.Name, "insert", err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert statement failed")
	}
	return err
}

func (e *SessionExecutor) FetchRow(ctx context.Context, table *schema.Table, key planner.RowKey) (map[string]interface{}, bool, error) {
	stmt, err := cqlbuild.BuildSelect(table, key)
	if err != nil {
		return nil, false, err
	}

	ctx, span := e.tracer.Start(ctx, "dbexec.FetchRow", trace.WithAttributes(
		attribute.String("db.table", table.Name),
	))
	defer span.End()

	iter := e.session.Query(stmt.CQL, stmt.Args...).WithContext(ctx).Iter()
	row := map[string]interface{}{}
	found := iter.MapScan(row)
	err = iter.Close()
	e.metrics.RecordStatement(ctx, table.Name, "select", err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select statement failed")
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}
	return row, true, nil
}

func (e *SessionExecutor) FetchPartition(ctx context.Context, table *schema.Table, key planner.RowKey) ([]map[string]interface{}, error) {
	stmt, err := cqlbuild.BuildSelect(table, key)
	if err != nil {
		return nil, err
	}

	ctx, span := e.tracer.Start(ctx, "dbexec.FetchPartition", trace.WithAttributes(
		attribute.String("db.table", table.Name),
	))
	defer span.End()

	iter := e.session.Query(stmt.CQL, stmt.Args...).WithContext(ctx).Iter()
	var rows []map[string]interface{}
	for {
		row := map[string]interface{}{}
		if !iter.MapScan(row) {
			break
		}
		rows = append(rows, row)
	}
	err = iter.Close()
	e.metrics.RecordStatement(ctx, table.Name, "select", err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select statement failed")
		return nil, err
	}
	return rows, nil
}

func (e *SessionExecutor) DeleteRow(ctx context.Context, table *schema.Table, key planner.RowKey) error {
	stmt, err := cqlbuild.BuildDeleteRow(table, key)
	if err != nil {
		return err
	}

	ctx, span := e.tracer.Start(ctx, "dbexec.DeleteRow", trace.WithAttributes(
		attribute.String("db.table", table.Name),
	))
	defer span.End()

	err = e.session.Query(stmt.CQL, stmt.Args...).WithContext(ctx).Exec()
	e.metrics.RecordStatement(ctx, table.Name, "delete", err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete statement failed")
	}
	return err
}
