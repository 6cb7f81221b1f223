// Package dbexec provides statement execution for planned row patches.
// The planner's output contract ends at the Executor interface: an ordered
// instruction list plus a row key. Serialization into CQL and everything
// network-shaped lives behind it.
package dbexec

import (
	"context"

	"cql-rowpatch/internal/planner"
	"cql-rowpatch/internal/schema"
)

// Capabilities describes storage-layer conventions the caller may need to
// account for when reading back written data.
type Capabilities struct {
	// PrependReversed reports whether the storage layer materializes a
	// multi-element list prepend in reverse of caller order. Older Cassandra
	// releases did; modern servers preserve caller order. The planner always
	// records caller order either way.
	PrependReversed bool
}

// Executor applies planned writes and serves row reads. Implementations must
// apply one patch as a single atomic statement per row key, and must treat an
// update on an absent row as an upsert that creates it. Storage failures pass
// through unwrapped.
type Executor interface {
	// ApplyPatch applies every instruction for one row atomically.
	ApplyPatch(ctx context.Context, table *schema.Table, key planner.RowKey, instructions []planner.Instruction) error
	// InsertRow writes a freshly created row.
	InsertRow(ctx context.Context, table *schema.Table, columns []string, values []interface{}) error
	// FetchRow reads one row by full primary key. The second return reports
	// whether the row exists.
	FetchRow(ctx context.Context, table *schema.Table, key planner.RowKey) (map[string]interface{}, bool, error)
	// FetchPartition reads all rows of one partition in clustering order.
	FetchPartition(ctx context.Context, table *schema.Table, key planner.RowKey) ([]map[string]interface{}, error)
	// DeleteRow removes one whole row.
	DeleteRow(ctx context.Context, table *schema.Table, key planner.RowKey) error
	// Capabilities reports the storage layer's conventions.
	Capabilities() Capabilities
}
