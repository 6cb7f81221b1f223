// Package rowpatch is a partial-update front end for row-oriented,
// column-family tables. Given a row address (partition key plus clustering
// keys) and a set of named field mutations, it compiles the minimal write
// statement achieving the requested effect, including non-overwriting delta
// mutations on set, list, and map columns, and hands it to a statement
// executor.
//
// Mutation tokens follow the column__operator convention: a bare column name
// assigns (or deletes, when the value is nil), while suffixed tokens request
// collection deltas: tags__add, tags__remove, events__append, events__prepend,
// attrs__update.
package rowpatch

import (
	"context"
	"log/slog"

	"cql-rowpatch/internal/dbexec"
	"cql-rowpatch/internal/logging"
	"cql-rowpatch/internal/planner"
	"cql-rowpatch/internal/schema"
)

// Row is a fetched row keyed by column name. Absent columns read as nil.
type Row map[string]interface{}

// Table binds a table definition to an executor.
type Table struct {
	spec   *schema.Table
	exec   dbexec.Executor
	logger *logging.Logger
}

// NewTable builds a table handle. A nil logger defers to whatever logger each
// call's context carries (see logging.WithLogger).
func NewTable(spec *schema.Table, exec dbexec.Executor, logger *logging.Logger) *Table {
	if logger != nil {
		logger = logger.WithFields(slog.String("table", spec.Name))
	}
	return &Table{spec: spec, exec: exec, logger: logger}
}

func (t *Table) log(ctx context.Context) *logging.Logger {
	if t.logger != nil {
		return t.logger
	}
	return logging.FromContext(ctx).WithFields(slog.String("table", t.spec.Name))
}

// Spec returns the table definition.
func (t *Table) Spec() *schema.Table {
	return t.spec
}

// Capabilities reports the bound executor's storage conventions.
func (t *Table) Capabilities() dbexec.Capabilities {
	return t.exec.Capabilities()
}

// Update applies the given mutations to the row addressed by key. The row is
// created if absent (storage-layer upsert). Mutations are validated in full
// before anything is written; an empty mutation set is a no-op. Executor
// failures propagate unchanged.
func (t *Table) Update(ctx context.Context, key map[string]interface{}, mutations map[string]interface{}) error {
	rowKey, err := planner.NewRowKey(t.spec, key)
	if err != nil {
		return err
	}
	instructions, err := planner.Compile(t.spec, mutations)
	if err != nil {
		return err
	}
	if len(instructions) == 0 {
		return nil
	}

	t.log(ctx).DebugContext(ctx, "applying row patch",
		slog.Int("instructions", len(instructions)))
	return t.exec.ApplyPatch(ctx, t.spec, rowKey, instructions)
}

// Create writes a new row. Column defaults fill unsupplied values, required
// columns must end up non-nil, and every value must fit its column's declared
// type. Like any write, creation is an upsert at the storage layer.
func (t *Table) Create(ctx context.Context, values map[string]interface{}) error {
	for name := range values {
		if _, ok := t.spec.ColumnByName(name); !ok {
			return planner.UnknownColumnError{Table: t.spec.Name, Column: name}
		}
	}

	var columns []string
	var bound []interface{}
	for _, col := range t.spec.Columns {
		value, supplied := values[col.Name]
		if (!supplied || value == nil) && col.HasDefault {
			value = col.Default()
			supplied = true
		}
		if !supplied || value == nil {
			if col.Required || col.IsPrimaryKey() {
				return planner.ValidationError{Column: col.Name, Reason: "required column has no value"}
			}
			continue
		}
		coerced, err := planner.CoerceColumnValue(&col, value)
		if err != nil {
			return err
		}
		columns = append(columns, col.Name)
		bound = append(bound, coerced)
	}

	t.log(ctx).DebugContext(ctx, "creating row",
		slog.Int("columns", len(columns)))
	return t.exec.InsertRow(ctx, t.spec, columns, bound)
}

// Get fetches one row by full primary key. The second return reports whether
// the row exists.
func (t *Table) Get(ctx context.Context, key map[string]interface{}) (Row, bool, error) {
	rowKey, err := planner.NewRowKey(t.spec, key)
	if err != nil {
		return nil, false, err
	}
	row, found, err := t.exec.FetchRow(ctx, t.spec, rowKey)
	if err != nil || !found {
		return nil, found, err
	}
	return Row(row), true, nil
}

// List fetches all rows of one partition in clustering order.
func (t *Table) List(ctx context.Context, partitionKey map[string]interface{}) ([]Row, error) {
	key, err := planner.NewPartitionKey(t.spec, partitionKey)
	if err != nil {
		return nil, err
	}
	fetched, err := t.exec.FetchPartition(ctx, t.spec, key)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, len(fetched))
	for i, row := range fetched {
		rows[i] = Row(row)
	}
	return rows, nil
}

// Delete removes one whole row by full primary key.
func (t *Table) Delete(ctx context.Context, key map[string]interface{}) error {
	rowKey, err := planner.NewRowKey(t.spec, key)
	if err != nil {
		return err
	}
	return t.exec.DeleteRow(ctx, t.spec, rowKey)
}
