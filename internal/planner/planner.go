// Package planner compiles partial row updates into primitive write instructions.
// It classifies raw mutation tokens against a table's schema, validates them, and
// expands the result into an ordered instruction list the statement executor can
// serialize without further interpretation. The whole pipeline is pure: no I/O,
// no shared state, safe for concurrent use.
package planner

import (
	"fmt"

	"cql-rowpatch/internal/cqltype"
	"cql-rowpatch/internal/schema"
)

// Op identifies the abstract mutation operator derived from a request token.
type Op int

const (
	// OpAssign replaces a column's value wholesale.
	OpAssign Op = iota
	// OpDelete removes a column's value (nil assignment).
	OpDelete
	// OpSetAdd adds elements to a set column.
	OpSetAdd
	// OpSetRemove removes elements from a set column.
	OpSetRemove
	// OpListAppend appends elements at the tail of a list column.
	OpListAppend
	// OpListPrepend inserts elements at the head of a list column.
	OpListPrepend
	// OpMapMerge merges entries into a map column without touching unnamed keys.
	OpMapMerge
)

// String returns the operator suffix spelling used in mutation tokens.
func (o Op) String() string {
	switch o {
	case OpDelete:
		return "delete"
	case OpSetAdd:
		return "add"
	case OpSetRemove:
		return "remove"
	case OpListAppend:
		return "append"
	case OpListPrepend:
		return "prepend"
	case OpMapMerge:
		return "update"
	default:
		return "assign"
	}
}

// RawMutation is a classified but not yet validated mutation.
type RawMutation struct {
	Column *schema.Column
	Op     Op
	Value  interface{}
}

// MapEntry is a single key/value pair in a map merge. A nil Value marks the
// key for deletion.
type MapEntry struct {
	Key   interface{}
	Value interface{}
}

// Intent is a validated mutation with all values coerced to the column's
// declared types.
type Intent struct {
	Column *schema.Column
	Op     Op
	// Value carries the coerced scalar for OpAssign on scalar columns, or the
	// full replacement value for OpAssign on collection columns.
	Value interface{}
	// Elements carries coerced elements for set and list operators.
	Elements []interface{}
	// Entries carries coerced map-merge entries, sorted by key so planning
	// output is deterministic.
	Entries []MapEntry
}

// Action identifies a primitive write instruction.
type Action int

const (
	// ActionAssign writes a column value.
	ActionAssign Action = iota
	// ActionDeleteColumn removes a column value.
	ActionDeleteColumn
	// ActionCollectionAdd adds elements to a set.
	ActionCollectionAdd
	// ActionCollectionRemove removes elements from a set. Removing an absent
	// element is a storage-level no-op, never an error.
	ActionCollectionRemove
	// ActionListAppend appends elements at the tail of a list in caller order.
	ActionListAppend
	// ActionListPrepend records elements for head insertion in caller order.
	// Whether the storage layer materializes them reversed is an executor
	// capability, not something the planner compensates for.
	ActionListPrepend
	// ActionMapSet inserts or overwrites one map entry.
	ActionMapSet
	// ActionMapDeleteKey removes one map entry.
	ActionMapDeleteKey
)

// Instruction is a primitive write operation with no remaining ambiguity.
type Instruction struct {
	Column *schema.Column
	Action Action
	// Value holds the assigned value, the element slice for collection
	// actions, or the entry value for ActionMapSet.
	Value interface{}
	// MapKey is set for ActionMapSet and ActionMapDeleteKey.
	MapKey interface{}
}

// Compile runs the full pipeline: classify, validate, plan.
func Compile(table *schema.Table, mutations map[string]interface{}) ([]Instruction, error) {
	raw, err := Classify(table, mutations)
	if err != nil {
		return nil, err
	}
	intents, err := Validate(table, raw)
	if err != nil {
		return nil, err
	}
	return Plan(intents), nil
}

// RowKey is the ordered tuple of primary-key values addressing one logical row.
type RowKey struct {
	Columns []schema.Column
	Values  []interface{}
}

// NewRowKey builds a complete row key from named values. All primary-key
// segments must be supplied, no extras, and each value must coerce to its
// column's type.
func NewRowKey(table *schema.Table, values map[string]interface{}) (RowKey, error) {
	return newKey(table, table.PrimaryKeyColumns(), values, "primary key")
}

// NewPartitionKey builds a key covering only the partition segments, used to
// address a whole partition for range reads.
func NewPartitionKey(table *schema.Table, values map[string]interface{}) (RowKey, error) {
	return newKey(table, table.PartitionKeyColumns(), values, "partition key")
}

func newKey(table *schema.Table, cols []schema.Column, values map[string]interface{}, what string) (RowKey, error) {
	// All key segments must be present so the executor never builds a
	// partial WHERE clause.
	if len(values) != len(cols) {
		return RowKey{}, fmt.Errorf("table %q: %s values count (%d) does not match column count (%d)",
			table.Name, what, len(values), len(cols))
	}
	key := RowKey{Columns: cols, Values: make([]interface{}, len(cols))}
	for i, col := range cols {
		raw, ok := values[col.Name]
		if !ok {
			return RowKey{}, fmt.Errorf("table %q: missing %s column %q", table.Name, what, col.Name)
		}
		coerced, err := cqltype.Coerce(col.Type, raw)
		if err != nil || coerced == nil {
			return RowKey{}, fmt.Errorf("table %q: invalid value for %s column %q: %v", table.Name, what, col.Name, raw)
		}
		key.Values[i] = coerced
	}
	return key, nil
}
