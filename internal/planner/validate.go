package planner

import (
	"fmt"
	"reflect"
	"sort"

	"cql-rowpatch/internal/cqltype"
	"cql-rowpatch/internal/schema"
)

// Validate enforces the mutation rules over classified mutations and coerces
// every value to its column's declared type. It fails on the first violation;
// nothing reaches the planner unless the whole batch is valid.
func Validate(table *schema.Table, raw []RawMutation) ([]Intent, error) {
	intents := make([]Intent, 0, len(raw))
	for _, m := range raw {
		if m.Column == nil {
			// The classifier resolves every token; a nil column here means a
			// caller bypassed it.
			return nil, ValidationError{Reason: "mutation has no resolved column"}
		}
		if m.Column.IsPrimaryKey() {
			return nil, ImmutableKeyError{Column: m.Column.Name}
		}

		intent, err := validateOne(m)
		if err != nil {
			return nil, err
		}
		intents = append(intents, intent)
	}
	return intents, nil
}

func validateOne(m RawMutation) (Intent, error) {
	col := m.Column
	intent := Intent{Column: col, Op: m.Op}

	switch m.Op {
	case OpDelete:
		return intent, nil

	case OpAssign:
		value, err := CoerceColumnValue(col, m.Value)
		if err != nil {
			return Intent{}, err
		}
		intent.Value = value
		return intent, nil

	case OpSetAdd, OpSetRemove:
		if col.Kind != schema.KindSet {
			return Intent{}, TypeMismatchError{Column: col.Name, Op: m.Op, Kind: col.Kind}
		}
		elems, err := coerceElements(col, m.Value)
		if err != nil {
			return Intent{}, err
		}
		intent.Elements = elems
		return intent, nil

	case OpListAppend, OpListPrepend:
		if col.Kind != schema.KindList {
			return Intent{}, TypeMismatchError{Column: col.Name, Op: m.Op, Kind: col.Kind}
		}
		elems, err := coerceElements(col, m.Value)
		if err != nil {
			return Intent{}, err
		}
		intent.Elements = elems
		return intent, nil

	case OpMapMerge:
		if col.Kind != schema.KindMap {
			return Intent{}, TypeMismatchError{Column: col.Name, Op: m.Op, Kind: col.Kind}
		}
		entries, err := coerceEntries(col, m.Value, true)
		if err != nil {
			return Intent{}, err
		}
		intent.Entries = entries
		return intent, nil

	default:
		return Intent{}, ValidationError{Column: col.Name, Value: m.Value, Reason: fmt.Sprintf("unsupported operator %q", m.Op)}
	}
}

// CoerceColumnValue coerces a full column assignment to the column's declared
// shape: the scalar type for scalar columns, a coerced element slice for sets
// and lists, and a coerced map for map columns. Row creation uses it too.
func CoerceColumnValue(col *schema.Column, value interface{}) (interface{}, error) {
	switch col.Kind {
	case schema.KindSet, schema.KindList:
		elems, err := coerceElements(col, value)
		if err != nil {
			return nil, err
		}
		return elems, nil
	case schema.KindMap:
		entries, err := coerceEntries(col, value, false)
		if err != nil {
			return nil, err
		}
		// A full assignment carries the replacement value itself, not a
		// per-entry delta.
		replacement := make(map[interface{}]interface{}, len(entries))
		for _, entry := range entries {
			replacement[entry.Key] = entry.Value
		}
		return replacement, nil
	default:
		coerced, err := cqltype.Coerce(col.Type, value)
		if err != nil {
			return nil, ValidationError{Column: col.Name, Value: value, Reason: err.Error()}
		}
		return coerced, nil
	}
}

// coerceElements normalizes a set or list payload to a []interface{} with every
// element coerced to the column's element type. Caller-supplied element order
// is preserved.
func coerceElements(col *schema.Column, value interface{}) ([]interface{}, error) {
	if value == nil {
		return nil, ValidationError{Column: col.Name, Reason: "collection elements cannot be nil"}
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, ValidationError{Column: col.Name, Value: value, Reason: fmt.Sprintf("%s elements must be a slice, got %T", col.Kind, value)}
	}

	elems := make([]interface{}, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		elem, err := cqltype.Coerce(col.Type, rv.Index(i).Interface())
		if err != nil {
			return nil, ValidationError{Column: col.Name, Value: rv.Index(i).Interface(), Reason: err.Error()}
		}
		if elem == nil {
			return nil, ValidationError{Column: col.Name, Reason: "collection elements cannot be nil"}
		}
		elems[i] = elem
	}
	return elems, nil
}

// coerceEntries normalizes a map payload. When nilDeletes is true a nil entry
// value is legal and marks its key for deletion; otherwise nil values are
// rejected. Entries are sorted by key so planning output is deterministic.
func coerceEntries(col *schema.Column, value interface{}, nilDeletes bool) ([]MapEntry, error) {
	if value == nil {
		return nil, ValidationError{Column: col.Name, Reason: "map entries cannot be nil"}
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map {
		return nil, ValidationError{Column: col.Name, Value: value, Reason: fmt.Sprintf("map entries must be a map, got %T", value)}
	}

	entries := make([]MapEntry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		key, err := cqltype.Coerce(col.KeyType, iter.Key().Interface())
		if err != nil || key == nil {
			return nil, ValidationError{Column: col.Name, Value: iter.Key().Interface(), Reason: "invalid map key"}
		}

		rawVal := iter.Value().Interface()
		if rawVal == nil {
			if !nilDeletes {
				return nil, ValidationError{Column: col.Name, Reason: "map values cannot be nil in a full assignment"}
			}
			entries = append(entries, MapEntry{Key: key})
			continue
		}
		val, err := cqltype.Coerce(col.Type, rawVal)
		if err != nil {
			return nil, ValidationError{Column: col.Name, Value: rawVal, Reason: err.Error()}
		}
		entries = append(entries, MapEntry{Key: key, Value: val})
	}

	sort.Slice(entries, func(i, j int) bool {
		return fmt.Sprint(entries[i].Key) < fmt.Sprint(entries[j].Key)
	})
	return entries, nil
}
