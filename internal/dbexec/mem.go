package dbexec

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"cql-rowpatch/internal/planner"
	"cql-rowpatch/internal/schema"
)

// MemExecutor is an in-memory Executor with Cassandra write semantics: patches
// upsert absent rows, collection deltas apply without reading the prior value,
// and collections emptied by removal read back as absent. It backs tests and
// local development without a cluster.
type MemExecutor struct {
	mu         sync.RWMutex
	caps       Capabilities
	partitions map[string][]*memRow
}

type memRow struct {
	clustering []interface{}
	values     map[string]interface{}
}

// NewMemExecutor creates an empty in-memory executor.
func NewMemExecutor(caps Capabilities) *MemExecutor {
	return &MemExecutor{
		caps:       caps,
		partitions: make(map[string][]*memRow),
	}
}

// Capabilities reports the configured list-prepend convention.
func (e *MemExecutor) Capabilities() Capabilities {
	return e.caps
}

func (e *MemExecutor) ApplyPatch(ctx context.Context, table *schema.Table, key planner.RowKey, instructions []planner.Instruction) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	row := e.upsertRow(table, key)
	for _, instr := range instructions {
		applyInstruction(row, instr, e.caps)
	}
	return nil
}

func (e *MemExecutor) InsertRow(ctx context.Context, table *schema.Table, columns []string, values []interface{}) error {
	named := make(map[string]interface{}, len(columns))
	for i, col := range columns {
		named[col] = values[i]
	}
	key, err := planner.NewRowKey(table, keySubset(table, named))
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	row := e.upsertRow(table, key)
	for name, value := range named {
		if value == nil {
			continue
		}
		col, ok := table.ColumnByName(name)
		if !ok || col.IsPrimaryKey() {
			continue
		}
		row.values[name] = normalizeStored(col, value)
	}
	return nil
}

func (e *MemExecutor) FetchRow(ctx context.Context, table *schema.Table, key planner.RowKey) (map[string]interface{}, bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	rows := e.partitions[partitionID(table, key)]
	clustering := clusteringValues(key)
	for _, row := range rows {
		if reflect.DeepEqual(row.clustering, clustering) {
			return copyRow(row.values), true, nil
		}
	}
	return nil, false, nil
}

func (e *MemExecutor) FetchPartition(ctx context.Context, table *schema.Table, key planner.RowKey) ([]map[string]interface{}, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	rows := e.partitions[partitionID(table, key)]
	out := make([]map[string]interface{}, len(rows))
	for i, row := range rows {
		out[i] = copyRow(row.values)
	}
	return out, nil
}

func (e *MemExecutor) DeleteRow(ctx context.Context, table *schema.Table, key planner.RowKey) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := partitionID(table, key)
	rows := e.partitions[id]
	clustering := clusteringValues(key)
	for i, row := range rows {
		if reflect.DeepEqual(row.clustering, clustering) {
			e.partitions[id] = append(rows[:i], rows[i+1:]...)
			return nil
		}
	}
	return nil
}

// upsertRow finds the addressed row, creating it with its key column values
// when absent. Rows within a partition stay sorted by clustering key.
func (e *MemExecutor) upsertRow(table *schema.Table, key planner.RowKey) *memRow {
	id := partitionID(table, key)
	clustering := clusteringValues(key)
	rows := e.partitions[id]
	for _, row := range rows {
		if reflect.DeepEqual(row.clustering, clustering) {
			return row
		}
	}

	row := &memRow{clustering: clustering, values: map[string]interface{}{}}
	for i, col := range key.Columns {
		row.values[col.Name] = key.Values[i]
	}
	idx := sort.Search(len(rows), func(i int) bool {
		return compareTuples(rows[i].clustering, clustering) >= 0
	})
	rows = append(rows, nil)
	copy(rows[idx+1:], rows[idx:])
	rows[idx] = row
	e.partitions[id] = rows
	return row
}

func applyInstruction(row *memRow, instr planner.Instruction, caps Capabilities) {
	name := instr.Column.Name
	switch instr.Action {
	case planner.ActionAssign:
		row.values[name] = normalizeStored(instr.Column, instr.Value)
	case planner.ActionDeleteColumn:
		delete(row.values, name)
	case planner.ActionCollectionAdd:
		current, _ := row.values[name].([]interface{})
		merged := append(append([]interface{}{}, current...), instr.Value.([]interface{})...)
		row.values[name] = sortedSet(merged)
	case planner.ActionCollectionRemove:
		current, _ := row.values[name].([]interface{})
		removed := make(map[string]bool)
		for _, elem := range instr.Value.([]interface{}) {
			removed[fmt.Sprint(elem)] = true
		}
		var kept []interface{}
		for _, elem := range current {
			if !removed[fmt.Sprint(elem)] {
				kept = append(kept, elem)
			}
		}
		setOrClear(row, name, kept)
	case planner.ActionListAppend:
		current, _ := row.values[name].([]interface{})
		row.values[name] = append(append([]interface{}{}, current...), instr.Value.([]interface{})...)
	case planner.ActionListPrepend:
		current, _ := row.values[name].([]interface{})
		head := append([]interface{}{}, instr.Value.([]interface{})...)
		if caps.PrependReversed {
			for i, j := 0, len(head)-1; i < j; i, j = i+1, j-1 {
				head[i], head[j] = head[j], head[i]
			}
		}
		row.values[name] = append(head, current...)
	case planner.ActionMapSet:
		current, _ := row.values[name].(map[interface{}]interface{})
		if current == nil {
			current = map[interface{}]interface{}{}
			row.values[name] = current
		}
		current[instr.MapKey] = instr.Value
	case planner.ActionMapDeleteKey:
		current, _ := row.values[name].(map[interface{}]interface{})
		delete(current, instr.MapKey)
		if len(current) == 0 {
			delete(row.values, name)
		}
	}
}

// setOrClear stores a collection value, dropping the column entirely when the
// collection is empty: an empty collection reads back as absent.
func setOrClear(row *memRow, name string, value []interface{}) {
	if len(value) == 0 {
		delete(row.values, name)
		return
	}
	row.values[name] = value
}

// normalizeStored canonicalizes a full collection assignment: sets are
// deduplicated and sorted, lists and maps are copied.
func normalizeStored(col *schema.Column, value interface{}) interface{} {
	switch col.Kind {
	case schema.KindSet:
		return sortedSet(value.([]interface{}))
	case schema.KindList:
		return append([]interface{}{}, value.([]interface{})...)
	case schema.KindMap:
		out := map[interface{}]interface{}{}
		for k, v := range value.(map[interface{}]interface{}) {
			out[k] = v
		}
		return out
	default:
		return value
	}
}

func sortedSet(elems []interface{}) []interface{} {
	seen := make(map[string]bool, len(elems))
	var out []interface{}
	for _, elem := range elems {
		id := fmt.Sprint(elem)
		if !seen[id] {
			seen[id] = true
			out = append(out, elem)
		}
	}
	sort.Slice(out, func(i, j int) bool { return compareValues(out[i], out[j]) < 0 })
	return out
}

func keySubset(table *schema.Table, named map[string]interface{}) map[string]interface{} {
	subset := make(map[string]interface{})
	for _, col := range table.PrimaryKeyColumns() {
		if v, ok := named[col.Name]; ok {
			subset[col.Name] = v
		}
	}
	return subset
}

func partitionID(table *schema.Table, key planner.RowKey) string {
	var sb strings.Builder
	sb.WriteString(table.Keyspace)
	sb.WriteByte('/')
	sb.WriteString(table.Name)
	for i, col := range key.Columns {
		if col.IsPartitionKey {
			fmt.Fprintf(&sb, "/%v", key.Values[i])
		}
	}
	return sb.String()
}

func clusteringValues(key planner.RowKey) []interface{} {
	var vals []interface{}
	for i, col := range key.Columns {
		if col.IsClusteringKey {
			vals = append(vals, key.Values[i])
		}
	}
	return vals
}

func copyRow(values map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(values))
	for name, value := range values {
		switch v := value.(type) {
		case []interface{}:
			out[name] = append([]interface{}{}, v...)
		case map[interface{}]interface{}:
			m := make(map[interface{}]interface{}, len(v))
			for k, val := range v {
				m[k] = val
			}
			out[name] = m
		default:
			out[name] = value
		}
	}
	return out
}

func compareTuples(a, b []interface{}) int {
	for i := range a {
		if i >= len(b) {
			return 1
		}
		if c := compareValues(a[i], b[i]); c != 0 {
			return c
		}
	}
	if len(a) < len(b) {
		return -1
	}
	return 0
}

func compareValues(a, b interface{}) int {
	switch av := a.(type) {
	case int:
		if bv, ok := b.(int); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case int64:
		if bv, ok := b.(int64); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case float64:
		if bv, ok := b.(float64); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	case uuid.UUID:
		if bv, ok := b.(uuid.UUID); ok {
			return bytes.Compare(av[:], bv[:])
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
