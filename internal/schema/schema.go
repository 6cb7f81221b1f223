// Package schema describes the static per-table metadata the mutation pipeline
// consumes: column names, primary-key roles, value kinds, and default policies.
// A Table is constructed once per entity type and passed by reference; it is
// never mutated after construction.
package schema

import (
	"fmt"

	"cql-rowpatch/internal/cqltype"
)

// Kind categorizes a column's value shape.
type Kind int

const (
	// KindScalar is a single typed value.
	KindScalar Kind = iota
	// KindSet is an unordered collection of unique elements.
	KindSet
	// KindList is an ordered collection of elements.
	KindList
	// KindMap is a keyed collection of entries.
	KindMap
)

// String returns the kind name as used in error messages.
func (k Kind) String() string {
	switch k {
	case KindSet:
		return "set"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "scalar"
	}
}

// Column represents a table column.
type Column struct {
	Name string
	Kind Kind
	// Type is the scalar type for KindScalar columns, the element type for
	// sets and lists, and the entry value type for maps.
	Type cqltype.Type
	// KeyType is the map key type. Only meaningful for KindMap columns.
	KeyType cqltype.Type
	// IsPartitionKey and IsClusteringKey mark primary-key segments. Segment
	// order follows column declaration order within the table.
	IsPartitionKey  bool
	IsClusteringKey bool
	Required        bool
	HasDefault      bool
	// Default produces the column's default value at row-creation time.
	// Only consulted when HasDefault is true.
	Default func() interface{}
}

// IsPrimaryKey reports whether the column is part of the primary key.
func (c *Column) IsPrimaryKey() bool {
	return c.IsPartitionKey || c.IsClusteringKey
}

// Table represents a table definition.
type Table struct {
	Keyspace string
	Name     string
	// Columns in declaration order: partition-key segments first, then
	// clustering-key segments, then value columns.
	Columns []Column

	byName map[string]int
}

// NewTable validates a table definition and builds its lookup index.
func NewTable(keyspace, name string, columns []Column) (*Table, error) {
	if name == "" {
		return nil, fmt.Errorf("table name cannot be empty")
	}

	byName := make(map[string]int, len(columns))
	partitionSegments := 0
	for i, col := range columns {
		if col.Name == "" {
			return nil, fmt.Errorf("table %q: column %d has no name", name, i)
		}
		if _, dup := byName[col.Name]; dup {
			return nil, fmt.Errorf("table %q: duplicate column %q", name, col.Name)
		}
		if col.IsPartitionKey && col.IsClusteringKey {
			return nil, fmt.Errorf("table %q: column %q cannot be both partition and clustering key", name, col.Name)
		}
		if col.IsPrimaryKey() && col.Kind != KindScalar {
			return nil, fmt.Errorf("table %q: primary key column %q must be scalar, got %s", name, col.Name, col.Kind)
		}
		if col.HasDefault && col.Default == nil {
			return nil, fmt.Errorf("table %q: column %q declares a default but provides no generator", name, col.Name)
		}
		if col.IsPartitionKey {
			partitionSegments++
		}
		byName[col.Name] = i
	}
	if partitionSegments == 0 {
		return nil, fmt.Errorf("table %q has no partition key column", name)
	}

	return &Table{
		Keyspace: keyspace,
		Name:     name,
		Columns:  columns,
		byName:   byName,
	}, nil
}

// MustTable is NewTable for statically-known definitions; it panics on error.
func MustTable(keyspace, name string, columns []Column) *Table {
	table, err := NewTable(keyspace, name, columns)
	if err != nil {
		panic(err)
	}
	return table
}

// ColumnByName returns the named column, if present.
func (t *Table) ColumnByName(name string) (*Column, bool) {
	idx, ok := t.byName[name]
	if !ok {
		return nil, false
	}
	return &t.Columns[idx], true
}
