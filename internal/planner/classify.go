package planner

import (
	"sort"
	"strings"

	"cql-rowpatch/internal/schema"
)

// operatorSeparator splits a mutation token into column name and operator suffix.
const operatorSeparator = "__"

var operatorSuffixes = map[string]Op{
	"add":     OpSetAdd,
	"remove":  OpSetRemove,
	"append":  OpListAppend,
	"prepend": OpListPrepend,
	"update":  OpMapMerge,
}

// Classify resolves raw mutation tokens against the table's schema. A bare
// column name becomes an assign, or a delete when its value is nil. A token of
// the form column__operator becomes the named collection operator.
//
// Column names may themselves contain the separator, so the whole token is
// tried as a column name before splitting off a suffix. Output order follows
// schema declaration order, with operators on the same column in a fixed
// order, so downstream planning is deterministic regardless of map iteration.
func Classify(table *schema.Table, mutations map[string]interface{}) ([]RawMutation, error) {
	raw := make([]RawMutation, 0, len(mutations))
	order := make(map[*schema.Column]int, len(mutations))
	for i := range table.Columns {
		order[&table.Columns[i]] = i
	}

	for token, value := range mutations {
		col, op, err := resolveToken(table, token, value)
		if err != nil {
			return nil, err
		}
		raw = append(raw, RawMutation{Column: col, Op: op, Value: value})
	}

	sort.SliceStable(raw, func(i, j int) bool {
		if raw[i].Column != raw[j].Column {
			return order[raw[i].Column] < order[raw[j].Column]
		}
		return raw[i].Op < raw[j].Op
	})
	return raw, nil
}

func resolveToken(table *schema.Table, token string, value interface{}) (*schema.Column, Op, error) {
	if col, ok := table.ColumnByName(token); ok {
		if value == nil {
			return col, OpDelete, nil
		}
		return col, OpAssign, nil
	}

	idx := strings.LastIndex(token, operatorSeparator)
	if idx <= 0 {
		return nil, 0, UnknownColumnError{Table: table.Name, Column: token}
	}

	name, suffix := token[:idx], token[idx+len(operatorSeparator):]
	col, ok := table.ColumnByName(name)
	if !ok {
		return nil, 0, UnknownColumnError{Table: table.Name, Column: token}
	}
	op, ok := operatorSuffixes[suffix]
	if !ok {
		return nil, 0, UnknownOperatorError{Column: name, Operator: suffix}
	}
	return col, op, nil
}
