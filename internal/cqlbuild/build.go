// Package cqlbuild serializes planned write instructions into parameterized CQL
// statements. It is the executor's half of the output contract: the planner
// hands over instructions plus a row key, and everything protocol-shaped
// happens here.
package cqlbuild

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"cql-rowpatch/internal/cqlutil"
	"cql-rowpatch/internal/planner"
	"cql-rowpatch/internal/schema"
)

// Statement represents a planned CQL statement with bound args.
type Statement struct {
	CQL  string
	Args []interface{}
}

// BuildUpdate serializes an instruction list into a single UPDATE statement
// covering every instruction for one row, so the write applies atomically.
// Collection deltas use CQL's append/remove syntax; column and map-key deletes
// ride along as null assignments so no second statement is needed.
//
// The assignment list is built by hand: squirrel's UPDATE builder cannot
// express self-referencing set clauses ("c" = "c" + ?) or indexed map
// assignments ("c"[?] = ?) with correctly ordered placeholders.
func BuildUpdate(table *schema.Table, key planner.RowKey, instructions []planner.Instruction) (Statement, error) {
	if len(instructions) == 0 {
		return Statement{}, fmt.Errorf("update instruction list cannot be empty")
	}

	var assignments []string
	var args []interface{}
	for _, instr := range instructions {
		col := cqlutil.QuoteIdentifier(instr.Column.Name)
		switch instr.Action {
		case planner.ActionAssign:
			assignments = append(assignments, col+" = ?")
			args = append(args, instr.Value)
		case planner.ActionDeleteColumn:
			assignments = append(assignments, col+" = null")
		case planner.ActionCollectionAdd, planner.ActionListAppend:
			assignments = append(assignments, fmt.Sprintf("%s = %s + ?", col, col))
			args = append(args, instr.Value)
		case planner.ActionCollectionRemove:
			assignments = append(assignments, fmt.Sprintf("%s = %s - ?", col, col))
			args = append(args, instr.Value)
		case planner.ActionListPrepend:
			assignments = append(assignments, fmt.Sprintf("%s = ? + %s", col, col))
			args = append(args, instr.Value)
		case planner.ActionMapSet:
			assignments = append(assignments, col+"[?] = ?")
			args = append(args, instr.MapKey, instr.Value)
		case planner.ActionMapDeleteKey:
			assignments = append(assignments, col+"[?] = null")
			args = append(args, instr.MapKey)
		default:
			return Statement{}, fmt.Errorf("unsupported instruction action %d", instr.Action)
		}
	}

	where, whereArgs := keyPredicate(key)
	cql := fmt.Sprintf("UPDATE %s SET %s WHERE %s",
		cqlutil.QualifiedTable(table.Keyspace, table.Name),
		strings.Join(assignments, ", "),
		where)
	return Statement{CQL: cql, Args: append(args, whereArgs...)}, nil
}

// BuildInsert builds the INSERT statement for row creation.
func BuildInsert(table *schema.Table, columns []string, values []interface{}) (Statement, error) {
	if len(columns) == 0 {
		return Statement{}, fmt.Errorf("insert column list cannot be empty")
	}

	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = cqlutil.QuoteIdentifier(col)
	}

	cql, args, err := sq.Insert(cqlutil.QualifiedTable(table.Keyspace, table.Name)).
		Columns(quoted...).
		Values(values...).
		PlaceholderFormat(sq.Question).
		ToSql()
	if err != nil {
		return Statement{}, err
	}
	return Statement{CQL: cql, Args: args}, nil
}

// BuildSelect builds a SELECT over all columns for the rows addressed by the
// key. A full primary key addresses one row; a partition key addresses the
// whole partition in clustering order.
func BuildSelect(table *schema.Table, key planner.RowKey) (Statement, error) {
	names := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		names[i] = cqlutil.QuoteIdentifier(col.Name)
	}

	where := sq.Eq{}
	for i, col := range key.Columns {
		where[cqlutil.QuoteIdentifier(col.Name)] = key.Values[i]
	}

	cql, args, err := sq.Select(names...).
		From(cqlutil.QualifiedTable(table.Keyspace, table.Name)).
		Where(where).
		PlaceholderFormat(sq.Question).
		ToSql()
	if err != nil {
		return Statement{}, err
	}
	return Statement{CQL: cql, Args: args}, nil
}

// BuildDeleteRow builds the DELETE statement removing one whole row.
func BuildDeleteRow(table *schema.Table, key planner.RowKey) (Statement, error) {
	where := sq.Eq{}
	for i, col := range key.Columns {
		where[cqlutil.QuoteIdentifier(col.Name)] = key.Values[i]
	}

	cql, args, err := sq.Delete(cqlutil.QualifiedTable(table.Keyspace, table.Name)).
		Where(where).
		PlaceholderFormat(sq.Question).
		ToSql()
	if err != nil {
		return Statement{}, err
	}
	return Statement{CQL: cql, Args: args}, nil
}

func keyPredicate(key planner.RowKey) (string, []interface{}) {
	parts := make([]string, len(key.Columns))
	args := make([]interface{}, len(key.Values))
	for i, col := range key.Columns {
		parts[i] = cqlutil.QuoteIdentifier(col.Name) + " = ?"
		args[i] = key.Values[i]
	}
	return strings.Join(parts, " AND "), args
}
