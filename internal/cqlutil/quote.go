// Package cqlutil provides CQL text utility functions.
package cqlutil

import "strings"

// QuoteIdentifier quotes a CQL identifier (keyspace, table, or column name)
// with double quotes and escapes any double quotes within the identifier.
// Quoting keeps case-sensitive and reserved-word identifiers safe.
func QuoteIdentifier(name string) string {
	escaped := strings.ReplaceAll(name, `"`, `""`)
	return `"` + escaped + `"`
}

// QualifiedTable returns the keyspace-qualified quoted table name. When the
// keyspace is empty the session's default keyspace applies.
func QualifiedTable(keyspace, table string) string {
	if keyspace == "" {
		return QuoteIdentifier(table)
	}
	return QuoteIdentifier(keyspace) + "." + QuoteIdentifier(table)
}
