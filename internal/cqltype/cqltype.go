// Package cqltype provides a shared model of CQL scalar types and value coercion.
// This ensures consistent type checking across mutation validation and row creation.
package cqltype

import "strings"

// Type represents the CQL scalar type of a column, or the element type of a collection column.
type Type int

const (
	// TypeText covers text, varchar, and ascii columns.
	TypeText Type = iota
	// TypeInt is a 32-bit signed integer column.
	TypeInt
	// TypeBigInt is a 64-bit signed integer column.
	TypeBigInt
	// TypeDouble covers double and float columns.
	TypeDouble
	// TypeBoolean is a boolean column.
	TypeBoolean
	// TypeUUID covers uuid and timeuuid columns.
	TypeUUID
	// TypeTimestamp is a millisecond-precision timestamp column.
	TypeTimestamp
	// TypeBlob is a raw bytes column.
	TypeBlob
)

// String returns the CQL type name.
func (t Type) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeBigInt:
		return "bigint"
	case TypeDouble:
		return "double"
	case TypeBoolean:
		return "boolean"
	case TypeUUID:
		return "uuid"
	case TypeTimestamp:
		return "timestamp"
	case TypeBlob:
		return "blob"
	default:
		return "text"
	}
}

// Parse converts a CQL type name to its Type. The input is case-insensitive.
func Parse(name string) (Type, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "text", "varchar", "ascii":
		return TypeText, true
	case "int", "smallint", "tinyint":
		return TypeInt, true
	case "bigint", "varint":
		return TypeBigInt, true
	case "double", "float", "decimal":
		return TypeDouble, true
	case "boolean":
		return TypeBoolean, true
	case "uuid", "timeuuid":
		return TypeUUID, true
	case "timestamp":
		return TypeTimestamp, true
	case "blob":
		return TypeBlob, true
	default:
		return TypeText, false
	}
}
