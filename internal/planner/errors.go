package planner

import (
	"fmt"

	"cql-rowpatch/internal/schema"
)

// UnknownColumnError reports a mutation token naming a column absent from the
// table's schema.
type UnknownColumnError struct {
	Table  string
	Column string
}

func (e UnknownColumnError) Error() string {
	return fmt.Sprintf("table %q has no column %q", e.Table, e.Column)
}

// UnknownOperatorError reports an unrecognized operator suffix on a mutation token.
type UnknownOperatorError struct {
	Column   string
	Operator string
}

func (e UnknownOperatorError) Error() string {
	return fmt.Sprintf("unknown operator %q on column %q", e.Operator, e.Column)
}

// ImmutableKeyError reports an attempt to mutate a primary-key column.
// Primary key values are fixed at row-identity time and never part of an
// update payload.
type ImmutableKeyError struct {
	Column string
}

func (e ImmutableKeyError) Error() string {
	return fmt.Sprintf("cannot update primary key column %q", e.Column)
}

// TypeMismatchError reports an operator applied to a column kind it does not
// support, such as a list append on a set column.
type TypeMismatchError struct {
	Column string
	Op     Op
	Kind   schema.Kind
}

func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("operator %q is not valid for %s column %q", e.Op, e.Kind, e.Column)
}

// ValidationError reports a value that fails coercion to its column's declared
// type, or a payload whose shape does not fit the operator.
type ValidationError struct {
	Column string
	Value  interface{}
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid value for column %q: %s", e.Column, e.Reason)
}
