package cqltype

import (
	"fmt"
	"math"
)

// Coerce converts a caller-supplied value to the canonical Go representation for
// the given CQL type. A nil value passes through unchanged; whether nil is legal
// in a given position is the caller's decision, not a type question.
//
// Coercion is strict in the cqlengine sense: numeric widening is allowed when
// lossless, but a string is never a number and a number is never a string.
func Coerce(t Type, value interface{}) (interface{}, error) {
	if value == nil {
		return nil, nil
	}

	switch t {
	case TypeText:
		if s, ok := value.(string); ok {
			return s, nil
		}
	case TypeInt:
		switch v := value.(type) {
		case int:
			if v >= math.MinInt32 && v <= math.MaxInt32 {
				return int(v), nil
			}
		case int32:
			return int(v), nil
		case int64:
			if v >= math.MinInt32 && v <= math.MaxInt32 {
				return int(v), nil
			}
		case float64:
			if v == math.Trunc(v) && v >= math.MinInt32 && v <= math.MaxInt32 {
				return int(v), nil
			}
		}
	case TypeBigInt:
		switch v := value.(type) {
		case int:
			return int64(v), nil
		case int32:
			return int64(v), nil
		case int64:
			return v, nil
		case float64:
			if v == math.Trunc(v) {
				return int64(v), nil
			}
		}
	case TypeDouble:
		switch v := value.(type) {
		case float64:
			return v, nil
		case float32:
			return float64(v), nil
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		}
	case TypeBoolean:
		if b, ok := value.(bool); ok {
			return b, nil
		}
	case TypeUUID:
		if u, err := coerceUUID(value); err == nil {
			return u, nil
		}
	case TypeTimestamp:
		if ts, ok := coerceTimestamp(value); ok {
			return ts, nil
		}
	case TypeBlob:
		switch v := value.(type) {
		case []byte:
			return v, nil
		case string:
			return []byte(v), nil
		}
	}

	return nil, fmt.Errorf("value %v (%T) is not coercible to %s", value, value, t)
}

// Validate reports whether a value is acceptable for the given type.
func Validate(t Type, value interface{}) error {
	_, err := Coerce(t, value)
	return err
}
