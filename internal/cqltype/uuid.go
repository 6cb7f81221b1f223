package cqltype

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// coerceUUID accepts uuid.UUID values, RFC 4122 strings, and 16-byte slices,
// returning a normalized lower-case uuid.UUID.
func coerceUUID(value interface{}) (uuid.UUID, error) {
	switch v := value.(type) {
	case uuid.UUID:
		return v, nil
	case string:
		parsed, err := uuid.Parse(strings.TrimSpace(v))
		if err != nil {
			return uuid.Nil, fmt.Errorf("invalid UUID value")
		}
		return parsed, nil
	case []byte:
		parsed, err := uuid.FromBytes(v)
		if err != nil {
			return uuid.Nil, fmt.Errorf("invalid UUID bytes")
		}
		return parsed, nil
	default:
		return uuid.Nil, fmt.Errorf("invalid UUID value of type %T", value)
	}
}

// NewRandomUUID returns a v4 UUID generator suitable for column defaults.
func NewRandomUUID() interface{} {
	return uuid.New()
}

func coerceTimestamp(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case int64:
		return time.UnixMilli(v), true
	case int:
		return time.UnixMilli(int64(v)), true
	default:
		return time.Time{}, false
	}
}
