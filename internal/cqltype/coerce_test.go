package cqltype

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerce_Text(t *testing.T) {
	got, err := Coerce(TypeText, "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	_, err = Coerce(TypeText, 42)
	assert.Error(t, err)
}

func TestCoerce_IntAcceptsLosslessNumerics(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  interface{}
		ok    bool
	}{
		{"int", 6, 6, true},
		{"int32", int32(6), 6, true},
		{"int64 in range", int64(6), 6, true},
		{"int64 out of range", int64(1) << 40, nil, false},
		{"whole float64", float64(6), 6, true},
		{"fractional float64", 6.5, nil, false},
		{"numeric string rejected", "6", nil, false},
		{"non-numeric string rejected", "asdf", nil, false},
		{"bool rejected", true, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Coerce(TypeInt, tt.value)
			if !tt.ok {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCoerce_BigInt(t *testing.T) {
	got, err := Coerce(TypeBigInt, int64(1)<<40)
	require.NoError(t, err)
	assert.Equal(t, int64(1)<<40, got)

	got, err = Coerce(TypeBigInt, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got)

	_, err = Coerce(TypeBigInt, "7")
	assert.Error(t, err)
}

func TestCoerce_UUID(t *testing.T) {
	id := uuid.New()

	got, err := Coerce(TypeUUID, id)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	got, err = Coerce(TypeUUID, id.String())
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = Coerce(TypeUUID, "not-a-uuid")
	assert.Error(t, err)
}

func TestCoerce_Timestamp(t *testing.T) {
	now := time.Now()
	got, err := Coerce(TypeTimestamp, now)
	require.NoError(t, err)
	assert.Equal(t, now, got)

	got, err = Coerce(TypeTimestamp, int64(1500000000000))
	require.NoError(t, err)
	assert.Equal(t, time.UnixMilli(1500000000000), got)
}

func TestCoerce_NilPassesThrough(t *testing.T) {
	for _, typ := range []Type{TypeText, TypeInt, TypeBigInt, TypeDouble, TypeBoolean, TypeUUID, TypeTimestamp, TypeBlob} {
		got, err := Coerce(typ, nil)
		require.NoError(t, err)
		assert.Nil(t, got)
	}
}

func TestParse(t *testing.T) {
	typ, ok := Parse("VARCHAR")
	assert.True(t, ok)
	assert.Equal(t, TypeText, typ)

	typ, ok = Parse("timeuuid")
	assert.True(t, ok)
	assert.Equal(t, TypeUUID, typ)

	_, ok = Parse("frozen<tuple>")
	assert.False(t, ok)
}
