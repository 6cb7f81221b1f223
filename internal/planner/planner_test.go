package planner

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRowKey_CoercesAndOrders(t *testing.T) {
	table := testTable(t)
	id := uuid.New()

	key, err := NewRowKey(table, map[string]interface{}{
		"cluster":   3,
		"partition": id.String(),
	})
	require.NoError(t, err)
	require.Len(t, key.Columns, 2)

	assert.Equal(t, "partition", key.Columns[0].Name)
	assert.Equal(t, id, key.Values[0])
	assert.Equal(t, "cluster", key.Columns[1].Name)
	assert.Equal(t, 3, key.Values[1])
}

func TestNewRowKey_MissingSegment(t *testing.T) {
	table := testTable(t)

	_, err := NewRowKey(table, map[string]interface{}{"partition": uuid.New()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match column count")
}

func TestNewRowKey_ExtraValue(t *testing.T) {
	table := testTable(t)

	_, err := NewRowKey(table, map[string]interface{}{
		"partition": uuid.New(),
		"cluster":   3,
		"count":     1,
	})
	require.Error(t, err)
}

func TestNewRowKey_BadSegmentValue(t *testing.T) {
	table := testTable(t)

	_, err := NewRowKey(table, map[string]interface{}{
		"partition": "not-a-uuid",
		"cluster":   3,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "partition")
}

func TestNewPartitionKey(t *testing.T) {
	table := testTable(t)
	id := uuid.New()

	key, err := NewPartitionKey(table, map[string]interface{}{"partition": id})
	require.NoError(t, err)
	require.Len(t, key.Columns, 1)
	assert.Equal(t, "partition", key.Columns[0].Name)
	assert.Equal(t, id, key.Values[0])
}

func TestCompile_MixedValueAndNullUpdate(t *testing.T) {
	table := testTable(t)

	instructions, err := Compile(table, map[string]interface{}{
		"count": 6,
		"text":  nil,
	})
	require.NoError(t, err)
	require.Len(t, instructions, 2)
	assert.Equal(t, ActionAssign, instructions[0].Action)
	assert.Equal(t, ActionDeleteColumn, instructions[1].Action)
}

func TestCompile_StopsAtFirstInvalidMutation(t *testing.T) {
	table := testTable(t)

	_, err := Compile(table, map[string]interface{}{
		"count":   6,
		"cluster": 5000,
	})
	var immutable ImmutableKeyError
	require.ErrorAs(t, err, &immutable)
}
