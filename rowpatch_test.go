package rowpatch

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cql-rowpatch/internal/cqltype"
	"cql-rowpatch/internal/dbexec"
	"cql-rowpatch/internal/logging"
	"cql-rowpatch/internal/planner"
	"cql-rowpatch/internal/schema"
)

func widgetSpec(t *testing.T) *schema.Table {
	t.Helper()
	spec, err := schema.NewTable("ks", "widgets", []schema.Column{
		{Name: "partition", Kind: schema.KindScalar, Type: cqltype.TypeUUID, IsPartitionKey: true,
			HasDefault: true, Default: cqltype.NewRandomUUID},
		{Name: "cluster", Kind: schema.KindScalar, Type: cqltype.TypeInt, IsClusteringKey: true},
		{Name: "count", Kind: schema.KindScalar, Type: cqltype.TypeInt},
		{Name: "text", Kind: schema.KindScalar, Type: cqltype.TypeText},
		{Name: "text_set", Kind: schema.KindSet, Type: cqltype.TypeText},
		{Name: "text_list", Kind: schema.KindList, Type: cqltype.TypeText},
		{Name: "text_map", Kind: schema.KindMap, KeyType: cqltype.TypeText, Type: cqltype.TypeText},
	})
	require.NoError(t, err)
	return spec
}

func newWidgetTable(t *testing.T, caps dbexec.Capabilities) *Table {
	t.Helper()
	return NewTable(widgetSpec(t), dbexec.NewMemExecutor(caps), nil)
}

// seedPartition creates five rows with cluster 0..4, count=cluster, text=str(cluster).
func seedPartition(t *testing.T, table *Table, partition uuid.UUID) {
	t.Helper()
	for i := 0; i < 5; i++ {
		require.NoError(t, table.Create(context.Background(), map[string]interface{}{
			"partition": partition,
			"cluster":   i,
			"count":     i,
			"text":      fmt.Sprint(i),
		}))
	}
}

func assertPartition(t *testing.T, table *Table, partition uuid.UUID, wantCount func(int) interface{}, wantText func(int) interface{}) {
	t.Helper()
	rows, err := table.List(context.Background(), map[string]interface{}{"partition": partition})
	require.NoError(t, err)
	require.Len(t, rows, 5)
	for i, row := range rows {
		assert.Equal(t, i, row["cluster"])
		assert.Equal(t, wantCount(i), row["count"])
		assert.Equal(t, wantText(i), row["text"])
	}
}

func TestUpdate_SingleRowInPartition(t *testing.T) {
	table := newWidgetTable(t, dbexec.Capabilities{})
	partition := uuid.New()
	seedPartition(t, table, partition)

	err := table.Update(context.Background(),
		map[string]interface{}{"partition": partition, "cluster": 3},
		map[string]interface{}{"count": 6})
	require.NoError(t, err)

	assertPartition(t, table, partition,
		func(i int) interface{} {
			if i == 3 {
				return 6
			}
			return i
		},
		func(i int) interface{} { return fmt.Sprint(i) })
}

func TestUpdate_ValueValidationFailsBeforeWrite(t *testing.T) {
	table := newWidgetTable(t, dbexec.Capabilities{})
	partition := uuid.New()
	seedPartition(t, table, partition)

	err := table.Update(context.Background(),
		map[string]interface{}{"partition": partition, "cluster": 3},
		map[string]interface{}{"count": "asdf"})

	var invalid planner.ValidationError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "count", invalid.Column)

	// Nothing was written.
	assertPartition(t, table, partition,
		func(i int) interface{} { return i },
		func(i int) interface{} { return fmt.Sprint(i) })
}

func TestUpdate_UnknownColumnFails(t *testing.T) {
	table := newWidgetTable(t, dbexec.Capabilities{})

	err := table.Update(context.Background(),
		map[string]interface{}{"partition": uuid.New(), "cluster": 3},
		map[string]interface{}{"bacon": 5000})

	var unknown planner.UnknownColumnError
	require.ErrorAs(t, err, &unknown)
}

func TestUpdate_PrimaryKeyFails(t *testing.T) {
	table := newWidgetTable(t, dbexec.Capabilities{})

	err := table.Update(context.Background(),
		map[string]interface{}{"partition": uuid.New(), "cluster": 3},
		map[string]interface{}{"cluster": 5000})

	var immutable planner.ImmutableKeyError
	require.ErrorAs(t, err, &immutable)
}

func TestUpdate_NullDeletesColumn(t *testing.T) {
	table := newWidgetTable(t, dbexec.Capabilities{})
	partition := uuid.New()
	seedPartition(t, table, partition)

	err := table.Update(context.Background(),
		map[string]interface{}{"partition": partition, "cluster": 3},
		map[string]interface{}{"text": nil})
	require.NoError(t, err)

	assertPartition(t, table, partition,
		func(i int) interface{} { return i },
		func(i int) interface{} {
			if i == 3 {
				return nil
			}
			return fmt.Sprint(i)
		})
}

func TestUpdate_MixedValueAndNull(t *testing.T) {
	table := newWidgetTable(t, dbexec.Capabilities{})
	partition := uuid.New()
	seedPartition(t, table, partition)

	err := table.Update(context.Background(),
		map[string]interface{}{"partition": partition, "cluster": 3},
		map[string]interface{}{"count": 6, "text": nil})
	require.NoError(t, err)

	assertPartition(t, table, partition,
		func(i int) interface{} {
			if i == 3 {
				return 6
			}
			return i
		},
		func(i int) interface{} {
			if i == 3 {
				return nil
			}
			return fmt.Sprint(i)
		})
}

func TestUpdate_SetAdd(t *testing.T) {
	table := newWidgetTable(t, dbexec.Capabilities{})
	partition := uuid.New()
	key := map[string]interface{}{"partition": partition, "cluster": 1}

	require.NoError(t, table.Create(context.Background(), map[string]interface{}{
		"partition": partition, "cluster": 1, "text_set": []string{"foo"},
	}))
	require.NoError(t, table.Update(context.Background(), key, map[string]interface{}{
		"text_set__add": []string{"bar"},
	}))

	row, found, err := table.Get(context.Background(), key)
	require.NoError(t, err)
	require.True(t, found)
	assert.ElementsMatch(t, []interface{}{"foo", "bar"}, row["text_set"])
}

func TestUpdate_SetAddCreatesAbsentRow(t *testing.T) {
	table := newWidgetTable(t, dbexec.Capabilities{})
	key := map[string]interface{}{"partition": uuid.New(), "cluster": 1}

	require.NoError(t, table.Update(context.Background(), key, map[string]interface{}{
		"text_set__add": []string{"bar"},
	}))

	row, found, err := table.Get(context.Background(), key)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []interface{}{"bar"}, row["text_set"])
}

func TestUpdate_SetRemove(t *testing.T) {
	table := newWidgetTable(t, dbexec.Capabilities{})
	key := map[string]interface{}{"partition": uuid.New(), "cluster": 1}

	require.NoError(t, table.Create(context.Background(), map[string]interface{}{
		"partition": key["partition"], "cluster": 1, "text_set": []string{"foo", "baz"},
	}))
	require.NoError(t, table.Update(context.Background(), key, map[string]interface{}{
		"text_set__remove": []string{"foo"},
	}))

	row, _, err := table.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"baz"}, row["text_set"])
}

func TestUpdate_SetRemoveAbsentElementSucceeds(t *testing.T) {
	table := newWidgetTable(t, dbexec.Capabilities{})
	key := map[string]interface{}{"partition": uuid.New(), "cluster": 1}

	require.NoError(t, table.Create(context.Background(), map[string]interface{}{
		"partition": key["partition"], "cluster": 1, "text_set": []string{"foo"},
	}))
	require.NoError(t, table.Update(context.Background(), key, map[string]interface{}{
		"text_set__remove": []string{"afsd"},
	}))

	row, _, err := table.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"foo"}, row["text_set"])
}

func TestUpdate_ListAppend(t *testing.T) {
	table := newWidgetTable(t, dbexec.Capabilities{})
	key := map[string]interface{}{"partition": uuid.New(), "cluster": 1}

	require.NoError(t, table.Create(context.Background(), map[string]interface{}{
		"partition": key["partition"], "cluster": 1, "text_list": []string{"foo"},
	}))
	require.NoError(t, table.Update(context.Background(), key, map[string]interface{}{
		"text_list__append": []string{"bar"},
	}))

	row, _, err := table.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"foo", "bar"}, row["text_list"])
}

func TestUpdate_ListPrependFollowsExecutorConvention(t *testing.T) {
	for _, reversed := range []bool{false, true} {
		t.Run(fmt.Sprintf("reversed=%v", reversed), func(t *testing.T) {
			table := newWidgetTable(t, dbexec.Capabilities{PrependReversed: reversed})
			key := map[string]interface{}{"partition": uuid.New(), "cluster": 1}

			require.NoError(t, table.Create(context.Background(), map[string]interface{}{
				"partition": key["partition"], "cluster": 1, "text_list": []string{"foo"},
			}))
			prepended := []string{"bar", "baz"}
			require.NoError(t, table.Update(context.Background(), key, map[string]interface{}{
				"text_list__prepend": prepended,
			}))

			expected := []interface{}{"bar", "baz", "foo"}
			if table.Capabilities().PrependReversed {
				expected = []interface{}{"baz", "bar", "foo"}
			}
			row, _, err := table.Get(context.Background(), key)
			require.NoError(t, err)
			assert.Equal(t, expected, row["text_list"])
		})
	}
}

func TestUpdate_MapMerge(t *testing.T) {
	table := newWidgetTable(t, dbexec.Capabilities{})
	key := map[string]interface{}{"partition": uuid.New(), "cluster": 1}

	require.NoError(t, table.Create(context.Background(), map[string]interface{}{
		"partition": key["partition"], "cluster": 1,
		"text_map": map[string]interface{}{"foo": "1", "bar": "2"},
	}))
	require.NoError(t, table.Update(context.Background(), key, map[string]interface{}{
		"text_map__update": map[string]interface{}{"bar": "3", "baz": "4"},
	}))

	row, _, err := table.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, map[interface{}]interface{}{"foo": "1", "bar": "3", "baz": "4"}, row["text_map"])
}

func TestUpdate_MapMergeNullDeletesKey(t *testing.T) {
	table := newWidgetTable(t, dbexec.Capabilities{})
	key := map[string]interface{}{"partition": uuid.New(), "cluster": 1}

	require.NoError(t, table.Create(context.Background(), map[string]interface{}{
		"partition": key["partition"], "cluster": 1,
		"text_map": map[string]interface{}{"foo": "1", "bar": "2"},
	}))
	require.NoError(t, table.Update(context.Background(), key, map[string]interface{}{
		"text_map__update": map[string]interface{}{"bar": nil},
	}))

	row, _, err := table.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, map[interface{}]interface{}{"foo": "1"}, row["text_map"])
}

func TestUpdate_EmptyMutationsIsNoop(t *testing.T) {
	table := newWidgetTable(t, dbexec.Capabilities{})
	key := map[string]interface{}{"partition": uuid.New(), "cluster": 1}

	require.NoError(t, table.Update(context.Background(), key, nil))

	// No upsert happened: the row does not exist.
	_, found, err := table.Get(context.Background(), key)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCreate_AppliesColumnDefaults(t *testing.T) {
	table := newWidgetTable(t, dbexec.Capabilities{})

	// partition omitted: its default generator supplies a fresh UUID.
	require.NoError(t, table.Create(context.Background(), map[string]interface{}{
		"cluster": 0,
		"count":   1,
	}))
}

func TestCreate_MissingRequiredKeyFails(t *testing.T) {
	table := newWidgetTable(t, dbexec.Capabilities{})

	err := table.Create(context.Background(), map[string]interface{}{
		"partition": uuid.New(),
		"count":     1,
	})
	var invalid planner.ValidationError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "cluster", invalid.Column)
}

func TestCreate_UnknownColumnFails(t *testing.T) {
	table := newWidgetTable(t, dbexec.Capabilities{})

	err := table.Create(context.Background(), map[string]interface{}{
		"partition": uuid.New(),
		"cluster":   0,
		"bacon":     5000,
	})
	var unknown planner.UnknownColumnError
	require.ErrorAs(t, err, &unknown)
}

func TestDelete_RemovesWholeRow(t *testing.T) {
	table := newWidgetTable(t, dbexec.Capabilities{})
	partition := uuid.New()
	seedPartition(t, table, partition)

	key := map[string]interface{}{"partition": partition, "cluster": 2}
	require.NoError(t, table.Delete(context.Background(), key))

	_, found, err := table.Get(context.Background(), key)
	require.NoError(t, err)
	assert.False(t, found)

	rows, err := table.List(context.Background(), map[string]interface{}{"partition": partition})
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

func TestUpdate_UsesContextLoggerWhenUnbound(t *testing.T) {
	table := newWidgetTable(t, dbexec.Capabilities{})
	partition := uuid.New()
	seedPartition(t, table, partition)

	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	ctx := logging.WithLogger(context.Background(), &logging.Logger{Logger: slog.New(handler)})

	err := table.Update(ctx,
		map[string]interface{}{"partition": partition, "cluster": 0},
		map[string]interface{}{"count": 7})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "applying row patch")
	assert.Contains(t, out, "table=widgets")
}
