package rowpatch

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cql-rowpatch/internal/config"
	"cql-rowpatch/internal/cqltype"
	"cql-rowpatch/internal/schema"
)

// TestIntegration_PatchRoundTrip runs the update pipeline against a live
// cluster. Set CQLRP_TEST_HOSTS (comma-separated) and CQLRP_TEST_KEYSPACE
// to enable it; the keyspace must contain a table created with:
//
//	CREATE TABLE widgets (
//	    partition uuid, cluster int, count int, text text,
//	    text_set set<text>, text_list list<text>, text_map map<text,text>,
//	    PRIMARY KEY (partition, cluster))
func TestIntegration_PatchRoundTrip(t *testing.T) {
	hosts := os.Getenv("CQLRP_TEST_HOSTS")
	keyspace := os.Getenv("CQLRP_TEST_KEYSPACE")
	if hosts == "" || keyspace == "" {
		t.Skip("CQLRP_TEST_HOSTS and CQLRP_TEST_KEYSPACE not set; skipping integration test")
	}

	cfg := &config.Config{
		Cluster: config.ClusterConfig{
			Hosts:          strings.Split(hosts, ","),
			Port:           9042,
			Keyspace:       keyspace,
			Timeout:        10 * time.Second,
			ConnectTimeout: 5 * time.Second,
		},
		Logging: config.LoggingConfig{Level: "warn", Format: "text"},
	}

	session, err := Connect(cfg)
	require.NoError(t, err)
	defer session.Close()

	spec, err := schema.NewTable(keyspace, "widgets", []schema.Column{
		{Name: "partition", Kind: schema.KindScalar, Type: cqltype.TypeUUID, IsPartitionKey: true},
		{Name: "cluster", Kind: schema.KindScalar, Type: cqltype.TypeInt, IsClusteringKey: true},
		{Name: "count", Kind: schema.KindScalar, Type: cqltype.TypeInt},
		{Name: "text", Kind: schema.KindScalar, Type: cqltype.TypeText},
		{Name: "text_set", Kind: schema.KindSet, Type: cqltype.TypeText},
		{Name: "text_list", Kind: schema.KindList, Type: cqltype.TypeText},
		{Name: "text_map", Kind: schema.KindMap, KeyType: cqltype.TypeText, Type: cqltype.TypeText},
	})
	require.NoError(t, err)

	table := session.Table(spec)
	ctx := context.Background()
	partition := uuid.New()
	key := map[string]interface{}{"partition": partition, "cluster": 1}
	defer func() {
		assert.NoError(t, table.Delete(ctx, key))
	}()

	require.NoError(t, table.Create(ctx, map[string]interface{}{
		"partition": partition,
		"cluster":   1,
		"count":     1,
		"text":      "one",
		"text_set":  []string{"foo"},
	}))

	require.NoError(t, table.Update(ctx, key, map[string]interface{}{
		"count":         2,
		"text":          nil,
		"text_set__add": []string{"bar"},
		"text_map__update": map[string]interface{}{
			"k": "v",
		},
	}))

	row, found, err := table.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, found)
	assert.EqualValues(t, 2, row["count"])
	assert.Zero(t, row["text"])
}
