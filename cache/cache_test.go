package cache

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/gigainfosystems/buffi/docloader"
)

var (
	testRedisClient    *redis.Client
	testRedisContainer testcontainers.Container
	skipIntegration    bool
)

func TestMain(m *testing.M) {
	ctx := context.Background()

	var containerErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				containerErr = fmt.Errorf("docker not available: %v", r)
			}
		}()
		req := testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		}
		testRedisContainer, containerErr = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
	}()

	if containerErr != nil {
		fmt.Printf("Docker not available, doc cache integration tests will be skipped: %v\n", containerErr)
		skipIntegration = true
	} else {
		host, err := testRedisContainer.Host(ctx)
		if err != nil {
			skipIntegration = true
		} else {
			port, err := testRedisContainer.MappedPort(ctx, "6379")
			if err != nil {
				skipIntegration = true
			} else {
				addr := host + ":" + port.Port()
				testRedisClient = redis.NewClient(&redis.Options{Addr: addr})
				if err := testRedisClient.Ping(ctx).Err(); err != nil {
					skipIntegration = true
				}
				_ = addr
			}
		}
	}

	code := m.Run()

	if testRedisClient != nil {
		_ = testRedisClient.Close()
	}
	if testRedisContainer != nil {
		_ = testRedisContainer.Terminate(ctx)
	}
	os.Exit(code)
}

func newTestCache(t *testing.T, schemaVersion int) *RedisCache {
	t.Helper()
	if skipIntegration {
		t.Skip("Docker not available, skipping doc cache test")
	}
	require.NoError(t, testRedisClient.FlushDB(context.Background()).Err())
	addr := testRedisClient.Options().Addr
	return NewRedisCache(addr, time.Minute, schemaVersion)
}

func sampleGraph() *docloader.Graph {
	return &docloader.Graph{
		Doc: &docloader.Doc{
			FormatVersion: 1,
			Root:          "0:0",
			CrateVersion:  "0.1.0",
			Index: map[docloader.ItemID]docloader.Item{
				"0:0": {ID: "0:0", Name: "demo", Inner: docloader.Inner{Kind: docloader.KindFunction}},
			},
			Paths: map[docloader.ItemID]docloader.PathSummary{
				"0:0": {CrateID: 0, Path: []string{"demo"}, Kind: docloader.KindFunction},
			},
			ExternalCrate: map[string]docloader.CrateInfo{},
		},
		CrateNames: map[int]string{},
	}
}

func TestRedisCacheMissThenHit(t *testing.T) {
	c := newTestCache(t, 1)
	ctx := context.Background()
	raw := []byte(`{"format_version":1}`)

	_, found, err := c.Get(ctx, raw)
	require.NoError(t, err)
	require.False(t, found)

	g := sampleGraph()
	require.NoError(t, c.Put(ctx, raw, g))

	got, found, err := c.Get(ctx, raw)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, g.Doc.FormatVersion, got.Doc.FormatVersion)
	require.Equal(t, g.Doc.Root, got.Doc.Root)
	require.Contains(t, got.Doc.Index, docloader.ItemID("0:0"))
}

func TestRedisCacheSchemaVersionMismatchIsAMiss(t *testing.T) {
	c := newTestCache(t, 1)
	ctx := context.Background()
	raw := []byte(`{"format_version":1}`)

	require.NoError(t, c.Put(ctx, raw, sampleGraph()))

	stale := NewRedisCache(testRedisClient.Options().Addr, time.Minute, 2)
	_, found, err := stale.Get(ctx, raw)
	require.NoError(t, err)
	require.False(t, found, "cache entry validated under a different schema version must be treated as a miss")
}

func TestNoopCacheAlwaysMisses(t *testing.T) {
	var c NoopCache
	_, found, err := c.Get(context.Background(), []byte("anything"))
	require.NoError(t, err)
	require.False(t, found)
	require.NoError(t, c.Put(context.Background(), []byte("anything"), sampleGraph()))
}
