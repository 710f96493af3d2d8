package pipeline_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gigainfosystems/buffi/config"
	"github.com/gigainfosystems/buffi/docloader"
	"github.com/gigainfosystems/buffi/pipeline"
	"github.com/gigainfosystems/buffi/registry/store/memory"
)

func fixtureBytes(t *testing.T) []byte {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("..", "testdata", "doc", "fixture.json"))
	require.NoError(t, err)
	return b
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.OutputDir = "out"
	return cfg
}

func TestGenerateProducesSchemaAndFacadeFiles(t *testing.T) {
	raw := fixtureBytes(t)
	result, err := pipeline.Generate(context.Background(), raw, testConfig(), pipeline.Deps{})
	require.NoError(t, err)
	require.NotEmpty(t, result.Files)
	require.NotNil(t, result.Design)
	require.NotEmpty(t, result.InputDigest)
}

func TestGenerateIsDeterministic(t *testing.T) {
	raw := fixtureBytes(t)
	cfg := testConfig()

	a, err := pipeline.Generate(context.Background(), raw, cfg, pipeline.Deps{})
	require.NoError(t, err)
	b, err := pipeline.Generate(context.Background(), raw, cfg, pipeline.Deps{})
	require.NoError(t, err)

	require.Equal(t, a.InputDigest, b.InputDigest)
	require.Len(t, b.Files, len(a.Files))
	for i := range a.Files {
		require.Equal(t, a.Files[i].Name, b.Files[i].Name)
		require.Equal(t, a.Files[i].Content, b.Files[i].Content)
	}
}

func TestInputDigestChangesWithConfig(t *testing.T) {
	raw := fixtureBytes(t)
	cfg1 := testConfig()
	cfg2 := testConfig()
	cfg2.APIBasename = "other"

	require.NotEqual(t, pipeline.InputDigest(raw, cfg1), pipeline.InputDigest(raw, cfg2))
}

func TestGenerateRecordsHermeticityLedgerAndVerifyDetectsDrift(t *testing.T) {
	raw := fixtureBytes(t)
	cfg := testConfig()
	ledger := memory.New()

	result, err := pipeline.Generate(context.Background(), raw, cfg, pipeline.Deps{Ledger: ledger})
	require.NoError(t, err)

	recorded, err := ledger.GetRun(context.Background(), result.InputDigest)
	require.NoError(t, err)
	require.Equal(t, cfg.APIBasename, recorded.APIBasename)
	require.Len(t, recorded.Files, len(result.Files))

	drift, err := pipeline.VerifyHermeticity(context.Background(), raw, cfg, ledger)
	require.NoError(t, err)
	require.Empty(t, drift, "a regenerate immediately after recording must produce no drift")
}

func TestVerifyHermeticityFailsWithoutAPriorRun(t *testing.T) {
	raw := fixtureBytes(t)
	cfg := testConfig()
	ledger := memory.New()

	_, err := pipeline.VerifyHermeticity(context.Background(), raw, cfg, ledger)
	require.Error(t, err)
}

func TestGenerateUsesDocCacheOnSecondCall(t *testing.T) {
	raw := fixtureBytes(t)
	cfg := testConfig()
	var c countingCache

	_, err := pipeline.Generate(context.Background(), raw, cfg, pipeline.Deps{DocCache: &c})
	require.NoError(t, err)
	_, err = pipeline.Generate(context.Background(), raw, cfg, pipeline.Deps{DocCache: &c})
	require.NoError(t, err)

	require.Equal(t, 1, c.puts, "doc should only be parsed and cached once")
	require.Equal(t, 2, c.gets)
}

// countingCache is an in-memory stand-in for cache.RedisCache that counts
// calls so tests can observe cache behavior without a real Redis instance.
type countingCache struct {
	gets, puts int
	stored     map[string]*docloader.Graph
}

func (c *countingCache) Get(_ context.Context, rawDoc []byte) (*docloader.Graph, bool, error) {
	c.gets++
	if c.stored == nil {
		return nil, false, nil
	}
	g, ok := c.stored[string(rawDoc)]
	return g, ok, nil
}

func (c *countingCache) Put(_ context.Context, rawDoc []byte, g *docloader.Graph) error {
	c.puts++
	if c.stored == nil {
		c.stored = make(map[string]*docloader.Graph)
	}
	c.stored[string(rawDoc)] = g
	return nil
}
