package annotate_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gigainfosystems/buffi/annotate"
	"github.com/gigainfosystems/buffi/docloader"
)

func loadFixture(t *testing.T) *docloader.Graph {
	t.Helper()
	g, err := docloader.Load(filepath.Join("..", "testdata", "doc", "fixture.json"), 1, 1)
	require.NoError(t, err)
	return g
}

func TestInterpretSeedsAndTables(t *testing.T) {
	g := loadFixture(t)
	res, err := annotate.Interpret(g)
	require.NoError(t, err)

	require.ElementsMatch(t, []docloader.ItemID{
		"0:10", "0:42", "0:51", "0:60",
	}, res.FreeFunctions)

	require.Equal(t, []docloader.ItemID{"0:20"}, res.ClientTypes)
	require.Len(t, res.ClientMethods, 1)
	require.Equal(t, docloader.ItemID("0:20"), res.ClientMethods[0].ClientType)
	require.Equal(t, docloader.ItemID("0:22"), res.ClientMethods[0].Method)

	require.True(t, res.Async["0:60"])
	require.False(t, res.Async["0:10"])

	require.Equal(t, docloader.ItemID("0:40"), res.ProxyMap["chrono::DateTime"])
}

func TestAmbiguousProxyDetected(t *testing.T) {
	g := loadFixture(t)
	dup := g.Doc.Index["0:40"]
	clone := dup
	clone.ID = "0:43"
	clone.Name = "DateTimeHelper2"
	g.Doc.Index["0:43"] = clone
	g.Doc.Paths["0:43"] = docloader.PathSummary{CrateID: 0, Path: []string{"demo_crate", "DateTimeHelper2"}, Kind: "struct"}

	_, err := annotate.Interpret(g)
	require.Error(t, err)
}
