package ir_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gigainfosystems/buffi/annotate"
	"github.com/gigainfosystems/buffi/codegen/ir"
	"github.com/gigainfosystems/buffi/config"
	"github.com/gigainfosystems/buffi/docloader"
	"github.com/gigainfosystems/buffi/sig"
	"github.com/gigainfosystems/buffi/typesys"
)

func resolveFixture(t *testing.T) (*typesys.Registry, []*sig.Function, *config.Config) {
	t.Helper()
	g, err := docloader.Load(filepath.Join("..", "..", "testdata", "doc", "fixture.json"), 1, 1)
	require.NoError(t, err)
	ann, err := annotate.Interpret(g)
	require.NoError(t, err)
	cfg := config.Default()
	reg, fns, err := typesys.NewResolver(g, ann, cfg).Resolve()
	require.NoError(t, err)
	synthesized, err := sig.Synthesize(reg, fns)
	require.NoError(t, err)
	return reg, synthesized, cfg
}

func TestBuildIsDeterministic(t *testing.T) {
	reg, fns, cfg := resolveFixture(t)

	a := ir.Build(reg, fns, cfg)
	b := ir.Build(reg, fns, cfg)

	aj, err := json.Marshal(a)
	require.NoError(t, err)
	bj, err := json.Marshal(b)
	require.NoError(t, err)
	require.Equal(t, string(aj), string(bj))
}

func TestBuildTypesAreLexSorted(t *testing.T) {
	reg, fns, cfg := resolveFixture(t)
	d := ir.Build(reg, fns, cfg)

	require.NotEmpty(t, d.Types)
	for i := 1; i < len(d.Types); i++ {
		require.Less(t, d.Types[i-1].Name, d.Types[i].Name)
	}
}

func TestBuildFunctionsAreSortedByEntryName(t *testing.T) {
	reg, fns, cfg := resolveFixture(t)
	d := ir.Build(reg, fns, cfg)

	require.NotEmpty(t, d.Functions)
	for i := 1; i < len(d.Functions); i++ {
		require.LessOrEqual(t, d.Functions[i-1].EntryName, d.Functions[i].EntryName)
	}
}

func TestBuildCarriesAPIBasenameAndNamespace(t *testing.T) {
	reg, fns, cfg := resolveFixture(t)
	cfg.APIBasename = "widgets"
	cfg.NamespaceToken = "widgets_ns"
	d := ir.Build(reg, fns, cfg)

	require.Equal(t, "widgets", d.APIBasename)
	require.Equal(t, "widgets_ns", d.Namespace)
}
