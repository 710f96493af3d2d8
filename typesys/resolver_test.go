package typesys_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gigainfosystems/buffi/annotate"
	"github.com/gigainfosystems/buffi/config"
	"github.com/gigainfosystems/buffi/docloader"
	"github.com/gigainfosystems/buffi/typesys"
)

func resolveFixture(t *testing.T) (*typesys.Registry, []*typesys.ResolvedFunction) {
	t.Helper()
	g, err := docloader.Load(filepath.Join("..", "testdata", "doc", "fixture.json"), 1, 1)
	require.NoError(t, err)
	ann, err := annotate.Interpret(g)
	require.NoError(t, err)
	reg, fns, err := typesys.NewResolver(g, ann, config.Default()).Resolve()
	require.NoError(t, err)
	return reg, fns
}

func TestResolveRegistersEveryReachableUserType(t *testing.T) {
	reg, _ := resolveFixture(t)
	require.ElementsMatch(t, []string{"CustomType", "DateTimeHelper", "MyClient", "Point1_f64"}, reg.Names())
}

func TestResolveMonomorphizesGenericStruct(t *testing.T) {
	reg, _ := resolveFixture(t)
	point := reg.Types["Point1_f64"]
	require.NotNil(t, point)
	require.Equal(t, typesys.DefStruct, point.Kind)
	require.Len(t, point.Fields, 2)
	for _, f := range point.Fields {
		require.Equal(t, typesys.KindPrimitive, f.Type.Kind)
		require.Equal(t, typesys.PrimF64, f.Type.Prim)
	}
}

func TestResolveSubstitutesProxyForForeignType(t *testing.T) {
	reg, fns := resolveFixture(t)
	require.NotNil(t, reg.Types["DateTimeHelper"])

	var usesDatetime *typesys.ResolvedFunction
	for _, fn := range fns {
		if fn.ID == "0:42" {
			usesDatetime = fn
		}
	}
	require.NotNil(t, usesDatetime)
	require.Len(t, usesDatetime.Params, 1)
	require.Equal(t, typesys.KindNamed, usesDatetime.Params[0].Type.Kind)
	require.Equal(t, "DateTimeHelper", usesDatetime.Params[0].Type.Name)
}

func TestResolveBoxesSelfReferentialField(t *testing.T) {
	reg, _ := resolveFixture(t)
	custom := reg.Types["CustomType"]
	require.NotNil(t, custom)

	var itself *typesys.FieldDef
	for i := range custom.Fields {
		if custom.Fields[i].Name == "itself" {
			itself = &custom.Fields[i]
		}
	}
	require.NotNil(t, itself)
	require.Equal(t, typesys.KindOption, itself.Type.Kind)
	require.Equal(t, typesys.KindBoxed, itself.Type.Elem.Kind)
	require.Equal(t, "CustomType", itself.Type.Elem.Name)
}

func TestResolveClientMethodCarriesReceiver(t *testing.T) {
	reg, fns := resolveFixture(t)
	require.NotNil(t, reg.Types["MyClient"])

	var clientFn *typesys.ResolvedFunction
	for _, fn := range fns {
		if fn.ID == "0:22" {
			clientFn = fn
		}
	}
	require.NotNil(t, clientFn)
	require.NotNil(t, clientFn.Receiver)
	require.Equal(t, "MyClient", clientFn.Receiver.Name)
}

func TestResolveDanglingReferenceErrors(t *testing.T) {
	g, err := docloader.Load(filepath.Join("..", "testdata", "doc", "fixture.json"), 1, 1)
	require.NoError(t, err)
	ann, err := annotate.Interpret(g)
	require.NoError(t, err)
	ann.FreeFunctions = append(ann.FreeFunctions, "0:999")

	_, _, err = typesys.NewResolver(g, ann, config.Default()).Resolve()
	require.Error(t, err)
}
