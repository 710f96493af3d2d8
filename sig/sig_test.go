package sig_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gigainfosystems/buffi/annotate"
	"github.com/gigainfosystems/buffi/config"
	"github.com/gigainfosystems/buffi/docloader"
	"github.com/gigainfosystems/buffi/sig"
	"github.com/gigainfosystems/buffi/typesys"
)

func synthesizeFixture(t *testing.T) (*typesys.Registry, []*sig.Function) {
	t.Helper()
	g, err := docloader.Load(filepath.Join("..", "testdata", "doc", "fixture.json"), 1, 1)
	require.NoError(t, err)
	ann, err := annotate.Interpret(g)
	require.NoError(t, err)
	reg, fns, err := typesys.NewResolver(g, ann, config.Default()).Resolve()
	require.NoError(t, err)
	synthesized, err := sig.Synthesize(reg, fns)
	require.NoError(t, err)
	return reg, synthesized
}

func TestSynthesizeRegistersSerializableError(t *testing.T) {
	reg, _ := synthesizeFixture(t)
	se := reg.Types[sig.SerializableErrorName]
	require.NotNil(t, se)
	require.Equal(t, typesys.DefStruct, se.Kind)
	require.Len(t, se.Fields, 1)
	require.Equal(t, "message", se.Fields[0].Name)
	require.Equal(t, typesys.PrimString, se.Fields[0].Type.Prim)
}

func TestSynthesizeResultCarrierVariantOrder(t *testing.T) {
	reg, fns := synthesizeFixture(t)

	var scalar *sig.Function
	for _, f := range fns {
		if f.Resolved.ID == "0:10" {
			scalar = f
		}
	}
	require.NotNil(t, scalar)
	require.Equal(t, "Result_i64_SerializableError", scalar.ResultName)

	carrier := reg.Types[scalar.ResultName]
	require.NotNil(t, carrier)
	require.Equal(t, typesys.DefEnum, carrier.Kind)
	require.Len(t, carrier.Variants, 2)
	require.Equal(t, "Ok", carrier.Variants[0].Name)
	require.Equal(t, "Err", carrier.Variants[1].Name)
	require.Equal(t, typesys.KindNamed, carrier.Variants[1].Fields[0].Type.Kind)
	require.Equal(t, sig.SerializableErrorName, carrier.Variants[1].Fields[0].Type.Name)
}

func TestSynthesizeUnitReturnProducesVoidCarrier(t *testing.T) {
	_, fns := synthesizeFixture(t)
	var unitFn *sig.Function
	for _, f := range fns {
		if f.Resolved.ID == "0:51" {
			unitFn = f
		}
	}
	require.NotNil(t, unitFn)
	require.Equal(t, "Result_void_SerializableError", unitFn.ResultName)
}

func TestSynthesizeClassification(t *testing.T) {
	_, fns := synthesizeFixture(t)
	byID := map[docloader.ItemID]*sig.Function{}
	for _, f := range fns {
		byID[f.Resolved.ID] = f
	}

	require.Equal(t, sig.ClassFreeStanding, byID["0:10"].Class)
	require.Equal(t, sig.ClassAsyncFreeStanding, byID["0:60"].Class)
	require.Equal(t, sig.ClassClientMethod, byID["0:22"].Class)
	require.Equal(t, "buffi_free_standing_function", byID["0:10"].EntryName)
	require.Equal(t, "buffi_client_function", byID["0:22"].EntryName)
}
