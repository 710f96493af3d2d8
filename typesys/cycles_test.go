package typesys_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gigainfosystems/buffi/typesys"
)

// buildCyclicRegistry constructs A { next: B } / B { back: A } directly,
// bypassing the resolver, to exercise BoxCycles on a two-node cycle.
func buildCyclicRegistry(t *testing.T) *typesys.Registry {
	t.Helper()
	reg := typesys.NewRegistry()
	require.NoError(t, reg.Register(&typesys.UserType{
		Name:     "A",
		Kind:     typesys.DefStruct,
		SourceID: "a",
		Fields:   []typesys.FieldDef{{Name: "next", Type: typesys.Named("B")}},
	}))
	require.NoError(t, reg.Register(&typesys.UserType{
		Name:     "B",
		Kind:     typesys.DefStruct,
		SourceID: "b",
		Fields:   []typesys.FieldDef{{Name: "back", Type: typesys.Named("A")}},
	}))
	return reg
}

func TestBoxCyclesBreaksTwoNodeCycle(t *testing.T) {
	reg := buildCyclicRegistry(t)
	require.NoError(t, typesys.BoxCycles(reg))

	// The lexicographically smallest edge within the {A,B} component is
	// A -> B (its one field), so A.next is boxed and B.back stays a plain
	// named reference.
	require.Equal(t, typesys.KindBoxed, reg.Types["A"].Fields[0].Type.Kind)
	require.Equal(t, typesys.KindNamed, reg.Types["B"].Fields[0].Type.Kind)
}

func TestBoxCyclesIsNoopOnAcyclicGraph(t *testing.T) {
	reg := typesys.NewRegistry()
	require.NoError(t, reg.Register(&typesys.UserType{
		Name:     "Leaf",
		Kind:     typesys.DefStruct,
		SourceID: "leaf",
		Fields:   []typesys.FieldDef{{Name: "v", Type: typesys.Primitive(typesys.PrimI64)}},
	}))
	require.NoError(t, reg.Register(&typesys.UserType{
		Name:     "Root",
		Kind:     typesys.DefStruct,
		SourceID: "root",
		Fields:   []typesys.FieldDef{{Name: "leaf", Type: typesys.Named("Leaf")}},
	}))
	require.NoError(t, typesys.BoxCycles(reg))
	require.Equal(t, typesys.KindNamed, reg.Types["Root"].Fields[0].Type.Kind)
}
