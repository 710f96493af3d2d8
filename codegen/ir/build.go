package ir

import (
	"sort"

	"github.com/gigainfosystems/buffi/config"
	"github.com/gigainfosystems/buffi/sig"
	"github.com/gigainfosystems/buffi/typesys"
)

// Build constructs a Design IR from a resolved registry and its synthesized
// functions. Types follow reg.Names() order (lex-sorted); Functions are
// sorted by entry name so output is stable across runs regardless of the
// order Resolve/Synthesize discovered them in.
func Build(reg *typesys.Registry, fns []*sig.Function, cfg *config.Config) *Design {
	d := &Design{
		APIBasename: cfg.APIBasename,
		Namespace:   cfg.NamespaceToken,
	}

	for _, name := range reg.Names() {
		d.Types = append(d.Types, buildType(reg.Types[name]))
	}

	for _, fn := range fns {
		d.Functions = append(d.Functions, buildFunction(fn))
	}
	sort.Slice(d.Functions, func(i, j int) bool {
		return d.Functions[i].EntryName < d.Functions[j].EntryName
	})

	return d
}

func buildType(def *typesys.UserType) Type {
	t := Type{Name: def.Name}
	switch def.Kind {
	case typesys.DefEnum:
		t.Kind = "enum"
		t.FieldCount = len(def.Variants)
	case typesys.DefTupleStruct:
		t.Kind = "tuple_struct"
		t.FieldCount = len(def.Fields)
	default:
		t.Kind = "struct"
		t.FieldCount = len(def.Fields)
	}
	return t
}

func buildFunction(fn *sig.Function) Function {
	f := Function{
		EntryName:  fn.EntryName,
		Name:       fn.Resolved.Name,
		Class:      string(fn.Class),
		ParamCount: len(fn.Resolved.Params),
	}
	if fn.Resolved.Receiver != nil {
		f.Receiver = fn.Resolved.Receiver.Name
	}
	return f
}
