package typesys

import (
	"sort"

	"github.com/gigainfosystems/buffi/docloader"
	"github.com/gigainfosystems/buffi/errtax"
)

// DefKind distinguishes the three shapes a User Type Definition may take
// (spec §3).
type DefKind string

const (
	DefStruct      DefKind = "struct"
	DefTupleStruct DefKind = "tuple_struct"
	DefEnum        DefKind = "enum"
)

// FieldDef is one member of a struct or enum variant. Name is empty for
// tuple-struct and tuple-variant members, which are positional.
type FieldDef struct {
	Name string
	Type *Term
}

// VariantDef is one enum variant. Shape is "unit", "tuple", or "named",
// mirroring docloader.Variant.
type VariantDef struct {
	Name   string
	Shape  string
	Fields []FieldDef
}

// UserType is a canonically-named, fully-resolved user type definition.
type UserType struct {
	Name     string
	Kind     DefKind
	Fields   []FieldDef   // struct / tuple_struct
	Variants []VariantDef // enum
	SourceID docloader.ItemID
}

// Registry is the canonical Type Registry the resolver populates (spec
// §4.3). Once resolution completes it is immutable.
type Registry struct {
	Types map[string]*UserType
}

func NewRegistry() *Registry {
	return &Registry{Types: map[string]*UserType{}}
}

// Register inserts def under its canonical name, or verifies an existing
// entry at that name originated from the same source item (idempotent
// re-registration during recursive resolution). A name reused by a
// different source item is a genuine canonical-name collision (spec
// invariant: distinct types never share a mangled name).
func (r *Registry) Register(def *UserType) error {
	existing, ok := r.Types[def.Name]
	if !ok {
		r.Types[def.Name] = def
		return nil
	}
	if existing.SourceID != def.SourceID {
		return errtax.NameCollision(
			"canonical name %q produced by both %q and %q", def.Name, existing.SourceID, def.SourceID)
	}
	return nil
}

// Names returns every registered canonical name in lexicographic order,
// the order the Schema Emitter uses for forward declarations (spec §4.5).
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.Types))
	for n := range r.Types {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
