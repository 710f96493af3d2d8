// Package typesys implements the Type Resolver (spec §4.3) and the
// canonical Type Term / User Type Definition model (spec §3): it closes
// the type graph transitively from the Annotation Interpreter's seed set,
// applies proxy/override substitution, monomorphizes generics, and detects
// and boxes cycle-closing references (BoxCycles) so the Schema Emitter can
// define every type in topological order.
package typesys

// Kind tags the algebraic shape of a canonical Type Term (spec §3).
type Kind string

const (
	KindPrimitive  Kind = "primitive"
	KindSequence   Kind = "sequence"
	KindOption     Kind = "option"
	KindTuple      Kind = "tuple"
	KindFixedArray Kind = "fixed_array"
	KindMap        Kind = "map"
	KindSet        Kind = "set"
	KindNamed      Kind = "named"
	KindBoxed      Kind = "boxed"
)

// Wire names for the primitive set (spec §3, §9: "primitive names spelled
// as their wire names").
const (
	PrimBool   = "bool"
	PrimI8     = "i8"
	PrimI16    = "i16"
	PrimI32    = "i32"
	PrimI64    = "i64"
	PrimI128   = "i128"
	PrimU8     = "u8"
	PrimU16    = "u16"
	PrimU32    = "u32"
	PrimU64    = "u64"
	PrimU128   = "u128"
	PrimF32    = "f32"
	PrimF64    = "f64"
	PrimString = "String"
	PrimBytes  = "Bytes"
	PrimVoid   = "void"
)

// Term is the canonical, fully-resolved Type Term (spec §3). Exactly one
// of its fields is meaningful, selected by Kind.
type Term struct {
	Kind Kind

	// Prim holds the wire name when Kind == KindPrimitive.
	Prim string

	// Elem holds the element type for KindSequence, KindOption, KindSet,
	// and KindFixedArray.
	Elem *Term

	// Elems holds the ordered member types for KindTuple.
	Elems []*Term

	// Key/Value hold the key and value types for KindMap.
	Key   *Term
	Value *Term

	// Len holds the fixed length for KindFixedArray.
	Len int

	// Name holds the canonical registry name for KindNamed and KindBoxed.
	Name string
}

func Primitive(name string) *Term { return &Term{Kind: KindPrimitive, Prim: name} }
func Sequence(elem *Term) *Term   { return &Term{Kind: KindSequence, Elem: elem} }
func Option(elem *Term) *Term     { return &Term{Kind: KindOption, Elem: elem} }
func Set(elem *Term) *Term        { return &Term{Kind: KindSet, Elem: elem} }
func FixedArray(elem *Term, n int) *Term {
	return &Term{Kind: KindFixedArray, Elem: elem, Len: n}
}
func MapOf(key, value *Term) *Term { return &Term{Kind: KindMap, Key: key, Value: value} }
func TupleOf(elems ...*Term) *Term { return &Term{Kind: KindTuple, Elems: elems} }
func Named(name string) *Term      { return &Term{Kind: KindNamed, Name: name} }
func Boxed(name string) *Term      { return &Term{Kind: KindBoxed, Name: name} }

// Walk calls visit for t and every Term reachable from it (pre-order,
// deterministic). visit may return false to stop descending into t's
// children (but Walk still continues with t's siblings at the caller).
func (t *Term) Walk(visit func(*Term) bool) {
	if t == nil {
		return
	}
	if !visit(t) {
		return
	}
	switch t.Kind {
	case KindSequence, KindOption, KindSet, KindFixedArray, KindBoxed:
		t.Elem.Walk(visit)
	case KindTuple:
		for _, e := range t.Elems {
			e.Walk(visit)
		}
	case KindMap:
		t.Key.Walk(visit)
		t.Value.Walk(visit)
	}
}

// NamedRefs returns the distinct canonical names of every KindNamed or
// KindBoxed term reachable from t, preserving first-seen order.
func (t *Term) NamedRefs() []string {
	seen := map[string]bool{}
	var out []string
	t.Walk(func(n *Term) bool {
		if n.Kind == KindNamed || n.Kind == KindBoxed {
			if !seen[n.Name] {
				seen[n.Name] = true
				out = append(out, n.Name)
			}
		}
		return true
	})
	return out
}
