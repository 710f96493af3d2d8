package typesys

import (
	"strings"

	"github.com/gigainfosystems/buffi/annotate"
	"github.com/gigainfosystems/buffi/config"
	"github.com/gigainfosystems/buffi/docloader"
	"github.com/gigainfosystems/buffi/errtax"
)

// ResolvedFunction is a root function or client method with its
// parameters and return type rewritten into canonical Type Terms.
type ResolvedFunction struct {
	ID       docloader.ItemID
	Name     string
	Receiver *Term // non-nil for client methods: Named(clientType)
	Params   []ResolvedParam
	Return   *Term
	IsAsync  bool
}

type ResolvedParam struct {
	Name string
	Type *Term
}

// Resolver closes the type graph reachable from an annotate.Result's seed
// set and produces the canonical Type Registry plus resolved signatures
// for every root function (spec §4.3).
type Resolver struct {
	graph *docloader.Graph
	ann   *annotate.Result
	cfg   *config.Config
	reg   *Registry

	// visited memoizes (item id, mangled argument suffix) -> the Named
	// term already allocated for it, both for deduplication and to make
	// direct self-recursion terminate (spec §9).
	visited map[string]*Term
}

func NewResolver(g *docloader.Graph, ann *annotate.Result, cfg *config.Config) *Resolver {
	return &Resolver{
		graph:   g,
		ann:     ann,
		cfg:     cfg,
		reg:     NewRegistry(),
		visited: map[string]*Term{},
	}
}

// Resolve runs the full Type Resolver stage: it resolves every free
// function and client method named by ann, registering every user type
// transitively reachable from their signatures, then boxes cycle-closing
// edges (spec §4.3, invariant "no unboxed cycle reaches the registry").
func (r *Resolver) Resolve() (*Registry, []*ResolvedFunction, error) {
	var fns []*ResolvedFunction

	for _, id := range r.ann.FreeFunctions {
		fn, err := r.resolveFunctionItem(id, nil)
		if err != nil {
			return nil, nil, err
		}
		fns = append(fns, fn)
	}

	for _, cm := range r.ann.ClientMethods {
		fn, err := r.resolveFunctionItem(cm.Method, &cm.ClientType)
		if err != nil {
			return nil, nil, err
		}
		fns = append(fns, fn)
	}

	if err := BoxCycles(r.reg); err != nil {
		return nil, nil, err
	}

	return r.reg, fns, nil
}

func (r *Resolver) resolveFunctionItem(id docloader.ItemID, receiver *docloader.ItemID) (*ResolvedFunction, error) {
	item, ok := r.graph.Lookup(id)
	if !ok || item.Inner.Function == nil {
		return nil, errtax.DanglingReference("function item %q not found", id)
	}

	fn := &ResolvedFunction{
		ID:      id,
		Name:    item.Name,
		IsAsync: r.ann.Async[id],
	}

	if receiver != nil {
		clientItem, ok := r.graph.Lookup(*receiver)
		if !ok {
			return nil, errtax.DanglingReference("client type %q not found", *receiver)
		}
		recvTerm, err := r.resolveStructItem(*receiver, clientItem, nil)
		if err != nil {
			return nil, err
		}
		fn.Receiver = recvTerm
	}

	for _, p := range item.Inner.Function.Params {
		siteKey := string(id) + "#" + p.Name
		t, err := r.resolveTypeRef(p.Type, nil, siteKey)
		if err != nil {
			return nil, err
		}
		fn.Params = append(fn.Params, ResolvedParam{Name: p.Name, Type: t})
	}

	ret, err := r.resolveTypeRef(item.Inner.Function.Output, nil, string(id)+"#<return>")
	if err != nil {
		return nil, err
	}
	fn.Return = ret

	return fn, nil
}

// resolveTypeRef rewrites one doc Type Term into a canonical Term,
// substituting generic parameters, applying overrides and proxies, and
// registering any user type it reaches along the way.
func (r *Resolver) resolveTypeRef(ref docloader.TypeRef, bindings map[string]*Term, siteKey string) (*Term, error) {
	if ov, ok := r.ann.Overrides[siteKey]; ok {
		return r.resolveOverrideTarget(ov)
	}

	switch ref.Kind {
	case docloader.TypeKindPrimitive:
		return Primitive(ref.Name), nil

	case docloader.TypeKindUnit:
		return Primitive(PrimVoid), nil

	case docloader.TypeKindGenericParam:
		t, ok := bindings[ref.Name]
		if !ok {
			return nil, errtax.UnsupportedConstruct("unbound generic parameter %q at %q", ref.Name, siteKey)
		}
		return t, nil

	case docloader.TypeKindVec:
		elem, err := r.resolveTypeRef(ref.Args[0], bindings, siteKey)
		if err != nil {
			return nil, err
		}
		return Sequence(elem), nil

	case docloader.TypeKindOption:
		elem, err := r.resolveTypeRef(ref.Args[0], bindings, siteKey)
		if err != nil {
			return nil, err
		}
		return Option(elem), nil

	case docloader.TypeKindSet:
		elem, err := r.resolveTypeRef(ref.Args[0], bindings, siteKey)
		if err != nil {
			return nil, err
		}
		return Set(elem), nil

	case docloader.TypeKindMap:
		key, err := r.resolveTypeRef(*ref.Key, bindings, siteKey)
		if err != nil {
			return nil, err
		}
		val, err := r.resolveTypeRef(*ref.Value, bindings, siteKey)
		if err != nil {
			return nil, err
		}
		return MapOf(key, val), nil

	case docloader.TypeKindTuple:
		elems := make([]*Term, len(ref.Elements))
		for i, e := range ref.Elements {
			t, err := r.resolveTypeRef(e, bindings, siteKey)
			if err != nil {
				return nil, err
			}
			elems[i] = t
		}
		return TupleOf(elems...), nil

	case docloader.TypeKindArray:
		elem, err := r.resolveTypeRef(ref.Args[0], bindings, siteKey)
		if err != nil {
			return nil, err
		}
		return FixedArray(elem, ref.Len), nil

	case docloader.TypeKindBoxedSelf:
		inner, err := r.resolveTypeRef(ref.Args[0], bindings, siteKey)
		if err != nil {
			return nil, err
		}
		if inner.Kind != KindNamed {
			return nil, errtax.UnsupportedConstruct("boxed_self at %q does not wrap a named type", siteKey)
		}
		return Boxed(inner.Name), nil

	case docloader.TypeKindPath:
		return r.resolvePathRef(ref, bindings, siteKey)
	}

	return nil, errtax.UnsupportedConstruct("unrecognized type term kind %q at %q", ref.Kind, siteKey)
}

func (r *Resolver) resolveOverrideTarget(ov annotate.Override) (*Term, error) {
	localName := lastPathSegment(ov.With)
	if prim, ok := r.cfg.PrimitiveOverrides[ov.With]; ok {
		return Primitive(prim), nil
	}
	return Named(localName), nil
}

func lastPathSegment(path string) string {
	parts := strings.Split(path, "::")
	return parts[len(parts)-1]
}

func (r *Resolver) resolvePathRef(ref docloader.TypeRef, bindings map[string]*Term, siteKey string) (*Term, error) {
	fqPath, hasPath := r.graph.Path(ref.ID)

	if hasPath {
		if prim, ok := r.cfg.PrimitiveOverrides[fqPath]; ok {
			return Primitive(prim), nil
		}
		if proxyID, ok := r.ann.ProxyMap[fqPath]; ok {
			proxyItem, ok := r.graph.Lookup(proxyID)
			if !ok {
				return nil, errtax.DanglingReference("proxy target %q declares missing proxy item %q", fqPath, proxyID)
			}
			return r.resolveStructOrEnumItem(proxyID, proxyItem, nil)
		}
	}

	item, ok := r.graph.Lookup(ref.ID)
	if !ok {
		return nil, errtax.DanglingReference("type reference %q at %q resolves to no known item", ref.ID, siteKey)
	}

	if item.Inner.Kind == docloader.KindTypeAlias {
		if item.Inner.Alias == nil {
			return nil, errtax.UnsupportedConstruct("type alias %q has no target", ref.ID)
		}
		if len(ref.Args) > 0 {
			return nil, errtax.UnsupportedConstruct("generic type aliases are not supported (%q)", ref.ID)
		}
		return r.resolveTypeRef(item.Inner.Alias.Type, bindings, siteKey)
	}

	argTerms := make([]*Term, len(ref.Args))
	for i, a := range ref.Args {
		t, err := r.resolveTypeRef(a, bindings, siteKey)
		if err != nil {
			return nil, err
		}
		argTerms[i] = t
	}
	return r.resolveStructOrEnumItem(ref.ID, item, argTerms)
}

func (r *Resolver) resolveStructOrEnumItem(id docloader.ItemID, item docloader.Item, argTerms []*Term) (*Term, error) {
	switch item.Inner.Kind {
	case docloader.KindStruct:
		return r.resolveStructItem(id, item, argTerms)
	case docloader.KindEnum:
		return r.resolveEnumItem(id, item, argTerms)
	default:
		return nil, errtax.UnsupportedConstruct("item %q (kind %q) cannot be used as a type", id, item.Inner.Kind)
	}
}

func monomorphizationKey(id docloader.ItemID, argTerms []*Term) string {
	key := string(id)
	for _, a := range argTerms {
		key += "|" + canonArgName(a)
	}
	return key
}

func bindGenerics(generics []string, argTerms []*Term) map[string]*Term {
	b := make(map[string]*Term, len(generics))
	for i, g := range generics {
		if i < len(argTerms) {
			b[g] = argTerms[i]
		}
	}
	return b
}

func (r *Resolver) resolveStructItem(id docloader.ItemID, item docloader.Item, argTerms []*Term) (*Term, error) {
	key := monomorphizationKey(id, argTerms)
	if t, ok := r.visited[key]; ok {
		// A fresh term per use site: BoxCycles flips single occurrences in place.
		return Named(t.Name), nil
	}

	argNames := make([]string, len(argTerms))
	for i, a := range argTerms {
		argNames[i] = canonArgName(a)
	}
	name := Mangle(item.Name, argNames)
	named := Named(name)
	r.visited[key] = named

	bindings := bindGenerics(item.Inner.Generics, argTerms)

	def := &UserType{Name: name, SourceID: id}
	s := item.Inner.Struct
	if s == nil {
		return nil, errtax.UnsupportedConstruct("struct item %q has no body", id)
	}

	switch s.Shape {
	case "unit":
		def.Kind = DefStruct
	case "tuple":
		def.Kind = DefTupleStruct
		for i, f := range s.Fields {
			t, err := r.resolveTypeRef(f.Type, bindings, string(id)+"#"+string(rune('0'+i)))
			if err != nil {
				return nil, err
			}
			def.Fields = append(def.Fields, FieldDef{Type: t})
		}
	case "named":
		def.Kind = DefStruct
		for _, f := range s.Fields {
			t, err := r.resolveTypeRef(f.Type, bindings, string(id)+"#"+f.Name)
			if err != nil {
				return nil, err
			}
			def.Fields = append(def.Fields, FieldDef{Name: f.Name, Type: t})
		}
	default:
		return nil, errtax.UnsupportedConstruct("struct item %q has unrecognized shape %q", id, s.Shape)
	}

	if err := r.reg.Register(def); err != nil {
		return nil, err
	}
	return named, nil
}

func (r *Resolver) resolveEnumItem(id docloader.ItemID, item docloader.Item, argTerms []*Term) (*Term, error) {
	key := monomorphizationKey(id, argTerms)
	if t, ok := r.visited[key]; ok {
		// A fresh term per use site: BoxCycles flips single occurrences in place.
		return Named(t.Name), nil
	}

	argNames := make([]string, len(argTerms))
	for i, a := range argTerms {
		argNames[i] = canonArgName(a)
	}
	name := Mangle(item.Name, argNames)
	named := Named(name)
	r.visited[key] = named

	bindings := bindGenerics(item.Inner.Generics, argTerms)

	e := item.Inner.Enum
	if e == nil {
		return nil, errtax.UnsupportedConstruct("enum item %q has no body", id)
	}

	def := &UserType{Name: name, Kind: DefEnum, SourceID: id}
	for _, v := range e.Variants {
		vd := VariantDef{Name: v.Name, Shape: v.Shape}
		for i, f := range v.Fields {
			siteKey := string(id) + "#" + v.Name + "#" + f.Name
			if f.Name == "" {
				siteKey = string(id) + "#" + v.Name + "#" + string(rune('0'+i))
			}
			t, err := r.resolveTypeRef(f.Type, bindings, siteKey)
			if err != nil {
				return nil, err
			}
			vd.Fields = append(vd.Fields, FieldDef{Name: f.Name, Type: t})
		}
		def.Variants = append(def.Variants, vd)
	}

	if err := r.reg.Register(def); err != nil {
		return nil, err
	}
	return named, nil
}
