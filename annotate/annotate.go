// Package annotate implements the Annotation Interpreter (spec §4.2): it
// filters doc items by the presence of recognized attribute markers and
// produces the seed set of root items (exported free functions, exported
// client types and their exported methods) plus the substitution and flag
// tables the Type Resolver (package typesys) consumes.
package annotate

import (
	"sort"
	"strings"

	"github.com/gigainfosystems/buffi/docloader"
	"github.com/gigainfosystems/buffi/errtax"
)

const (
	markerExport       = "export"
	markerClient       = "client"
	markerAsync        = "async"
	markerProxy        = "proxy"
	markerTypeOverride = "type_override"
	markerCustomSerde  = "custom_serde"
)

// ClientMethod pairs a client type with one of its exported methods.
type ClientMethod struct {
	ClientType docloader.ItemID
	Method     docloader.ItemID
}

// Override is a site-local type_override(target=, with=) substitution.
type Override struct {
	Target string // fully-qualified path of the type being replaced
	With   string // fully-qualified path (or registered local type name) substituted in
}

// Result is the seed set and substitution/flag tables the interpreter
// produces from one doc graph.
type Result struct {
	// FreeFunctions are exported functions with no receiver.
	FreeFunctions []docloader.ItemID
	// ClientTypes are structs marked #[client].
	ClientTypes []docloader.ItemID
	// ClientMethods are exported methods attached to a client type via an
	// exported impl block.
	ClientMethods []ClientMethod
	// Async is the set of item ids whose function requires executor context.
	Async map[docloader.ItemID]bool
	// ProxyMap maps a foreign type's fully-qualified path to the id of the
	// local struct declared as its proxy.
	ProxyMap map[string]docloader.ItemID
	// Overrides maps a "<item id>#<field or param name>" site key to its
	// site-local override. Enum variant fields use
	// "<item id>#<variant>#<field name>", and a positional field's index
	// stands in for its name.
	Overrides map[string]Override
	// CustomSerde is the set of field site keys (same format as Overrides)
	// opted into user-written (de)serialization.
	CustomSerde map[string]bool
}

// Interpret walks every item in g.Doc.Index and classifies it per spec §4.2.
func Interpret(g *docloader.Graph) (*Result, error) {
	res := &Result{
		Async:       map[docloader.ItemID]bool{},
		ProxyMap:    map[string]docloader.ItemID{},
		Overrides:   map[string]Override{},
		CustomSerde: map[string]bool{},
	}

	proxyTargetOwner := map[string]docloader.ItemID{}

	for id, item := range g.Doc.Index {
		switch item.Inner.Kind {
		case docloader.KindFunction:
			if hasMarker(item.Attrs, markerExport) {
				res.FreeFunctions = append(res.FreeFunctions, id)
			}
			if hasMarker(item.Attrs, markerAsync) || (item.Inner.Function != nil && item.Inner.Function.IsAsync) {
				res.Async[id] = true
			}
			if err := collectParamSiteAttrs(id, item.Inner.Function, res); err != nil {
				return nil, err
			}

		case docloader.KindStruct:
			if hasMarker(item.Attrs, markerClient) {
				res.ClientTypes = append(res.ClientTypes, id)
			}
			if target, ok := proxyTarget(item.Attrs); ok {
				if owner, dup := proxyTargetOwner[target]; dup && owner != id {
					return nil, errtax.AmbiguousProxy(
						"foreign type %q has proxies declared by both %q and %q", target, owner, id)
				}
				proxyTargetOwner[target] = id
				res.ProxyMap[target] = id
			}
			if err := collectFieldSiteAttrs(id, item.Inner.Struct, res); err != nil {
				return nil, err
			}

		case docloader.KindEnum:
			if item.Inner.Enum != nil {
				for _, v := range item.Inner.Enum.Variants {
					if err := collectFieldSiteAttrsSlice(docloader.ItemID(string(id)+"#"+v.Name), v.Fields, res); err != nil {
						return nil, err
					}
				}
			}

		case docloader.KindImpl:
			if !hasMarker(item.Attrs, markerExport) || item.Inner.Impl == nil {
				continue
			}
			for _, methodID := range item.Inner.Impl.Items {
				method, ok := g.Lookup(methodID)
				if !ok {
					return nil, errtax.DanglingReference("impl %q references unknown method item %q", id, methodID)
				}
				if !hasMarker(method.Attrs, markerExport) {
					continue
				}
				res.ClientMethods = append(res.ClientMethods, ClientMethod{
					ClientType: item.Inner.Impl.ForID,
					Method:     methodID,
				})
				if hasMarker(method.Attrs, markerAsync) || (method.Inner.Function != nil && method.Inner.Function.IsAsync) {
					res.Async[methodID] = true
				}
			}
		}
	}

	// An exported impl method carries the export marker on its own function
	// item too; it is a client method, not a free function.
	methods := make(map[docloader.ItemID]bool, len(res.ClientMethods))
	for _, cm := range res.ClientMethods {
		methods[cm.Method] = true
	}
	free := res.FreeFunctions[:0]
	for _, id := range res.FreeFunctions {
		if !methods[id] {
			free = append(free, id)
		}
	}
	res.FreeFunctions = free

	// g.Doc.Index is a map; sort so every downstream emission order is stable.
	sort.Slice(res.FreeFunctions, func(i, j int) bool { return res.FreeFunctions[i] < res.FreeFunctions[j] })
	sort.Slice(res.ClientTypes, func(i, j int) bool { return res.ClientTypes[i] < res.ClientTypes[j] })
	sort.Slice(res.ClientMethods, func(i, j int) bool { return res.ClientMethods[i].Method < res.ClientMethods[j].Method })

	return res, nil
}

func collectParamSiteAttrs(fnID docloader.ItemID, fn *docloader.FunctionInner, res *Result) error {
	if fn == nil {
		return nil
	}
	for _, p := range fn.Params {
		key := string(fnID) + "#" + p.Name
		if ov, ok := typeOverride(p.Attrs); ok {
			res.Overrides[key] = ov
		}
	}
	return nil
}

func collectFieldSiteAttrs(ownerID docloader.ItemID, s *docloader.StructInner, res *Result) error {
	if s == nil {
		return nil
	}
	return collectFieldSiteAttrsSlice(ownerID, s.Fields, res)
}

func collectFieldSiteAttrsSlice(ownerID docloader.ItemID, fields []docloader.Field, res *Result) error {
	for i, f := range fields {
		name := f.Name
		if name == "" {
			name = string(rune('0' + i))
		}
		key := string(ownerID) + "#" + name
		if ov, ok := typeOverride(f.Attrs); ok {
			res.Overrides[key] = ov
		}
		if hasMarker(f.Attrs, markerCustomSerde) {
			res.CustomSerde[key] = true
		}
	}
	return nil
}

func hasMarker(attrs []string, marker string) bool {
	for _, a := range attrs {
		if a == marker || strings.HasPrefix(a, marker+"(") {
			return true
		}
	}
	return false
}

// proxyTarget extracts the target=<path> argument of a proxy(...) attribute.
func proxyTarget(attrs []string) (string, bool) {
	for _, a := range attrs {
		if !strings.HasPrefix(a, markerProxy+"(") {
			continue
		}
		args := parseArgs(a)
		if t, ok := args["target"]; ok {
			return t, true
		}
	}
	return "", false
}

// typeOverride extracts the target=/with= arguments of a type_override(...) attribute.
func typeOverride(attrs []string) (Override, bool) {
	for _, a := range attrs {
		if !strings.HasPrefix(a, markerTypeOverride+"(") {
			continue
		}
		args := parseArgs(a)
		target, hasTarget := args["target"]
		with, hasWith := args["with"]
		if hasTarget && hasWith {
			return Override{Target: target, With: with}, true
		}
	}
	return Override{}, false
}

// parseArgs parses "marker(k1=v1,k2=v2)" into {k1:v1, k2:v2}.
func parseArgs(attr string) map[string]string {
	out := map[string]string{}
	open := strings.IndexByte(attr, '(')
	closeIdx := strings.LastIndexByte(attr, ')')
	if open < 0 || closeIdx < 0 || closeIdx <= open {
		return out
	}
	inner := attr[open+1 : closeIdx]
	for _, part := range strings.Split(inner, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		out[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
	}
	return out
}
