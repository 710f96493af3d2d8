package typesys

import "sort"

// TopoOrder returns every registered type name in a topological order over
// non-boxed field-dependency edges: a type's full definition always comes
// after the definitions of every type it references by value (spec §4.5
// step 2, "topological order over non-boxed edges"). It must be called
// after BoxCycles has run, since an unboxed cycle has no valid topological
// order.
func (r *Registry) TopoOrder() []string {
	adj := map[string][]string{}
	for _, name := range r.Names() {
		def := r.Types[name]
		seen := map[string]bool{}
		walkFields(def, func(f *FieldDef) {
			f.Type.Walk(func(t *Term) bool {
				if t.Kind == KindNamed && !seen[t.Name] {
					seen[t.Name] = true
					adj[name] = append(adj[name], t.Name)
				}
				return t.Kind != KindBoxed
			})
		})
		sort.Strings(adj[name])
	}

	visited := map[string]bool{}
	var order []string
	var visit func(string)
	visit = func(n string) {
		if visited[n] {
			return
		}
		visited[n] = true
		for _, dep := range adj[n] {
			visit(dep)
		}
		order = append(order, n)
	}
	for _, n := range r.Names() {
		visit(n)
	}
	return order
}
