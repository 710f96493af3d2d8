package typesys

import "sort"

// edge is one field-dependency arc in the registry's reference graph: type
// From has a field whose type tree contains a direct (unboxed) reference
// to type To.
type edge struct {
	from  string
	to    string
	field int // index into From's Fields (or Variants[?].Fields, flattened)
}

// BoxCycles detects every strongly connected component in the registry's
// field-dependency graph and boxes exactly one back edge per component,
// repeating until the graph is acyclic (spec §4.3, §9: "a single edge per
// cycle, selected deterministically by canonical-name order"). It mutates
// the Term trees already stored in reg's UserTypes in place.
func BoxCycles(reg *Registry) error {
	for {
		edges := fieldEdges(reg)
		comps := tarjanSCCs(reg.Names(), edges)

		target := pickCyclicEdge(comps, edges)
		if target == nil {
			return nil
		}
		boxFieldEdge(reg, *target)
	}
}

// fieldEdges enumerates every direct type reference between registered
// user types, skipping occurrences already boxed.
func fieldEdges(reg *Registry) []edge {
	var out []edge
	for _, name := range reg.Names() {
		def := reg.Types[name]
		fieldIdx := 0
		walkFields(def, func(f *FieldDef) {
			idx := fieldIdx
			fieldIdx++
			seen := map[string]bool{}
			f.Type.Walk(func(t *Term) bool {
				if t.Kind == KindNamed {
					if !seen[t.Name] {
						seen[t.Name] = true
						out = append(out, edge{from: name, to: t.Name, field: idx})
					}
				}
				// Do not descend past an already-boxed occurrence: that
				// indirection already breaks the cycle at this point.
				return t.Kind != KindBoxed
			})
		})
	}
	return out
}

// walkFields visits every FieldDef of def, covering both struct fields and
// enum variant fields, in deterministic declaration order.
func walkFields(def *UserType, visit func(*FieldDef)) {
	for i := range def.Fields {
		visit(&def.Fields[i])
	}
	for vi := range def.Variants {
		for fi := range def.Variants[vi].Fields {
			visit(&def.Variants[vi].Fields[fi])
		}
	}
}

// tarjanSCCs computes strongly connected components over the directed
// graph (nodes, edges), returning each component as a sorted slice of node
// names. Iteration order is driven by the (already sorted) nodes slice, so
// results are deterministic.
func tarjanSCCs(nodes []string, edges []edge) [][]string {
	adj := map[string][]string{}
	for _, e := range edges {
		adj[e.from] = append(adj[e.from], e.to)
	}
	for _, list := range adj {
		sort.Strings(list)
	}

	index := map[string]int{}
	lowlink := map[string]int{}
	onStack := map[string]bool{}
	var stack []string
	counter := 0
	var comps [][]string

	var strongconnect func(v string)
	strongconnect = func(v string) {
		index[v] = counter
		lowlink[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range adj[v] {
			if _, ok := index[w]; !ok {
				strongconnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if index[w] < lowlink[v] {
					lowlink[v] = index[w]
				}
			}
		}

		if lowlink[v] == index[v] {
			var comp []string
			for {
				n := len(stack) - 1
				w := stack[n]
				stack = stack[:n]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			sort.Strings(comp)
			comps = append(comps, comp)
		}
	}

	for _, v := range nodes {
		if _, ok := index[v]; !ok {
			strongconnect(v)
		}
	}
	return comps
}

// pickCyclicEdge finds the lexicographically smallest (from, to) edge
// lying inside a non-trivial component (size > 1, or a single node with a
// self-edge), which is the next edge BoxCycles must box.
func pickCyclicEdge(comps [][]string, edges []edge) *edge {
	inComp := map[string]string{} // node -> its component's representative (first, sorted) name
	multi := map[string]bool{}
	for _, c := range comps {
		rep := c[0]
		isMulti := len(c) > 1
		members := map[string]bool{}
		for _, n := range c {
			inComp[n] = rep
			members[n] = true
		}
		if isMulti {
			multi[rep] = true
		} else if hasSelfEdge(edges, c[0]) {
			multi[rep] = true
		}
	}

	var candidates []edge
	for _, e := range edges {
		rf, ok1 := inComp[e.from]
		rt, ok2 := inComp[e.to]
		if ok1 && ok2 && rf == rt && multi[rf] {
			candidates = append(candidates, e)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].from != candidates[j].from {
			return candidates[i].from < candidates[j].from
		}
		return candidates[i].to < candidates[j].to
	})
	return &candidates[0]
}

func hasSelfEdge(edges []edge, node string) bool {
	for _, e := range edges {
		if e.from == node && e.to == node {
			return true
		}
	}
	return false
}

// boxFieldEdge flips the first unboxed KindNamed(target) occurrence
// reachable from the chosen field's Term tree into a KindBoxed of the same
// name, breaking that one cycle-closing reference.
func boxFieldEdge(reg *Registry, e edge) {
	def := reg.Types[e.from]
	idx := 0
	var found *FieldDef
	walkFields(def, func(f *FieldDef) {
		if found != nil {
			return
		}
		cur := idx
		idx++
		if cur != e.field {
			return
		}
		found = f
	})
	if found == nil {
		return
	}
	boxNamedOccurrence(found.Type, e.to)
}

// boxNamedOccurrence flips the first KindNamed(name) node reachable from t
// (pre-order, not descending past already-boxed nodes) to KindBoxed.
func boxNamedOccurrence(t *Term, name string) bool {
	if t == nil {
		return false
	}
	if t.Kind == KindNamed && t.Name == name {
		t.Kind = KindBoxed
		return true
	}
	switch t.Kind {
	case KindSequence, KindOption, KindSet, KindFixedArray:
		return boxNamedOccurrence(t.Elem, name)
	case KindTuple:
		for _, e := range t.Elems {
			if boxNamedOccurrence(e, name) {
				return true
			}
		}
	case KindMap:
		if boxNamedOccurrence(t.Key, name) {
			return true
		}
		return boxNamedOccurrence(t.Value, name)
	}
	return false
}
