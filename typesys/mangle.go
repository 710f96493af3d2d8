package typesys

import "strings"

// Mangle produces the canonical name for a (possibly monomorphized) type:
// "<Base>" with no generic arguments, or "<Base>_<Arg1>_<Arg2>..." with
// one argument per generic parameter, each argument spelled as its own
// canonical name (spec §3, §9).
func Mangle(base string, argNames []string) string {
	if len(argNames) == 0 {
		return base
	}
	return base + "_" + strings.Join(argNames, "_")
}

// canonArgName returns the name used as a mangling argument for t: its
// wire name if primitive, its canonical registry name otherwise.
func canonArgName(t *Term) string {
	if t.Kind == KindPrimitive {
		return t.Prim
	}
	return t.Name
}

// ResultCarrierName is the canonical name of the synthesized Result tagged
// union for return type r (spec §4.4): "Result_<canon(R)>_SerializableError".
func ResultCarrierName(r *Term) string {
	return "Result_" + canonArgName(r) + "_SerializableError"
}
