// Package cpptype renders canonical Type Terms into their C++ spelling.
// Both the Schema Emitter and the Facade Emitter need the same wire-type
// table (spec §4.5's primitive and container mapping), so it lives here
// once instead of being reimplemented per emitter.
package cpptype

import (
	"fmt"
	"strings"

	"github.com/gigainfosystems/buffi/typesys"
)

// Primitive maps a wire primitive name to its C++ spelling.
func Primitive(wire string) string {
	switch wire {
	case typesys.PrimBool:
		return "bool"
	case typesys.PrimI8:
		return "int8_t"
	case typesys.PrimI16:
		return "int16_t"
	case typesys.PrimI32:
		return "int32_t"
	case typesys.PrimI64:
		return "int64_t"
	case typesys.PrimI128:
		return "__int128"
	case typesys.PrimU8:
		return "uint8_t"
	case typesys.PrimU16:
		return "uint16_t"
	case typesys.PrimU32:
		return "uint32_t"
	case typesys.PrimU64:
		return "uint64_t"
	case typesys.PrimU128:
		return "unsigned __int128"
	case typesys.PrimF32:
		return "float"
	case typesys.PrimF64:
		return "double"
	case typesys.PrimString:
		return "std::string"
	case typesys.PrimBytes:
		return "std::vector<uint8_t>"
	case typesys.PrimVoid:
		return "void"
	default:
		return wire
	}
}

// Of renders the C++ spelling of a resolved Type Term.
func Of(t *typesys.Term) string {
	switch t.Kind {
	case typesys.KindPrimitive:
		return Primitive(t.Prim)
	case typesys.KindSequence:
		return fmt.Sprintf("std::vector<%s>", Of(t.Elem))
	case typesys.KindOption:
		return fmt.Sprintf("std::optional<%s>", Of(t.Elem))
	case typesys.KindSet:
		return fmt.Sprintf("std::set<%s>", Of(t.Elem))
	case typesys.KindFixedArray:
		return fmt.Sprintf("std::array<%s, %d>", Of(t.Elem), t.Len)
	case typesys.KindMap:
		return fmt.Sprintf("std::map<%s, %s>", Of(t.Key), Of(t.Value))
	case typesys.KindTuple:
		parts := make([]string, len(t.Elems))
		for i, e := range t.Elems {
			parts[i] = Of(e)
		}
		return fmt.Sprintf("std::tuple<%s>", strings.Join(parts, ", "))
	case typesys.KindNamed:
		return t.Name
	case typesys.KindBoxed:
		return fmt.Sprintf("::buffi::support::boxed<%s>", t.Name)
	default:
		return "void"
	}
}

// IsVoid reports whether t is the unit/void primitive.
func IsVoid(t *typesys.Term) bool {
	return t.Kind == typesys.KindPrimitive && t.Prim == typesys.PrimVoid
}
