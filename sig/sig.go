// Package sig implements the Signature Synthesizer (spec §4.4): for every
// resolved exported function it registers the two-variant Result carrier
// enum, classifies the function by receiver and async-ness, and assigns
// its synthetic extern "C" entry-point name.
package sig

import (
	"github.com/gigainfosystems/buffi/docloader"
	"github.com/gigainfosystems/buffi/typesys"
)

// Class is the functional classification spec §4.4 assigns every exported
// function.
type Class string

const (
	ClassFreeStanding      Class = "free_standing"
	ClassAsyncFreeStanding Class = "async_free_standing"
	ClassClientMethod      Class = "client_method"
	ClassAsyncClientMethod Class = "async_client_method"
)

// SerializableErrorName is the fixed, always-registered error arm (spec §3).
const SerializableErrorName = "SerializableError"

// Function is one synthesized entry point: a resolved signature plus its
// wire-facing identity (entry name, result carrier, classification).
type Function struct {
	Resolved   *typesys.ResolvedFunction
	EntryName  string
	ResultName string // canonical name of the Result_<R>_SerializableError carrier
	Class      Class
}

// Synthesize registers SerializableError and one Result carrier per
// distinct return type into reg, then returns one Function per input
// signature in input order (spec §4.4).
func Synthesize(reg *typesys.Registry, fns []*typesys.ResolvedFunction) ([]*Function, error) {
	if err := registerSerializableError(reg); err != nil {
		return nil, err
	}

	out := make([]*Function, 0, len(fns))
	for _, fn := range fns {
		resultName, err := registerResultCarrier(reg, fn.Return)
		if err != nil {
			return nil, err
		}
		out = append(out, &Function{
			Resolved:   fn,
			EntryName:  "buffi_" + fn.Name,
			ResultName: resultName,
			Class:      classify(fn),
		})
	}
	return out, nil
}

func classify(fn *typesys.ResolvedFunction) Class {
	switch {
	case fn.Receiver != nil && fn.IsAsync:
		return ClassAsyncClientMethod
	case fn.Receiver != nil:
		return ClassClientMethod
	case fn.IsAsync:
		return ClassAsyncFreeStanding
	default:
		return ClassFreeStanding
	}
}

func registerSerializableError(reg *typesys.Registry) error {
	return reg.Register(&typesys.UserType{
		Name:     SerializableErrorName,
		Kind:     typesys.DefStruct,
		SourceID: "<synthesized:SerializableError>",
		Fields: []typesys.FieldDef{
			{Name: "message", Type: typesys.Primitive(typesys.PrimString)},
		},
	})
}

// registerResultCarrier registers (idempotently) the two-variant
// Result_<canon(R)>_SerializableError enum: Ok(tuple<R>) at index 0,
// Err(tuple<SerializableError>) at index 1 (spec §4.4, invariant 7).
func registerResultCarrier(reg *typesys.Registry, ret *typesys.Term) (string, error) {
	name := typesys.ResultCarrierName(ret)
	source := docloader.ItemID("<synthesized:" + name + ">")

	if existing, ok := reg.Types[name]; ok && existing.SourceID == source {
		return name, nil
	}

	def := &typesys.UserType{
		Name:     name,
		Kind:     typesys.DefEnum,
		SourceID: source,
		Variants: []typesys.VariantDef{
			{
				Name:   "Ok",
				Shape:  "tuple",
				Fields: []typesys.FieldDef{{Type: ret}},
			},
			{
				Name:   "Err",
				Shape:  "tuple",
				Fields: []typesys.FieldDef{{Type: typesys.Named(SerializableErrorName)}},
			},
		},
	}
	if err := reg.Register(def); err != nil {
		return "", err
	}
	return name, nil
}
