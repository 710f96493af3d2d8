// Package errtax defines the fatal generator-time error taxonomy (spec §7).
//
// Every error the pipeline can return is one of the kinds below, each
// wrapping its underlying cause so callers can use errors.As to recover
// the kind without parsing message text.
package errtax

import "fmt"

// Kind identifies one of the generator-time error categories from spec §7.
type Kind string

const (
	// KindDocLoad marks an I/O or parse failure of the input doc document.
	KindDocLoad Kind = "doc_load_error"
	// KindUnsupportedDocSchema marks an incompatible doc schema version.
	KindUnsupportedDocSchema Kind = "unsupported_doc_schema"
	// KindUnsupportedConstruct marks a type or signature the bridge cannot represent.
	KindUnsupportedConstruct Kind = "unsupported_construct"
	// KindDanglingReference marks a reference to an item not present in the doc index.
	KindDanglingReference Kind = "dangling_reference"
	// KindAmbiguousProxy marks multiple proxies declared for the same target.
	KindAmbiguousProxy Kind = "ambiguous_proxy"
	// KindNameCollision marks two user types monomorphizing to the same canonical name.
	KindNameCollision Kind = "name_collision"
	// KindCycleWithoutBoxing marks the impossible state of an internal invariant failure.
	KindCycleWithoutBoxing Kind = "cycle_without_boxing"
)

// Error is a fatal generator-time error tagged with its taxonomy Kind.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func newf(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// DocLoadError reports an I/O or parse failure while loading the doc document.
func DocLoadError(cause error, format string, args ...any) *Error {
	return newf(KindDocLoad, cause, format, args...)
}

// UnsupportedDocSchema reports a doc document whose schema shape or format_version
// falls outside the range this generator supports.
func UnsupportedDocSchema(cause error, format string, args ...any) *Error {
	return newf(KindUnsupportedDocSchema, cause, format, args...)
}

// UnsupportedConstruct reports a source construct the bridge cannot represent
// (trait object, function pointer, lifetime-bearing non-owned reference, unsized type).
func UnsupportedConstruct(format string, args ...any) *Error {
	return newf(KindUnsupportedConstruct, nil, format, args...)
}

// DanglingReference reports a reference to an item id absent from the doc index.
func DanglingReference(format string, args ...any) *Error {
	return newf(KindDanglingReference, nil, format, args...)
}

// AmbiguousProxy reports two or more proxy declarations targeting the same foreign type.
func AmbiguousProxy(format string, args ...any) *Error {
	return newf(KindAmbiguousProxy, nil, format, args...)
}

// NameCollision reports two distinct user types monomorphizing to the same canonical name.
func NameCollision(format string, args ...any) *Error {
	return newf(KindNameCollision, nil, format, args...)
}

// CycleWithoutBoxing reports the internal-invariant failure of a type cycle emitted
// with no boxed back edge. This should never happen if the resolver ran correctly.
func CycleWithoutBoxing(format string, args ...any) *Error {
	return newf(KindCycleWithoutBoxing, nil, format, args...)
}
