package ir

type (
	// Design is the deterministic, generator-facing summary of one resolved
	// bridge: every registered type and every synthesized entry point,
	// ordered so callers can iterate without relying on map order.
	Design struct {
		// APIBasename is the <api> token used for emitted file names.
		APIBasename string `json:"api_basename"`
		// Namespace is the C++ namespace the facade is generated into.
		Namespace string `json:"namespace"`
		// Types is every registered user type, lex-sorted by canonical name.
		Types []Type `json:"types"`
		// Functions is every synthesized entry point, sorted by entry name.
		Functions []Function `json:"functions"`
	}

	// Type summarizes one registered user type.
	Type struct {
		// Name is the canonical (possibly mangled) type name.
		Name string `json:"name"`
		// Kind is one of "struct", "tuple_struct", "enum".
		Kind string `json:"kind"`
		// FieldCount is the number of struct fields or positional slots;
		// for enums it is the number of variants.
		FieldCount int `json:"field_count"`
	}

	// Function summarizes one synthesized ABI entry point.
	Function struct {
		// EntryName is the buffi_<canon> extern "C" symbol name.
		EntryName string `json:"entry_name"`
		// Name is the source function or method name.
		Name string `json:"name"`
		// Class is one of "free_standing", "async_free_standing",
		// "client_method", "async_client_method".
		Class string `json:"class"`
		// Receiver is the owning client type's canonical name, empty for
		// free-standing functions.
		Receiver string `json:"receiver,omitempty"`
		// ParamCount is the number of synthesized parameters.
		ParamCount int `json:"param_count"`
	}
)
