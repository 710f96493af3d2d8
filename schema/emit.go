// Package schema implements the Schema Emitter (spec §4.5): it renders
// the canonical Type Registry into a single C++ header defining every
// user type's forward declaration, full definition, equality and
// bincode (de)serialization methods, and support-runtime template
// specializations, in the strictly deterministic order spec §4.5
// prescribes.
package schema

import (
	"strings"
	"text/template"

	"github.com/gigainfosystems/buffi/config"
	"github.com/gigainfosystems/buffi/cpptype"
	"github.com/gigainfosystems/buffi/typesys"
	"github.com/gigainfosystems/buffi/writer"
)

type fieldView struct {
	Name       string // empty for tuple-struct positions
	Positional bool
	Index      int
	CppType    string
}

type variantView struct {
	Name        string
	Index       int
	HasPayload  bool
	PayloadType string
}

type typeView struct {
	Name                   string
	IsEnum                 bool
	IsTupleStruct          bool
	Fields                 []fieldView
	Variants               []variantView
	VariantPayloadsJoined  string // "std::tuple<...>, std::monostate, ..." in variant order
}

type schemaData struct {
	ForwardNames      []string
	Defs              []typeView
	MaxContainerDepth int
}

// Emit renders the complete type-model header for reg. The returned
// writer.File's Name carries the writer.NamespacePlaceholder token, left
// for the Writer to substitute (spec §4.6).
func Emit(reg *typesys.Registry, cfg *config.Config) (*writer.File, error) {
	data := schemaData{
		ForwardNames:      reg.Names(),
		MaxContainerDepth: cfg.MaxContainerDepth,
	}

	for _, name := range reg.TopoOrder() {
		data.Defs = append(data.Defs, buildTypeView(reg.Types[name]))
	}

	var buf strings.Builder
	if err := headerTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}

	return &writer.File{Name: writer.TypeModelFileName(), Content: buf.String()}, nil
}

func buildTypeView(def *typesys.UserType) typeView {
	tv := typeView{Name: def.Name}
	switch def.Kind {
	case typesys.DefEnum:
		tv.IsEnum = true
		var payloads []string
		for i, v := range def.Variants {
			vv := variantView{Name: v.Name, Index: i}
			if len(v.Fields) > 0 {
				vv.HasPayload = true
				parts := make([]string, len(v.Fields))
				for j, f := range v.Fields {
					parts[j] = cpptype.Of(f.Type)
				}
				vv.PayloadType = "std::tuple<" + strings.Join(parts, ", ") + ">"
				payloads = append(payloads, vv.PayloadType)
			} else {
				payloads = append(payloads, "std::monostate")
			}
			tv.Variants = append(tv.Variants, vv)
		}
		tv.VariantPayloadsJoined = strings.Join(payloads, ", ")
	case typesys.DefTupleStruct:
		tv.IsTupleStruct = true
		for i, f := range def.Fields {
			tv.Fields = append(tv.Fields, fieldView{Positional: true, Index: i, CppType: cpptype.Of(f.Type)})
		}
	default: // DefStruct, including the unit-struct (no fields) case
		for _, f := range def.Fields {
			tv.Fields = append(tv.Fields, fieldView{Name: f.Name, CppType: cpptype.Of(f.Type)})
		}
	}
	return tv
}

var headerTemplate = template.Must(template.New("schema").Funcs(template.FuncMap{
	"join": func(sep string, items []string) string { return strings.Join(items, sep) },
}).Parse(strings.TrimLeft(`
#pragma once

#include <array>
#include <cstdint>
#include <map>
#include <optional>
#include <set>
#include <string>
#include <tuple>
#include <variant>
#include <vector>

#include "support/bincode.hpp"
#include "support/serde.hpp"

namespace BUFFI_NAMESPACE {

// --- forward declarations -------------------------------------------------
{{- range .ForwardNames }}
struct {{ . }};
{{- end }}

// --- definitions -----------------------------------------------------------
{{- range .Defs }}
{{ if .IsEnum -}}
struct {{ .Name }} {
    enum class Tag : uint32_t {
        {{- range .Variants }}
        {{ .Name }} = {{ .Index }},
        {{- end }}
    };
    Tag tag;
    std::variant<{{ .VariantPayloadsJoined }}> payload;
};
{{- else if .IsTupleStruct -}}
struct {{ .Name }} {
    {{- range .Fields }}
    {{ .CppType }} field{{ .Index }};
    {{- end }}
};
{{- else -}}
struct {{ .Name }} {
    {{- range .Fields }}
    {{ .CppType }} {{ .Name }};
    {{- end }}
};
{{- end }}
{{- end }}

// --- equality, serialize, deserialize --------------------------------------
{{- range .Defs }}

inline bool operator==(const {{ .Name }}& lhs, const {{ .Name }}& rhs) {
{{- if .IsEnum }}
    if (lhs.tag != rhs.tag) return false;
    return lhs.payload == rhs.payload;
{{- else if .IsTupleStruct }}
    return std::tie({{ range $i, $f := .Fields }}{{ if $i }}, {{ end }}lhs.field{{ $f.Index }}{{ end }}) ==
           std::tie({{ range $i, $f := .Fields }}{{ if $i }}, {{ end }}rhs.field{{ $f.Index }}{{ end }});
{{- else }}
    return std::tie({{ range $i, $f := .Fields }}{{ if $i }}, {{ end }}lhs.{{ $f.Name }}{{ end }}) ==
           std::tie({{ range $i, $f := .Fields }}{{ if $i }}, {{ end }}rhs.{{ $f.Name }}{{ end }});
{{- end }}
}

inline std::vector<uint8_t> bincodeSerialize(const {{ .Name }}& v) {
    ::buffi::support::ByteWriter w;
    ::buffi::support::serialize_into(w, v);
    return w.take();
}

inline {{ .Name }} bincodeDeserialize_{{ .Name }}(const std::vector<uint8_t>& bytes) {
    ::buffi::support::ByteReader r(bytes);
    auto v = ::buffi::support::deserialize_as<{{ .Name }}>(r);
    if (!r.at_end()) {
        throw ::buffi::support::deserialization_error("Some input bytes were not read");
    }
    return v;
}
{{- end }}

} // namespace BUFFI_NAMESPACE

namespace buffi::support {

// --- support runtime template specializations ------------------------------
{{- range .Defs }}
{{- $typeName := .Name }}

template <>
inline void serialize_into<::BUFFI_NAMESPACE::{{ .Name }}>(ByteWriter& w, const ::BUFFI_NAMESPACE::{{ .Name }}& v) {
    increase_container_depth({{ $.MaxContainerDepth }});
{{- if .IsEnum }}
    w.write_u32(static_cast<uint32_t>(v.tag));
    std::visit([&w](const auto& payload) { serialize_into(w, payload); }, v.payload);
{{- else if .IsTupleStruct }}
    {{- range .Fields }}
    serialize_into(w, v.field{{ .Index }});
    {{- end }}
{{- else }}
    {{- range .Fields }}
    serialize_into(w, v.{{ .Name }});
    {{- end }}
{{- end }}
    decrease_container_depth();
}

template <>
inline ::BUFFI_NAMESPACE::{{ .Name }} deserialize_as<::BUFFI_NAMESPACE::{{ .Name }}>(ByteReader& r) {
    increase_container_depth({{ $.MaxContainerDepth }});
    ::BUFFI_NAMESPACE::{{ .Name }} v{};
{{- if .IsEnum }}
    v.tag = static_cast<::BUFFI_NAMESPACE::{{ .Name }}::Tag>(r.read_u32());
    switch (v.tag) {
    {{- range .Variants }}
    case ::BUFFI_NAMESPACE::{{ $typeName }}::Tag::{{ .Name }}:
        v.payload = {{ if .HasPayload }}deserialize_as<{{ .PayloadType }}>(r){{ else }}std::monostate{}{{ end }};
        break;
    {{- end }}
    default:
        throw deserialization_error("unknown variant tag");
    }
{{- else if .IsTupleStruct }}
    {{- range .Fields }}
    v.field{{ .Index }} = deserialize_as<{{ .CppType }}>(r);
    {{- end }}
{{- else }}
    {{- range .Fields }}
    v.{{ .Name }} = deserialize_as<{{ .CppType }}>(r);
    {{- end }}
{{- end }}
    decrease_container_depth();
    return v;
}
{{- end }}

} // namespace buffi::support
`, "\n")))
