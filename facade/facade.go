// Package facade implements the Facade Emitter (spec §4.6): it renders
// the extern "C" declarations header, one *Holder class per client type,
// the free-standing function wrappers, and the single shared
// buffi_free_byte_buffer declaration that is the only sanctioned route
// for releasing a callee-allocated result buffer.
package facade

import (
	"sort"
	"strings"
	"text/template"

	"goa.design/goa/v3/codegen"

	"github.com/gigainfosystems/buffi/config"
	"github.com/gigainfosystems/buffi/cpptype"
	"github.com/gigainfosystems/buffi/sig"
	"github.com/gigainfosystems/buffi/writer"
)

type paramView struct {
	Name    string
	CppType string
}

type methodView struct {
	EntryName  string
	MethodName string
	ResultType string
	ReturnType string // "void" or cpptype.Of(Return)
	IsVoid     bool
	Receiver   string // canonical client type name, "" for free-standing
	Params     []paramView
}

type clientView struct {
	Name      string
	SnakeName string
	Methods   []methodView
	// APIFunctionsInclude is the #include path for the declarations header
	// this client's methods are declared in (writer.APIFunctionsFileName),
	// set once cfg.APIBasename is known.
	APIFunctionsInclude string
}

// Emit renders the four artifacts the Facade Emitter produces (spec
// §4.6): the C declarations header, one header per client type, the
// free-standing functions header, and — via the same declarations header
// — the shared buffi_free_byte_buffer prototype.
func Emit(fns []*sig.Function, cfg *config.Config) ([]*writer.File, error) {
	clients := map[string]*clientView{}
	var clientOrder []string
	var freeStanding []methodView

	for _, fn := range fns {
		mv := buildMethodView(fn)
		if fn.Resolved.Receiver == nil {
			freeStanding = append(freeStanding, mv)
			continue
		}
		name := fn.Resolved.Receiver.Name
		cv, ok := clients[name]
		if !ok {
			cv = &clientView{Name: name, SnakeName: codegen.SnakeCase(name)}
			clients[name] = cv
			clientOrder = append(clientOrder, name)
		}
		cv.Methods = append(cv.Methods, mv)
	}
	sort.Strings(clientOrder)

	var orderedClients []*clientView
	for _, n := range clientOrder {
		orderedClients = append(orderedClients, clients[n])
	}

	var out []*writer.File

	declFile, err := emitDeclarations(orderedClients, freeStanding, cfg)
	if err != nil {
		return nil, err
	}
	out = append(out, declFile)

	for _, cv := range orderedClients {
		f, err := emitClientHeader(cv, cfg)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}

	freeFile, err := emitFreeStanding(freeStanding, cfg)
	if err != nil {
		return nil, err
	}
	out = append(out, freeFile)

	return out, nil
}

func buildMethodView(fn *sig.Function) methodView {
	mv := methodView{
		EntryName:  fn.EntryName,
		MethodName: fn.Resolved.Name,
		ResultType: fn.ResultName,
	}
	if fn.Resolved.Receiver != nil {
		mv.Receiver = fn.Resolved.Receiver.Name
	}
	if cpptype.IsVoid(fn.Resolved.Return) {
		mv.IsVoid = true
		mv.ReturnType = "void"
	} else {
		mv.ReturnType = cpptype.Of(fn.Resolved.Return)
	}
	for _, p := range fn.Resolved.Params {
		mv.Params = append(mv.Params, paramView{Name: p.Name, CppType: cpptype.Of(p.Type)})
	}
	return mv
}

func emitDeclarations(clients []*clientView, freeStanding []methodView, cfg *config.Config) (*writer.File, error) {
	var buf strings.Builder
	data := struct {
		Clients      []*clientView
		FreeStanding []methodView
	}{clients, freeStanding}
	if err := declarationsTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return &writer.File{Name: writer.APIFunctionsFileName(cfg.APIBasename), Content: buf.String()}, nil
}

func emitClientHeader(cv *clientView, cfg *config.Config) (*writer.File, error) {
	cv.APIFunctionsInclude = writer.APIFunctionsFileName(cfg.APIBasename)
	var buf strings.Builder
	if err := clientTemplate.Execute(&buf, cv); err != nil {
		return nil, err
	}
	return &writer.File{Name: writer.ClientFileName(cfg.APIBasename, cv.SnakeName), Content: buf.String()}, nil
}

func emitFreeStanding(methods []methodView, cfg *config.Config) (*writer.File, error) {
	data := struct {
		Methods             []methodView
		APIFunctionsInclude string
	}{Methods: methods, APIFunctionsInclude: writer.APIFunctionsFileName(cfg.APIBasename)}
	var buf strings.Builder
	if err := freeStandingTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return &writer.File{Name: writer.FreeStandingFileName(cfg.APIBasename), Content: buf.String()}, nil
}

var declarationsTemplate = template.Must(template.New("decls").Parse(strings.TrimLeft(`
#pragma once

#include <cstddef>
#include <cstdint>

extern "C" {

void buffi_free_byte_buffer(uint8_t* ptr, size_t size);

{{- range .Clients }}

struct {{ .Name }};
{{ .Name }}* get_{{ .SnakeName }}();
{{- range .Methods }}
size_t {{ .EntryName }}({{ .Receiver }}* this_ptr{{ range .Params }}, const uint8_t* {{ .Name }}, size_t {{ .Name }}_size{{ end }}, uint8_t** out_ptr);
{{- end }}
{{- end }}

{{- range .FreeStanding }}
size_t {{ .EntryName }}({{ range $i, $p := .Params }}{{ if $i }}, {{ end }}const uint8_t* {{ $p.Name }}, size_t {{ $p.Name }}_size{{ end }}{{ if .Params }}, {{ end }}uint8_t** out_ptr);
{{- end }}

} // extern "C"
`, "\n")))

var clientTemplate = template.Must(template.New("client").Parse(strings.TrimLeft(`
#pragma once

#include <stdexcept>
#include <tuple>
#include <variant>
#include <vector>

#include "BUFFI_NAMESPACE.hpp"
#include "{{ .APIFunctionsInclude }}"

namespace BUFFI_NAMESPACE {

class {{ .Name }}Holder {
public:
    explicit {{ .Name }}Holder({{ .Name }}* handle) : handle_(handle) {}

{{- range .Methods }}

    {{ .ReturnType }} {{ .MethodName }}({{ range $i, $p := .Params }}{{ if $i }}, {{ end }}const {{ $p.CppType }}& {{ $p.Name }}{{ end }}) {
        {{- range .Params }}
        auto {{ .Name }}_bytes = ::buffi::support::bincodeSerialize({{ .Name }});
        {{- end }}
        uint8_t* out_ptr = nullptr;
        size_t res_size = {{ .EntryName }}(handle_{{ range .Params }}, {{ .Name }}_bytes.data(), {{ .Name }}_bytes.size(){{ end }}, &out_ptr);
        std::vector<uint8_t> res_bytes(out_ptr, out_ptr + res_size);
        buffi_free_byte_buffer(out_ptr, res_size);
        auto result = bincodeDeserialize_{{ .ResultType }}(res_bytes);
        if (result.tag == {{ .ResultType }}::Tag::Err) {
            throw std::get<1>(result.payload);
        }
        {{- if .IsVoid }}
        (void)result;
        {{- else }}
        return std::get<0>(std::get<0>(result.payload));
        {{- end }}
    }
{{- end }}

private:
    {{ .Name }}* handle_;
};

} // namespace BUFFI_NAMESPACE
`, "\n")))

var freeStandingTemplate = template.Must(template.New("free").Parse(strings.TrimLeft(`
#pragma once

#include <stdexcept>
#include <tuple>
#include <variant>
#include <vector>

#include "BUFFI_NAMESPACE.hpp"
#include "{{ .APIFunctionsInclude }}"

namespace BUFFI_NAMESPACE {

{{- range .Methods }}

inline {{ .ReturnType }} {{ .MethodName }}({{ range $i, $p := .Params }}{{ if $i }}, {{ end }}const {{ $p.CppType }}& {{ $p.Name }}{{ end }}) {
    {{- range .Params }}
    auto {{ .Name }}_bytes = ::buffi::support::bincodeSerialize({{ .Name }});
    {{- end }}
    uint8_t* out_ptr = nullptr;
    size_t res_size = {{ .EntryName }}({{ range $i, $p := .Params }}{{ if $i }}, {{ end }}{{ $p.Name }}_bytes.data(), {{ $p.Name }}_bytes.size(){{ end }}, &out_ptr);
    std::vector<uint8_t> res_bytes(out_ptr, out_ptr + res_size);
    buffi_free_byte_buffer(out_ptr, res_size);
    auto result = bincodeDeserialize_{{ .ResultType }}(res_bytes);
    if (result.tag == {{ .ResultType }}::Tag::Err) {
        throw std::get<1>(result.payload);
    }
    {{- if .IsVoid }}
    (void)result;
    {{- else }}
    return std::get<0>(std::get<0>(result.payload));
    {{- end }}
}
{{- end }}

} // namespace BUFFI_NAMESPACE
`, "\n")))
