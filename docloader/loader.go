package docloader

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/gigainfosystems/buffi/errtax"
)

//go:embed schema.json
var envelopeSchemaJSON []byte

var envelopeSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	doc, err := jsonschema.UnmarshalJSON(bytesReader(envelopeSchemaJSON))
	if err != nil {
		panic(fmt.Errorf("docloader: invalid embedded schema: %w", err))
	}
	const resourceURL = "https://buffi.dev/schema/rustdoc-envelope.json"
	if err := c.AddResource(resourceURL, doc); err != nil {
		panic(fmt.Errorf("docloader: add embedded schema resource: %w", err))
	}
	sch, err := c.Compile(resourceURL)
	if err != nil {
		panic(fmt.Errorf("docloader: compile embedded schema: %w", err))
	}
	return sch
}

// Load reads and validates a rustdoc-style JSON document from disk (spec §4.1).
func Load(path string, schemaMin, schemaMax int) (*Graph, error) {
	b, err := readFile(path)
	if err != nil {
		return nil, errtax.DocLoadError(err, "read doc file %s", path)
	}
	return LoadBytes(b, schemaMin, schemaMax)
}

// LoadBytes validates and parses an already-read doc document. The pipeline
// calls it with the same raw bytes it uses as the doc cache key (spec
// §11.3); on a cache hit the stored graph is used and LoadBytes is skipped.
func LoadBytes(b []byte, schemaMin, schemaMax int) (*Graph, error) {
	raw, err := jsonschema.UnmarshalJSON(bytesReader(b))
	if err != nil {
		return nil, errtax.DocLoadError(err, "doc document is not valid JSON")
	}
	if err := envelopeSchema.Validate(raw); err != nil {
		return nil, errtax.UnsupportedDocSchema(err, "doc document does not match the supported envelope shape")
	}

	var doc Doc
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, errtax.DocLoadError(err, "decode doc document")
	}

	if doc.FormatVersion < schemaMin || doc.FormatVersion > schemaMax {
		return nil, errtax.UnsupportedDocSchema(nil,
			"doc format_version %d is outside the supported range [%d, %d]",
			doc.FormatVersion, schemaMin, schemaMax)
	}

	crateNames := make(map[int]string, len(doc.ExternalCrate))
	for idStr, info := range doc.ExternalCrate {
		id, err := parseCrateID(idStr)
		if err != nil {
			return nil, errtax.DocLoadError(err, "external_crates key %q is not a crate id", idStr)
		}
		crateNames[id] = info.Name
	}

	return &Graph{Doc: &doc, CrateNames: crateNames}, nil
}
