package transport

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed envelope.schema.json
var envelopeSchema string

const envelopeSchemaURL = "https://apiwrapper.schemas.local/fulljson/envelope.schema.json"

// compiledEnvelope compiles the response envelope schema once.
var compiledEnvelope = sync.OnceValues(func() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(envelopeSchemaURL, strings.NewReader(envelopeSchema)); err != nil {
		return nil, fmt.Errorf("envelope schema load failed: %w", err)
	}
	compiled, err := c.Compile(envelopeSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("envelope schema compile failed: %w", err)
	}
	return compiled, nil
})

// validateEnvelope checks a decoded fulljson response against the envelope
// schema. v must be the output of a json.Decoder with UseNumber.
func validateEnvelope(v any) error {
	schema, err := compiledEnvelope()
	if err != nil {
		return err
	}
	return schema.Validate(v)
}
