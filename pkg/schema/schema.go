package schema

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

func generateSchema[T any]() *jsonschema.Schema {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return r.Reflect(v)
}

var SummarySchema = generateSchema[Summary]()

// SummarySchemaJSON renders the schema persisted next to summary.json.
func SummarySchemaJSON() ([]byte, error) {
	return json.MarshalIndent(SummarySchema, "", "  ")
}
