package gemini

import (
	"encoding/json"

	"github.com/fwojciec/skywatch"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// sightingsSchemaJSON constrains extraction responses: an array of records
// whose date and incident are non-empty. The remaining fields may carry
// the "Not Given" placeholder but must be strings.
const sightingsSchemaJSON = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "array",
	"items": {
		"type": "object",
		"required": ["date", "incident"],
		"properties": {
			"date": {"type": "string", "minLength": 1},
			"time": {"type": "string"},
			"town": {"type": "string"},
			"area": {"type": "string"},
			"occupation": {"type": "string"},
			"incident": {"type": "string", "minLength": 1}
		},
		"additionalProperties": false
	}
}`

// coordinatesSchemaJSON constrains geocoding responses: a latitude and
// longitude pair of strings, "NA" when the location is unknown.
const coordinatesSchemaJSON = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["latitude", "longitude"],
	"properties": {
		"latitude": {"type": "string", "minLength": 1},
		"longitude": {"type": "string", "minLength": 1}
	},
	"additionalProperties": false
}`

var (
	sightingsSchema   = jsonschema.MustCompileString("sightings.json", sightingsSchemaJSON)
	coordinatesSchema = jsonschema.MustCompileString("coordinates.json", coordinatesSchemaJSON)
)

// validate unmarshals data and checks it against the schema.
// Returns ESCHEMA on malformed JSON or schema violation.
func validate(schema *jsonschema.Schema, data []byte) (any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, skywatch.Errorf(skywatch.ESCHEMA, "response is not valid JSON: %v", err)
	}
	if err := schema.Validate(v); err != nil {
		return nil, skywatch.Errorf(skywatch.ESCHEMA, "response failed schema validation: %v", err)
	}
	return v, nil
}
