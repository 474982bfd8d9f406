package tuning

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed tuning.schema.json
var schemaJSON string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

// validateSchema checks the effective values (after defaults) against the
// embedded schema. Range and shape rules live in the schema; cross-field
// rules live in Validate.
func validateSchema(t Tuning) error {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("tuning.schema.json", schemaJSON)
	})
	if schemaErr != nil {
		return fmt.Errorf("tuning schema: %w", schemaErr)
	}
	var v any
	if err := json.Unmarshal(t.JSON(), &v); err != nil {
		return err
	}
	return schema.Validate(v)
}
