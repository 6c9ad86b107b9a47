// Package schemas provides JSON Schema validation for the structured
// extraction slots. Validation is advisory: a structured step result that
// fails its schema is still persisted (the upstream model owns the shape),
// but the mismatch is reported so it can be logged.
package schemas

import (
	"embed"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/karkeeg/productforge/internal/steps"
)

//go:embed *.schema.json
var schemaFiles embed.FS

var slotSchemas = map[steps.Slot]string{
	steps.SlotSixPillars: "six_pillars.schema.json",
	steps.SlotSalesPage:  "sales_page.schema.json",
}

var (
	compiled   = make(map[steps.Slot]*gojsonschema.Schema)
	compiledMu sync.Mutex
)

func schemaFor(slot steps.Slot) (*gojsonschema.Schema, error) {
	compiledMu.Lock()
	defer compiledMu.Unlock()

	if schema, ok := compiled[slot]; ok {
		return schema, nil
	}

	filename, ok := slotSchemas[slot]
	if !ok {
		return nil, nil
	}

	data, err := schemaFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", filename, err)
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", filename, err)
	}

	compiled[slot] = schema
	return schema, nil
}

// Check validates a slot document, returning one message per violation.
// Slots without a registered schema (the free-form resources map and the
// methodology object) always pass.
func Check(slot steps.Slot, document []byte) ([]string, error) {
	schema, err := schemaFor(slot)
	if err != nil {
		return nil, err
	}
	if schema == nil {
		return nil, nil
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		// The document is not even parseable JSON.
		return []string{err.Error()}, nil
	}
	if result.Valid() {
		return nil, nil
	}

	var violations []string
	for _, desc := range result.Errors() {
		violations = append(violations, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	return violations, nil
}
