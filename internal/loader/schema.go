package loader

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

const schemaBaseURL = "https://archmap.dev/schemas/"

var schemaNames = []string{"interface", "resource", "relationship", "sequence", "state-machine"}

// sectionSchemas maps top-level document sections to the schema each entry
// must satisfy.
var sectionSchemas = map[string]string{
	"resources":      "resource",
	"relationships":  "relationship",
	"sequences":      "sequence",
	"state_machines": "state-machine",
}

var (
	compileOnce sync.Once
	compiled    map[string]*jsonschema.Schema
	compileErr  error
)

// compiledSchemas compiles every embedded schema once. The interface
// schema is registered too because the resource schema references it.
func compiledSchemas() (map[string]*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		for _, name := range schemaNames {
			raw, err := schemaFS.ReadFile("schemas/" + name + ".schema.json")
			if err != nil {
				compileErr = fmt.Errorf("embedded schema %s: %w", name, err)
				return
			}
			url := schemaBaseURL + name + ".schema.json"
			if err := compiler.AddResource(url, bytes.NewReader(raw)); err != nil {
				compileErr = fmt.Errorf("schema %s: %w", name, err)
				return
			}
		}

		compiled = make(map[string]*jsonschema.Schema, len(schemaNames))
		for _, name := range schemaNames {
			schema, err := compiler.Compile(schemaBaseURL + name + ".schema.json")
			if err != nil {
				compileErr = fmt.Errorf("schema %s: %w", name, err)
				return
			}
			compiled[name] = schema
		}
	})
	return compiled, compileErr
}

// validateDocument checks every top-level entry of a raw document against
// its schema. The first failure aborts the load.
func validateDocument(doc map[string]any, file string) error {
	schemas, err := compiledSchemas()
	if err != nil {
		return loadErrorf(file, "Schema setup failed: %v", err)
	}

	for section, schemaName := range sectionSchemas {
		for i, entry := range asList(doc[section]) {
			normalized, err := normalizeForSchema(entry)
			if err != nil {
				return loadErrorf(file, "Invalid %s entry %d: %v", sectionLabel(section), i, err)
			}
			if err := schemas[schemaName].Validate(normalized); err != nil {
				return loadErrorf(file, "Schema validation failed for %s %d: %v", sectionLabel(section), i, err)
			}
		}
	}
	return nil
}

// sectionLabel maps a top-level YAML section to the human label used in
// error messages.
func sectionLabel(section string) string {
	return strings.TrimSuffix(strings.ReplaceAll(section, "_", " "), "s")
}

// normalizeForSchema converts YAML-decoded values into the JSON-shaped
// values the schema validator expects.
func normalizeForSchema(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
