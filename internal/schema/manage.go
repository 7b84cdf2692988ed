package schema

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"lychee/pkg/logging"
)

// Add writes a new schema file named {name}.schema.json and regenerates all
// artifacts. The content must be a JSON object; it is stored pretty-printed
// so diffs stay readable.
func (p *Pipeline) Add(ctx context.Context, name string, content []byte) error {
	doc, err := parseSchemaObject(content)
	if err != nil {
		return err
	}

	path := filepath.Join(p.SchemasDir(), name+SchemaFileSuffix)
	if err := writeSchemaFile(path, doc); err != nil {
		return err
	}
	logging.Info("Schema", "Added schema '%s'", name)

	return p.Generate(ctx)
}

// Update replaces an existing schema file and regenerates all artifacts.
// Unlike Add it refuses to create the schema: updating something that does
// not exist is almost always a typo in the name.
func (p *Pipeline) Update(ctx context.Context, name string, content []byte) error {
	path := filepath.Join(p.SchemasDir(), name+SchemaFileSuffix)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("schema '%s' does not exist, use add to create it", name)
	}

	doc, err := parseSchemaObject(content)
	if err != nil {
		return err
	}
	if err := writeSchemaFile(path, doc); err != nil {
		return err
	}
	logging.Info("Schema", "Updated schema '%s'", name)

	return p.Generate(ctx)
}

// parseSchemaObject validates that content is a JSON object.
func parseSchemaObject(content []byte) (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("schema content is not a JSON object: %w", err)
	}
	return doc, nil
}

func writeSchemaFile(path string, doc map[string]any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode schema: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create schemas directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write schema file %s: %w", path, err)
	}
	return nil
}
