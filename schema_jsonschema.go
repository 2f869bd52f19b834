package gluedb

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/jsonschema-go/jsonschema"
)

// FromJSONSchema builds a schemaless-table-discovery Schema from a JSON
// Schema document's top-level "properties"/"required", the way forma's
// internal/transformer.go resolved a JSON Schema document before using it:
// unmarshal into jsonschema.Schema and Resolve it first, rejecting a
// malformed document before any column is read from it.
func FromJSONSchema(tableName string, data []byte) (*Schema, error) {
	var js jsonschema.Schema
	if err := json.Unmarshal(data, &js); err != nil {
		return nil, fmt.Errorf("unmarshal json schema: %w", err)
	}
	if _, err := js.Resolve(&jsonschema.ResolveOptions{}); err != nil {
		return nil, fmt.Errorf("resolve json schema: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal json schema properties: %w", err)
	}
	properties, _ := raw["properties"].(map[string]any)

	required := map[string]bool{}
	if reqList, ok := raw["required"].([]any); ok {
		for _, r := range reqList {
			if name, ok := r.(string); ok {
				required[name] = true
			}
		}
	}

	names := make([]string, 0, len(properties))
	for name := range properties {
		names = append(names, name)
	}
	sort.Strings(names)

	cols := make([]ColumnDef, 0, len(names))
	for _, name := range names {
		prop, _ := properties[name].(map[string]any)
		cols = append(cols, ColumnDef{
			Name:     name,
			Type:     jsonSchemaColumnType(prop),
			Nullable: !required[name],
		})
	}

	return &Schema{TableName: tableName, Columns: cols}, nil
}

func jsonSchemaColumnType(prop map[string]any) ColumnType {
	t, _ := prop["type"].(string)
	format, _ := prop["format"].(string)
	switch t {
	case "integer":
		return ColumnTypeI64
	case "number":
		return ColumnTypeF64
	case "boolean":
		return ColumnTypeBoolean
	case "string":
		switch format {
		case "date":
			return ColumnTypeDate
		case "date-time":
			return ColumnTypeTimestamp
		case "uuid":
			return ColumnTypeUUID
		default:
			return ColumnTypeText
		}
	default:
		return ColumnTypeText
	}
}

// ToJSONSchema renders the schema's columns as a JSON Schema document, the
// inverse of FromJSONSchema, used by cmd/tools' jsonschema dump format.
func (s *Schema) ToJSONSchema() ([]byte, error) {
	properties := make(map[string]any, len(s.Columns))
	var required []string
	for _, c := range s.Columns {
		properties[c.Name] = jsonSchemaProperty(c.Type)
		if !c.Nullable {
			required = append(required, c.Name)
		}
	}
	doc := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		sort.Strings(required)
		doc["required"] = required
	}
	return json.MarshalIndent(doc, "", "  ")
}

func jsonSchemaProperty(t ColumnType) map[string]any {
	switch t {
	case ColumnTypeBoolean:
		return map[string]any{"type": "boolean"}
	case ColumnTypeF32, ColumnTypeF64, ColumnTypeDecimal:
		return map[string]any{"type": "number"}
	case ColumnTypeI8, ColumnTypeI16, ColumnTypeI32, ColumnTypeI64, ColumnTypeI128,
		ColumnTypeU8, ColumnTypeU16, ColumnTypeU32, ColumnTypeU64, ColumnTypeU128:
		return map[string]any{"type": "integer"}
	case ColumnTypeDate:
		return map[string]any{"type": "string", "format": "date"}
	case ColumnTypeTimestamp:
		return map[string]any{"type": "string", "format": "date-time"}
	case ColumnTypeUUID:
		return map[string]any{"type": "string", "format": "uuid"}
	default:
		return map[string]any{"type": "string"}
	}
}
