package gluedb

import "testing"

func TestFromJSONSchema(t *testing.T) {
	doc := []byte(`{
		"type": "object",
		"properties": {
			"id": {"type": "integer"},
			"name": {"type": "string"},
			"active": {"type": "boolean"}
		},
		"required": ["id", "name"]
	}`)

	s, err := FromJSONSchema("widgets", doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.TableName != "widgets" {
		t.Errorf("TableName = %q", s.TableName)
	}
	id, ok := s.ColumnByName("id")
	if !ok || id.Type != ColumnTypeI64 || id.Nullable {
		t.Errorf("id column = %+v, %v", id, ok)
	}
	active, ok := s.ColumnByName("active")
	if !ok || active.Type != ColumnTypeBoolean || !active.Nullable {
		t.Errorf("active column = %+v, %v", active, ok)
	}
}

func TestFromJSONSchema_Malformed(t *testing.T) {
	if _, err := FromJSONSchema("t", []byte("not json")); err == nil {
		t.Fatal("expected error for malformed json")
	}
}

func TestSchema_ToJSONSchema_RoundTrip(t *testing.T) {
	s := widgetsSchema()
	data, err := s.ToJSONSchema()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	back, err := FromJSONSchema(s.TableName, data)
	if err != nil {
		t.Fatalf("unexpected error round-tripping: %v", err)
	}
	for _, c := range s.Columns {
		got, ok := back.ColumnByName(c.Name)
		if !ok {
			t.Fatalf("column %q missing after round trip", c.Name)
		}
		if got.Type != c.Type {
			t.Errorf("column %q type = %s, want %s", c.Name, got.Type, c.Type)
		}
		if got.Nullable != c.Nullable {
			t.Errorf("column %q nullable = %v, want %v", c.Name, got.Nullable, c.Nullable)
		}
	}
}
