package gluedb

import "testing"

func widgetsSchema() *Schema {
	return &Schema{
		TableName: "widgets",
		Columns: []ColumnDef{
			{Name: "id", Type: ColumnTypeI64, Unique: UniquePrimary},
			{Name: "name", Type: ColumnTypeText, Nullable: true},
			{Name: "price", Type: ColumnTypeF64},
		},
	}
}

func TestSchema_ToDDL(t *testing.T) {
	got := widgetsSchema().ToDDL()
	want := "CREATE TABLE widgets (id BIGINT NOT NULL PRIMARY KEY, name TEXT, price DOUBLE NOT NULL)"
	if got != want {
		t.Errorf("ToDDL() = %q, want %q", got, want)
	}
}

func TestSchema_ToDDL_Schemaless(t *testing.T) {
	s := &Schema{TableName: "events"}
	got := s.ToDDL()
	want := "CREATE TABLE events ()"
	if got != want {
		t.Errorf("ToDDL() = %q, want %q", got, want)
	}
}

func TestSchema_ToDDL_ForeignKeyAndComment(t *testing.T) {
	s := &Schema{
		TableName: "orders",
		Columns: []ColumnDef{
			{Name: "id", Type: ColumnTypeI64, Unique: UniquePrimary},
			{Name: "widget_id", Type: ColumnTypeI64},
		},
		ForeignKeys: []ForeignKey{{Column: "widget_id", ReferencedTable: "widgets", ReferencedColumn: "id"}},
		Comment:     "orders against widgets",
	}
	got := s.ToDDL()
	want := "CREATE TABLE orders (id BIGINT NOT NULL PRIMARY KEY, widget_id BIGINT NOT NULL, " +
		"FOREIGN KEY (widget_id) REFERENCES widgets(id)) COMMENT 'orders against widgets'"
	if got != want {
		t.Errorf("ToDDL() = %q, want %q", got, want)
	}
}

func TestSchema_ColumnByName(t *testing.T) {
	s := widgetsSchema()
	col, ok := s.ColumnByName("name")
	if !ok || col.Type != ColumnTypeText {
		t.Fatalf("ColumnByName(name) = %+v, %v", col, ok)
	}
	if _, ok := s.ColumnByName("missing"); ok {
		t.Fatal("ColumnByName(missing) should report false")
	}
}

func TestSchema_PrimaryKeyAndUniqueColumns(t *testing.T) {
	s := &Schema{
		TableName: "t",
		Columns: []ColumnDef{
			{Name: "id", Type: ColumnTypeI64, Unique: UniquePrimary},
			{Name: "email", Type: ColumnTypeText, Unique: UniqueUnique},
			{Name: "bio", Type: ColumnTypeText},
		},
	}
	if pk := s.PrimaryKeyColumns(); len(pk) != 1 || pk[0] != "id" {
		t.Errorf("PrimaryKeyColumns() = %v", pk)
	}
	uniq := s.UniqueColumns()
	if len(uniq) != 2 || uniq[0] != "id" || uniq[1] != "email" {
		t.Errorf("UniqueColumns() = %v", uniq)
	}
}

func TestSchema_Validate_DuplicateColumn(t *testing.T) {
	s := &Schema{
		TableName: "t",
		Columns: []ColumnDef{
			{Name: "id", Type: ColumnTypeI64},
			{Name: "id", Type: ColumnTypeText},
		},
	}
	if err := s.Validate(); err == nil {
		t.Fatal("expected duplicate column error")
	}
}

func TestSchema_Validate_DuplicatePrimaryKey(t *testing.T) {
	s := &Schema{
		TableName: "t",
		Columns: []ColumnDef{
			{Name: "a", Type: ColumnTypeI64, Unique: UniquePrimary},
			{Name: "b", Type: ColumnTypeI64, Unique: UniquePrimary},
		},
	}
	if err := s.Validate(); err == nil {
		t.Fatal("expected duplicate primary key error")
	}
}

func TestSchema_Validate_ApproximateUnique(t *testing.T) {
	s := &Schema{
		TableName: "t",
		Columns:   []ColumnDef{{Name: "score", Type: ColumnTypeF64, Unique: UniqueUnique}},
	}
	if err := s.Validate(); err == nil {
		t.Fatal("expected unsuitable-unique-type error for a float column")
	}
}

func TestSchema_Validate_OK(t *testing.T) {
	if err := widgetsSchema().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSchema_WithFileStorageFormatVersion(t *testing.T) {
	s := &Schema{TableName: "t"}
	s.WithFileStorageFormatVersion(1)
	want := FileStorageFormatVersionComment + "1"
	if s.Comment != want {
		t.Errorf("Comment = %q, want %q", s.Comment, want)
	}

	s2 := &Schema{TableName: "t", Comment: "user comment"}
	s2.WithFileStorageFormatVersion(2)
	want2 := "user comment; " + FileStorageFormatVersionComment + "2"
	if s2.Comment != want2 {
		t.Errorf("Comment = %q, want %q", s2.Comment, want2)
	}
}

func TestSchema_IsSchemaless(t *testing.T) {
	if !(&Schema{TableName: "t"}).IsSchemaless() {
		t.Error("nil Columns should be schemaless")
	}
	if widgetsSchema().IsSchemaless() {
		t.Error("widgetsSchema should not be schemaless")
	}
}
