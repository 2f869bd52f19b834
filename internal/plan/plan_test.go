package plan

import (
	"context"
	"testing"

	"github.com/lychee-technology/gluedb"
	"github.com/lychee-technology/gluedb/internal/ast"
)

type fakeLookup struct {
	schemas map[string]*gluedb.Schema
}

func (f fakeLookup) FetchSchema(ctx context.Context, table string) (*gluedb.Schema, error) {
	return f.schemas[table], nil
}

func widgetsSchema() *gluedb.Schema {
	return &gluedb.Schema{
		TableName: "widgets",
		Columns: []gluedb.ColumnDef{
			{Name: "id", Type: gluedb.ColumnTypeI64, Unique: gluedb.UniquePrimary},
			{Name: "name", Type: gluedb.ColumnTypeText, Nullable: true},
		},
		Indexes: []gluedb.IndexDescriptor{
			{Name: "idx_name", Expr: ast.NewColumnRef("", "name"), Order: gluedb.IndexAsc},
		},
	}
}

func newTestPlanner() *Planner {
	return New(fakeLookup{schemas: map[string]*gluedb.Schema{"widgets": widgetsSchema()}}, nil)
}

func TestPlan_SelectsEqualityIndex(t *testing.T) {
	where := ast.NewBinary(gluedb.OpEq, ast.NewColumnRef("", "name"), ast.NewLiteral(gluedb.NewStr("foo")))
	stmt := &ast.Statement{Kind: ast.StmtSelect, Select: &ast.Select{
		From:  &ast.TableRef{Name: "widgets"},
		Where: &where,
	}}
	p, err := newTestPlanner().Plan(context.Background(), stmt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.IndexHint == nil {
		t.Fatal("expected an index hint")
	}
	if p.IndexHint.IndexName != "idx_name" || p.IndexHint.Operator != gluedb.OpEq {
		t.Errorf("unexpected index hint: %+v", p.IndexHint)
	}
	if p.Residual != nil {
		t.Errorf("expected no residual, got %+v", p.Residual)
	}
}

func TestPlan_SelectsIsNullIndex(t *testing.T) {
	where := ast.Expr{Kind: ast.ExprIsNull, Operand: colRef("name")}
	stmt := &ast.Statement{Kind: ast.StmtSelect, Select: &ast.Select{
		From:  &ast.TableRef{Name: "widgets"},
		Where: &where,
	}}
	p, err := newTestPlanner().Plan(context.Background(), stmt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.IndexHint == nil {
		t.Fatal("expected an index hint for IS NULL")
	}
	if p.IndexHint.IsNullCheck != "IS NULL" {
		t.Errorf("IsNullCheck = %q, want IS NULL", p.IndexHint.IsNullCheck)
	}
}

func TestPlan_SelectsIsNotNullIndex(t *testing.T) {
	where := ast.Expr{Kind: ast.ExprIsNull, Operand: colRef("name"), Negated: true}
	stmt := &ast.Statement{Kind: ast.StmtSelect, Select: &ast.Select{
		From:  &ast.TableRef{Name: "widgets"},
		Where: &where,
	}}
	p, err := newTestPlanner().Plan(context.Background(), stmt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.IndexHint == nil || p.IndexHint.IsNullCheck != "IS NOT NULL" {
		t.Errorf("unexpected index hint: %+v", p.IndexHint)
	}
}

func TestPlan_NoIndexForUnindexedColumn(t *testing.T) {
	where := ast.NewBinary(gluedb.OpEq, ast.NewColumnRef("", "id"), ast.NewLiteral(gluedb.NewI64(1)))
	stmt := &ast.Statement{Kind: ast.StmtSelect, Select: &ast.Select{
		From:  &ast.TableRef{Name: "widgets"},
		Where: &where,
	}}
	p, err := newTestPlanner().Plan(context.Background(), stmt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.IndexHint != nil {
		t.Errorf("expected no index hint, got %+v", p.IndexHint)
	}
	if p.Residual == nil {
		t.Error("expected the WHERE clause to survive as residual")
	}
}

func colRef(name string) *ast.Expr {
	e := ast.NewColumnRef("", name)
	return &e
}
