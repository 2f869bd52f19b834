package execute

import (
	"context"
	"testing"

	"github.com/lychee-technology/gluedb"
	"github.com/lychee-technology/gluedb/internal/parse"
	"github.com/lychee-technology/gluedb/internal/translate"
	"github.com/lychee-technology/gluedb/storages/memstore"
)

func execSQL(t *testing.T, ex *Executor, sql string) *gluedb.Payload {
	t.Helper()
	stmts, err := parse.New().ParseSQL(sql)
	if err != nil {
		t.Fatalf("parse %q: %v", sql, err)
	}
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement in %q, got %d", sql, len(stmts))
	}
	stmt, err := translate.Translate(stmts[0])
	if err != nil {
		t.Fatalf("translate %q: %v", sql, err)
	}
	payload, err := ex.Execute(context.Background(), stmt)
	if err != nil {
		t.Fatalf("execute %q: %v", sql, err)
	}
	return payload
}

func newJoinFixture(t *testing.T) *Executor {
	t.Helper()
	store := memstore.New()
	ex := New(store, nil)
	execSQL(t, ex, "CREATE TABLE widgets (id BIGINT PRIMARY KEY, name TEXT)")
	execSQL(t, ex, "CREATE TABLE orders (id BIGINT PRIMARY KEY, widget_id BIGINT)")
	execSQL(t, ex, "INSERT INTO widgets (id, name) VALUES (1, 'cog'), (2, 'gear')")
	execSQL(t, ex, "INSERT INTO orders (id, widget_id) VALUES (10, 1), (11, 1), (12, 2), (13, 99)")
	return ex
}

// Equi-join ON clauses route through hashJoin; this only exercises the
// result, not which strategy ran, since both must agree (spec §4.4).
func TestExecute_InnerJoin_Equi(t *testing.T) {
	ex := newJoinFixture(t)
	payload := execSQL(t, ex, "SELECT orders.id, widgets.name FROM orders JOIN widgets ON orders.widget_id = widgets.id ORDER BY orders.id")
	if len(payload.Rows) != 3 {
		t.Fatalf("expected 3 matched rows, got %d: %+v", len(payload.Rows), payload.Rows)
	}
	wantNames := []string{"cog", "cog", "gear"}
	for i, row := range payload.Rows {
		if row[1].String() != wantNames[i] {
			t.Errorf("row %d name = %q, want %q", i, row[1].String(), wantNames[i])
		}
	}
}

func TestExecute_LeftJoin_Equi_UnmatchedIsNull(t *testing.T) {
	ex := newJoinFixture(t)
	payload := execSQL(t, ex, "SELECT orders.id, widgets.name FROM orders LEFT JOIN widgets ON orders.widget_id = widgets.id ORDER BY orders.id")
	if len(payload.Rows) != 4 {
		t.Fatalf("expected 4 rows (including the unmatched order), got %d", len(payload.Rows))
	}
	last := payload.Rows[3]
	if !last[1].IsNull() {
		t.Errorf("expected unmatched widget name to be NULL, got %v", last[1])
	}
}

func TestExecute_CrossJoin_NestedLoop(t *testing.T) {
	ex := newJoinFixture(t)
	payload := execSQL(t, ex, "SELECT orders.id, widgets.id FROM orders, widgets")
	if len(payload.Rows) != 8 {
		t.Fatalf("expected 4 orders * 2 widgets = 8 rows, got %d", len(payload.Rows))
	}
}

func TestTranslate_SelectDistinctRejected(t *testing.T) {
	stmts, err := parse.New().ParseSQL("SELECT DISTINCT name FROM widgets")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := translate.Translate(stmts[0]); err == nil {
		t.Fatal("expected SELECT DISTINCT to be rejected at translate time")
	}
}
