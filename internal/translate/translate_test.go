package translate

import (
	"testing"

	"github.com/lychee-technology/gluedb"
	"github.com/lychee-technology/gluedb/internal/parse"
)

func translateSQL(t *testing.T, sql string) (*gluedb.Error, error) {
	t.Helper()
	stmts, err := parse.New().ParseSQL(sql)
	if err != nil {
		t.Fatalf("parse %q: %v", sql, err)
	}
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	_, err = Translate(stmts[0])
	if err == nil {
		return nil, nil
	}
	gerr, ok := err.(*gluedb.Error)
	if !ok {
		t.Fatalf("expected *gluedb.Error, got %T: %v", err, err)
	}
	return gerr, err
}

func TestTranslateSelect_DistinctRejected(t *testing.T) {
	gerr, err := translateSQL(t, "SELECT DISTINCT name FROM widgets")
	if err == nil {
		t.Fatal("expected SELECT DISTINCT to be rejected")
	}
	if gerr.Type != gluedb.ErrTranslate {
		t.Errorf("Type = %v, want ErrTranslate", gerr.Type)
	}
	if gerr.Code != gluedb.ErrCodeSelectDistinct {
		t.Errorf("Code = %v, want %v", gerr.Code, gluedb.ErrCodeSelectDistinct)
	}
}

func TestTranslateSelect_PlainSelectAccepted(t *testing.T) {
	if _, err := translateSQL(t, "SELECT name FROM widgets WHERE id = 1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
