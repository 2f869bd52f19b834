// Package parse wraps the external SQL parser collaborator gluedb treats
// as out of scope to write itself (spec.md's Non-goals: "a SQL lexer/parser
// is not part of this module"): TiDB's parser. internal/translate consumes
// TiDB parser nodes only; internal/parse/vitess is a separate wrapper over
// vitess-sqlparser whose output no package in this module translates.
package parse

import (
	"fmt"

	"github.com/pingcap/tidb/pkg/parser"
	tiast "github.com/pingcap/tidb/pkg/parser/ast"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver"
)

// Parser parses SQL text into TiDB parser AST nodes, one per statement.
type Parser struct {
	p *parser.Parser
}

// New constructs a Parser. Constructing a *parser.Parser is not
// goroutine-safe for concurrent Parse calls on the same instance, matching
// TiDB's own documented usage (one parser per goroutine), so internal/eval
// and internal/execute never share a Parser across a worker pool.
func New() *Parser {
	return &Parser{p: parser.New()}
}

// ParseSQL parses a (possibly multi-statement, semicolon-separated) SQL
// string into TiDB statement nodes.
func (p *Parser) ParseSQL(sql string) ([]tiast.StmtNode, error) {
	stmts, _, err := p.p.Parse(sql, "", "")
	if err != nil {
		return nil, fmt.Errorf("sql parse error: %w", err)
	}
	return stmts, nil
}
