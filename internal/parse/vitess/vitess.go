// Package vitess is an alternate parser wrapper over vitess-sqlparser, kept
// beside internal/parse's default TiDB-backed one. internal/translate
// accepts TiDB parser nodes only, so the vitess.Statement values this
// package produces are not translated by any package in this module.
package vitess

import (
	vitess "github.com/blastrain/vitess-sqlparser/sqlparser"
)

// Parser parses SQL text using vitess-sqlparser instead of TiDB's parser.
// It is not wired into internal/translate, and gluedb.Config has no setting
// that selects it. Its one method, ParseOne, parses a single statement,
// unlike internal/parse.Parser's multi-statement ParseSQL.
type Parser struct{}

// New constructs a vitess-backed Parser.
func New() *Parser { return &Parser{} }

// ParseOne parses a single SQL statement into a vitess AST node.
func (p *Parser) ParseOne(sql string) (vitess.Statement, error) {
	return vitess.Parse(sql)
}
