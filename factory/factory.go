// Package factory builds a ready-to-query gluedb.Engine from a
// gluedb.Config, choosing and opening one of storages/* by
// cfg.Database.Backend and wiring it to internal/parse, internal/translate
// and internal/execute. Outside of tests, this is the single place those
// four packages meet and the only code that constructs an Executor.
package factory

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lychee-technology/gluedb"
	"github.com/lychee-technology/gluedb/internal/execute"
	"github.com/lychee-technology/gluedb/internal/parse"
	"github.com/lychee-technology/gluedb/internal/translate"
	"github.com/lychee-technology/gluedb/storages/csvstore"
	"github.com/lychee-technology/gluedb/storages/duckstore"
	"github.com/lychee-technology/gluedb/storages/memstore"
	"github.com/lychee-technology/gluedb/storages/mysqlstore"
	"github.com/lychee-technology/gluedb/storages/pgstore"
	"github.com/lychee-technology/gluedb/storages/s3store"
)

// Engine parses, translates and executes SQL text against one open
// gluedb.Store. It holds no transaction state of its own; BEGIN/COMMIT/
// ROLLBACK are statements the Executor dispatches like any other.
type Engine struct {
	store  gluedb.Store
	parser *parse.Parser
	exec   *execute.Executor
}

// Open constructs the storage backend named by cfg.Database.Backend and
// returns an Engine ready to run statements against it.
func Open(ctx context.Context, cfg *gluedb.Config, log *zap.SugaredLogger) (*Engine, error) {
	store, err := openStore(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("factory: %w", err)
	}
	return &Engine{
		store:  store,
		parser: parse.New(),
		exec:   execute.New(store, log),
	}, nil
}

func openStore(ctx context.Context, db gluedb.DatabaseConfig) (gluedb.Store, error) {
	switch db.Backend {
	case gluedb.BackendMemory, "":
		return memstore.New(), nil
	case gluedb.BackendPostgres:
		return pgstore.Open(ctx, postgresDSN(db))
	case gluedb.BackendDuckDB:
		return duckstore.Open(ctx, duckstore.Config{Path: db.Path})
	case gluedb.BackendMySQL:
		dsn := mysqlstore.BuildDSN(mysqlstore.DSNConfig{
			User: db.Username, Password: db.Password,
			Host: db.Host, Port: db.Port, DBName: db.Database,
		})
		return mysqlstore.Open(ctx, dsn)
	case gluedb.BackendS3:
		return s3store.Open(ctx, s3store.Config{
			Bucket: db.S3.Bucket, Prefix: db.S3.Prefix, Region: db.S3.Region,
			Endpoint: db.S3.Endpoint, AccessKey: db.S3.AccessKey, SecretKey: db.S3.SecretKey,
			UsePathStyle: db.S3.UsePathStyle, CreateBucket: db.S3.CreateBucket,
		})
	case gluedb.BackendCSV:
		return csvstore.Open(ctx, csvstore.Config{Dir: db.Path})
	default:
		return nil, fmt.Errorf("unknown backend %q", db.Backend)
	}
}

func postgresDSN(db gluedb.DatabaseConfig) string {
	sslMode := db.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		db.Username, db.Password, db.Host, db.Port, db.Database, sslMode)
}

// Query parses sql (which may hold more than one statement), translates and
// executes each in order, and returns the last statement's payload — the
// same one-result-per-call convention a driver's QueryContext gives a
// caller issuing one statement at a time.
func (e *Engine) Query(ctx context.Context, sql string) (*gluedb.Payload, error) {
	stmts, err := e.parser.ParseSQL(sql)
	if err != nil {
		return nil, fmt.Errorf("factory: parse: %w", err)
	}
	if len(stmts) == 0 {
		return nil, fmt.Errorf("factory: no statements in query")
	}

	var payload *gluedb.Payload
	for _, stmt := range stmts {
		node, err := translate.Translate(stmt)
		if err != nil {
			return nil, fmt.Errorf("factory: translate: %w", err)
		}
		payload, err = e.exec.Execute(ctx, node)
		if err != nil {
			return nil, fmt.Errorf("factory: execute: %w", err)
		}
	}
	return payload, nil
}

// Store returns the backend the Engine was opened against, for callers
// (cmd/gluedb, tests) that need direct storage access alongside SQL.
func (e *Engine) Store() gluedb.Store { return e.store }
