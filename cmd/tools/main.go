// Command gluedb-tools is a schema inspection / DDL dump utility: point it
// at a backend and it lists every table's DDL, YAML dump, or (with
// GLUEDB_DEBUG_PRINT set) a pretty-printed Go struct dump of the Schema.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/k0kubun/pp/v3"
	"go.uber.org/zap"

	"github.com/lychee-technology/gluedb"
	"github.com/lychee-technology/gluedb/factory"
)

type connOptions struct {
	backend  string
	host     string
	port     int
	database string
	username string
	password string
	sslMode  string
	path     string
	bucket   string
	prefix   string
	region   string
	endpoint string
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := flag.NewFlagSet("gluedb-tools", flag.ContinueOnError)
	opts := connOptions{}
	flags.StringVar(&opts.backend, "backend", "memory", "storage backend: memory, postgres, duckdb, mysql, s3, csv")
	flags.StringVar(&opts.host, "host", "localhost", "postgres/mysql host")
	flags.IntVar(&opts.port, "port", 0, "postgres/mysql port (defaults per backend)")
	flags.StringVar(&opts.database, "database", "", "postgres/mysql database name")
	flags.StringVar(&opts.username, "username", "", "postgres/mysql username")
	flags.StringVar(&opts.password, "password", "", "postgres/mysql password")
	flags.StringVar(&opts.sslMode, "sslmode", "disable", "postgres sslmode")
	flags.StringVar(&opts.path, "path", "", "duckdb database file, or csv directory")
	flags.StringVar(&opts.bucket, "bucket", "", "s3 bucket")
	flags.StringVar(&opts.prefix, "prefix", "", "s3 key prefix")
	flags.StringVar(&opts.region, "region", "us-east-1", "s3 region")
	flags.StringVar(&opts.endpoint, "endpoint", "", "s3-compatible endpoint override")
	format := flags.String("format", "ddl", "output format: ddl, yaml, jsonschema")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	ctx := context.Background()
	eng, err := factory.Open(ctx, opts.config(), zap.NewNop().Sugar())
	if err != nil {
		return fmt.Errorf("open backend: %w", err)
	}

	schemas, err := eng.Store().FetchAllSchemas(ctx)
	if err != nil {
		return fmt.Errorf("fetch schemas: %w", err)
	}

	debugPrint := os.Getenv("GLUEDB_DEBUG_PRINT") != ""
	for _, sc := range schemas {
		if debugPrint {
			pp.Println(sc)
			continue
		}
		switch *format {
		case "yaml":
			dump, err := sc.DumpYAML()
			if err != nil {
				return err
			}
			fmt.Print(dump)
		case "jsonschema":
			dump, err := sc.ToJSONSchema()
			if err != nil {
				return err
			}
			fmt.Println(string(dump))
		default:
			fmt.Println(sc.ToDDL())
		}
	}
	return nil
}

func (o connOptions) config() *gluedb.Config {
	cfg := gluedb.DefaultConfig()
	db := &cfg.Database
	db.Backend = gluedb.Backend(o.backend)
	db.Host = o.host
	db.Port = o.port
	db.Database = o.database
	db.Username = o.username
	db.Password = o.password
	db.SSLMode = o.sslMode
	db.Path = o.path
	db.S3 = gluedb.S3Config{
		Bucket: o.bucket, Prefix: o.prefix, Region: o.region,
		Endpoint: o.endpoint, UsePathStyle: o.endpoint != "", CreateBucket: true,
	}
	return cfg
}
