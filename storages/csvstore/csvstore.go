// Package csvstore is a read-only storage backend over a directory of CSV
// files, one gluedb table per file. It implements only gluedb.Store and
// gluedb.Metadata: CSV has no write path worth inventing (a production
// CSV ingestion tool round-trips through a real write-capable backend,
// the way cmd/sample/csv_importer.go's CSVImporter batches rows into an
// EntityManager rather than rewriting the source file), and no index,
// transaction, or custom-function structure to build on top of a flat
// file.
//
// Every column decodes as TEXT, matching csv_importer.go's own
// string-keyed csvRecord map[string]string: CSV carries no type
// information, and inferring one from cell contents would be a guess
// this backend declines to make. A caller wanting typed columns is
// expected to CAST in the query, the same way a CSV-backed external
// table works in the engines this backend is modeled on.
package csvstore

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lychee-technology/gluedb"
)

// Config points at the directory holding one "<table>.csv" file per
// gluedb table.
type Config struct {
	Dir string
}

// Store is the CSV-backed gluedb.Store/Metadata implementation.
type Store struct {
	dir string
}

// Open validates that dir exists and is a directory; it does not read any
// CSV file until a table is actually queried.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	info, err := os.Stat(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("csvstore: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("csvstore: %q is not a directory", cfg.Dir)
	}
	return &Store{dir: cfg.Dir}, nil
}

func (s *Store) BackendName() string { return "csvstore" }
func (s *Store) FormatVersion() int  { return 1 }

func (s *Store) path(table string) string {
	return filepath.Join(s.dir, table+".csv")
}

func (s *Store) openReader(table string) (*os.File, *csv.Reader, error) {
	f, err := os.Open(s.path(table))
	if err != nil {
		return nil, nil, err
	}
	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	return f, r, nil
}

// FetchSchema builds a schema from a CSV file's header row; every column
// is TEXT and nullable, and FetchSchema returns (nil, nil) if the file
// does not exist, matching the no-such-table convention the SQL-backed
// stores use for a missing system-table row.
func (s *Store) FetchSchema(ctx context.Context, table string) (*gluedb.Schema, error) {
	f, r, err := s.openReader(table)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("csvstore: read header of %q: %w", table, err)
	}

	sc := &gluedb.Schema{TableName: table}
	for _, col := range header {
		sc.Columns = append(sc.Columns, gluedb.ColumnDef{
			Name: col, Type: gluedb.ColumnTypeText, Nullable: true,
		})
	}
	return sc, nil
}

// FetchAllSchemas enumerates every "*.csv" file directly under Dir.
func (s *Store) FetchAllSchemas(ctx context.Context) ([]*gluedb.Schema, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("csvstore: %w", err)
	}
	var tables []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		tables = append(tables, strings.TrimSuffix(e.Name(), ".csv"))
	}
	sort.Strings(tables)

	out := make([]*gluedb.Schema, 0, len(tables))
	for _, t := range tables {
		sc, err := s.FetchSchema(ctx, t)
		if err != nil {
			return nil, err
		}
		if sc != nil {
			out = append(out, sc)
		}
	}
	return out, nil
}

// rowOrdinal extracts the U64 ordinal a csvRowIter encoded as a Key, the
// only Key shape this backend ever produces.
func rowOrdinal(key gluedb.Key) (uint64, error) {
	n, err := key.Value.AsBigInt()
	if err != nil {
		return 0, fmt.Errorf("csvstore: key is not a row ordinal: %w", err)
	}
	if n.Sign() < 0 || !n.IsUint64() {
		return 0, fmt.Errorf("csvstore: row ordinal %s out of range", n.String())
	}
	return n.Uint64(), nil
}

// FetchData scans from the start of the file to the requested ordinal.
// CSV offers no random access by row number, so this is always O(n); a
// caller doing many point lookups against csvstore should plan the query
// as a full scan instead, the same way a CSV external table forces a scan
// in the engines this backend is modeled on.
func (s *Store) FetchData(ctx context.Context, table string, key gluedb.Key) (gluedb.Row, bool, error) {
	want, err := rowOrdinal(key)
	if err != nil {
		return nil, false, err
	}
	it, err := s.ScanData(ctx, table)
	if err != nil {
		return nil, false, err
	}
	defer it.Close()
	for {
		k, row, ok, err := it.Next(ctx)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, nil
		}
		ord, _ := rowOrdinal(k)
		if ord == want {
			return row, true, nil
		}
	}
}

func (s *Store) ScanData(ctx context.Context, table string) (gluedb.RowIter, error) {
	f, r, err := s.openReader(table)
	if err != nil {
		return nil, fmt.Errorf("csvstore: %w", err)
	}
	header, err := r.Read()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("csvstore: read header of %q: %w", table, err)
	}
	return &csvRowIter{f: f, r: r, header: header}, nil
}

type csvRowIter struct {
	f      *os.File
	r      *csv.Reader
	header []string
	ordinal uint64
}

func (it *csvRowIter) Next(ctx context.Context) (gluedb.Key, gluedb.Row, bool, error) {
	record, err := it.r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return gluedb.Key{}, nil, false, nil
		}
		return gluedb.Key{}, nil, false, err
	}
	fields := make(map[string]gluedb.Value, len(it.header))
	for i, col := range it.header {
		if i < len(record) {
			fields[col] = gluedb.NewStr(record[i])
		} else {
			fields[col] = gluedb.Null
		}
	}
	key := gluedb.GeneratedKey(it.ordinal)
	it.ordinal++
	return key, gluedb.MapRow{Fields: fields}, true, nil
}

func (it *csvRowIter) Close() error { return it.f.Close() }
