// Package datarecording stores simulation data into SQLite databases.
package datarecording

import (
	"database/sql"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"

	"github.com/fatih/structs"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

const defaultBatchSize = 100000

// DataRecorder is a backend that can record and store data
type DataRecorder interface {
	// CreateTable creates a new table whose columns are the fields of the
	// sample entry.
	CreateTable(tableName string, sampleEntry any)

	// InsertData writes a same-type entry into a table that already exists
	InsertData(tableName string, entry any)

	// ListTables returns the names of all tables, sorted
	ListTables() []string

	// Flush flushes all the buffered entries into the database
	Flush()

	// Close flushes and closes the database
	Close()
}

// New creates a DataRecorder that writes to path + ".sqlite3". If path is
// empty, a unique name is generated. An existing file is never overwritten.
func New(path string) DataRecorder {
	if path == "" {
		path = "cp2dma_recording_" + xid.New().String()
	}

	filename := path + ".sqlite3"

	if _, err := os.Stat(filename); err == nil {
		panic(fmt.Errorf("file %s already exists", filename))
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		panic(err)
	}

	fmt.Fprintf(os.Stderr, "Database created for recording: %s\n", filename)

	return NewWithDB(db)
}

// NewWithDB creates a DataRecorder that writes into an open database.
func NewWithDB(db *sql.DB) DataRecorder {
	r := &recorder{
		db:        db,
		batchSize: defaultBatchSize,
		tables:    make(map[string]*tableBuffer),
	}

	atexit.Register(r.Flush)

	return r
}

// tableBuffer holds the rows of one table that are not written yet.
type tableBuffer struct {
	entryType reflect.Type
	insertSQL string
	rows      [][]any
}

type recorder struct {
	db        *sql.DB
	tables    map[string]*tableBuffer
	batchSize int
	pending   int
}

// columnType returns the SQLite type that stores a field, or false if the
// field cannot be recorded.
func columnType(kind reflect.Kind) (string, bool) {
	switch kind {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64:
		return "INTEGER", true
	case reflect.Float32, reflect.Float64:
		return "REAL", true
	case reflect.String:
		return "TEXT", true
	default:
		return "", false
	}
}

// columns lists the "name TYPE" definitions of the exported fields of a
// struct.
func columns(entry any) ([]string, error) {
	if !structs.IsStruct(entry) {
		return nil, fmt.Errorf("entry of type %T is not a struct", entry)
	}

	var defs []string

	for _, f := range structs.Fields(entry) {
		if !f.IsExported() {
			continue
		}

		sqlType, ok := columnType(f.Kind())
		if !ok {
			return nil, fmt.Errorf("field %s of kind %s cannot be recorded",
				f.Name(), f.Kind())
		}

		defs = append(defs, f.Name()+" "+sqlType)
	}

	if len(defs) == 0 {
		return nil, fmt.Errorf("entry of type %T has no exported field", entry)
	}

	return defs, nil
}

func (r *recorder) CreateTable(tableName string, sampleEntry any) {
	if _, exists := r.tables[tableName]; exists {
		panic(fmt.Sprintf("table %s already exists", tableName))
	}

	defs, err := columns(sampleEntry)
	if err != nil {
		panic(err)
	}

	createSQL := fmt.Sprintf("CREATE TABLE %s (\n\t%s\n);",
		tableName, strings.Join(defs, ",\n\t"))
	if _, err := r.db.Exec(createSQL); err != nil {
		panic(fmt.Errorf("creating table %s: %w", tableName, err))
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(defs)), ", ")
	r.tables[tableName] = &tableBuffer{
		entryType: reflect.TypeOf(sampleEntry),
		insertSQL: fmt.Sprintf("INSERT INTO %s VALUES (%s)",
			tableName, placeholders),
	}
}

func (r *recorder) InsertData(tableName string, entry any) {
	t, exists := r.tables[tableName]
	if !exists {
		panic(fmt.Sprintf("table %s does not exist", tableName))
	}

	if reflect.TypeOf(entry) != t.entryType {
		panic(fmt.Sprintf("entry of type %T cannot be inserted into table %s",
			entry, tableName))
	}

	t.rows = append(t.rows, structs.Values(entry))

	r.pending++
	if r.pending >= r.batchSize {
		r.Flush()
	}
}

func (r *recorder) ListTables() []string {
	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Flush writes all buffered rows in one transaction.
func (r *recorder) Flush() {
	if r.pending == 0 {
		return
	}

	tx, err := r.db.Begin()
	if err != nil {
		panic(err)
	}

	for _, name := range r.ListTables() {
		t := r.tables[name]
		if len(t.rows) == 0 {
			continue
		}

		err = writeRows(tx, t)
		if err != nil {
			_ = tx.Rollback()
			panic(fmt.Errorf("writing table %s: %w", name, err))
		}

		t.rows = nil
	}

	err = tx.Commit()
	if err != nil {
		panic(err)
	}

	r.pending = 0
}

func writeRows(tx *sql.Tx, t *tableBuffer) error {
	stmt, err := tx.Prepare(t.insertSQL)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range t.rows {
		if _, err := stmt.Exec(row...); err != nil {
			return err
		}
	}

	return nil
}

func (r *recorder) Close() {
	r.Flush()

	err := r.db.Close()
	if err != nil {
		panic(err)
	}
}
