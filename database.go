// Package litesql is a read-only query engine over the SQLite on-disk
// file format: open a database file, inspect its recovered table
// schema, and run a small SELECT subset against it.
//
// Grounded on original_source/src/db.rs's Db (open-time header parse +
// pager construction + eager schema collection) and the teacher's
// internal/backend package layout, adapted to the read-only pull-query
// surface spec.md §4.L describes.
package litesql

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"litesql/internal/exec"
	"litesql/internal/fileheader"
	"litesql/internal/page"
	"litesql/internal/pager"
	"litesql/internal/plan"
	"litesql/internal/schema"
	"litesql/internal/sql/parser"
)

// TableMetadata describes one recovered user table.
type TableMetadata struct {
	Name     string
	Columns  []schema.Column
	RootPage int
}

// Database is an open handle to a SQLite-format file: its parsed
// header, a schema recovered from sqlite_master, and the pager backing
// both schema lookups and query execution.
type Database struct {
	Header fileheader.Header
	pager  *pager.Pager
	tables []schema.Table
	log    logrus.FieldLogger
}

// Open opens path, parses its file header, and recovers its table
// schema. The returned Database owns the underlying file handle.
func Open(path string) (*Database, error) {
	return OpenWithLogger(path, nil)
}

// OpenWithLogger is Open with an explicit logger; a nil logger falls
// back to logrus's standard logger, matching the teacher's convention
// of a FieldLogger threaded through every layer that logs.
func OpenWithLogger(path string, log logrus.FieldLogger) (*Database, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, Wrap(KindIO, "open database file", err)
	}

	headerBuf := make([]byte, fileheader.Size)
	if _, err := f.ReadAt(headerBuf, 0); err != nil {
		f.Close()
		return nil, Wrap(KindIO, "read database header", err)
	}

	header, err := fileheader.Parse(headerBuf)
	if err != nil {
		f.Close()
		return nil, Wrap(KindFormat, "parse database header", err)
	}

	p := pager.Open(f, header.PageSize, log.WithField("component", "pager"))

	tables, err := schema.Load(p)
	if err != nil {
		f.Close()
		if page.IsUnimplemented(err) {
			return nil, Wrap(KindUnimplemented, "load schema", err)
		}
		return nil, Wrap(KindSchema, "load schema", err)
	}

	log.WithFields(logrus.Fields{"path": path, "page_size": header.PageSize, "tables": len(tables)}).Info("litesql: opened database")

	return &Database{Header: header, pager: p, tables: tables, log: log}, nil
}

// Tables returns the recovered metadata for every user table, in the
// order they appear in sqlite_master.
func (db *Database) Tables() []TableMetadata {
	out := make([]TableMetadata, len(db.tables))
	for i, t := range db.tables {
		out[i] = TableMetadata{Name: t.Name, Columns: t.Columns, RootPage: t.RootPage}
	}
	return out
}

// Compile tokenizes, parses, and plans sqlText, returning a runnable
// operator. A trailing semicolon is optional.
func (db *Database) Compile(sqlText string) (exec.Operator, error) {
	stmt, err := parser.ParseStatement(sqlText, false)
	if err != nil {
		return nil, Wrap(KindParse, "parse statement", err)
	}

	op, err := plan.Compile(stmt, db.tables, db.pager)
	if err != nil {
		if page.IsUnimplemented(err) {
			return nil, Wrap(KindUnimplemented, "plan statement", err)
		}
		return nil, Wrap(KindPlan, "plan statement", err)
	}

	db.log.WithField("sql", sqlText).Debug("litesql: compiled statement")
	return op, nil
}

// Execute compiles sqlText and returns a RowIterator over its results.
func (db *Database) Execute(sqlText string) (*RowIterator, error) {
	op, err := db.Compile(sqlText)
	if err != nil {
		return nil, err
	}
	return &RowIterator{op: op}, nil
}

// RowIterator pulls rows one at a time from a compiled operator.
type RowIterator struct {
	op exec.Operator
}

// Row is one result row: the owned, stringifiable value of each
// projected column.
type Row []fmt.Stringer

// Next advances the iterator and returns the next row, or ok=false once
// the underlying operator is exhausted.
func (it *RowIterator) Next() (Row, bool, error) {
	values, ok, err := it.op.NextRow()
	if err != nil {
		if page.IsUnimplemented(err) {
			return nil, false, Wrap(KindUnimplemented, "fetch row", err)
		}
		return nil, false, Wrap(KindPlan, "fetch row", err)
	}
	if !ok {
		return nil, false, nil
	}

	row := make(Row, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row, true, nil
}
