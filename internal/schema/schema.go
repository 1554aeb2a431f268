// Package schema recovers table metadata by walking the sqlite_master
// table stored at root page 1.
//
// Grounded on spec.md §4.G's column layout and the teacher's
// NewMasterTableRecord (internal/storage/record.go), which lays out
// sqlite_master as (type, name, tbl_name, rootpage, sql) — the same five
// columns this loader reads back out by index.
package schema

import (
	"fmt"

	"litesql/internal/btree"
	"litesql/internal/pager"
	"litesql/internal/record"
	"litesql/internal/sql/ast"
	"litesql/internal/sql/parser"
)

// ColumnType is the declared type of a user-table column, parsed from its
// CREATE TABLE statement.
type ColumnType int

const (
	TypeInteger ColumnType = iota
	TypeReal
	TypeText
	TypeBlob
	TypeBool
)

// Column describes one column of a user table.
type Column struct {
	Name string
	Type ColumnType
}

// Table is the recovered metadata for one user table: its name, declared
// columns in declaration order, and the root page of its table B-tree.
type Table struct {
	Name     string
	Columns  []Column
	RootPage int
}

// ColumnIndex returns the 0-based index of name within t's columns, or
// -1 if there's no such column.
func (t Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

const sqliteMasterRootPage = 1

// Load walks the sqlite_master table at root page 1 and returns a Table
// for every row whose type is "table".
func Load(p *pager.Pager) ([]Table, error) {
	scanner := btree.NewScanner(p, sqliteMasterRootPage)

	var tables []Table
	for {
		cur, ok, err := scanner.Next()
		if err != nil {
			return nil, fmt.Errorf("scan sqlite_master: %w", err)
		}
		if !ok {
			break
		}

		if cur.Header.FieldCount() < 5 {
			return nil, fmt.Errorf("sqlite_master row has %d fields, want at least 5", cur.Header.FieldCount())
		}

		typeVal, err := cur.Field(0)
		if err != nil {
			return nil, fmt.Errorf("sqlite_master: read type: %w", err)
		}
		if typeVal.Kind != record.KindText || typeVal.Text != "table" {
			continue
		}

		nameVal, err := cur.Field(1)
		if err != nil {
			return nil, fmt.Errorf("sqlite_master: read name: %w", err)
		}

		rootPageVal, err := cur.Field(3)
		if err != nil {
			return nil, fmt.Errorf("sqlite_master: read rootpage: %w", err)
		}

		sqlVal, err := cur.Field(4)
		if err != nil {
			return nil, fmt.Errorf("sqlite_master: read sql: %w", err)
		}

		stmt, err := parser.ParseStatement(sqlVal.Text, false)
		if err != nil {
			return nil, fmt.Errorf("sqlite_master: parse CREATE TABLE for %q: %w", nameVal.Text, err)
		}
		createStmt, ok := stmt.(*ast.CreateTable)
		if !ok {
			return nil, fmt.Errorf("sqlite_master: sql for %q is not a CREATE TABLE", nameVal.Text)
		}

		columns := make([]Column, len(createStmt.Columns))
		for i, c := range createStmt.Columns {
			columns[i] = Column{Name: c.Name, Type: columnTypeFromAST(c.Type)}
		}

		tables = append(tables, Table{
			Name:     nameVal.Text,
			Columns:  columns,
			RootPage: int(rootPageVal.Int),
		})
	}

	return tables, nil
}

func columnTypeFromAST(t ast.ColumnType) ColumnType {
	switch t {
	case ast.ColumnTypeInteger:
		return TypeInteger
	case ast.ColumnTypeReal:
		return TypeReal
	case ast.ColumnTypeText:
		return TypeText
	case ast.ColumnTypeBlob:
		return TypeBlob
	case ast.ColumnTypeBool:
		return TypeBool
	default:
		return TypeText
	}
}
