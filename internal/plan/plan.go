// Package plan binds a parsed statement against the loaded schema and
// lowers it to a runnable exec.Operator.
//
// Grounded on original_source/src/engine/plan.rs's Planner::compile_select
// (table lookup, star-expansion/column-resolution into a projection
// list, and lowering the WHERE clause's leftmost Column into a
// ColumnIndex), generalized per spec.md §4.J to recurse through
// arbitrary AND/OR trees rather than the original's single-level match.
package plan

import (
	"fmt"

	"litesql/internal/btree"
	"litesql/internal/exec"
	"litesql/internal/pager"
	"litesql/internal/schema"
	"litesql/internal/sql/ast"
)

// Compile binds stmt (a parsed Select) against tables and produces a
// runnable operator reading from p.
func Compile(stmt ast.Statement, tables []schema.Table, p *pager.Pager) (exec.Operator, error) {
	sel, ok := stmt.(*ast.Select)
	if !ok {
		return nil, fmt.Errorf("unsupported statement: %T", stmt)
	}
	return compileSelect(sel, tables, p)
}

func compileSelect(sel *ast.Select, tables []schema.Table, p *pager.Pager) (exec.Operator, error) {
	table, err := findTable(tables, sel.From)
	if err != nil {
		return nil, err
	}

	columns, err := resolveProjection(sel, table)
	if err != nil {
		return nil, err
	}

	scanner := btree.NewScanner(p, table.RootPage)

	if sel.Where == nil {
		return exec.NewSeqScan(columns, scanner), nil
	}

	lowered, err := lowerWhere(sel.Where, table)
	if err != nil {
		return nil, err
	}
	return exec.NewSeqScanWithPredicate(columns, scanner, lowered), nil
}

func findTable(tables []schema.Table, name string) (schema.Table, error) {
	for _, t := range tables {
		if t.Name == name {
			return t, nil
		}
	}
	return schema.Table{}, fmt.Errorf("invalid table name: %s", name)
}

// resolveProjection returns the 0-based column indices a SELECT's
// result list resolves to, in result order: every column of table if
// the result list is `*`, or each named column's resolved index.
func resolveProjection(sel *ast.Select, table schema.Table) ([]int, error) {
	if sel.Star {
		indices := make([]int, len(table.Columns))
		for i := range table.Columns {
			indices[i] = i
		}
		return indices, nil
	}

	indices := make([]int, len(sel.Columns))
	for i, rc := range sel.Columns {
		col, ok := rc.Expr.(ast.Column)
		if !ok {
			return nil, fmt.Errorf("expecting a column name")
		}
		idx := table.ColumnIndex(col.Name)
		if idx < 0 {
			return nil, fmt.Errorf("invalid column name: %s", col.Name)
		}
		indices[i] = idx
	}
	return indices, nil
}

// lowerWhere rewrites every Column leaf in where into a ColumnIndex
// bound to table, recursing through AND/OR combinations of comparisons.
func lowerWhere(where ast.Expr, table schema.Table) (ast.Expr, error) {
	cmp, ok := where.(ast.Comparison)
	if !ok {
		return nil, fmt.Errorf("unexpected where clause shape: %T", where)
	}

	switch cmp.Op {
	case ast.OpAnd, ast.OpOr:
		left, err := lowerWhere(cmp.Left, table)
		if err != nil {
			return nil, err
		}
		right, err := lowerWhere(cmp.Right, table)
		if err != nil {
			return nil, err
		}
		return ast.Comparison{Left: left, Op: cmp.Op, Right: right}, nil

	default:
		col, ok := cmp.Left.(ast.Column)
		if !ok {
			return nil, fmt.Errorf("invalid where clause: expected a column on the left of %s", cmp.Op)
		}
		idx := table.ColumnIndex(col.Name)
		if idx < 0 {
			return nil, fmt.Errorf("invalid where field: %s", col.Name)
		}
		return ast.Comparison{Left: ast.ColumnIndex{Index: idx}, Op: cmp.Op, Right: cmp.Right}, nil
	}
}
