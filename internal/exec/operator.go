// Package exec implements the volcano-style pull operators that drive a
// compiled plan: SeqScan and SeqScanWithPredicate.
//
// Grounded on original_source/src/engine/operator.rs's SeqScan /
// SeqScanWithPredicate (the projected row_buffer reused across calls,
// and evaluating the predicate's ColumnIndex/op/literal shape against
// the current record before projecting).
package exec

import (
	"fmt"

	"litesql/internal/btree"
	"litesql/internal/record"
	"litesql/internal/sql/ast"
)

// Operator is a pull iterator over decoded, projected rows.
type Operator interface {
	// NextRow advances to the next row and returns a view of the
	// projected row buffer, or ok=false once exhausted. The returned
	// slice is reused on the next call and must not be retained.
	NextRow() (row []record.OwnedValue, ok bool, err error)
}

// SeqScan projects the given column indices from every record the
// scanner yields, in order.
type SeqScan struct {
	columns   []int
	scanner   *btree.Scanner
	rowBuffer []record.OwnedValue
}

// NewSeqScan constructs a SeqScan projecting columns from scanner.
func NewSeqScan(columns []int, scanner *btree.Scanner) *SeqScan {
	return &SeqScan{columns: columns, scanner: scanner, rowBuffer: make([]record.OwnedValue, len(columns))}
}

func (s *SeqScan) NextRow() ([]record.OwnedValue, bool, error) {
	cur, ok, err := s.scanner.Next()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	if err := project(cur, s.columns, s.rowBuffer); err != nil {
		return nil, false, err
	}
	return s.rowBuffer, true, nil
}

// SeqScanWithPredicate is a SeqScan that skips records until one
// satisfies a WHERE predicate already lowered to ColumnIndex form.
type SeqScanWithPredicate struct {
	columns   []int
	scanner   *btree.Scanner
	rowBuffer []record.OwnedValue
	predicate ast.Expr
}

// NewSeqScanWithPredicate constructs a SeqScanWithPredicate.
func NewSeqScanWithPredicate(columns []int, scanner *btree.Scanner, predicate ast.Expr) *SeqScanWithPredicate {
	return &SeqScanWithPredicate{
		columns:   columns,
		scanner:   scanner,
		rowBuffer: make([]record.OwnedValue, len(columns)),
		predicate: predicate,
	}
}

func (s *SeqScanWithPredicate) NextRow() ([]record.OwnedValue, bool, error) {
	for {
		cur, ok, err := s.scanner.Next()
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, nil
		}

		matched, err := eval(s.predicate, cur)
		if err != nil {
			return nil, false, err
		}
		if !matched {
			continue
		}

		if err := project(cur, s.columns, s.rowBuffer); err != nil {
			return nil, false, err
		}
		return s.rowBuffer, true, nil
	}
}

func project(cur btree.Cursor, columns []int, into []record.OwnedValue) error {
	for i, colIdx := range columns {
		v, err := cur.Field(colIdx)
		if err != nil {
			return fmt.Errorf("project column %d: %w", colIdx, err)
		}
		into[i] = v.Owned()
	}
	return nil
}

// eval evaluates a predicate expression — a Comparison of a
// ColumnIndex against a literal, or an AND/OR of two comparisons —
// against the current record.
func eval(expr ast.Expr, cur btree.Cursor) (bool, error) {
	cmp, ok := expr.(ast.Comparison)
	if !ok {
		return false, fmt.Errorf("expected a truthy value")
	}

	switch cmp.Op {
	case ast.OpAnd, ast.OpOr:
		left, err := eval(cmp.Left, cur)
		if err != nil {
			return false, err
		}
		right, err := eval(cmp.Right, cur)
		if err != nil {
			return false, err
		}
		if cmp.Op == ast.OpAnd {
			return left && right, nil
		}
		return left || right, nil

	default:
		colIdx, ok := cmp.Left.(ast.ColumnIndex)
		if !ok {
			return false, fmt.Errorf("expected a column index on the left of a comparison")
		}
		left, err := cur.Field(colIdx.Index)
		if err != nil {
			return false, err
		}
		return compare(left, cmp.Op, cmp.Right)
	}
}

// compare applies a single comparison op against a field value and a
// literal expression, per the per-kind rules: NULL equals only NULL,
// text compares codepoint-wise (byte-wise on UTF-8), numeric kinds
// compare numerically, and mixed kinds are never equal.
func compare(left record.Value, op ast.Op, rightExpr ast.Expr) (bool, error) {
	eq, err := equal(left, rightExpr)
	if err != nil {
		return false, err
	}

	switch op {
	case ast.OpEq:
		return eq, nil
	case ast.OpNe:
		return !eq, nil
	case ast.OpLt:
		return less(left, rightExpr)
	case ast.OpGt:
		lt, err := less(left, rightExpr)
		if err != nil {
			return false, err
		}
		return !lt && !eq, nil
	case ast.OpLe:
		lt, err := less(left, rightExpr)
		if err != nil {
			return false, err
		}
		return lt || eq, nil
	case ast.OpGe:
		lt, err := less(left, rightExpr)
		if err != nil {
			return false, err
		}
		return !lt, nil
	default:
		return false, fmt.Errorf("unsupported comparison operator: %s", op)
	}
}

func equal(left record.Value, rightExpr ast.Expr) (bool, error) {
	switch right := rightExpr.(type) {
	case ast.Null:
		return left.Kind == record.KindNull, nil
	case ast.Int:
		return left.Kind == record.KindInt && left.Int == right.Value, nil
	case ast.Real:
		return left.Kind == record.KindFloat && left.Flt == right.Value, nil
	case ast.Text:
		return left.Kind == record.KindText && left.Text == right.Value, nil
	default:
		return false, fmt.Errorf("unsupported literal in comparison: %T", rightExpr)
	}
}

func less(left record.Value, rightExpr ast.Expr) (bool, error) {
	switch right := rightExpr.(type) {
	case ast.Int:
		if left.Kind != record.KindInt {
			return false, nil
		}
		return left.Int < right.Value, nil
	case ast.Real:
		if left.Kind != record.KindFloat {
			return false, nil
		}
		return left.Flt < right.Value, nil
	case ast.Text:
		if left.Kind != record.KindText {
			return false, nil
		}
		return left.Text < right.Value, nil
	case ast.Null:
		return false, nil
	default:
		return false, fmt.Errorf("unsupported literal in comparison: %T", rightExpr)
	}
}
