// Package ast defines the syntax tree produced by the parser and
// consumed by the planner.
//
// Grounded on the teacher's engine/ast.go (statement/expression node
// shape, one concrete struct per grammar production) and spec.md §4.I's
// grammar, which fixes the exact node set this package must provide.
package ast

// Statement is either a Select or a CreateTable.
type Statement interface {
	statementNode()
}

// ResultColumn is one entry of a SELECT's result list: the expression to
// project, and an optional AS alias. The planner does not use the alias,
// and result rows carry no column names.
type ResultColumn struct {
	Expr  Expr
	Alias string
}

// Select is `SELECT result_list FROM ident [ WHERE expr ]`. Star is true
// for `SELECT * FROM ...`, in which case Columns is empty and the
// planner expands it to every column of From in declaration order.
type Select struct {
	Star    bool
	Columns []ResultColumn
	From    string
	Where   Expr // nil if no WHERE clause
}

func (*Select) statementNode() {}

// ColumnDef is one column of a CREATE TABLE statement.
type ColumnDef struct {
	Name string
	Type ColumnType
}

// CreateTable is `CREATE TABLE ident ( col ("," col)* )`.
type CreateTable struct {
	Name    string
	Columns []ColumnDef
}

func (*CreateTable) statementNode() {}

// ColumnType is a declared CREATE TABLE column type. STRING and TEXT are
// the same type per spec.md §4.I.
type ColumnType int

const (
	ColumnTypeInteger ColumnType = iota
	ColumnTypeReal
	ColumnTypeText
	ColumnTypeBlob
	ColumnTypeBool
)

// Expr is a scalar expression: a column reference, a literal, a
// planner-resolved column index, or a comparison of two expressions.
type Expr interface {
	exprNode()
}

// Column is an unresolved column reference by name, as produced by the
// parser. The planner rewrites every Column into a ColumnIndex.
type Column struct {
	Name string
}

func (Column) exprNode() {}

// ColumnIndex is a column reference already resolved to its 0-based
// position within a table's declared columns. Only the planner produces
// these; the parser never does.
type ColumnIndex struct {
	Index int
}

func (ColumnIndex) exprNode() {}

// Null is the literal NULL.
type Null struct{}

func (Null) exprNode() {}

// Int is an integer literal.
type Int struct {
	Value int64
}

func (Int) exprNode() {}

// Real is a real (floating point) literal.
type Real struct {
	Value float64
}

func (Real) exprNode() {}

// Text is a string literal.
type Text struct {
	Value string
}

func (Text) exprNode() {}

// Op is a comparison or boolean-combination operator.
type Op int

const (
	OpEq Op = iota
	OpNe
	OpLt
	OpGt
	OpLe
	OpGe
	OpAnd
	OpOr
)

func (op Op) String() string {
	switch op {
	case OpEq:
		return "="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpGt:
		return ">"
	case OpLe:
		return "<="
	case OpGe:
		return ">="
	case OpAnd:
		return "AND"
	case OpOr:
		return "OR"
	default:
		return "?"
	}
}

// Comparison is a binary expression: either a column/literal comparison
// (`=`, `!=`, `<`, `>`, `<=`, `>=`) or a boolean combination of two
// comparisons (`AND`, `OR`).
type Comparison struct {
	Left  Expr
	Op    Op
	Right Expr
}

func (Comparison) exprNode() {}
