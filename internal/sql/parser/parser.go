// Package parser implements a recursive-descent parser over the
// tokenizer's output, producing the AST defined in internal/sql/ast.
//
// Grounded on original_source/src/sql/parser.rs's ParserState (the
// pos-indexed token cursor, expect_matching/expect_eq helpers, and the
// parse_statement/parse_select/parse_create_table shape), generalized
// per spec.md §4.I's grammar for the AND/OR word operators the original
// parser's WHERE clause did not itself support.
package parser

import (
	"fmt"

	"litesql/internal/sql/ast"
	"litesql/internal/sql/lexer"
)

type parser struct {
	tokens []lexer.Token
	pos    int
}

// ParseStatement tokenizes and parses input into a Statement. If
// requireTrailingSemicolon is set, a trailing `;` is required; otherwise
// it's optional.
func ParseStatement(input string, requireTrailingSemicolon bool) (ast.Statement, error) {
	tokens, err := lexer.Tokenize(input)
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}

	p := &parser{tokens: tokens}
	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}

	if requireTrailingSemicolon {
		if _, err := p.expect(lexer.SemiColon); err != nil {
			return nil, err
		}
	}

	return stmt, nil
}

func (p *parser) parseStatement() (ast.Statement, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, fmt.Errorf("unexpected end of input")
	}
	switch tok.Kind {
	case lexer.KeywordCreate:
		return p.parseCreateTable()
	case lexer.KeywordSelect:
		return p.parseSelect()
	default:
		return nil, fmt.Errorf("unexpected token: %s", tok)
	}
}

func (p *parser) parseSelect() (*ast.Select, error) {
	p.advance() // SELECT

	sel := &ast.Select{}
	star, columns, err := p.parseResultList()
	if err != nil {
		return nil, err
	}
	sel.Star = star
	sel.Columns = columns

	if _, err := p.expect(lexer.KeywordFrom); err != nil {
		return nil, err
	}
	from, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	sel.From = from

	if tok, ok := p.peek(); ok && tok.Kind == lexer.KeywordWhere {
		p.advance()
		where, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		sel.Where = where
	}

	return sel, nil
}

func (p *parser) parseResultList() (star bool, columns []ast.ResultColumn, err error) {
	if tok, ok := p.peek(); ok && tok.Kind == lexer.Star {
		p.advance()
		return true, nil, nil
	}

	col, err := p.parseResultColumn()
	if err != nil {
		return false, nil, err
	}
	columns = append(columns, col)

	for {
		tok, ok := p.peek()
		if !ok || tok.Kind != lexer.Comma {
			break
		}
		p.advance()
		col, err := p.parseResultColumn()
		if err != nil {
			return false, nil, err
		}
		columns = append(columns, col)
	}

	return false, columns, nil
}

func (p *parser) parseResultColumn() (ast.ResultColumn, error) {
	name, err := p.expectIdentifier()
	if err != nil {
		return ast.ResultColumn{}, err
	}
	col := ast.ResultColumn{Expr: ast.Column{Name: name}}

	if tok, ok := p.peek(); ok && tok.Kind == lexer.KeywordAs {
		p.advance()
		alias, err := p.expectIdentifier()
		if err != nil {
			return ast.ResultColumn{}, err
		}
		col.Alias = alias
	}

	return col, nil
}

// parseExpr parses `cmp ((AND|OR) cmp)*`, left-associative.
func (p *parser) parseExpr() (ast.Expr, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}

	for {
		tok, ok := p.peek()
		if !ok {
			break
		}
		var op ast.Op
		switch tok.Kind {
		case lexer.KeywordAnd:
			op = ast.OpAnd
		case lexer.KeywordOr:
			op = ast.OpOr
		default:
			return left, nil
		}
		p.advance()

		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = ast.Comparison{Left: left, Op: op, Right: right}
	}

	return left, nil
}

// parseComparison parses `column op literal`.
func (p *parser) parseComparison() (ast.Expr, error) {
	col, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}

	op, err := p.expectOp()
	if err != nil {
		return nil, err
	}

	lit, err := p.expectLiteral()
	if err != nil {
		return nil, err
	}

	return ast.Comparison{Left: ast.Column{Name: col}, Op: op, Right: lit}, nil
}

func (p *parser) parseCreateTable() (*ast.CreateTable, error) {
	if _, err := p.expect(lexer.KeywordCreate); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.KeywordTable); err != nil {
		return nil, err
	}
	name, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LParen); err != nil {
		return nil, err
	}

	col, err := p.parseColumnDef()
	if err != nil {
		return nil, err
	}
	columns := []ast.ColumnDef{col}

	for {
		tok, ok := p.peek()
		if !ok || tok.Kind != lexer.Comma {
			break
		}
		p.advance()
		col, err := p.parseColumnDef()
		if err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}

	if _, err := p.expect(lexer.RParen); err != nil {
		return nil, err
	}

	return &ast.CreateTable{Name: name, Columns: columns}, nil
}

func (p *parser) parseColumnDef() (ast.ColumnDef, error) {
	name, err := p.expectIdentifier()
	if err != nil {
		return ast.ColumnDef{}, err
	}
	typeName, err := p.expectIdentifier()
	if err != nil {
		return ast.ColumnDef{}, err
	}

	var t ast.ColumnType
	switch typeName {
	case "integer":
		t = ast.ColumnTypeInteger
	case "real":
		t = ast.ColumnTypeReal
	case "text", "string":
		t = ast.ColumnTypeText
	case "blob":
		t = ast.ColumnTypeBlob
	case "bool":
		t = ast.ColumnTypeBool
	default:
		return ast.ColumnDef{}, fmt.Errorf("unsupported type: %s", typeName)
	}

	return ast.ColumnDef{Name: name, Type: t}, nil
}

func (p *parser) peek() (lexer.Token, bool) {
	if p.pos >= len(p.tokens) {
		return lexer.Token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) advance() {
	p.pos++
}

func (p *parser) expect(kind lexer.Kind) (lexer.Token, error) {
	tok, ok := p.peek()
	if !ok {
		return lexer.Token{}, fmt.Errorf("unexpected end of input, want %s", kind)
	}
	if tok.Kind != kind {
		return lexer.Token{}, fmt.Errorf("unexpected token: %s", tok)
	}
	p.advance()
	return tok, nil
}

// expectIdentifier accepts only a lexer.Identifier token; a keyword in
// identifier position (e.g. a column named "where") is an error.
func (p *parser) expectIdentifier() (string, error) {
	tok, err := p.expect(lexer.Identifier)
	if err != nil {
		return "", err
	}
	return tok.Text, nil
}

func (p *parser) expectOp() (ast.Op, error) {
	tok, ok := p.peek()
	if !ok {
		return 0, fmt.Errorf("unexpected end of input, want comparison operator")
	}
	var op ast.Op
	switch tok.Kind {
	case lexer.OpEq:
		op = ast.OpEq
	case lexer.OpNe:
		op = ast.OpNe
	case lexer.OpLt:
		op = ast.OpLt
	case lexer.OpGt:
		op = ast.OpGt
	case lexer.OpLe:
		op = ast.OpLe
	case lexer.OpGe:
		op = ast.OpGe
	default:
		return 0, fmt.Errorf("unexpected token: %s", tok)
	}
	p.advance()
	return op, nil
}

func (p *parser) expectLiteral() (ast.Expr, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, fmt.Errorf("unexpected end of input, want literal")
	}
	switch tok.Kind {
	case lexer.KeywordNull:
		p.advance()
		return ast.Null{}, nil
	case lexer.IntLiteral:
		p.advance()
		return ast.Int{Value: tok.Int}, nil
	case lexer.RealLiteral:
		p.advance()
		return ast.Real{Value: tok.Real}, nil
	case lexer.StringLiteral:
		p.advance()
		return ast.Text{Value: tok.Text}, nil
	default:
		return nil, fmt.Errorf("unexpected token: %s", tok)
	}
}
