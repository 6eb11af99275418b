// Package parser implements the recursive-descent SQL parser for the
// engine's small dialect. The parser is stateless and pure: it never
// touches the catalog, and does not validate that tables or columns exist.
package parser

import (
	"strconv"

	"github.com/harrison/sqlengine/ast"
	"github.com/harrison/sqlengine/errkind"
	"github.com/harrison/sqlengine/lexer"
	"github.com/harrison/sqlengine/sqlvalue"
	"github.com/harrison/sqlengine/token"
)

// Parser turns SQL text into a single ast.Statement.
type Parser struct {
	lex *lexer.Lexer
	cur token.Token
}

// New creates a Parser for the given SQL text.
func New(input string) *Parser {
	p := &Parser{lex: lexer.New(input)}
	p.advance()
	return p
}

// Parse parses sql as a single statement and returns its abstract form.
// Parse is the package's sole entry point; everything else is internal
// recursive-descent machinery.
func Parse(sql string) (*ast.Statement, error) {
	p := New(sql)
	return p.parseStatement()
}

func (p *Parser) advance() {
	p.cur = p.lex.NextToken()
}

func (p *Parser) curIs(t token.Type) bool {
	return p.cur.Type == t
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	return errkind.Newf(errkind.Parse, format, args...)
}

// expect consumes the current token if it matches t, else raises a parse
// error naming what was found instead.
func (p *Parser) expect(t token.Type) (token.Token, error) {
	if !p.curIs(t) {
		return token.Token{}, p.errorf("expected %s, found %q at position %d", t, p.cur.Literal, p.cur.Pos)
	}
	tok := p.cur
	p.advance()
	return tok, nil
}

// expectIdent consumes an identifier token. Only IDENT tokens are
// accepted: a reserved keyword (e.g. a table literally named "values") is
// not usable as an identifier.
func (p *Parser) expectIdent() (string, error) {
	tok, err := p.expect(token.IDENT)
	if err != nil {
		return "", err
	}
	return tok.Literal, nil
}

func (p *Parser) parseStatement() (*ast.Statement, error) {
	var stmt *ast.Statement
	var err error

	switch p.cur.Type {
	case token.CREATE:
		stmt, err = p.parseCreateTable()
	case token.DROP:
		stmt, err = p.parseDropTable()
	case token.INSERT:
		stmt, err = p.parseInsert()
	case token.SELECT:
		stmt, err = p.parseSelect()
	case token.UPDATE:
		stmt, err = p.parseUpdate()
	case token.DELETE:
		stmt, err = p.parseDelete()
	default:
		return nil, p.errorf("unrecognized statement starting at %q", p.cur.Literal)
	}
	if err != nil {
		return nil, err
	}

	for p.curIs(token.SEMI) {
		p.advance()
	}
	if !p.curIs(token.EOF) {
		return nil, p.errorf("unexpected trailing input %q", p.cur.Literal)
	}
	return stmt, nil
}

// parseCreateTable parses `CREATE TABLE <id> ( <colspec> [, <colspec>]* )`.
func (p *Parser) parseCreateTable() (*ast.Statement, error) {
	if _, err := p.expect(token.CREATE); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.TABLE); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	var cols []ast.ColumnSpec
	for {
		col, err := p.parseColumnSpec()
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	return &ast.Statement{Kind: ast.CreateTable, Table: name, Columns: cols}, nil
}

// parseColumnSpec parses `<id> <dtype> [PRIMARY] [UNIQUE]` with PRIMARY and
// UNIQUE allowed in either order, per §4.1. The dtype token is captured
// verbatim; whether it names a supported dtype is a storage-layer concern
// (spec §4.3), not this parser's.
func (p *Parser) parseColumnSpec() (ast.ColumnSpec, error) {
	name, err := p.expectIdent()
	if err != nil {
		return ast.ColumnSpec{}, err
	}
	dtypeTok, err := p.expectIdent()
	if err != nil {
		return ast.ColumnSpec{}, err
	}

	col := ast.ColumnSpec{Name: name, Dtype: dtypeTok}
	for p.curIs(token.PRIMARY) || p.curIs(token.UNIQUE) {
		if p.curIs(token.PRIMARY) {
			col.Primary = true
		} else {
			col.Unique = true
		}
		p.advance()
	}
	return col, nil
}

// parseDropTable parses `DROP TABLE <id>`.
func (p *Parser) parseDropTable() (*ast.Statement, error) {
	if _, err := p.expect(token.DROP); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.TABLE); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	return &ast.Statement{Kind: ast.DropTable, Table: name}, nil
}

// parseInsert parses
// `INSERT INTO <id> ( <id> [, <id>]* ) VALUES ( <literal> [, <literal>]* )`.
func (p *Parser) parseInsert() (*ast.Statement, error) {
	if _, err := p.expect(token.INSERT); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.INTO); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cols, err := p.parseIdentList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.VALUES); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	vals, err := p.parseLiteralList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	if len(cols) != len(vals) {
		return nil, p.errorf("column count %d does not match value count %d", len(cols), len(vals))
	}

	return &ast.Statement{Kind: ast.Insert, Table: name, InsertColumns: cols, InsertValues: vals}, nil
}

func (p *Parser) parseIdentList() ([]string, error) {
	var idents []string
	for {
		id, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		idents = append(idents, id)
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	return idents, nil
}

func (p *Parser) parseLiteralList() ([]sqlvalue.Value, error) {
	var vals []sqlvalue.Value
	for {
		v, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	return vals, nil
}

// parseLiteral consumes one literal token per the grammar in §4.1: NULL
// (any case), 'string', -?\d+, -?\d+\.\d+, or a bareword string.
func (p *Parser) parseLiteral() (sqlvalue.Value, error) {
	tok := p.cur
	switch tok.Type {
	case token.NULL:
		p.advance()
		return sqlvalue.NullValue, nil
	case token.STRING_LIT:
		p.advance()
		return sqlvalue.NewString(tok.Literal), nil
	case token.INT_LIT:
		p.advance()
		n, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			return sqlvalue.Value{}, p.errorf("malformed integer literal %q", tok.Literal)
		}
		return sqlvalue.NewInt(n), nil
	case token.FLOAT_LIT:
		p.advance()
		f, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return sqlvalue.Value{}, p.errorf("malformed float literal %q", tok.Literal)
		}
		return sqlvalue.NewFloat(f), nil
	case token.IDENT:
		p.advance()
		return sqlvalue.NewString(tok.Literal), nil
	default:
		return sqlvalue.Value{}, p.errorf("expected a literal value, found %q", tok.Literal)
	}
}

// parseSelect parses
// `SELECT (<id>[, <id>]* | *) FROM <id> [JOIN <id> ON <id> = <id>] [WHERE <id> (=|<|>) <literal>]`.
func (p *Parser) parseSelect() (*ast.Statement, error) {
	if _, err := p.expect(token.SELECT); err != nil {
		return nil, err
	}

	var projection []string
	if p.curIs(token.STAR) {
		p.advance()
		projection = []string{"*"}
	} else {
		cols, err := p.parseIdentList()
		if err != nil {
			return nil, err
		}
		projection = cols
	}

	if _, err := p.expect(token.FROM); err != nil {
		return nil, err
	}
	table, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	stmt := &ast.Statement{Kind: ast.Select, Table: table, Projection: projection}

	if p.curIs(token.JOIN) {
		p.advance()
		joinTable, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.ON); err != nil {
			return nil, err
		}
		leftCol, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.EQ); err != nil {
			return nil, err
		}
		rightCol, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		stmt.Join = &ast.Join{Table: joinTable, LeftColumn: leftCol, RightColumn: rightCol}
	}

	if p.curIs(token.WHERE) {
		w, err := p.parseWhere()
		if err != nil {
			return nil, err
		}
		stmt.Where = w
	}

	return stmt, nil
}

// parseWhere parses `WHERE <id> (=|<|>) <literal>`.
func (p *Parser) parseWhere() (*ast.Where, error) {
	if _, err := p.expect(token.WHERE); err != nil {
		return nil, err
	}
	col, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	var op string
	switch p.cur.Type {
	case token.EQ:
		op = "="
	case token.LT:
		op = "<"
	case token.GT:
		op = ">"
	default:
		return nil, p.errorf("expected =, < or > in WHERE clause, found %q", p.cur.Literal)
	}
	p.advance()

	val, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}

	return &ast.Where{Column: col, Op: op, Value: val}, nil
}

// parseUpdate parses
// `UPDATE <id> SET <id> = <literal> [, <id> = <literal>]* [WHERE ...]`.
func (p *Parser) parseUpdate() (*ast.Statement, error) {
	if _, err := p.expect(token.UPDATE); err != nil {
		return nil, err
	}
	table, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SET); err != nil {
		return nil, err
	}

	var assignments []ast.Assignment
	for {
		col, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.EQ); err != nil {
			return nil, err
		}
		val, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, ast.Assignment{Column: col, Value: val})
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}

	stmt := &ast.Statement{Kind: ast.Update, Table: table, Assignments: assignments}

	if p.curIs(token.WHERE) {
		w, err := p.parseWhere()
		if err != nil {
			return nil, err
		}
		stmt.Where = w
	}

	return stmt, nil
}

// parseDelete parses `DELETE FROM <id> [WHERE ...]`.
func (p *Parser) parseDelete() (*ast.Statement, error) {
	if _, err := p.expect(token.DELETE); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.FROM); err != nil {
		return nil, err
	}
	table, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	stmt := &ast.Statement{Kind: ast.Delete, Table: table}

	if p.curIs(token.WHERE) {
		w, err := p.parseWhere()
		if err != nil {
			return nil, err
		}
		stmt.Where = w
	}

	return stmt, nil
}
