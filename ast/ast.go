// Package ast defines the abstract statement produced by the parser.
package ast

import "github.com/harrison/sqlengine/sqlvalue"

// Kind tags which statement shape a Statement represents.
type Kind int

const (
	// CreateTable is `CREATE TABLE ...`.
	CreateTable Kind = iota
	// DropTable is `DROP TABLE ...`.
	DropTable
	// Insert is `INSERT INTO ...`.
	Insert
	// Select is `SELECT ...`.
	Select
	// Update is `UPDATE ...`.
	Update
	// Delete is `DELETE FROM ...`.
	Delete
)

// ColumnSpec is one column clause inside CREATE TABLE. Dtype is kept as
// the raw token text rather than a resolved sqlvalue.Dtype: the parser
// does not validate that a dtype keyword is one of INT/FLOAT/STRING (spec
// §4.1 — "the parser does not touch the catalog and does not validate");
// an unsupported dtype is a schema error raised when the table is
// actually created (spec §4.3), grounded on original_source/minidb's
// Table constructor performing that check, not its parser.
type ColumnSpec struct {
	Name    string
	Dtype   string
	Primary bool
	Unique  bool
}

// Where is the single supported predicate: `column op literal`.
type Where struct {
	Column string
	Op     string // "=", "<", ">"
	Value  sqlvalue.Value
}

// Join describes the single supported JOIN shape:
// `JOIN <table> ON <leftColumn> = <rightColumn>`.
type Join struct {
	Table       string
	LeftColumn  string
	RightColumn string
}

// Statement is the parser's sole output type: a tagged union of the six
// statement shapes the dialect recognizes. Only the fields relevant to
// Kind are populated; the zero value of the rest is never read.
type Statement struct {
	Kind Kind

	// CreateTable
	Table   string
	Columns []ColumnSpec

	// Insert
	InsertColumns []string
	InsertValues  []sqlvalue.Value

	// Select
	Projection []string // ["*"] means all columns, in schema order
	Join       *Join

	// Update
	Assignments []Assignment

	// Select / Update / Delete
	Where *Where
}

// Assignment is one `column = literal` clause inside SET.
type Assignment struct {
	Column string
	Value  sqlvalue.Value
}
