package storage

import "github.com/harrison/sqlengine/sqlvalue"

// Column is a column descriptor as defined in spec §3. At most one column
// in a table's Columns slice has Primary set; a primary column is
// implicitly unique (enforced by NewTable / Catalog.CreateTable).
type Column struct {
	Name    string        `json:"name"`
	Dtype   sqlvalue.Dtype `json:"-"`
	Primary bool          `json:"primary"`
	Unique  bool          `json:"unique"`
}

// IsUniqueKey reports whether c participates in a unique index, i.e. is
// primary or explicitly unique.
func (c Column) IsUniqueKey() bool {
	return c.Primary || c.Unique
}

// columnDoc is the on-disk JSON shape for a column inside a schema
// document; it spells dtype as a string the way §6 specifies.
type columnDoc struct {
	Name    string `json:"name"`
	Dtype   string `json:"dtype"`
	Primary bool   `json:"primary"`
	Unique  bool   `json:"unique"`
}
